package search

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks a FilterSpec and returns a *errors.ValidationError on failure.
func Validate(spec FilterSpec) error {
	if err := defaultValidator.Struct(spec); err != nil {
		field, value, msg := describe(err)
		return apperrors.NewValidationError(field, value, msg)
	}
	if spec.RegisteredFrom != "" && spec.RegisteredTo != "" && spec.RegisteredFrom > spec.RegisteredTo {
		return apperrors.NewValidationError("registered_to", spec.RegisteredTo,
			"must not be before registered_from")
	}
	return nil
}

// describe converts the first validator failure into field, value and message.
func describe(err error) (string, string, string) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "", "", "invalid filter"
	}

	fe := validationErrs[0]
	field := fe.Field()
	value := fmt.Sprint(fe.Value())

	switch fe.ActualTag() {
	case "gte":
		return field, value, fmt.Sprintf("must be at least %s", fe.Param())
	case "datetime":
		return field, value, "must be a date in YYYY-MM-DD format"
	case "notblank":
		return field, "", "must not contain blank entries"
	default:
		return field, value, "is invalid"
	}
}
