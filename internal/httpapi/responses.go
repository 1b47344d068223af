package httpapi

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error          string `json:"error"`
	Status         int    `json:"status"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code and writes an ErrorResponse.
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Status: StatusFor(err)}
	if apperrors.IsUpstream(err) {
		resp.UpstreamStatus = apperrors.StatusCode(err)
	}
	WriteJSON(w, resp.Status, resp)
}

// StatusFor returns the HTTP status for err
func StatusFor(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
