package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/brreg-search-mcp-server/internal/brreg"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/config"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/export"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/registry"
	"github.com/olgasafonova/brreg-search-mcp-server/internal/search"
)

// Version information, set via ldflags during build
var version = "dev"

// app holds what the subcommands share once configuration is loaded.
type app struct {
	service *search.Service
	client  *brreg.Client
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "brreg-search",
		Short:        "Search newly registered Norwegian companies",
		Version:      version,
		SilenceUsage: true,
		Long: `Search newly registered Norwegian companies in the Brønnøysund registry.

Filters by registration date, legal form, share capital and industry code,
then resolves each company's daglig leder. Configuration comes from the
environment (BRREG_BASE_URL, BRREG_TIMEOUT, LOG_LEVEL, ...) or a .env file.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.client != nil {
				a.client.Close()
			}
		},
	}
	root.PersistentFlags().StringP("log-level", "l", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newSearchCmd(a),
		newCompanyCmd(a),
		newRolesCmd(a),
		newCodesCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	a.logger = cfg.Logger(cmd.ErrOrStderr())
	ref := cfg.Reference()
	a.client = brreg.NewClient(ref, cfg.ClientOptions()...)
	a.service = search.NewService(a.client, search.WithReference(ref), search.WithLogger(a.logger))
	return nil
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		spec       search.FilterSpec
		minCapital float64
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a filtered search and write one page of results",
		Example: `  brreg-search search --from 2025-01-01 --legal-form AS --include 47,56 --format csv -o new.csv
  brreg-search search --from 2025-01-01 --min-capital 0 --exclude 64,68 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min-capital") {
				spec.MinCapital = &minCapital
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			page, err := a.service.Search(cmd.Context(), spec)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, page.Companies); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d matching companies (page %d of %d), %d with capital, average %.0f NOK\n",
				len(page.Companies), page.TotalFiltered, page.Pagination.Number+1, page.Pagination.TotalPages,
				page.Stats.WithCapital, page.Stats.AverageCapital)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&minCapital, "min-capital", registry.DefaultMinCapital, "Minimum share capital in NOK (0 disables)")
	flags.StringVar(&spec.RegisteredFrom, "from", "", "Earliest registration date, YYYY-MM-DD")
	flags.StringVar(&spec.RegisteredTo, "to", "", "Latest registration date, YYYY-MM-DD")
	flags.StringSliceVar(&spec.LegalForms, "legal-form", nil, "Organization form codes (AS, ASA, ENK, ...)")
	flags.StringVar(&spec.Name, "name", "", "Company name to search for")
	flags.StringSliceVar(&spec.IncludeIndustryCodes, "include", nil, "Industry code patterns to keep, in priority order")
	flags.StringSliceVar(&spec.ExcludeIndustryCodes, "exclude", nil, "Industry code patterns to drop")
	flags.IntVar(&spec.Page, "page", 0, "Page number (0-indexed)")
	flags.IntVar(&spec.Size, "size", registry.DefaultPageSize, "Results per page")
	flags.StringVarP(&format, "format", "f", export.FormatCSV, "Output format: csv or json")
	flags.StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newCompanyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "company <org-number>",
		Short: "Print the registry record of one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := a.service.GetCompany(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", registry.FormatOrgNumber(company.OrganizationNumber), company.Name)
			return printJSON(cmd.OutOrStdout(), company)
		},
	}
}

func newRolesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roles <org-number>",
		Short: "Print the role groups of one company with its daglig leder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := a.service.GetRoles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			manager := "no daglig leder registered"
			if roles.DagligLeder != nil {
				manager = "daglig leder " + roles.DagligLeder.Name
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", registry.FormatOrgNumber(args[0]), manager)
			return printJSON(cmd.OutOrStdout(), roles)
		},
	}
}

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes [query]",
		Short: "List industry divisions usable as --include/--exclude patterns",
		Args:  cobra.MaximumNArgs(1),
		// Reference data only, no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := registry.IndustryCatalog()
			if len(args) == 1 {
				codes = registry.SearchIndustries(args[0], nil)
			}
			w := cmd.OutOrStdout()
			for _, c := range codes {
				fmt.Fprintf(w, "%-6s %s\n", c.Code, c.Name)
			}
			if len(codes) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no industry codes match %q\n", strings.Join(args, " "))
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
