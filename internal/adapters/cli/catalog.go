package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/craftplan-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/config"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/database"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate, import and list crafting patterns",
		Long: `Manage the pattern catalog.

Catalog files are YAML documents with a top-level "patterns" list. The
planner reads patterns either straight from a file (catalog.source: file)
or from the database after an import (catalog.source: database).

Examples:
  craftplan catalog validate recipes.yaml
  craftplan catalog import recipes.yaml
  craftplan catalog list`,
	}

	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogImportCommand())
	cmd.AddCommand(newCatalogListCommand())

	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file for errors and likely typos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := catalogfile.ReadCatalog(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s: %d patterns\n", args[0], len(patterns))
			warnings := catalogfile.Lint(patterns)
			for _, w := range warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		},
	}
}

func newCatalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a catalog file into the database",
		Long: `Import every pattern of a catalog file into the database catalog.

Patterns with an existing ID are replaced in place and keep their position
in the registration order; new IDs are appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := catalogfile.ReadCatalog(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			catalog := persistence.NewGormPatternCatalog(db, nil)
			imported, err := catalog.Import(cmd.Context(), patterns)
			if err != nil {
				return err
			}
			total, err := catalog.Count(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d patterns (%d in catalog)\n", imported, total)
			return nil
		},
	}
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the patterns of the configured catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			patterns, err := s.app.Patterns.List(s.ctx)
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patterns in catalog")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tINPUTS\tOUTPUTS\tTICKS")
			for _, p := range patterns {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n",
					p.ID(), p.Priority(), formatInputs(p), formatOutputs(p), p.ProcessingTime())
			}
			return w.Flush()
		},
	}
}

func formatInputs(p *pattern.Details) string {
	parts := make([]string, 0, len(p.Inputs()))
	for _, slot := range p.Inputs() {
		names := make([]string, len(slot.Candidates))
		for i, c := range slot.Candidates {
			names[i] = c.String()
		}
		parts = append(parts, fmt.Sprintf("%d×%s", slot.Amount, strings.Join(names, "|")))
	}
	return strings.Join(parts, ", ")
}

func formatOutputs(p *pattern.Details) string {
	parts := make([]string, 0, len(p.Outputs()))
	for _, o := range p.Outputs() {
		parts = append(parts, fmt.Sprintf("%d×%s", o.Amount, o.Key))
	}
	return strings.Join(parts, ", ")
}
