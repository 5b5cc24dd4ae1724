package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/have-fun-was-taken/yafc-ce/internal/adapters/catalogfile"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/commands"
	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import and export the game catalog",
		Long: `Manage the stored game catalog.

The catalog is a YAML (or JSON) document with four sections: resources,
entities, processes and technologies. Objects reference each other by name.
Importing replaces the stored catalog and discards cached analysis results.

Examples:
  yafc catalog import data/catalog.yaml
  yafc catalog export backup.yaml
  yafc catalog export -`,
	}

	cmd.AddCommand(newCatalogImportCommand())
	cmd.AddCommand(newCatalogExportCommand())

	return cmd
}

func newCatalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored catalog with a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				return runCatalogImport(ctx, app, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func runCatalogImport(ctx context.Context, app *application, out io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()

	result, err := app.send(ctx, &commands.ImportCatalogCommand{Document: file, Source: path})
	if err != nil {
		return err
	}
	response := result.(*commands.ImportCatalogResponse)

	// remembering the source is a convenience only
	if handler, err := config.NewUserConfigHandler(); err == nil {
		_ = handler.SetCatalogFile(path)
	}

	return render(out, response, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Catalog imported from %s\n", path)
		fmt.Fprintf(w, "  Resources:    %d\n", response.Resources)
		fmt.Fprintf(w, "  Entities:     %d\n", response.Entities)
		fmt.Fprintf(w, "  Processes:    %d\n", response.Processes)
		fmt.Fprintf(w, "  Technologies: %d\n", response.Technologies)
	})
}

func newCatalogExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Write the stored catalog as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				c, err := app.catalogs.Load(ctx)
				if err != nil {
					return err
				}

				if args[0] == "-" {
					return catalogfile.Encode(cmd.OutOrStdout(), c)
				}
				file, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[0], err)
				}
				if err := catalogfile.Encode(file, c); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Catalog written to %s (%d objects)\n", args[0], len(c.Objects()))
				return nil
			})
		},
	}
}
