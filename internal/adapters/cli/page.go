package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/commands"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/queries"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
)

// NewPageCommand creates the page command with subcommands
func NewPageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage production pages",
		Long: `Import, export and list production pages.

A page document names the page and describes its network: links (resource,
amount, algorithm) and process instances (recipe, entity, fuel, optional
nested subgroup). Names refer to the imported catalog.

Examples:
  yafc page import pages/circuits.yaml
  yafc page import pages/circuits.yaml --replace
  yafc page export circuits circuits.yaml
  yafc page list
  yafc page use circuits`,
	}

	cmd.AddCommand(newPageImportCommand())
	cmd.AddCommand(newPageExportCommand())
	cmd.AddCommand(newPageListCommand())
	cmd.AddCommand(newPageUseCommand())

	return cmd
}

func newPageImportCommand() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a page described by a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := readPageDefinition(args[0])
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &commands.ImportPageCommand{Definition: *definition, Replace: replace})
				if err != nil {
					return err
				}
				response := result.(*commands.ImportPageResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) {
					verb := "imported"
					if response.Replaced {
						verb = "replaced"
					}
					fmt.Fprintf(w, "✓ Page %s %s (%d instances, %d links)\n", response.Name, verb, response.Instances, response.Links)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite a page with the same name")

	return cmd
}

func readPageDefinition(path string) (*production.PageDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer file.Close()

	var definition production.PageDefinition
	if err := yaml.NewDecoder(file).Decode(&definition); err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", path, err)
	}
	return &definition, nil
}

func newPageExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [page] [file|-]",
		Short: "Write a page as YAML",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolvePageName(args)
			if err != nil {
				return err
			}
			target := "-"
			if len(args) == 2 {
				target = args[1]
			}

			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.ExportPageQuery{PageName: name})
				if err != nil {
					return err
				}
				return writePageDefinition(cmd.OutOrStdout(), target, result.(*production.PageDefinition))
			})
		},
	}
}

func writePageDefinition(stdout io.Writer, target string, definition *production.PageDefinition) error {
	w := stdout
	if target != "-" {
		file, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
		defer file.Close()
		w = file
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(definition); err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	return enc.Close()
}

func newPageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.ListPagesQuery{})
				if err != nil {
					return err
				}
				response := result.(*queries.ListPagesResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) {
					if len(response.Pages) == 0 {
						fmt.Fprintln(w, "No pages stored")
						return
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tINSTANCES\tLINKS\tID")
					for _, page := range response.Pages {
						fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", page.Name, page.Instances, page.Links, page.ID)
					}
					tw.Flush()
				})
			})
		},
	}
}

func newPageUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <page>",
		Short: "Set the page used when none is named",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				// the page has to exist
				if _, err := app.send(ctx, &queries.ExportPageQuery{PageName: args[0]}); err != nil {
					return err
				}

				handler, err := config.NewUserConfigHandler()
				if err != nil {
					return fmt.Errorf("failed to create user config handler: %w", err)
				}
				if err := handler.SetDefaultPage(args[0]); err != nil {
					return fmt.Errorf("failed to set default page: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Default page set to %s\n", args[0])
				return nil
			})
		},
	}
}
