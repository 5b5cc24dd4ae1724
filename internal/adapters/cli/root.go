package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath      string
	databasePath    string
	outputFormat    string
	metricsTextfile string
	verbose         bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yafc",
		Short: "Factory production calculator",
		Long: `yafc analyses a game catalog and solves production pages.

A catalog document lists resources, entities, processes and technologies.
After importing it, yafc finds what can be automated, estimates the cost of
every object and reports technology prerequisite loops. Production pages
describe process instances and links; solving a page computes how fast every
process has to run.

Examples:
  yafc catalog import data/catalog.yaml
  yafc analyze
  yafc cost electronic-circuit
  yafc deps electronic-circuit
  yafc loops
  yafc page import pages/circuits.yaml
  yafc solve circuits
  yafc runs circuits --limit 5`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "text", "json":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q: use text or json", outputFormat)
			}
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml or /etc/yafc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "",
		"SQLite database file, overrides the configured database")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "",
		"Write collected metrics to this file on exit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewCostCommand())
	rootCmd.AddCommand(NewDepsCommand())
	rootCmd.AddCommand(NewLoopsCommand())
	rootCmd.AddCommand(NewPageCommand())
	rootCmd.AddCommand(NewSolveCommand())
	rootCmd.AddCommand(NewRunsCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
