package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage yafc configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (YAFC_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

User preferences (default page, last catalog) are stored in ~/.yafc/config.json

Examples:
  yafc config show
  yafc config clear-page`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigClearPageCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			if outputFormat == "json" {
				masked := *cfg
				masked.Database.Password = ""
				masked.Database.URL = maskPassword(masked.Database.URL)
				return writeJSON(out, map[string]interface{}{"config": masked, "user": userCfg})
			}

			fmt.Fprintln(out, "yafc Configuration")
			fmt.Fprintln(out, "==================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default page:     %s\n", orNotSet(userCfg.DefaultPage))
			fmt.Fprintf(out, "  Catalog file:     %s\n", orNotSet(userCfg.CatalogFile))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
				fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
			}

			fmt.Fprintln(out, "\nSolver:")
			fmt.Fprintf(out, "  Tolerance:        %g\n", cfg.Solver.Tolerance)
			fmt.Fprintf(out, "  Max attempts:     %d\n", cfg.Solver.MaxAttempts)
			fmt.Fprintf(out, "  Background:       %t\n", cfg.Solver.Background)
			fmt.Fprintf(out, "  Milestone costs:  %t\n", cfg.Analysis.IncludeMilestones)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Endpoint:         %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			return nil
		},
	}
}

func newConfigClearPageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-page",
		Short: "Clear the default page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultPage(""); err != nil {
				return fmt.Errorf("failed to clear default page: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default page cleared")
			return nil
		},
	}
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}
