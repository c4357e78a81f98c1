package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "humdrum",
	Short: "Humdrum is a small MVC dispatch engine",
	Long: `Humdrum wires controllers, processes and views from a site file and
dispatches requests to them from the terminal, HTTP or MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = cli.CreateLogger(cfg)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "humdrum.yaml", "Configuration file (ignored when missing)")
	flags.StringP("site", "s", "", "Site definition file (overrides config)")
	flags.String("store", "", "Session store: memory, file or redis (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
}

// applyFlags lets explicitly set flags win over the configuration file.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("site") {
		cfg.Site, _ = flags.GetString("site")
	}
	if flags.Changed("store") {
		cfg.Store.Type, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
}
