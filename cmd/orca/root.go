package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/orca/internal/config"
	"github.com/aretw0/orca/internal/logging"
)

var (
	// cfg and logger are ready once PersistentPreRunE has run.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "orca",
	Short: "ORCA takes wood product orders through a guided conversation",
	Long: `ORCA walks a customer from product choice to a submitted order.

It runs as an interactive terminal session, as an HTTP API for the web
widget, as an MCP server for agents, and as the email intake service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := applyOverrides(cmd, loaded); err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.New(level)
		return nil
	},
}

// applyOverrides copies explicitly set flags over the loaded configuration.
func applyOverrides(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("catalog") {
		c.Catalog, _ = flags.GetString("catalog")
	}
	if flags.Changed("store") {
		c.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("store-path") {
		c.Store.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("redis-addr") {
		c.Store.RedisAddr, _ = flags.GetString("redis-addr")
	}
	return c.Validate()
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Configuration file (default ./"+config.DefaultFile+" when present)")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("catalog", "", "Catalog file or directory (default: built-in catalog)")
	pf.String("store", config.StoreFile, "Session store: memory, file or redis")
	pf.String("store-path", "", "Directory of the file store")
	pf.String("redis-addr", "", "Redis address of the redis store")
}
