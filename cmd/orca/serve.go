package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/orca/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API of the order widget",
	Long: `Serves the session API, the catalog, the OpenAPI document, server-sent
events and Prometheus metrics. Requires a JWT secret.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.ServeHTTP(sigCtx, cfg, logger)
	},
}

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Start the order email service",
	Long: `Receives finished orders, emails them to the business and a confirmation
to the customer. Mail goes through SendGrid when a key is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Intake.Addr, _ = cmd.Flags().GetString("addr")
		}
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.ServeIntake(sigCtx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(intakeCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default http.addr)")
	intakeCmd.Flags().String("addr", "", "Address to listen on (default intake.addr)")
}
