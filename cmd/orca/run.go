package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/orca/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take an order in the terminal",
	Long: `Starts an interactive order session. The session is saved after every
answer, so an interrupted run continues with --session <id>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")
		noBrowser, _ := cmd.Flags().GetBool("no-browser")
		if cmd.Flags().Changed("profile") {
			cfg.Profile, _ = cmd.Flags().GetString("profile")
		}
		if fresh && sessionID == "" {
			return fmt.Errorf("--fresh needs --session")
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunSession(sigCtx, cli.RunOptions{
			Config:    cfg,
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			Debug:     debug,
			NoBrowser: noBrowser,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Resume or name a session")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("debug", false, "Log flow events to stderr")
	runCmd.Flags().Bool("no-browser", false, "Print WhatsApp links instead of opening them")
	runCmd.Flags().String("profile", "", "Profile used to remember contact details")
}
