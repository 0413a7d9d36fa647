package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/orca"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of orca",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "orca version %s\n", strings.TrimSpace(orca.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
