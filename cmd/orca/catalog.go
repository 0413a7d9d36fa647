package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/orca/internal/cli"
	"github.com/aretw0/orca/internal/presentation/graph"
	"github.com/aretw0/orca/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the product catalog",
	Long: `Loads the configured catalog and lists its categories. With --watch the
catalog is reloaded on every edit, which helps while authoring it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		asJSON, _ := cmd.Flags().GetBool("json")

		if watch {
			if cfg.Catalog == "" {
				return fmt.Errorf("--watch needs a catalog file or directory (--catalog)")
			}
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			return cli.WatchCatalog(sigCtx, cfg.Catalog, cmd.OutOrStdout())
		}

		cat, err := catalog.Load(cmd.Context(), cfg.Catalog)
		if err != nil {
			return err
		}
		return cli.PrintCatalog(cmd.OutOrStdout(), cat, asJSON)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the order flow as a Mermaid diagram",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nil))
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(graphCmd)

	catalogCmd.Flags().Bool("json", false, "Print the catalog as JSON")
	catalogCmd.Flags().BoolP("watch", "w", false, "Reload and report the catalog on every change")
}
