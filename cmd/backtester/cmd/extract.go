package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/backtester/data"
)

var extractCmd = &cobra.Command{
	Use:   "extract [archives...]",
	Short: "Unpack bar-data archives into the cache directory",
	Long: `Extract unpacks downloaded bar-data archives (.zip, .xz, .lzma, .gz)
into the cache directory so 'backtester run' can load them.

Example:
  backtester extract --cache-dir ./cache vendors/SPY_1d.csv.xz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var extractCacheDir string

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractCacheDir, "cache-dir", "./cache", "bar cache directory")
}

func runExtract(cmd *cobra.Command, args []string) error {
	for _, src := range args {
		if err := data.ExtractArchive(src, extractCacheDir); err != nil {
			return err
		}
		fmt.Printf("extracted %s into %s\n", src, extractCacheDir)
	}
	return nil
}
