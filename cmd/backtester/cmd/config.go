package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantlab/backtester/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a default run configuration file",
	Long: `Config writes a default run configuration to the given path so it
can be edited and used with 'backtester run'. The format follows the
file extension (.yaml/.yml or .json).`,
	RunE: runConfig,
}

var configOutPath string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVarP(&configOutPath, "out", "o", "backtest.yaml", "where to write the config")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configOutPath); err != nil {
		return err
	}
	fmt.Printf("wrote default config to %s (hash %s)\n", configOutPath, cfg.Hash())
	return nil
}
