package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A deterministic historical-bar backtesting engine",
	Long: `Backtester replays historical bars through a strategy, risk gate,
execution simulator, and portfolio ledger, producing a repeatable
equity curve, performance metrics, and a journaled run record.

It provides tools for:
  - Running single-strategy backtests over multi-symbol bar data
  - Generating deterministic synthetic bar fixtures
  - Pruning old run artifacts by age
  - Journaling runs to CSV directories or SQLite`,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel string
	logJSON  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)
	if logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}
