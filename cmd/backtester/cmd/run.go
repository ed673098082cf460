package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantlab/backtester/backtest"
	"github.com/quantlab/backtester/config"
	"github.com/quantlab/backtester/journal"
	"github.com/quantlab/backtester/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run loads a YAML or JSON run configuration, replays the configured
symbols through the strategy and execution pipeline, and journals the
run's bars, orders, fills, equity curve, and summary.

Example:
  backtester run -c configs/spy_daily.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runStrategy   string
	runCacheDir   string
	runOutDir     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to run config (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "override configured strategy name")
	runCmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "override bar cache directory")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "override run output directory")

	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
	}
	if runCacheDir != "" {
		cfg.Data.CacheDir = runCacheDir
	}
	if runOutDir != "" {
		cfg.Run.OutDir = runOutDir
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	engine, err := backtest.New(strategies.DefaultRegistry(), cfg, j, logrus.StandardLogger())
	if err != nil {
		return err
	}

	res, err := engine.Run()
	if err != nil {
		return err
	}

	s := res.Summary
	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Run ID: %s\n", res.RunID)
	fmt.Printf("  Strategy: %s on %v (%s bars)\n", s.Strategy, s.Symbols, s.Interval)
	fmt.Printf("  Bars: %d  Orders: %d/%d approved  Fills: %d\n",
		s.Counters.Bars, s.Counters.OrdersApproved, s.Counters.OrdersProposed, s.Counters.Fills)
	fmt.Printf("  End Equity: $%.2f (started $%.2f)\n", s.EndEquity, s.StartCash)
	fmt.Printf("  Realized PnL: $%.2f  Turnover: $%.2f\n", s.RealizedPnL, s.Turnover)
	if m := s.Metrics; m != nil {
		fmt.Printf("  CAGR: %.4f  Sharpe: %.2f  Sortino: %.2f\n", m.CAGR, m.Sharpe, m.Sortino)
		fmt.Printf("  Max Drawdown: %.4f  Calmar: %.2f  Hit Rate: %.2f\n", m.MaxDrawdown, m.Calmar, m.HitRate)
	}

	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.NewCSV(cfg.Run.OutDir)
	}
}
