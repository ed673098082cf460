package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantlab/backtester/retention"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove run directories older than the retention window",
	Long: `Prune scans the run output directory and removes run directories
older than the retention window. Without --apply it only reports what
it would remove.

Example:
  backtester prune --out-dir ./runs --keep-days 30 --apply`,
	RunE: runPrune,
}

var (
	pruneOutDir   string
	pruneKeepDays int
	pruneApply    bool
)

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOutDir, "out-dir", "./runs", "run output directory")
	pruneCmd.Flags().IntVar(&pruneKeepDays, "keep-days", 30, "retention window in days")
	pruneCmd.Flags().BoolVar(&pruneApply, "apply", false, "actually remove directories (default is dry run)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	report, err := retention.Prune(pruneOutDir, retention.Policy{
		KeepDays: pruneKeepDays,
		Apply:    pruneApply,
	}, logrus.StandardLogger(), time.Now())
	if err != nil {
		return err
	}

	verb := "would prune"
	if pruneApply {
		verb = "pruned"
	}
	fmt.Printf("scanned %d run dirs, %s %d, kept %d\n",
		report.Scanned, verb, len(report.Pruned), report.Kept)
	return nil
}
