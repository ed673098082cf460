// Package retention prunes old run directories from the journal output
// directory. Pruning is dry-run by default so a mistyped retention window
// never destroys artifacts.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Policy selects which run directories to remove.
type Policy struct {
	// KeepDays removes run directories last modified more than this many
	// days ago. Must be positive.
	KeepDays int

	// Apply performs the removal. When false, candidates are only reported.
	Apply bool
}

// Report lists what a prune pass selected and, when applied, removed.
type Report struct {
	Scanned int
	Pruned  []string
	Kept    int
}

// Prune walks baseDir's immediate subdirectories and removes the ones older
// than the retention window. Files and hidden staging directories are left
// alone.
func Prune(baseDir string, policy Policy, log logrus.FieldLogger, now time.Time) (*Report, error) {
	if policy.KeepDays <= 0 {
		return nil, fmt.Errorf("retention: keep days must be positive, got %d", policy.KeepDays)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("retention: %w", err)
	}

	cutoff := now.Add(-time.Duration(policy.KeepDays) * 24 * time.Hour)
	report := &Report{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		report.Scanned++

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("retention: %w", err)
		}
		if !info.ModTime().Before(cutoff) {
			report.Kept++
			continue
		}

		path := filepath.Join(baseDir, entry.Name())
		if policy.Apply {
			if err := os.RemoveAll(path); err != nil {
				return nil, fmt.Errorf("retention: remove %s: %w", path, err)
			}
			log.WithField("run_dir", entry.Name()).Info("pruned run")
		} else {
			log.WithField("run_dir", entry.Name()).Info("would prune run (dry run)")
		}
		report.Pruned = append(report.Pruned, entry.Name())
	}
	return report, nil
}
