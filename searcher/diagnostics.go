package searcher

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// RootSnapshot is a JSON/CSV-serializable snapshot of a completed
// search's root statistics, the diagnostic surface spec.md §6 asks
// "Outputs" to expose beyond the single recommended action.
type RootSnapshot struct {
	Timestamp      time.Time                `json:"timestamp"`
	BestAction     ActionIdx                `json:"best_action"`
	Lambda         float64                  `json:"lambda"`
	Iterations     int                      `json:"iterations"`
	Duration       time.Duration            `json:"duration"`
	RewardPairs    map[ActionIdx]UcbPair    `json:"reward_pairs"`
	CostPairs      map[ActionIdx]UcbPair    `json:"cost_pairs"`
}

// Snapshot captures the current state of m's root for diagnostics. Call
// after Search returns.
func (m *MCTS) Snapshot(best ActionIdx) RootSnapshot {
	return RootSnapshot{
		Timestamp:   time.Now(),
		BestAction:  best,
		Lambda:      m.root.egoStatistic.Lambda(),
		Iterations:  m.metrics.Iterations,
		Duration:    m.metrics.Duration,
		RewardPairs: m.root.egoStatistic.RewardStatistics(),
		CostPairs:   m.root.egoStatistic.CostStatistics(),
	}
}

// DiagnosticsWriter persists RootSnapshot records under a timestamped
// directory, one CSV row per search plus one JSON file per snapshot for
// the full per-action detail, adapted from the teacher's experiment
// writer.
type DiagnosticsWriter struct {
	baseDir string
}

// NewDiagnosticsWriter creates (and returns a handle to) a fresh
// timestamped directory under root for this run's diagnostics.
func NewDiagnosticsWriter(root string) (*DiagnosticsWriter, error) {
	baseDir := filepath.Join(root, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("searcher: create diagnostics directory: %w", err)
	}
	return &DiagnosticsWriter{baseDir: baseDir}, nil
}

// WriteSummary writes search_summary.csv, replacing any existing file,
// with a header and one row per snapshot summarizing the search outcome:
// timestamp, best action, lambda, iterations, duration.
func (w *DiagnosticsWriter) WriteSummary(snapshots []RootSnapshot) error {
	path := filepath.Join(w.baseDir, "search_summary.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("searcher: create summary file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "best_action", "lambda", "iterations", "duration"}); err != nil {
		return fmt.Errorf("searcher: write summary header: %w", err)
	}
	for _, s := range snapshots {
		row := []string{
			s.Timestamp.Format(time.RFC3339),
			strconv.Itoa(int(s.BestAction)),
			strconv.FormatFloat(s.Lambda, 'f', -1, 64),
			strconv.Itoa(s.Iterations),
			s.Duration.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("searcher: write summary row: %w", err)
		}
	}
	return nil
}

// WriteRootDetail writes one per-action JSON file with the full reward
// and cost UCB pairs for a single snapshot, for offline plotting.
func (w *DiagnosticsWriter) WriteRootDetail(index int, snapshot RootSnapshot) error {
	path := filepath.Join(w.baseDir, fmt.Sprintf("root_%04d.json", index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("searcher: create root detail file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("searcher: encode root detail: %w", err)
	}
	return nil
}
