// Package observability provides transform statistics tracking for run summaries and performance monitoring.
package observability

import (
	"sort"
	"sync"
	"time"
)

// TransformStats tracks which grouping keys and transforms a run
// exercises, plus group-shape statistics for the run summary.
type TransformStats struct {
	mu      sync.RWMutex
	keyFreq map[string]*KeyStats
	rows    int64
	groups  int64
	window  time.Duration
}

// KeyStats holds statistics for one grouping-key column.
type KeyStats struct {
	Column     string
	Frequency  int64
	LastSeen   time.Time
	Transforms map[string]int // transform name → count (e.g., "reduce" → 5)
}

// NewTransformStats creates a new transform statistics tracker.
// window: time duration for pruning old entries (e.g., 1 hour)
func NewTransformStats(window time.Duration) *TransformStats {
	return &TransformStats{
		keyFreq: make(map[string]*KeyStats),
		window:  window,
	}
}

// RecordTransform records one grouped transform over a key column.
// column: the grouping key (e.g., "user_id")
// transform: the operation name (e.g., "reduce", "broadcast")
// This method is O(1) and thread-safe.
func (t *TransformStats) RecordTransform(column, transform string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, exists := t.keyFreq[column]
	if !exists {
		stats = &KeyStats{
			Column:     column,
			Transforms: make(map[string]int),
		}
		t.keyFreq[column] = stats
	}

	stats.Frequency++
	stats.LastSeen = time.Now()
	stats.Transforms[transform]++
}

// RecordShape records the row and group cardinality of one transform,
// feeding the run summary's average group size.
func (t *TransformStats) RecordShape(rows, groups int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows += int64(rows)
	t.groups += int64(groups)
}

// GetTopKeys returns the top N grouping keys by frequency.
// Returns a copy of the stats sorted by frequency (descending).
func (t *TransformStats) GetTopKeys(n int) []KeyStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || len(t.keyFreq) == 0 {
		return []KeyStats{}
	}

	stats := make([]KeyStats, 0, len(t.keyFreq))
	for _, s := range t.keyFreq {
		// Deep copy to prevent external modification
		cp := KeyStats{
			Column:     s.Column,
			Frequency:  s.Frequency,
			LastSeen:   s.LastSeen,
			Transforms: make(map[string]int),
		}
		for op, count := range s.Transforms {
			cp.Transforms[op] = count
		}
		stats = append(stats, cp)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Frequency > stats[j].Frequency
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// AvgGroupSize returns the mean rows-per-group across recorded shapes,
// or 0 if nothing was recorded.
func (t *TransformStats) AvgGroupSize() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.groups == 0 {
		return 0
	}
	return float64(t.rows) / float64(t.groups)
}

// Prune removes entries where time.Since(LastSeen) > window.
// This should be called periodically in long-lived processes.
func (t *TransformStats) Prune() {
	t.mu.Lock()
	defer t.mu.Unlock()

	threshold := time.Now().Add(-t.window)
	for col, stats := range t.keyFreq {
		if stats.LastSeen.Before(threshold) {
			delete(t.keyFreq, col)
		}
	}
}
