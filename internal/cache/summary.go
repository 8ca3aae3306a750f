package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/golang/snappy"

	"github.com/dtrimarco/groupcast/internal/transform"
)

// Entry is one cached group summary. Key and Value are stored in their
// rendered form: JSON round-trips of interface{} values would quietly
// turn int64 into float64, and the cache must never alter what a run
// reports.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Rows  int64  `json:"rows"`
}

// FromSummaries renders reduce output into cacheable entries.
func FromSummaries(summaries []transform.GroupSummary) []Entry {
	entries := make([]Entry, len(summaries))
	for i, s := range summaries {
		entries[i] = Entry{
			Key:   fmt.Sprintf("%v", s.Key),
			Value: fmt.Sprintf("%v", s.Value),
			Rows:  s.Rows,
		}
	}
	return entries
}

// ToSummaries converts cached entries back into group summaries. Key
// and Value come back as their rendered strings, which print
// identically to the originals.
func ToSummaries(entries []Entry) []transform.GroupSummary {
	summaries := make([]transform.GroupSummary, len(entries))
	for i, e := range entries {
		summaries[i] = transform.GroupSummary{
			Key:   e.Key,
			Value: e.Value,
			Rows:  e.Rows,
		}
	}
	return summaries
}

// Metrics holds cache statistics for observability.
type Metrics struct {
	Hits   atomic.Int64
	Misses atomic.Int64
	Writes atomic.Int64
}

// SummaryCache stores reduce summaries on disk, one snappy-compressed
// JSON file per fingerprint. The cache is advisory: a miss or a
// disabled cache never changes results, only timing.
type SummaryCache struct {
	dir     string
	metrics Metrics
}

// NewSummaryCache creates a summary cache rooted at dir.
func NewSummaryCache(dir string) (*SummaryCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &SummaryCache{dir: dir}, nil
}

// Get returns the cached entries for a fingerprint, or ok=false on a
// miss. A corrupt entry counts as a miss and is removed.
func (c *SummaryCache) Get(fingerprint string) ([]Entry, bool) {
	raw, err := os.ReadFile(c.entryPath(fingerprint))
	if err != nil {
		c.metrics.Misses.Add(1)
		return nil, false
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		c.evictCorrupt(fingerprint)
		return nil, false
	}

	var entries []Entry
	if err := json.Unmarshal(decoded, &entries); err != nil {
		c.evictCorrupt(fingerprint)
		return nil, false
	}

	c.metrics.Hits.Add(1)
	return entries, true
}

// Put stores entries under a fingerprint. Write errors are returned
// but callers may ignore them; the cache is best-effort.
func (c *SummaryCache) Put(fingerprint string, entries []Entry) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	compressed := snappy.Encode(nil, encoded)

	// Write to a temp file first so readers never see partial entries.
	tmp, err := os.CreateTemp(c.dir, "entry-*")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(fingerprint)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}

	c.metrics.Writes.Add(1)
	return nil
}

// Stats returns hit/miss/write counts.
func (c *SummaryCache) Stats() (hits, misses, writes int64) {
	return c.metrics.Hits.Load(), c.metrics.Misses.Load(), c.metrics.Writes.Load()
}

// Clear removes every cache entry.
func (c *SummaryCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *SummaryCache) entryPath(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".summary")
}

func (c *SummaryCache) evictCorrupt(fingerprint string) {
	os.Remove(c.entryPath(fingerprint))
	c.metrics.Misses.Add(1)
}
