package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DatasetFetcher coordinates parallel dataset downloads from object
// storage, with a local cache directory to avoid redundant fetches of
// the same object across runs.
type DatasetFetcher struct {
	storage     ObjectStorage
	concurrency int
	cacheDir    string
}

// FetchResult contains the outcome of a batch fetch operation.
type FetchResult struct {
	LocalPaths map[string]string
	Errors     map[string]error
	CacheHits  int
	Downloads  int
}

// NewDatasetFetcher creates a new dataset fetcher.
// storage: the ObjectStorage implementation to download from
// concurrency: maximum number of parallel downloads
// cacheDir: directory to cache downloaded files (empty = no caching)
func NewDatasetFetcher(storage ObjectStorage, concurrency int, cacheDir string) *DatasetFetcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DatasetFetcher{
		storage:     storage,
		concurrency: concurrency,
		cacheDir:    cacheDir,
	}
}

// Fetch downloads the given dataset objects in parallel, bounded by the
// fetcher's concurrency. Returns local paths for successes and a
// separate error map for failures; one failed object does not abort the
// others.
func (f *DatasetFetcher) Fetch(ctx context.Context, objectPaths []string) (*FetchResult, error) {
	result := &FetchResult{
		LocalPaths: make(map[string]string),
		Errors:     make(map[string]error),
	}
	if len(objectPaths) == 0 {
		return result, nil
	}

	var queue []string
	locals := make(map[string]string, len(objectPaths))
	for _, p := range objectPaths {
		local := f.localPath(p)
		locals[p] = local

		if f.cacheDir != "" {
			if _, err := os.Stat(local); err == nil {
				result.LocalPaths[p] = local
				result.CacheHits++
				continue
			}
		}
		queue = append(queue, p)
	}

	sem := semaphore.NewWeighted(int64(f.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range queue {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors[p] = fmt.Errorf("semaphore acquire failed: %w", err)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(path, local string) {
			defer sem.Release(1)
			defer wg.Done()

			if err := f.storage.Download(ctx, path, local); err != nil {
				mu.Lock()
				result.Errors[path] = err
				mu.Unlock()
				return
			}

			mu.Lock()
			result.LocalPaths[path] = local
			result.Downloads++
			mu.Unlock()
		}(p, locals[p])
	}

	wg.Wait()
	return result, nil
}

// FetchOne downloads a single dataset object and returns its local path.
func (f *DatasetFetcher) FetchOne(ctx context.Context, objectPath string) (string, error) {
	result, err := f.Fetch(ctx, []string{objectPath})
	if err != nil {
		return "", err
	}
	if err, failed := result.Errors[objectPath]; failed {
		return "", err
	}
	return result.LocalPaths[objectPath], nil
}

// localPath returns the local filesystem path for an object.
// The object path is flattened to its base name to avoid directory
// traversal.
func (f *DatasetFetcher) localPath(objectPath string) string {
	sanitized := filepath.Base(filepath.FromSlash(objectPath))
	if f.cacheDir == "" {
		return sanitized
	}
	return filepath.Join(f.cacheDir, sanitized)
}
