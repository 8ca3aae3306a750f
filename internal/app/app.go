// Package app wires configuration, storage, and transforms into a
// single Groupcast pipeline run.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dtrimarco/groupcast/internal/cache"
	"github.com/dtrimarco/groupcast/internal/config"
	"github.com/dtrimarco/groupcast/internal/dataset"
	"github.com/dtrimarco/groupcast/internal/export"
	"github.com/dtrimarco/groupcast/internal/observability"
	"github.com/dtrimarco/groupcast/internal/report"
	"github.com/dtrimarco/groupcast/internal/storage"
	"github.com/dtrimarco/groupcast/internal/transform"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// App holds the shared resources for a Groupcast run.
type App struct {
	cfg *config.Config

	storage storage.ObjectStorage
	fetcher *storage.DatasetFetcher
	cache   *cache.SummaryCache
	stats   *observability.TransformStats
}

// RunOptions controls a single pipeline invocation.
type RunOptions struct {
	// Export writes the enriched table to a SQLite file
	Export bool

	// Generate synthesizes a dataset instead of loading one
	Generate bool

	// Seed for the synthetic generator
	Seed int64

	// PreviewRows overrides the configured preview row count when > 0
	PreviewRows int
}

// Result summarizes a completed pipeline run.
type Result struct {
	DatasetPath string
	Rows        int
	Groups      int
	CacheHit    bool
	Summaries   []transform.GroupSummary
	Export      *export.ExportInfo
	Elapsed     time.Duration
}

// New creates an App from the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	a := &App{
		cfg:   cfg,
		stats: observability.NewTransformStats(time.Hour),
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	a.fetcher = storage.NewDatasetFetcher(a.storage, cfg.Dataset.FetchConcurrency, cfg.Dataset.DownloadDir)

	if cfg.Cache.Enabled {
		c, err := cache.NewSummaryCache(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize summary cache: %w", err)
		}
		a.cache = c
	}

	return a, nil
}

func (a *App) initStorage() error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		a.storage, err = storage.NewS3Storage(
			context.Background(),
			a.cfg.Storage.S3.Bucket,
			s3Cfg,
		)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)
	if a.cfg.Storage.Type == "s3" {
		log.Printf("S3 config: bucket=%s region=%s endpoint=%s",
			a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
	}
	return nil
}

// Storage exposes the configured object storage backend.
func (a *App) Storage() storage.ObjectStorage {
	return a.storage
}

// Stats exposes the transform statistics tracker.
func (a *App) Stats() *observability.TransformStats {
	return a.stats
}

// Run executes the full pipeline: resolve the dataset, load it, reduce,
// enrich, preview, and optionally export.
func (a *App) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()

	path, err := a.resolveDataset(ctx, opts)
	if err != nil {
		return nil, err
	}

	tbl, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Dataset loaded: path=%s rows=%d", path, tbl.Len())

	key, err := types.ParseColumn(a.cfg.Transform.KeyColumn)
	if err != nil {
		return nil, err
	}
	kind, err := transform.ParseAggregateKind(a.cfg.Transform.Aggregate)
	if err != nil {
		return nil, err
	}
	var value types.Column
	if a.cfg.Transform.ValueColumn != "" {
		value, err = types.ParseColumn(a.cfg.Transform.ValueColumn)
		if err != nil {
			return nil, err
		}
	}

	summaries, cacheHit, err := a.reduce(path, tbl, key, kind, value)
	if err != nil {
		return nil, err
	}
	a.stats.RecordTransform(string(key), kind.String())
	a.stats.RecordShape(tbl.Len(), len(summaries))

	classifier := transform.NewClassifier(a.cfg.Classify.Values)
	if err := transform.Enrich(tbl, classifier); err != nil {
		return nil, err
	}

	previewRows := a.cfg.Transform.PreviewRows
	if opts.PreviewRows > 0 {
		previewRows = opts.PreviewRows
	}
	if previewRows > 0 {
		if err := report.Summaries(os.Stdout, key, summaries); err != nil {
			return nil, err
		}
		if err := report.Preview(os.Stdout, tbl, previewRows); err != nil {
			return nil, err
		}
	}

	res := &Result{
		DatasetPath: path,
		Rows:        tbl.Len(),
		Groups:      len(summaries),
		CacheHit:    cacheHit,
		Summaries:   summaries,
	}

	if opts.Export {
		info, err := a.export(ctx, tbl)
		if err != nil {
			return nil, err
		}
		res.Export = info
	}

	res.Elapsed = time.Since(start)
	log.Printf("Run complete: rows=%d groups=%d cache_hit=%v elapsed=%s",
		res.Rows, res.Groups, res.CacheHit, res.Elapsed)
	return res, nil
}

// resolveDataset returns a local CSV path, generating or fetching as needed.
func (a *App) resolveDataset(ctx context.Context, opts RunOptions) (string, error) {
	if opts.Generate {
		return a.generateDataset(opts.Seed)
	}
	if a.cfg.Dataset.Path != "" {
		return a.cfg.Dataset.Path, nil
	}
	if a.cfg.Dataset.Object != "" {
		local, err := a.fetcher.FetchOne(ctx, a.cfg.Dataset.Object)
		if err != nil {
			return "", fmt.Errorf("failed to fetch dataset %s: %w", a.cfg.Dataset.Object, err)
		}
		return local, nil
	}
	return "", fmt.Errorf("no dataset configured: set dataset.path or dataset.object")
}

func (a *App) generateDataset(seed int64) (string, error) {
	genCfg := dataset.DefaultGeneratorConfig()
	if seed != 0 {
		genCfg.Seed = seed
	}
	events := dataset.NewGenerator(genCfg).Generate()

	path := fmt.Sprintf("%s/generated_%d.csv", a.cfg.Dataset.DownloadDir, genCfg.Seed)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	if err := dataset.WriteEvents(f, events); err != nil {
		return "", err
	}
	log.Printf("Dataset generated: path=%s rows=%d seed=%d", path, len(events), genCfg.Seed)
	return path, nil
}

// reduce runs the configured grouped reduce, consulting the summary
// cache when enabled.
func (a *App) reduce(path string, tbl *types.Table, key types.Column, kind transform.AggregateKind, value types.Column) ([]transform.GroupSummary, bool, error) {
	var fp string
	if a.cache != nil {
		var err error
		fp, err = cache.Fingerprint(path, string(key), kind.String(), string(value))
		if err != nil {
			log.Printf("Cache fingerprint failed, bypassing cache: %v", err)
		} else if entries, ok := a.cache.Get(fp); ok {
			log.Printf("Summary cache hit: fingerprint=%s groups=%d", fp, len(entries))
			return cache.ToSummaries(entries), true, nil
		}
	}

	summaries, err := transform.Reduce(tbl.Events(), key, kind, value)
	if err != nil {
		return nil, false, err
	}

	if a.cache != nil && fp != "" {
		if err := a.cache.Put(fp, cache.FromSummaries(summaries)); err != nil {
			log.Printf("Summary cache write failed: %v", err)
		}
	}
	return summaries, false, nil
}

func (a *App) export(ctx context.Context, tbl *types.Table) (*export.ExportInfo, error) {
	writer := export.NewWriter(a.cfg.Export.OutputDir)
	info, err := writer.Write(ctx, tbl)
	if err != nil {
		return nil, err
	}
	log.Printf("Export written: id=%s path=%s rows=%d size=%d",
		info.ExportID, info.Path, info.RowCount, info.SizeBytes)

	if a.cfg.Export.Upload {
		objectPath := a.cfg.Export.ObjectPrefix + info.ExportID + ".db"
		if err := a.storage.Upload(ctx, info.Path, objectPath); err != nil {
			return nil, fmt.Errorf("failed to upload export: %w", err)
		}
		log.Printf("Export uploaded: object=%s", objectPath)
	}
	return info, nil
}
