// Package main implements the groupcast binary: load a mobile-game
// event dataset, run grouped transforms over it, and optionally export
// the enriched table to SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dtrimarco/groupcast/internal/app"
	"github.com/dtrimarco/groupcast/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configFile  string
		dataDir     string
		datasetPath string
		datasetObj  string
		keyColumn   string
		aggregate   string
		valueColumn string
		previewRows int
		doExport    bool
		generate    bool
		seed        int64
		noCache     bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for caches, downloads, and exports")
	flag.StringVar(&datasetPath, "dataset", "", "Local CSV dataset path")
	flag.StringVar(&datasetObj, "dataset-object", "", "Object storage path to a CSV dataset")
	flag.StringVar(&keyColumn, "key", "", "Grouping key column (default user_id)")
	flag.StringVar(&aggregate, "aggregate", "", "Reduce aggregate: COUNT, SUM, MIN, MAX, AVG")
	flag.StringVar(&valueColumn, "value", "", "Value column for SUM/MIN/MAX/AVG")
	flag.IntVar(&previewRows, "preview", 0, "Number of table rows to preview")
	flag.BoolVar(&doExport, "export", false, "Export the enriched table to SQLite")
	flag.BoolVar(&generate, "generate", false, "Generate a synthetic dataset instead of loading one")
	flag.Int64Var(&seed, "seed", 0, "Seed for the synthetic generator")
	flag.BoolVar(&noCache, "no-cache", false, "Disable the summary cache")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Groupcast - Grouped Transforms Over Mobile-Game Event Tables\n\n")
		fmt.Fprintf(os.Stderr, "Usage: groupcast [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  groupcast --dataset events.csv\n")
		fmt.Fprintf(os.Stderr, "  groupcast --dataset events.csv --aggregate SUM --value lat\n")
		fmt.Fprintf(os.Stderr, "  groupcast --generate --seed 42 --export\n")
		fmt.Fprintf(os.Stderr, "  groupcast --config /etc/groupcast/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GROUPCAST_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  GROUPCAST_DATASET_PATH   Local CSV dataset path\n")
		fmt.Fprintf(os.Stderr, "  GROUPCAST_AGGREGATE      Reduce aggregate (COUNT, SUM, MIN, MAX, AVG)\n")
		fmt.Fprintf(os.Stderr, "  GROUPCAST_STORAGE_TYPE   Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  GROUPCAST_S3_BUCKET      S3 bucket for datasets and exports\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("groupcast version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Pick up a local .env before reading the environment
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, dataDir, datasetPath, datasetObj, keyColumn, aggregate, valueColumn, previewRows, noCache)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	printBanner(cfg)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	res, err := application.Run(context.Background(), app.RunOptions{
		Export:      doExport,
		Generate:    generate,
		Seed:        seed,
		PreviewRows: previewRows,
	})
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	log.Printf("Done: %d rows, %d groups in %s", res.Rows, res.Groups, res.Elapsed)
	if res.Export != nil {
		log.Printf("Export: %s", res.Export.Path)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, datasetPath, datasetObj, keyColumn, aggregate, valueColumn string, previewRows int, noCache bool) (*config.Config, error) {
	var cfg *config.Config
	var err error

	// Start with defaults or load from file
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// Apply environment variables
	config.LoadFromEnv(cfg)

	// Apply command line flags (highest priority)
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if datasetObj != "" {
		cfg.Dataset.Object = datasetObj
	}
	if keyColumn != "" {
		cfg.Transform.KeyColumn = keyColumn
	}
	if aggregate != "" {
		cfg.Transform.Aggregate = aggregate
	}
	if valueColumn != "" {
		cfg.Transform.ValueColumn = valueColumn
	}
	if previewRows > 0 {
		cfg.Transform.PreviewRows = previewRows
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

// printBanner prints the startup banner with configuration summary.
func printBanner(cfg *config.Config) {
	log.Printf("╔═══════════════════════════════════════════════════════════╗")
	log.Printf("║                      GROUPCAST                            ║")
	log.Printf("║      Grouped Transforms Over Game Event Tables            ║")
	log.Printf("╚═══════════════════════════════════════════════════════════╝")
	log.Printf("")
	log.Printf("Configuration:")
	log.Printf("  Data Dir:  %s", cfg.DataDir)
	log.Printf("  Storage:   %s", cfg.Storage.Type)
	log.Printf("  Key:       %s", cfg.Transform.KeyColumn)
	log.Printf("  Aggregate: %s", cfg.Transform.Aggregate)
	if cfg.Transform.ValueColumn != "" {
		log.Printf("  Value:     %s", cfg.Transform.ValueColumn)
	}
	log.Printf("  Cache:     %v", cfg.Cache.Enabled)
	log.Printf("")
}
