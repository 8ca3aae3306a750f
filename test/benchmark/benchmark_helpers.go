package benchmark

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/dtrimarco/groupcast/internal/dataset"
	"github.com/dtrimarco/groupcast/internal/storage"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// benchEvents generates a deterministic synthetic dataset with roughly
// events-per-user * users rows.
func benchEvents(users, eventsPerUser int) []types.Event {
	cfg := dataset.GeneratorConfig{
		Seed:         1,
		Users:        users,
		MinEvents:    eventsPerUser,
		MaxEvents:    eventsPerUser,
		Start:        time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		BuyRate:      0.1,
		MegapackRate: 0.02,
	}
	return dataset.NewGenerator(cfg).Generate()
}

// getBenchmarkStorage returns a storage backend for benchmarks.
// It respects GROUPCAST_STORAGE_TYPE=s3 from .env or the environment;
// otherwise it uses local storage in a temp dir.
func getBenchmarkStorage(b *testing.B, benchName string) (storage.ObjectStorage, func()) {
	b.Helper()

	// Try loading .env from project root (../../.env relative to test/benchmark)
	_ = godotenv.Load("../../.env")

	if os.Getenv("GROUPCAST_STORAGE_TYPE") == "s3" {
		bucket := os.Getenv("GROUPCAST_S3_BUCKET")
		if bucket == "" {
			b.Skip("GROUPCAST_S3_BUCKET not set; skipping S3 benchmark")
		}
		cfg := storage.DefaultS3Config()
		if v := os.Getenv("GROUPCAST_S3_REGION"); v != "" {
			cfg.Region = v
		}
		if v := os.Getenv("GROUPCAST_S3_ENDPOINT"); v != "" {
			cfg.Endpoint = v
			cfg.UsePathStyle = true
		}
		store, err := storage.NewS3Storage(context.Background(), bucket, cfg)
		if err != nil {
			b.Fatalf("failed to create S3 storage: %v", err)
		}
		return store, func() {}
	}

	dir, err := os.MkdirTemp("", fmt.Sprintf("groupcast-bench-%s-*", benchName))
	if err != nil {
		b.Fatalf("failed to create temp dir: %v", err)
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		os.RemoveAll(dir)
		b.Fatalf("failed to create local storage: %v", err)
	}
	return store, func() { os.RemoveAll(dir) }
}
