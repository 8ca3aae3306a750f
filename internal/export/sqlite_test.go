package export

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dtrimarco/groupcast/internal/transform"
	"github.com/dtrimarco/groupcast/pkg/types"
)

func enrichedTable(t *testing.T) *types.Table {
	t.Helper()
	base := time.Date(2019, 1, 1, 13, 1, 1, 0, time.UTC)
	tbl := types.NewTable([]types.Event{
		{UserID: 5000, EventTime: base, Lat: 42.1, Lon: -71.0, EventType: "login"},
		{UserID: 5000, EventTime: base.Add(time.Minute), Lat: 42.1, Lon: -71.0, EventType: "level_1"},
		{UserID: 5001, EventTime: base.Add(2 * time.Minute), Lat: 37.7, Lon: -122.4, EventType: "buy_coins"},
	})
	if err := transform.Enrich(tbl, nil); err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestWriter_Write(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(t.TempDir())

	info, err := w.Write(ctx, enrichedTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if info.RowCount != 3 {
		t.Fatalf("expected 3 rows exported, got %d", info.RowCount)
	}
	if info.SizeBytes == 0 {
		t.Fatal("export file should not be empty")
	}

	db, err := sql.Open("sqlite3", info.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int64
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows in database, got %d", count)
	}

	// Derived columns survive the export with their group semantics.
	var eventCount int64
	var eventValue float64
	row := db.QueryRow("SELECT event_count, event_value FROM events WHERE event_type = 'buy_coins'")
	if err := row.Scan(&eventCount, &eventValue); err != nil {
		t.Fatal(err)
	}
	if eventCount != 1 || eventValue != 1.00 {
		t.Fatalf("expected (1, 1.00), got (%d, %v)", eventCount, eventValue)
	}
}

func TestWriter_WriteWithoutDerivedColumns(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(t.TempDir())

	tbl := types.NewTable([]types.Event{
		{UserID: 1, EventTime: time.Unix(0, 0).UTC(), EventType: "login"},
	})
	info, err := w.Write(ctx, tbl)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite3", info.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var eventCount sql.NullInt64
	if err := db.QueryRow("SELECT event_count FROM events").Scan(&eventCount); err != nil {
		t.Fatal(err)
	}
	if eventCount.Valid {
		t.Fatal("unattached derived column should export as NULL")
	}
}

func TestWriter_UniqueExportIDs(t *testing.T) {
	ctx := context.Background()
	w := NewWriter(t.TempDir())
	tbl := enrichedTable(t)

	first, err := w.Write(ctx, tbl)
	if err != nil {
		t.Fatal(err)
	}
	second, err := w.Write(ctx, tbl)
	if err != nil {
		t.Fatal(err)
	}
	if first.ExportID == second.ExportID {
		t.Fatal("export IDs should be unique per run")
	}
	if first.Path == second.Path {
		t.Fatal("export paths should be unique per run")
	}
}
