// Package export writes enriched event tables to single-file SQLite
// databases. Export is a separate, explicit operation: the analysis
// pipeline itself never writes source data back.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	gcerrors "github.com/dtrimarco/groupcast/internal/errors"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// ExportInfo contains metadata about a completed export.
type ExportInfo struct {
	ExportID  string
	Path      string
	RowCount  int64
	SizeBytes int64
	CreatedAt time.Time
}

// Writer exports enriched tables to SQLite files.
type Writer struct {
	outputDir string
}

// NewWriter creates an export writer targeting outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Write exports a table, including any attached derived columns, to a
// fresh SQLite file. Derived columns that were never attached export as
// NULL. The whole export runs in one transaction.
func (w *Writer) Write(ctx context.Context, tbl *types.Table) (*ExportInfo, error) {
	exportID := fmt.Sprintf("events:%s", uuid.New().String()[:8])
	createdAt := time.Now()

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, gcerrors.NewExportError("create output directory", err)
	}

	path := filepath.Clean(filepath.Join(w.outputDir, fmt.Sprintf("%s.sqlite", exportID)))

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, gcerrors.NewExportError("create SQLite database", err)
	}
	defer db.Close()

	createTableSQL := `
		CREATE TABLE events (
			user_id INTEGER NOT NULL,
			event_timestamp INTEGER NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			event_type TEXT NOT NULL,
			event_count INTEGER,
			event_value REAL
		)
	`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, gcerrors.NewExportError("create events table", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE INDEX idx_events_user ON events(user_id)"); err != nil {
		return nil, gcerrors.NewExportError("create index", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, gcerrors.NewExportError("begin transaction", err)
	}

	insertSQL := `INSERT INTO events (user_id, event_timestamp, lat, lon, event_type, event_count, event_value) VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return nil, gcerrors.NewExportError("prepare insert statement", err)
	}
	defer stmt.Close()

	counts, hasCounts := tbl.IntColumn(types.ColEventCount)
	values, hasValues := tbl.FloatColumn(types.ColEventValue)

	for i, e := range tbl.Events() {
		var count interface{}
		if hasCounts {
			count = counts[i]
		}
		var value interface{}
		if hasValues {
			value = values[i]
		}

		if _, err := stmt.ExecContext(ctx, e.UserID, e.EventTime.UnixNano(), e.Lat, e.Lon, e.EventType, count, value); err != nil {
			tx.Rollback()
			return nil, gcerrors.NewExportError(fmt.Sprintf("insert row %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, gcerrors.NewExportError("commit", err)
	}
	if err := db.Close(); err != nil {
		return nil, gcerrors.NewExportError("close database", err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, gcerrors.NewExportError("stat SQLite file", err)
	}

	return &ExportInfo{
		ExportID:  exportID,
		Path:      path,
		RowCount:  int64(tbl.Len()),
		SizeBytes: fileInfo.Size(),
		CreatedAt: createdAt,
	}, nil
}
