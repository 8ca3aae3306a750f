// Package dataset loads, writes, and generates mobile-game event tables.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	gcerrors "github.com/dtrimarco/groupcast/internal/errors"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// TimeLayout is the primary timestamp format of event datasets.
// RFC3339 is accepted as a fallback.
const TimeLayout = "2006-01-02 15:04:05"

// Load reads an event table from a CSV file.
func Load(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gcerrors.NewDatasetError(gcerrors.CodeFileNotFound,
			fmt.Sprintf("open dataset %s", path), err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses an event table from CSV. The header row must match the
// source schema exactly (order and count); any mismatch fails the whole
// load with a clear message, as does a malformed record.
func Read(r io.Reader) (*types.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(types.SourceColumns())
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, gcerrors.NewDatasetError(gcerrors.CodeBadHeader, "dataset is empty", nil)
	}
	if err != nil {
		return nil, gcerrors.NewDatasetError(gcerrors.CodeBadHeader, "read header", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var events []types.Event
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, gcerrors.NewDatasetError(gcerrors.CodeBadRecord,
				fmt.Sprintf("line %d", line), err)
		}

		event, err := parseRecord(record)
		if err != nil {
			return nil, gcerrors.NewDatasetError(gcerrors.CodeBadRecord,
				fmt.Sprintf("line %d", line), err)
		}
		events = append(events, event)
	}

	return types.NewTable(events), nil
}

// WriteEvents writes events as CSV with the standard header. Used by
// the generator; the analysis pipeline itself never writes source data
// back.
func WriteEvents(w io.Writer, events []types.Event) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(types.SourceColumns()))
	for _, col := range types.SourceColumns() {
		header = append(header, string(col))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range events {
		record := []string{
			strconv.FormatInt(e.UserID, 10),
			e.EventTime.Format(TimeLayout),
			strconv.FormatFloat(e.Lat, 'f', -1, 64),
			strconv.FormatFloat(e.Lon, 'f', -1, 64),
			e.EventType,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func validateHeader(header []string) error {
	expected := types.SourceColumns()
	if len(header) != len(expected) {
		return gcerrors.NewDatasetError(gcerrors.CodeBadHeader,
			fmt.Sprintf("expected %d columns, got %d", len(expected), len(header)), nil)
	}
	for i, col := range expected {
		if strings.TrimSpace(header[i]) != string(col) {
			return gcerrors.NewDatasetError(gcerrors.CodeBadHeader,
				fmt.Sprintf("column %d: expected %q, got %q", i, col, strings.TrimSpace(header[i])), nil)
		}
	}
	return nil
}

func parseRecord(record []string) (types.Event, error) {
	var e types.Event

	userID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return e, fmt.Errorf("user_id: %w", err)
	}

	ts, err := parseTimestamp(strings.TrimSpace(record[1]))
	if err != nil {
		return e, fmt.Errorf("event_timestamp: %w", err)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return e, fmt.Errorf("lat: %w", err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return e, fmt.Errorf("lon: %w", err)
	}

	e.UserID = userID
	e.EventTime = ts
	e.Lat = lat
	e.Lon = lon
	e.EventType = strings.TrimSpace(record[4])
	return e, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
