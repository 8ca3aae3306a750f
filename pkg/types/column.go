package types

import "fmt"

// Column names a column of the events table, including derived columns
// attached after load.
type Column string

const (
	// Source columns, in CSV header order.
	ColUserID    Column = "user_id"
	ColEventTime Column = "event_timestamp"
	ColLat       Column = "lat"
	ColLon       Column = "lon"
	ColEventType Column = "event_type"

	// Derived columns.
	ColEventCount Column = "event_count"
	ColEventValue Column = "event_value"
)

// SourceColumns lists the CSV source columns in header order.
func SourceColumns() []Column {
	return []Column{ColUserID, ColEventTime, ColLat, ColLon, ColEventType}
}

// ParseColumn validates a column name against the source schema.
func ParseColumn(name string) (Column, error) {
	switch Column(name) {
	case ColUserID, ColEventTime, ColLat, ColLon, ColEventType:
		return Column(name), nil
	case ColEventCount, ColEventValue:
		return Column(name), nil
	}
	return "", fmt.Errorf("unknown column: %q", name)
}

// Numeric reports whether the column carries a numeric value that
// SUM/MIN/MAX/AVG aggregates can consume. COUNT accepts any column.
func (c Column) Numeric() bool {
	switch c {
	case ColUserID, ColLat, ColLon, ColEventCount, ColEventValue:
		return true
	}
	return false
}

// Value extracts this column's value from an event. Derived columns are
// not stored on the event itself; asking for one returns an error.
func (c Column) Value(e Event) (interface{}, error) {
	switch c {
	case ColUserID:
		return e.UserID, nil
	case ColEventTime:
		return e.EventTime, nil
	case ColLat:
		return e.Lat, nil
	case ColLon:
		return e.Lon, nil
	case ColEventType:
		return e.EventType, nil
	}
	return nil, fmt.Errorf("column %q is not a source column", c)
}
