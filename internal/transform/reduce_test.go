package transform

import (
	"errors"
	"testing"
	"time"

	gcerrors "github.com/dtrimarco/groupcast/internal/errors"
	"github.com/dtrimarco/groupcast/pkg/types"
)

func testEvents() []types.Event {
	base := time.Date(2019, 1, 1, 13, 1, 1, 0, time.UTC)
	return []types.Event{
		{UserID: 5000, EventTime: base, Lat: 42.1, Lon: -71.0, EventType: "login"},
		{UserID: 5000, EventTime: base.Add(time.Minute), Lat: 42.2, Lon: -71.1, EventType: "level_1"},
		{UserID: 5001, EventTime: base.Add(2 * time.Minute), Lat: 37.7, Lon: -122.4, EventType: "buy_coins"},
	}
}

func TestReduce_CountByUser(t *testing.T) {
	summaries, err := ReduceCount(testEvents(), types.ColUserID)
	if err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(summaries))
	}
	expected := map[int64]int64{5000: 2, 5001: 1}
	for _, s := range summaries {
		uid := s.Key.(int64)
		if s.Value.(int64) != expected[uid] {
			t.Fatalf("user %d: expected count %d, got %v", uid, expected[uid], s.Value)
		}
	}
}

func TestReduce_FirstSeenOrder(t *testing.T) {
	events := []types.Event{
		{UserID: 9, EventType: "login"},
		{UserID: 3, EventType: "login"},
		{UserID: 9, EventType: "level_1"},
		{UserID: 1, EventType: "login"},
	}
	summaries, err := ReduceCount(events, types.ColUserID)
	if err != nil {
		t.Fatal(err)
	}

	// Output order is first appearance of the key, not sorted key order.
	for i, expected := range []int64{9, 3, 1} {
		if summaries[i].Key.(int64) != expected {
			t.Fatalf("group %d: expected key %d, got %v", i, expected, summaries[i].Key)
		}
	}
}

func TestReduce_NoDuplicateKeys(t *testing.T) {
	summaries, err := ReduceCount(testEvents(), types.ColUserID)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[interface{}]bool)
	for _, s := range summaries {
		if seen[s.Key] {
			t.Fatalf("duplicate key %v in reduce output", s.Key)
		}
		seen[s.Key] = true
	}
}

func TestReduce_SumLatByUser(t *testing.T) {
	summaries, err := Reduce(testEvents(), types.ColUserID, AggSum, types.ColLat)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range summaries {
		switch s.Key.(int64) {
		case 5000:
			if got := s.Value.(float64); got < 84.29 || got > 84.31 {
				t.Fatalf("user 5000: expected lat sum ~84.3, got %v", got)
			}
		case 5001:
			if got := s.Value.(float64); got != 37.7 {
				t.Fatalf("user 5001: expected lat sum 37.7, got %v", got)
			}
		}
	}
}

func TestReduce_MinMaxEventType(t *testing.T) {
	summaries, err := Reduce(testEvents(), types.ColUserID, AggMin, types.ColEventType)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range summaries {
		if s.Key.(int64) == 5000 && s.Value.(string) != "level_1" {
			t.Fatalf("user 5000: expected min event type level_1, got %v", s.Value)
		}
	}
}

func TestReduce_MaxTimestampIsNumeric(t *testing.T) {
	events := testEvents()
	summaries, err := Reduce(events, types.ColUserID, AggMax, types.ColEventTime)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range summaries {
		if s.Key.(int64) == 5000 {
			if s.Value.(int64) != events[1].EventTime.UnixNano() {
				t.Fatalf("user 5000: expected max timestamp of second event, got %v", s.Value)
			}
		}
	}
}

func TestReduce_GroupRowsTracked(t *testing.T) {
	summaries, err := Reduce(testEvents(), types.ColUserID, AggAvg, types.ColLat)
	if err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, s := range summaries {
		total += s.Rows
	}
	if total != 3 {
		t.Fatalf("group cardinalities should sum to row count 3, got %d", total)
	}
}

func TestReduce_UnknownKeyColumn(t *testing.T) {
	_, err := ReduceCount(testEvents(), "score")
	if err == nil {
		t.Fatal("expected validation error for unknown key column")
	}
	if gcerrors.GetCode(err) != gcerrors.CodeUnknownColumn {
		t.Fatalf("expected UNKNOWN_COLUMN, got %v", err)
	}
}

func TestReduce_DerivedColumnIsUsageError(t *testing.T) {
	// Derived columns live on the table, not on events; selecting one
	// here must fail loudly instead of silently misbehaving.
	_, err := Reduce(testEvents(), types.ColUserID, AggSum, types.ColEventValue)
	if err == nil {
		t.Fatal("expected validation error for derived value column")
	}
	var ge *gcerrors.GroupcastError
	if !errors.As(err, &ge) || ge.Category != gcerrors.ErrCategoryValidation {
		t.Fatalf("expected VALIDATION error, got %v", err)
	}
}

func TestReduce_SumRequiresNumericColumn(t *testing.T) {
	_, err := Reduce(testEvents(), types.ColUserID, AggSum, types.ColEventType)
	if err == nil {
		t.Fatal("expected error for SUM over string column")
	}
	if gcerrors.GetCode(err) != gcerrors.CodeColumnNotNumeric {
		t.Fatalf("expected COLUMN_NOT_NUMERIC, got %v", err)
	}
}

func TestReduce_EmptyInput(t *testing.T) {
	summaries, err := ReduceCount(nil, types.ColUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no groups for empty input, got %d", len(summaries))
	}
}

func TestParseAggregateKind(t *testing.T) {
	for name, expected := range map[string]AggregateKind{
		"count": AggCount,
		"SUM":   AggSum,
		"Min":   AggMin,
		"max":   AggMax,
		"avg":   AggAvg,
	} {
		kind, err := ParseAggregateKind(name)
		if err != nil {
			t.Fatal(err)
		}
		if kind != expected {
			t.Fatalf("%s: expected %v, got %v", name, expected, kind)
		}
	}
	if _, err := ParseAggregateKind("median"); err == nil {
		t.Fatal("expected error for unknown aggregate")
	}
}
