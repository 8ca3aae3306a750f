package transform

import (
	"fmt"

	"github.com/dtrimarco/groupcast/internal/errors"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// GroupSummary is one group's reduced result: the grouping-key value,
// the aggregate's output, and the group's cardinality.
type GroupSummary struct {
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
	Rows  int64       `json:"rows"`
}

// Reduce partitions events by the key column and applies the aggregate
// to each group independently, producing exactly one summary per
// distinct key value. Output order is first-seen order of the key; this
// ordering is part of the contract and is tested.
//
// For AggCount the value column may be empty (count rows). Any failure
// on a single group aborts the whole operation.
func Reduce(events []types.Event, key types.Column, kind AggregateKind, value types.Column) ([]GroupSummary, error) {
	if err := validateGrouping(key, kind, value); err != nil {
		return nil, err
	}

	groups := make(map[string]*Accumulator)
	keyValues := make(map[string]interface{})
	counts := make(map[string]int64)
	var order []string

	for i, e := range events {
		kv, err := key.Value(e)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("extract key %q from row %d", key, i), err)
		}
		ks := groupKeyString(kv)

		acc, exists := groups[ks]
		if !exists {
			acc = NewAccumulator(kind)
			groups[ks] = acc
			keyValues[ks] = kv
			order = append(order, ks)
		}
		counts[ks]++

		if kind == AggCount && value == "" {
			acc.Accumulate(int64(1))
			continue
		}
		av, err := aggValue(e, value)
		if err != nil {
			return nil, errors.NewTransformError(errors.CodeReduceFailed,
				fmt.Sprintf("extract value %q from row %d: %v", value, i, err))
		}
		acc.Accumulate(av)
	}

	summaries := make([]GroupSummary, 0, len(order))
	for _, ks := range order {
		summaries = append(summaries, GroupSummary{
			Key:   keyValues[ks],
			Value: groups[ks].Result(),
			Rows:  counts[ks],
		})
	}
	return summaries, nil
}

// ReduceCount is the common case: one row count per distinct key value.
func ReduceCount(events []types.Event, key types.Column) ([]GroupSummary, error) {
	return Reduce(events, key, AggCount, "")
}

// validateGrouping checks a grouping request before any work happens.
// Referencing a column outside the schema is a usage error, never
// silent misbehavior.
func validateGrouping(key types.Column, kind AggregateKind, value types.Column) error {
	if !isSourceColumn(key) {
		return errors.NewValidationError(errors.CodeUnknownColumn,
			fmt.Sprintf("grouping key %q is not a source column", key))
	}
	if kind == AggCount && value == "" {
		return nil
	}
	if !isSourceColumn(value) {
		return errors.NewValidationError(errors.CodeUnknownColumn,
			fmt.Sprintf("value column %q is not a source column", value))
	}
	if (kind == AggSum || kind == AggAvg) && !value.Numeric() {
		return errors.NewValidationError(errors.CodeColumnNotNumeric,
			fmt.Sprintf("aggregate %s requires a numeric column, got %q", kind, value))
	}
	return nil
}

func isSourceColumn(col types.Column) bool {
	for _, src := range types.SourceColumns() {
		if col == src {
			return true
		}
	}
	return false
}

// groupKeyString produces a deterministic map key from a grouping value.
func groupKeyString(v interface{}) string {
	if v == nil {
		return "<NULL>"
	}
	return fmt.Sprintf("%v", v)
}
