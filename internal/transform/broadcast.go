package transform

import (
	"fmt"

	"github.com/dtrimarco/groupcast/internal/errors"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// Broadcast partitions events by the key column, reduces each group
// with the aggregate, and replicates every group's result across its
// member rows. The output has exactly one value per input row, aligned
// to input order; all rows of one group carry the same value.
func Broadcast(events []types.Event, key types.Column, kind AggregateKind, value types.Column) ([]interface{}, error) {
	if err := validateGrouping(key, kind, value); err != nil {
		return nil, err
	}

	groups := make(map[string]*Accumulator)
	rowKeys := make([]string, len(events))

	for i, e := range events {
		kv, err := key.Value(e)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("extract key %q from row %d", key, i), err)
		}
		ks := groupKeyString(kv)
		rowKeys[i] = ks

		acc, exists := groups[ks]
		if !exists {
			acc = NewAccumulator(kind)
			groups[ks] = acc
		}

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

	// Finalize once per group, then replicate per row.
	results := make(map[string]interface{}, len(groups))
	for ks, acc := range groups {
		results[ks] = acc.Result()
	}

	out := make([]interface{}, len(events))
	for i, ks := range rowKeys {
		out[i] = results[ks]
	}
	return out, nil
}

// BroadcastCount broadcasts each group's cardinality to its member
// rows, returning one int64 per input row.
func BroadcastCount(events []types.Event, key types.Column) ([]int64, error) {
	vals, err := Broadcast(events, key, AggCount, "")
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = v.(int64)
	}
	return out, nil
}
