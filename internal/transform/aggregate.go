// Package transform provides grouped reduce, grouped broadcast, and
// elementwise classification over event tables.
//
// Reduce and broadcast are deliberately two distinct operations: reduce
// collapses each group to one output value, broadcast preserves the
// input's cardinality and replicates each group's value across its
// member rows. The two contracts must never be conflated.
package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/dtrimarco/groupcast/pkg/types"
)

// AggregateKind represents the per-group reduction function.
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

// ParseAggregateKind converts a function name string to AggregateKind.
func ParseAggregateKind(name string) (AggregateKind, error) {
	switch strings.ToUpper(name) {
	case "COUNT":
		return AggCount, nil
	case "SUM":
		return AggSum, nil
	case "MIN":
		return AggMin, nil
	case "MAX":
		return AggMax, nil
	case "AVG":
		return AggAvg, nil
	default:
		return 0, fmt.Errorf("unknown aggregate function: %s", name)
	}
}

// String returns the canonical upper-case name of the aggregate.
func (k AggregateKind) String() string {
	switch k {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggAvg:
		return "AVG"
	}
	return fmt.Sprintf("AggregateKind(%d)", int(k))
}

// Accumulator holds the running state of one group's reduction. For AVG,
// both Sum and Count are tracked so the average is exact regardless of
// accumulation order.
type Accumulator struct {
	Kind  AggregateKind
	Count int64       // row count (used by COUNT and AVG)
	Sum   float64     // running sum (used by SUM and AVG)
	Min   interface{} // current minimum (nil if no rows)
	Max   interface{} // current maximum (nil if no rows)
	IsSet bool        // true once at least one value has been accumulated
}

// NewAccumulator creates a new empty accumulator of the given kind.
func NewAccumulator(kind AggregateKind) *Accumulator {
	return &Accumulator{Kind: kind}
}

// Accumulate adds a single value to the accumulator. Nil values are
// ignored by every aggregate; the event schema never produces them, but
// the contract is kept nil-tolerant.
func (a *Accumulator) Accumulate(value interface{}) {
	if value == nil {
		return
	}

	switch a.Kind {
	case AggCount:
		a.Count++
		a.IsSet = true

	case AggSum:
		if f, ok := toFloat(value); ok {
			a.Sum += f
			a.Count++
			a.IsSet = true
		}

	case AggMin:
		if !a.IsSet || compareValues(value, a.Min) < 0 {
			a.Min = value
			a.IsSet = true
		}
		a.Count++

	case AggMax:
		if !a.IsSet || compareValues(value, a.Max) > 0 {
			a.Max = value
			a.IsSet = true
		}
		a.Count++

	case AggAvg:
		if f, ok := toFloat(value); ok {
			a.Sum += f
			a.Count++
			a.IsSet = true
		}
	}
}

// Result returns the final value of the accumulator.
func (a *Accumulator) Result() interface{} {
	if !a.IsSet {
		if a.Kind == AggCount {
			return int64(0)
		}
		return nil
	}

	switch a.Kind {
	case AggCount:
		return a.Count
	case AggSum:
		return a.Sum
	case AggMin:
		return a.Min
	case AggMax:
		return a.Max
	case AggAvg:
		if a.Count == 0 {
			return nil
		}
		return a.Sum / float64(a.Count)
	}
	return nil
}

// aggValue extracts a column's value from an event for aggregation.
// Timestamps are surfaced as Unix nanoseconds so MIN/MAX compare them
// numerically rather than lexically.
func aggValue(e types.Event, col types.Column) (interface{}, error) {
	v, err := col.Value(e)
	if err != nil {
		return nil, err
	}
	if t, ok := v.(time.Time); ok {
		return t.UnixNano(), nil
	}
	return v, nil
}

// toFloat converts a value to float64 for numeric aggregation.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	}
	return 0, false
}

// compareValues compares two values for MIN/MAX aggregation.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	// Numeric comparison
	fa, aOk := toFloat(a)
	fb, bOk := toFloat(b)
	if aOk && bOk {
		if fa < fb {
			return -1
		} else if fa > fb {
			return 1
		}
		return 0
	}

	// String comparison
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb)
	}

	// Fallback: compare as strings
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}
