package transform

import (
	"github.com/dtrimarco/groupcast/pkg/types"
)

// Classifier maps an event type to a monetary value via a fixed
// decision table. Classification is pure and per-row: it looks only at
// the row's own event_type, never at the row's group. Types outside the
// table (login, the whole level_<n> family, anything unknown) fall
// through to the default value deterministically.
type Classifier struct {
	values       map[string]float64
	defaultValue float64
}

// DefaultValueTable returns the standard monetary value table.
func DefaultValueTable() map[string]float64 {
	return map[string]float64{
		types.EventTypeBuyCoins: 1.00,
		types.EventTypeMegapack: 10.00,
	}
}

// NewClassifier creates a classifier with the given value table. A nil
// table means the default table. The map is copied; later mutation of
// the argument does not affect the classifier.
func NewClassifier(values map[string]float64) *Classifier {
	if values == nil {
		values = DefaultValueTable()
	}
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &Classifier{values: cp, defaultValue: 0.0}
}

// Classify returns the monetary value for a single event type.
func (c *Classifier) Classify(eventType string) float64 {
	if v, ok := c.values[eventType]; ok {
		return v
	}
	return c.defaultValue
}

// Apply classifies every event independently, producing one value per
// input row in input order.
func (c *Classifier) Apply(events []types.Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = c.Classify(e.EventType)
	}
	return out
}
