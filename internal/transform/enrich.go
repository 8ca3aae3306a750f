package transform

import (
	"github.com/dtrimarco/groupcast/pkg/types"
)

// AttachEventCount broadcasts each user's event count across that
// user's rows and attaches it as the event_count column. Every row in a
// group carries the same count, equal to the group's cardinality.
func AttachEventCount(tbl *types.Table) error {
	counts, err := BroadcastCount(tbl.Events(), types.ColUserID)
	if err != nil {
		return err
	}
	return tbl.AttachInt(types.ColEventCount, counts)
}

// AttachEventValue classifies each row's event_type and attaches the
// result as the event_value column. Classification is idempotent, so
// reapplying it to an already-classified table just rewrites the same
// values.
func AttachEventValue(tbl *types.Table, c *Classifier) error {
	if c == nil {
		c = NewClassifier(nil)
	}
	values := c.Apply(tbl.Events())
	if _, ok := tbl.FloatColumn(types.ColEventValue); ok {
		return tbl.ReplaceFloat(types.ColEventValue, values)
	}
	return tbl.AttachFloat(types.ColEventValue, values)
}

// Enrich runs the full derivation pipeline over a table: event_count by
// broadcast, event_value by classification. Source columns are never
// modified.
func Enrich(tbl *types.Table, c *Classifier) error {
	if err := AttachEventCount(tbl); err != nil {
		return err
	}
	return AttachEventValue(tbl, c)
}
