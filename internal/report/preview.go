// Package report renders human-readable previews of event tables and
// reduce summaries.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dtrimarco/groupcast/internal/transform"
	"github.com/dtrimarco/groupcast/pkg/types"
)

// timeLayout matches the dataset CSV format for display consistency.
const timeLayout = "2006-01-02 15:04:05"

// Preview writes the first n rows of a table, including derived
// columns, as an aligned text table. n <= 0 means all rows.
func Preview(w io.Writer, tbl *types.Table, n int) error {
	if n <= 0 || n > tbl.Len() {
		n = tbl.Len()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	cols := tbl.Columns()

	for i, col := range cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, string(col))
	}
	fmt.Fprintln(tw)

	for i := 0; i < n; i++ {
		for j, col := range cols {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			v, err := tbl.Value(i, col)
			if err != nil {
				return fmt.Errorf("preview row %d: %w", i, err)
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}

	if n < tbl.Len() {
		fmt.Fprintf(tw, "... %d more rows\n", tbl.Len()-n)
	}
	return tw.Flush()
}

// Summaries writes reduce output as an aligned two-column table.
func Summaries(w io.Writer, key types.Column, summaries []transform.GroupSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tvalue\trows\n", string(key))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", formatValue(s.Key), formatValue(s.Value), s.Rows)
	}
	return tw.Flush()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<NULL>"
	case time.Time:
		return val.Format(timeLayout)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
