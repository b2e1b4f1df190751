// Package export produces the downloadable report files: a styled xlsx sheet
// and a paginated PDF. Both builders run entirely client-side of the
// platform, never mutate their input, and produce a valid header-only
// document for an empty dataset.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Column describes one export column: the visible header, the row key it
// reads, and its display width (Excel column units; PDF widths are scaled
// proportionally).
type Column struct {
	Header string
	Key    string
	Width  float64
}

// Row maps column keys to display values.
type Row map[string]string

// Filename builds the deterministic download name: <ReportName>_<ISODate>.<ext>.
func Filename(report, ext string, at time.Time) string {
	name := strings.ReplaceAll(strings.TrimSpace(report), " ", "")
	return fmt.Sprintf("%s_%s.%s", name, at.UTC().Format("2006-01-02"), ext)
}

// recoverTo converts a builder panic into an error so a broken assembly can
// never take the calling view down.
func recoverTo(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("export assembly failed: %v", r)
	}
}
