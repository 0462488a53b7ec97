// Package report builds results tables and their CSV exports.
package report

import (
	"io"
	"strings"
)

// Table is a header row plus data rows of already formatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// WriteCSV writes every cell double-quoted with embedded quotes doubled,
// cells separated by "," and rows by "\n". The header row comes first and
// no newline follows the last row.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, csvLine(t.Headers)); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(w, "\n"+csvLine(row)); err != nil {
			return err
		}
	}
	return nil
}

// CSV returns t encoded as WriteCSV does.
func (t Table) CSV() string {
	b := new(strings.Builder)
	_ = WriteCSV(b, t)
	return b.String()
}

func csvLine(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
