package rvtools

import (
	"sort"
	"strings"
)

// Row maps a column name to its raw cell value.
type Row map[string]string

// Get returns the first non-blank value among the given column spellings.
func (r Row) Get(columns ...string) string {
	for _, c := range columns {
		if v := strings.TrimSpace(r[c]); v != "" {
			return v
		}
	}
	return ""
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	columns := make([]string, 0, len(r))
	for c := range r {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// Table is one decoded sheet or csv file. Label identifies where it came from.
type Table struct {
	Label string
	Rows  []Row
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
