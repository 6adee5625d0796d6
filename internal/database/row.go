package database

import (
	"strconv"
	"strings"
	"time"
)

// Row is one result row: column names in select order paired with the
// values the driver produced. Drivers disagree on representations (MySQL
// returns []byte for text over the text protocol, SQLite returns int64 and
// string), so the accessors normalize.
type Row struct {
	cols []string
	vals []any
}

// NewRow builds a Row from parallel column and value slices.
func NewRow(cols []string, vals []any) Row {
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			vals[i] = string(b)
		}
	}
	return Row{cols: cols, vals: vals}
}

// Columns returns the column names in select order.
func (r Row) Columns() []string { return r.cols }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Value returns the raw value of col and whether the column exists.
func (r Row) Value(col string) (any, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return nil, false
}

// IsNull reports whether col is missing or SQL NULL.
func (r Row) IsNull(col string) bool {
	v, ok := r.Value(col)
	return !ok || v == nil
}

// Map returns the row as a column→value map; order is lost.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		m[c] = r.vals[i]
	}
	return m
}

// Int64 returns col as an int64, or 0 when NULL or not numeric.
func (r Row) Int64(col string) int64 {
	v, _ := r.Value(col)
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case uint32:
		return int64(t)
	case float64:
		return int64(t)
	case bool:
		if t {
			return 1
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// Uint64 returns col as a uint64 id.
func (r Row) Uint64(col string) uint64 {
	if v, ok := r.Value(col); ok {
		if u, ok := v.(uint64); ok {
			return u
		}
	}
	n := r.Int64(col)
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// NullUint64 returns nil for NULL, otherwise a pointer to the id.
func (r Row) NullUint64(col string) *uint64 {
	if r.IsNull(col) {
		return nil
	}
	u := r.Uint64(col)
	return &u
}

// String returns col as text; NULL reads as "".
func (r Row) String(col string) string {
	v, _ := r.Value(col)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// NullString returns nil for NULL, otherwise a pointer to the text.
func (r Row) NullString(col string) *string {
	if r.IsNull(col) {
		return nil
	}
	s := r.String(col)
	return &s
}

// timeLayouts are the textual forms DATETIME values come back in.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

// Time returns col as a UTC time; NULL or unparsable values give the zero
// time.
func (r Row) Time(col string) time.Time {
	v, _ := r.Value(col)
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
	case int64:
		return time.Unix(t, 0).UTC()
	}
	return time.Time{}
}

// NullTime returns nil for NULL, otherwise a pointer to the UTC time.
func (r Row) NullTime(col string) *time.Time {
	if r.IsNull(col) {
		return nil
	}
	t := r.Time(col)
	return &t
}
