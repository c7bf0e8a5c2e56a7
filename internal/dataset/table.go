package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTime:
		return "datetime"
	default:
		return "categorical"
	}
}

// Column is one named, typed column. Exactly one of the value slices is
// populated depending on Kind; null marks missing cells. Columns are
// treated as read-only once built — analysis steps that need a cleaned
// variant materialize a derived column instead of mutating in place.
type Column struct {
	Name string
	Kind Kind

	nums  []float64
	times []time.Time
	text  []string
	null  []bool
}

// NewNumericColumn builds a numeric column. null may be nil for fully
// populated columns.
func NewNumericColumn(name string, vals []float64, null []bool) *Column {
	return &Column{Name: name, Kind: KindNumeric, nums: vals, null: normalizeNulls(null, len(vals))}
}

// NewTimeColumn builds a temporal column.
func NewTimeColumn(name string, vals []time.Time, null []bool) *Column {
	return &Column{Name: name, Kind: KindTime, times: vals, null: normalizeNulls(null, len(vals))}
}

// NewTextColumn builds a text/categorical column. Empty strings count as null.
func NewTextColumn(name string, vals []string) *Column {
	null := make([]bool, len(vals))
	for i, v := range vals {
		if strings.TrimSpace(v) == "" {
			null[i] = true
		}
	}
	return &Column{Name: name, Kind: KindText, text: vals, null: null}
}

func normalizeNulls(null []bool, n int) []bool {
	if null == nil {
		return make([]bool, n)
	}
	return null
}

func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.nums)
	case KindTime:
		return len(c.times)
	default:
		return len(c.text)
	}
}

func (c *Column) IsNull(i int) bool { return c.null[i] }

// Float returns the numeric value at row i. Only valid for KindNumeric.
func (c *Column) Float(i int) float64 { return c.nums[i] }

// Time returns the temporal value at row i. Only valid for KindTime.
func (c *Column) Time(i int) time.Time { return c.times[i] }

// Value renders the cell at row i in canonical string form regardless of kind.
func (c *Column) Value(i int) string {
	if c.null[i] {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	case KindTime:
		return c.times[i].Format("2006-01-02")
	default:
		return c.text[i]
	}
}

func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

func (c *Column) NonNullCount() int { return c.Len() - c.NullCount() }

// DistinctValues returns the set of non-null values in canonical string form.
func (c *Column) DistinctValues() map[string]struct{} {
	out := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.null[i] {
			continue
		}
		out[c.Value(i)] = struct{}{}
	}
	return out
}

func (c *Column) DistinctCount() int { return len(c.DistinctValues()) }

// Floats returns the non-null numeric values restricted to rows (all rows
// when rows is nil).
func (c *Column) Floats(rows []int) []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	var out []float64
	if rows == nil {
		for i, v := range c.nums {
			if !c.null[i] {
				out = append(out, v)
			}
		}
		return out
	}
	for _, i := range rows {
		if !c.null[i] {
			out = append(out, c.nums[i])
		}
	}
	return out
}

var currencyCleaner = regexp.MustCompile(`[\$₹£€,]`)

// CleanNumeric derives a numeric column from a text column by stripping
// currency symbols and thousands separators. Unparseable cells become null.
// Returns the derived column and how many non-null cells parsed; the
// receiver is never modified. Numeric columns pass through unchanged.
func (c *Column) CleanNumeric() (*Column, int) {
	if c.Kind == KindNumeric {
		return c, c.NonNullCount()
	}
	n := c.Len()
	nums := make([]float64, n)
	null := make([]bool, n)
	parsed := 0
	for i := 0; i < n; i++ {
		if c.null[i] {
			null[i] = true
			continue
		}
		raw := currencyCleaner.ReplaceAllString(strings.TrimSpace(c.Value(i)), "")
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			null[i] = true
			continue
		}
		nums[i] = f
		parsed++
	}
	return NewNumericColumn(c.Name, nums, null), parsed
}

// Table is an ordered set of equal-length columns. It is immutable for the
// duration of a request; callers subset it by passing row index slices to
// the analysis steps.
type Table struct {
	cols   []*Column
	byName map[string]int
}

// NewTable builds a table and enforces equal row counts across columns.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, byName: make(map[string]int, len(cols))}
	rows := -1
	for i, c := range cols {
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), rows)
		}
		t.byName[c.Name] = i
	}
	return t, nil
}

func (t *Table) RowCount() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

func (t *Table) ColumnCount() int { return len(t.cols) }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column { return t.cols }

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Names returns column names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// AllRows returns the identity row subset 0..n-1.
func (t *Table) AllRows() []int {
	rows := make([]int, t.RowCount())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Row renders one row as a name→value map, nulls as empty strings.
func (t *Table) Row(i int) map[string]string {
	out := make(map[string]string, len(t.cols))
	for _, c := range t.cols {
		out[c.Name] = c.Value(i)
	}
	return out
}

// NullCells counts null cells across the whole table.
func (t *Table) NullCells() int {
	n := 0
	for _, c := range t.cols {
		n += c.NullCount()
	}
	return n
}
