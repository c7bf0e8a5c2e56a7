package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

var dateNameTerms = []string{"date", "time", "day", "month", "year"}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LoadCSV parses CSV content into a Table. Header names are trimmed. Column
// kinds are inferred per column: every non-null cell parses as a number →
// numeric; a date-suggesting name with ≥80% parseable cells → temporal;
// anything else stays text.
func LoadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable()
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	raw := make([][]string, ncol)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			raw[j] = append(raw[j], v)
		}
	}

	cols := make([]*Column, ncol)
	for j := 0; j < ncol; j++ {
		cols[j] = inferColumn(strings.TrimSpace(header[j]), raw[j])
	}
	return NewTable(cols...)
}

// LoadCSVFile loads a CSV file from disk.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

func inferColumn(name string, vals []string) *Column {
	nonNull := 0
	numeric := 0
	for _, v := range vals {
		if v == "" {
			continue
		}
		nonNull++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
	}

	if nonNull > 0 && numeric == nonNull {
		nums := make([]float64, len(vals))
		null := make([]bool, len(vals))
		for i, v := range vals {
			if v == "" {
				null[i] = true
				continue
			}
			nums[i], _ = strconv.ParseFloat(v, 64)
		}
		return NewNumericColumn(name, nums, null)
	}

	if nonNull > 0 && nameSuggestsDate(name) {
		times := make([]time.Time, len(vals))
		null := make([]bool, len(vals))
		parsed := 0
		for i, v := range vals {
			if v == "" {
				null[i] = true
				continue
			}
			t, ok := parseTimeMaybe(v)
			if !ok {
				null[i] = true
				continue
			}
			times[i] = t
			parsed++
		}
		if float64(parsed) >= 0.8*float64(nonNull) {
			return NewTimeColumn(name, times, null)
		}
	}

	return NewTextColumn(name, vals)
}

// CleanTime derives a temporal column from a text column. Every non-null
// cell must parse as a date; otherwise ok is false and the receiver should
// be used as-is. Temporal columns pass through unchanged.
func (c *Column) CleanTime() (*Column, bool) {
	if c.Kind == KindTime {
		return c, true
	}
	if c.Kind != KindText {
		return c, false
	}
	n := c.Len()
	times := make([]time.Time, n)
	null := make([]bool, n)
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			null[i] = true
			continue
		}
		t, ok := parseTimeMaybe(c.Value(i))
		if !ok {
			return c, false
		}
		times[i] = t
	}
	return NewTimeColumn(c.Name, times, null), true
}

func nameSuggestsDate(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range dateNameTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
