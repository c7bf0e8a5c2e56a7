package dataset

import (
	"fmt"
	"strings"
)

// ValidationError is the only hard failure the analysis core surfaces: the
// table itself is unusable. Everything downstream degrades instead.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dataset: %s", strings.Join(e.Problems, "; "))
}

// Validation holds non-fatal observations about a table.
type Validation struct {
	Warnings []string
}

// Validate checks that a table is structurally fit for analysis. It returns
// a *ValidationError when analysis must abort (empty table, fewer than 2
// rows) and collects warnings for degraded-but-usable shapes.
func Validate(t *Table) (*Validation, error) {
	if t == nil || t.ColumnCount() == 0 || t.RowCount() == 0 {
		return nil, &ValidationError{Problems: []string{"the dataset is empty"}}
	}
	if t.RowCount() < 2 {
		return nil, &ValidationError{Problems: []string{"the dataset contains too few rows for analysis"}}
	}

	v := &Validation{}
	if t.ColumnCount() < 2 {
		v.Warnings = append(v.Warnings, "the dataset contains only one column, which may limit analysis")
	}

	var highNull []string
	for _, c := range t.Columns() {
		if c.NullCount() > t.RowCount()/2 {
			highNull = append(highNull, c.Name)
		}
	}
	if len(highNull) > 0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("columns with more than 50%% missing values: %s", strings.Join(highNull, ", ")))
	}

	numeric := false
	for _, c := range t.Columns() {
		if c.Kind == KindNumeric {
			numeric = true
			break
		}
	}
	if !numeric {
		v.Warnings = append(v.Warnings, "no numeric columns found, which may limit quantitative analysis")
	}
	return v, nil
}
