package profile

import (
	"math"
	"testing"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNumericOutlierFences(t *testing.T) {
	col := dataset.NewNumericColumn("values", []float64{1, 2, 3, 4, 100}, nil)
	stats := NewColumnProfiler(nil).Profile(col)

	ns := stats.Numeric
	if ns == nil {
		t.Fatal("numeric stats missing")
	}
	if !almostEqual(*ns.Q1, 2) || !almostEqual(*ns.Q3, 4) {
		t.Fatalf("quartiles = (%v, %v), want (2, 4)", *ns.Q1, *ns.Q3)
	}
	if !almostEqual(*ns.Outliers.LowerBound, -1) || !almostEqual(*ns.Outliers.UpperBound, 7) {
		t.Fatalf("fences = (%v, %v), want (-1, 7)", *ns.Outliers.LowerBound, *ns.Outliers.UpperBound)
	}
	if ns.Outliers.Count != 1 {
		t.Errorf("outlier count = %d, want 1", ns.Outliers.Count)
	}
	if !almostEqual(ns.Outliers.Percentage, 20) {
		t.Errorf("outlier percentage = %v, want 20", ns.Outliers.Percentage)
	}
}

func TestNumericStatsBasics(t *testing.T) {
	col := dataset.NewNumericColumn("values", []float64{1, 2, 3, 4, 100}, nil)
	ns := NewColumnProfiler(nil).Profile(col).Numeric

	if !almostEqual(*ns.Min, 1) || !almostEqual(*ns.Max, 100) {
		t.Errorf("min/max = (%v, %v), want (1, 100)", *ns.Min, *ns.Max)
	}
	if !almostEqual(*ns.Mean, 22) {
		t.Errorf("mean = %v, want 22", *ns.Mean)
	}
	if !almostEqual(*ns.Median, 3) {
		t.Errorf("median = %v, want 3", *ns.Median)
	}
}

func TestNumericStatsEmptyColumn(t *testing.T) {
	col := dataset.NewNumericColumn("empty", []float64{0, 0}, []bool{true, true})
	ns := NewColumnProfiler(nil).Profile(col).Numeric
	if ns == nil {
		t.Fatal("numeric stats missing")
	}
	if ns.Min != nil || ns.Mean != nil {
		t.Error("aggregates of an all-null column should be nil, not NaN")
	}
}

func TestTemporalWeekdayHistogram(t *testing.T) {
	// 2023-03-06 is a Monday.
	days := []string{"2023-03-06", "2023-03-07", "2023-03-12"}
	text := dataset.NewTextColumn("Order Date", days)
	col, ok := text.CleanTime()
	if !ok {
		t.Fatal("CleanTime failed")
	}
	ts := NewColumnProfiler(nil).Profile(col).Temporal
	if ts == nil {
		t.Fatal("temporal stats missing")
	}
	if ts.MinDate != "2023-03-06" || ts.MaxDate != "2023-03-12" {
		t.Errorf("range = %s..%s", ts.MinDate, ts.MaxDate)
	}
	if *ts.RangeDays != 6 {
		t.Errorf("range days = %d, want 6", *ts.RangeDays)
	}
	if ts.ByWeekday[0] != 1 || ts.ByWeekday[1] != 1 || ts.ByWeekday[6] != 1 {
		t.Errorf("weekday histogram = %v, want Monday=0 indexing", ts.ByWeekday)
	}
}

func TestCategoricalTopValues(t *testing.T) {
	col := dataset.NewTextColumn("city", []string{"Pune", "Pune", "Delhi", "Mumbai", "Delhi", "Pune"})
	cs := NewColumnProfiler(nil).Profile(col).Categorical
	if cs == nil {
		t.Fatal("categorical stats missing")
	}
	if cs.TopValues[0].Value != "Pune" || cs.TopValues[0].Count != 3 {
		t.Errorf("top value = %+v, want Pune x3", cs.TopValues[0])
	}
	// ties break alphabetically
	if cs.TopValues[1].Value != "Delhi" {
		t.Errorf("second value = %s, want Delhi", cs.TopValues[1].Value)
	}
	if cs.IsUniqueIdentifier {
		t.Error("repeated values must not look like an identifier")
	}
}
