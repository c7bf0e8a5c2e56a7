package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/nlquery"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/profile"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/similarity"
)

func newTestAnalyzer() *Analyzer {
	scorer := similarity.NewScorer(nil, 0, nil)
	profiler := profile.NewProfiler(nil, 0)
	index := profile.NewSemanticColumnIndex(nil, 0)
	classifier := nlquery.NewClassifier(nil, scorer, nil)
	resolver := nlquery.NewEntityResolver(nil, nil)
	executor := nlquery.NewExecutor(index, nlquery.NewTimeRangeFilter(), resolver, nil)
	return NewAnalyzer(profiler, classifier, executor, resolver, nil)
}

func ledger(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("Party Name", []string{"Nikhil Ceramics", "Acme Traders", "Beta Works"}),
		dataset.NewNumericColumn("Tax Amt", []float64{100, 200, 300}, nil),
		dataset.NewNumericColumn("Bill Amount", []float64{1000, 2000, 3000}, nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestAskTaxTotal(t *testing.T) {
	a := newTestAnalyzer()
	payload := a.Ask(context.Background(), ledger(t), "Total tax collected")

	cls := payload["query_classification"].(map[string]any)
	if cls["query_type"] != "tax_calculation" {
		t.Fatalf("query type = %v, want tax_calculation", cls["query_type"])
	}

	analysis := payload["specific_analysis"].(map[string]any)
	if analysis["success"] != true {
		t.Fatalf("analysis failed: %v", analysis["error"])
	}
	result := analysis["result"].(map[string]any)
	taxTotal := result["total_tax_amt"].(map[string]any)
	if taxTotal["total"] != 600.0 {
		t.Errorf("tax total = %v, want 600", taxTotal["total"])
	}
	if taxTotal["currency"] != "₹" {
		t.Errorf("currency = %v, want ₹", taxTotal["currency"])
	}
}

func TestAskUnrelatedPrompt(t *testing.T) {
	a := newTestAnalyzer()
	payload := a.Ask(context.Background(), ledger(t), "please bake some sourdough bread")

	analysis := payload["specific_analysis"].(map[string]any)
	if analysis["success"] != false {
		t.Error("unrelated prompt should not produce an analysis")
	}
	cls := payload["query_classification"].(map[string]any)
	if cls["query_type"] != nlquery.IntentUnknown {
		t.Errorf("query type = %v, want %q", cls["query_type"], nlquery.IntentUnknown)
	}
}

func TestAskPayloadShape(t *testing.T) {
	a := newTestAnalyzer()
	payload := a.Ask(context.Background(), ledger(t), "Show basic statistics of the dataset")

	for _, key := range []string{"request_id", "query_classification", "column_types", "numeric_stats", "date_columns", "specific_analysis"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
	types := payload["column_types"].(map[string]any)
	if types["Tax Amt"] != "numeric" || types["Party Name"] != "categorical" {
		t.Errorf("column types = %v", types)
	}

	// Whole payload must be marshalable.
	if _, err := json.Marshal(payload); err != nil {
		t.Fatalf("payload not JSON-safe: %v", err)
	}
}

func TestIsDatasetRelated(t *testing.T) {
	tbl := ledger(t)
	if !isDatasetRelated("what is the bill amount", tbl) {
		t.Error("column mention should qualify")
	}
	if !isDatasetRelated("summarize the data", tbl) {
		t.Error("data keyword should qualify")
	}
	if isDatasetRelated("please bake some sourdough bread", tbl) {
		t.Error("off-topic prompt should not qualify")
	}
}
