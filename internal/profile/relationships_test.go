package profile

import (
	"math"
	"testing"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

func TestDetectForeignKeyCandidate(t *testing.T) {
	// order_id values are a strict subset of id values.
	ids := dataset.NewNumericColumn("id", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)
	refs := dataset.NewNumericColumn("order_id", []float64{1, 2, 3, 4, 5, 1, 2, 3, 4, 5}, nil)
	tbl, err := dataset.NewTable(ids, refs)
	if err != nil {
		t.Fatal(err)
	}

	rels := NewRelationshipDetector(nil).Detect(tbl)
	var fk *Relationship
	for i := range rels {
		if rels[i].Type == RelPotentialForeignKey && rels[i].Source == "order_id" {
			fk = &rels[i]
		}
	}
	if fk == nil {
		t.Fatal("expected order_id → id foreign-key candidate")
	}
	if fk.Target != "id" {
		t.Errorf("target = %s, want id", fk.Target)
	}
	// 5 distinct over 10 distinct
	if !almostEqual(*fk.Confidence, 50) {
		t.Errorf("confidence = %v, want 50", *fk.Confidence)
	}
}

func TestDetectSkipsLowCardinalityTextSources(t *testing.T) {
	labels := dataset.NewTextColumn("status", []string{"open", "closed", "open", "closed"})
	all := dataset.NewTextColumn("all_statuses", []string{"open", "closed", "pending", "open"})
	tbl, _ := dataset.NewTable(labels, all)

	for _, rel := range NewRelationshipDetector(nil).Detect(tbl) {
		if rel.Type == RelPotentialForeignKey && rel.Source == "status" {
			t.Fatal("low-cardinality text column must not be a key source")
		}
	}
}

func TestDetectStrongCorrelation(t *testing.T) {
	x := dataset.NewNumericColumn("qty", []float64{1, 2, 3, 4, 5}, nil)
	y := dataset.NewNumericColumn("total", []float64{10, 20, 30, 40, 50}, nil)
	z := dataset.NewNumericColumn("noise", []float64{4, -1, 7, 0, 3}, nil)
	tbl, _ := dataset.NewTable(x, y, z)

	rels := NewRelationshipDetector(nil).Detect(tbl)
	var corr *Relationship
	for i := range rels {
		if rels[i].Type == RelCorrelation && rels[i].Source == "qty" && rels[i].Target == "total" {
			corr = &rels[i]
		}
	}
	if corr == nil {
		t.Fatal("expected qty↔total correlation")
	}
	if math.Abs(*corr.Coefficient-1) > 1e-9 {
		t.Errorf("coefficient = %v, want 1", *corr.Coefficient)
	}
	if corr.Direction != "positive" {
		t.Errorf("direction = %s, want positive", corr.Direction)
	}
}

func TestPearsonDegenerate(t *testing.T) {
	constant := dataset.NewNumericColumn("c", []float64{5, 5, 5}, nil)
	varying := dataset.NewNumericColumn("v", []float64{1, 2, 3}, nil)
	if _, ok := pearson(constant, varying); ok {
		t.Error("constant column should not correlate")
	}
}
