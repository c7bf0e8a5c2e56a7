package nlquery

import (
	"reflect"
	"testing"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

func ledgerTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("Party Name", []string{"Nikhil Ceramics", "Acme Traders", "Nikhil Ceramics", "Beta Works"}),
		dataset.NewTextColumn("Item Amount", []string{"₹1000", "₹2,000", "₹3000", "₹500"}),
		dataset.NewNumericColumn("Tax Amt", []float64{100, 200, 300, 50}, nil),
		dataset.NewTextColumn("City", []string{"Pune", "Delhi", "Pune", "Mumbai"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestResolveTaxQueryDetection(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	tbl := ledgerTable(t)

	refs := r.Resolve("Total tax collected", tbl)
	if !refs.TaxQuery {
		t.Error("prompt with a tax term should flag TaxQuery")
	}
	if refs.TaxColumn != "Tax Amt" {
		t.Errorf("tax column = %q, want Tax Amt", refs.TaxColumn)
	}

	refs = r.Resolve("show all cities", tbl)
	if refs.TaxQuery {
		t.Error("non-tax prompt flagged TaxQuery")
	}

	// A tax term without an amount term is not a tax query.
	refs = r.Resolve("is this purchase taxable?", tbl)
	if refs.TaxQuery {
		t.Error("tax term alone flagged TaxQuery")
	}
	if refs.TaxColumn != "" {
		t.Errorf("tax column = %q, want empty outside a tax query", refs.TaxColumn)
	}
}

func TestResolveMentionedValues(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	refs := r.Resolve("total sales in mumbai", ledgerTable(t))

	if !reflect.DeepEqual(refs.ColumnValues["City"], []string{"Mumbai"}) {
		t.Errorf("City values = %v, want [Mumbai]", refs.ColumnValues["City"])
	}
	if refs.Filters["City"] != "Mumbai" {
		t.Errorf("City filter = %q, want Mumbai", refs.Filters["City"])
	}
	if refs.PrimaryFilter != "City" {
		t.Errorf("primary filter = %q, want City", refs.PrimaryFilter)
	}
}

func TestResolveFilterPriority(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	refs := r.Resolve("total sales for acme traders in mumbai", ledgerTable(t))

	if refs.Filters["Party Name"] != "Acme Traders" {
		t.Errorf("Party Name filter = %q, want Acme Traders", refs.Filters["Party Name"])
	}
	if refs.Filters["City"] != "Mumbai" {
		t.Errorf("City filter = %q, want Mumbai", refs.Filters["City"])
	}
	// Name-priority columns outrank others when both matched a value.
	if refs.PrimaryFilter != "Party Name" {
		t.Errorf("primary filter = %q, want Party Name", refs.PrimaryFilter)
	}
}

func TestResolveNoValueNoFilter(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	refs := r.Resolve("show me the totals", ledgerTable(t))
	if len(refs.Filters) != 0 || refs.PrimaryFilter != "" {
		t.Errorf("filters without a matched value: %v / %q", refs.Filters, refs.PrimaryFilter)
	}
}

func TestResolveEntityKeywordValues(t *testing.T) {
	tbl, err := dataset.NewTable(
		dataset.NewTextColumn("Party Name", []string{"Nikhil Ceramics Pvt Ltd", "Acme Traders"}),
		dataset.NewNumericColumn("Tax Amt", []float64{100, 200}, nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	r := NewEntityResolver(nil, nil)
	refs := r.Resolve("total tax for nikhil ceramics", tbl)

	// The cell never appears verbatim in the prompt; the entity keywords
	// carry the match.
	if !reflect.DeepEqual(refs.ColumnValues["Party Name"], []string{"Nikhil Ceramics Pvt Ltd"}) {
		t.Errorf("Party Name values = %v, want [Nikhil Ceramics Pvt Ltd]", refs.ColumnValues["Party Name"])
	}
	total, ok := refs.EntityTotals["entity_tax_amt_total"]
	if !ok {
		t.Fatalf("missing entity_tax_amt_total key; have %v", keysOf(refs.EntityTotals))
	}
	if total.Total != 100 {
		t.Errorf("entity tax total = %v, want 100", total.Total)
	}
}

func TestResolveEntityTotals(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	tbl := ledgerTable(t)

	refs := r.Resolve("What is the total tax paid by nikhil ceramics?", tbl)
	if !reflect.DeepEqual(refs.SpecificEntities, []string{"nikhil ceramics"}) {
		t.Fatalf("entities = %v, want [nikhil ceramics]", refs.SpecificEntities)
	}

	total, ok := refs.EntityTotals["entity_tax_amt_total"]
	if !ok {
		t.Fatalf("missing entity_tax_amt_total key; have %v", keysOf(refs.EntityTotals))
	}
	// rows 0 and 2 belong to the entity
	if total.Total != 400 {
		t.Errorf("entity tax total = %v, want 400", total.Total)
	}
	if total.RowCount != 2 {
		t.Errorf("row count = %d, want 2", total.RowCount)
	}
	if total.Currency != "₹" {
		t.Errorf("currency = %q, want ₹", total.Currency)
	}

	legacy, ok := refs.EntityTotals["entity_tax_total"]
	if !ok {
		t.Fatal("missing legacy entity_tax_total mirror")
	}
	if legacy.Total != total.Total {
		t.Error("legacy mirror diverged from the per-column total")
	}

	item, ok := refs.EntityTotals["entity_item_amount_total"]
	if !ok {
		t.Fatalf("missing entity_item_amount_total key; have %v", keysOf(refs.EntityTotals))
	}
	if item.Total != 4000 {
		t.Errorf("entity item total = %v, want 4000", item.Total)
	}
	if refs.ItemColumn != "Item Amount" {
		t.Errorf("item column = %q, want Item Amount", refs.ItemColumn)
	}
}

func TestResolveEntityTotalsRequireTaxQuery(t *testing.T) {
	r := NewEntityResolver(nil, nil)
	refs := r.Resolve("show recent orders from nikhil ceramics", ledgerTable(t))

	if !reflect.DeepEqual(refs.SpecificEntities, []string{"nikhil ceramics"}) {
		t.Fatalf("entities = %v, want [nikhil ceramics]", refs.SpecificEntities)
	}
	if len(refs.EntityTotals) != 0 {
		t.Errorf("non-tax prompt produced entity totals: %v", keysOf(refs.EntityTotals))
	}
}

func TestResolveEntityRequiresAllKeywords(t *testing.T) {
	r := NewEntityResolver([]Entity{{Name: "nikhil ceramics", Keywords: []string{"nikhil", "ceramic"}}}, nil)
	refs := r.Resolve("tax paid by nikhil", ledgerTable(t))
	if len(refs.SpecificEntities) != 0 {
		t.Errorf("partial keyword mention matched entity: %v", refs.SpecificEntities)
	}
}

func TestColumnTotals(t *testing.T) {
	tbl := ledgerTable(t)
	totals := ColumnTotals(tbl)

	tax, ok := totals["total_tax_amt"]
	if !ok {
		t.Fatalf("missing total_tax_amt key; have %v", keysOf(totals))
	}
	if tax.Total != 650 {
		t.Errorf("tax total = %v, want 650", tax.Total)
	}
	if tax.AvgPerRow == nil || *tax.AvgPerRow != 162.5 {
		t.Errorf("avg per row = %v, want 162.5", tax.AvgPerRow)
	}

	item, ok := totals["total_item_amount"]
	if !ok {
		t.Fatalf("missing total_item_amount key; have %v", keysOf(totals))
	}
	if item.Total != 6500 {
		t.Errorf("item total = %v, want 6500", item.Total)
	}
}

func TestColumnTotalsFallback(t *testing.T) {
	tbl, _ := dataset.NewTable(
		dataset.NewTextColumn("Product", []string{"A", "B"}),
		dataset.NewNumericColumn("Price", []float64{10, 20}, nil),
	)
	totals := ColumnTotals(tbl)
	price, ok := totals["total_price"]
	if !ok {
		t.Fatalf("fallback missed Price; have %v", keysOf(totals))
	}
	if price.Total != 30 {
		t.Errorf("price total = %v, want 30", price.Total)
	}
}

func TestNormalizeColumnKey(t *testing.T) {
	cases := map[string]string{
		"Tax Amt":     "tax_amt",
		"Item Amount": "item_amount",
		"G.S.T. Amt":  "gst_amt",
	}
	for in, want := range cases {
		if got := normalizeColumnKey(in); got != want {
			t.Errorf("normalizeColumnKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func keysOf(m map[string]AmountTotal) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
