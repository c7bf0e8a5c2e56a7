package profile

import (
	"fmt"
	"testing"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

func classify(t *testing.T, name string, values []string) string {
	t.Helper()
	return NewSemanticTypeClassifier().Classify(dataset.NewTextColumn(name, values))
}

func TestClassifySemanticTypes(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{"email", []string{"a@b.com", "x.y@z.org", "team@example.co"}, "email"},
		{"url", []string{"https://example.com", "http://a.b/c", "https://x.io/y?z=1"}, "url"},
		{"numeric_id", []string{"1001", "1002", "1003"}, "numeric_id"},
		{"date_string", []string{"2023-01-05", "2023/02/10", "5/3/2023"}, "date_string"},
		{"name", []string{"Asha Rao", "Nikhil Shah", "Maya Iyer"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(t, tc.name, tc.values); got != tc.want {
				t.Errorf("Classify(%v) = %q, want %q", tc.values, got, tc.want)
			}
		})
	}
}

func TestClassifyFallbacks(t *testing.T) {
	if got := classify(t, "flag", []string{"Y?", "N!", "Y?"}); got != "code" {
		t.Errorf("short values = %q, want code", got)
	}

	repeats := []string{"north region!", "south region!", "east region!", "north region!"}
	if got := classify(t, "region", repeats); got != "category" {
		t.Errorf("low-cardinality values = %q, want category", got)
	}

	var long []string
	for i := 0; i < 30; i++ {
		long = append(long, fmt.Sprintf("free text value number %d!", i))
	}
	if got := classify(t, "notes", long); got != "text" {
		t.Errorf("high-cardinality values = %q, want text", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	var values []string
	for i := 0; i < 250; i++ {
		values = append(values, fmt.Sprintf("%d", 1000+i))
	}
	first := classify(t, "ids", values)
	for i := 0; i < 5; i++ {
		if got := classify(t, "ids", values); got != first {
			t.Fatalf("classification changed between runs: %q vs %q", first, got)
		}
	}
	if first != "numeric_id" {
		t.Errorf("Classify = %q, want numeric_id", first)
	}
}
