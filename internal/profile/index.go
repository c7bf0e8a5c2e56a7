package profile

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

// CategoryKeywords maps one business category to the name fragments that
// identify its columns. Keyword order is part of the contract only in that
// any match qualifies; column order decides result order.
type CategoryKeywords struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// DefaultCategories is the built-in business-category keyword table.
func DefaultCategories() []CategoryKeywords {
	return []CategoryKeywords{
		{"amount", []string{"amount", "total", "sum", "price", "cost", "value", "sales", "revenue"}},
		{"quantity", []string{"quantity", "count", "number", "units", "volume", "stock"}},
		{"date", []string{"date", "time", "day", "month", "year", "created", "updated"}},
		{"location", []string{"city", "country", "state", "region", "address", "location", "area"}},
		{"product", []string{"product", "item", "sku", "model", "name", "category"}},
		{"customer", []string{"customer", "client", "user", "buyer", "account"}},
		{"tax", []string{"tax", "vat", "gst", "duty", "levy"}},
	}
}

// CategoriesFromYAML parses a keyword table override.
func CategoriesFromYAML(data []byte) ([]CategoryKeywords, error) {
	var out []CategoryKeywords
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse category keywords: %w", err)
	}
	return out, nil
}

// SemanticColumnIndex resolves a business category to the table columns
// that plausibly hold it, memoized per (fingerprint, category).
type SemanticColumnIndex struct {
	categories []CategoryKeywords
	memo       *lru.Cache[string, []string]
}

// DefaultIndexMemoSize bounds the category-lookup memo.
const DefaultIndexMemoSize = 128

func NewSemanticColumnIndex(categories []CategoryKeywords, memoSize int) *SemanticColumnIndex {
	if categories == nil {
		categories = DefaultCategories()
	}
	if memoSize <= 0 {
		memoSize = DefaultIndexMemoSize
	}
	memo, _ := lru.New[string, []string](memoSize)
	return &SemanticColumnIndex{categories: categories, memo: memo}
}

// Columns returns matching column names: first every column whose lowercase
// name contains a category keyword, in column order; then every remaining
// column whose profiled semantic type equals the category. Unknown
// categories yield nil.
func (idx *SemanticColumnIndex) Columns(t *dataset.Table, prof *DatasetProfile, category string) []string {
	key := prof.Fingerprint + "|" + category
	if cached, ok := idx.memo.Get(key); ok {
		return cached
	}

	var keywords []string
	found := false
	for _, c := range idx.categories {
		if c.Category == category {
			keywords = c.Keywords
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var matches []string
	matched := map[string]bool{}
	for _, name := range t.Names() {
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches = append(matches, name)
				matched[name] = true
				break
			}
		}
	}
	for _, name := range t.Names() {
		if !matched[name] && prof.SemanticType(name) == category {
			matches = append(matches, name)
		}
	}

	idx.memo.Add(key, matches)
	return matches
}
