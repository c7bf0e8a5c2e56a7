package nlquery

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

var (
	taxTerms    = []string{"tax", "taxable", "gst", "vat", "cgst", "sgst", "igst"}
	amountTerms = []string{"amount", "amt", "total", "sum", "value"}

	// filterPriority orders the column-name fragments that identify an
	// entity filter column, most specific first.
	filterPriority = []string{"party name", "customer", "client", "account", "name"}

	// fallbackAmountTerms widen the amount-column search when no column
	// name carries an explicit amount term.
	fallbackAmountTerms = []string{"amount", "value", "price", "total", "sum"}
)

// minParseShare is the fraction of non-null cells that must parse as
// numbers before a column is totaled.
const minParseShare = 0.5

// Currency is the symbol attached to monetary totals.
const Currency = "₹"

// Entity is a named business entity with the keywords that identify it in
// both prompts and cell values.
type Entity struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultEntities is the built-in named-entity list.
func DefaultEntities() []Entity {
	return []Entity{
		{Name: "nikhil ceramics", Keywords: []string{"nikhil", "ceramic"}},
	}
}

// EntitiesFromYAML parses a named-entity override.
func EntitiesFromYAML(data []byte) ([]Entity, error) {
	var out []Entity
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse entity list: %w", err)
	}
	return out, nil
}

// AmountTotal is one aggregated monetary column, scoped to an entity's rows
// or to the whole table.
type AmountTotal struct {
	Entity    string   `json:"entity,omitempty"`
	Column    string   `json:"column"`
	Total     float64  `json:"total"`
	AvgPerRow *float64 `json:"avg_per_row,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	RowCount  int      `json:"row_count"`
	Currency  string   `json:"currency"`
}

// EntityReferences is everything the resolver learned from one prompt
// against one table. ColumnValues records every text-column value the
// prompt mentions; Filters maps each such column to its chosen value.
type EntityReferences struct {
	ColumnValues     map[string][]string    `json:"column_values,omitempty"`
	Filters          map[string]string      `json:"filters,omitempty"`
	PrimaryFilter    string                 `json:"primary_filter,omitempty"`
	TaxQuery         bool                   `json:"tax_query"`
	TaxColumn        string                 `json:"tax_column,omitempty"`
	ItemColumn       string                 `json:"item_column,omitempty"`
	BillColumn       string                 `json:"bill_column,omitempty"`
	SpecificEntities []string               `json:"specific_entities,omitempty"`
	EntityTotals     map[string]AmountTotal `json:"entity_totals,omitempty"`
}

// EntityResolver pulls entity references out of a prompt and scopes
// monetary totals to the matching rows.
type EntityResolver struct {
	entities []Entity
	log      *zap.Logger
}

func NewEntityResolver(entities []Entity, log *zap.Logger) *EntityResolver {
	if entities == nil {
		entities = DefaultEntities()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityResolver{entities: entities, log: log}
}

// Resolve walks the prompt against the table: detects tax queries, matches
// known entities, records every column value the prompt mentions, picks the
// filter columns, and totals the amount families over each entity's rows
// when the prompt is a tax query.
func (r *EntityResolver) Resolve(prompt string, t *dataset.Table) EntityReferences {
	promptLower := strings.ToLower(prompt)
	refs := EntityReferences{}

	// A tax query needs both a tax term and an amount term; "is this
	// taxable?" alone is not one.
	refs.TaxQuery = containsAny(promptLower, taxTerms) && containsAny(promptLower, amountTerms)
	if refs.TaxQuery {
		refs.TaxColumn = findColumn(t, func(name string) bool {
			return containsAny(name, taxTerms) && containsAny(name, amountTerms)
		})
	}

	var matched []Entity
	for _, entity := range r.entities {
		if containsAll(promptLower, entity.Keywords) {
			matched = append(matched, entity)
			refs.SpecificEntities = append(refs.SpecificEntities, entity.Name)
		}
	}

	refs.ColumnValues = mentionedValues(promptLower, t, matched)
	refs.Filters, refs.PrimaryFilter = chooseFilters(t, refs.ColumnValues)

	if refs.TaxQuery {
		for _, entity := range matched {
			rows := r.entityRows(t, refs.PrimaryFilter, entity)
			if len(rows) == 0 {
				r.log.Debug("entity mentioned but no matching rows",
					zap.String("entity", entity.Name), zap.String("filter", refs.PrimaryFilter))
				continue
			}
			r.totalAmountFamilies(t, entity, rows, &refs)
		}
	}
	return refs
}

// entityRows returns the rows whose filter-column value contains every
// keyword of the entity. With no filter column every text column is tried.
func (r *EntityResolver) entityRows(t *dataset.Table, filter string, entity Entity) []int {
	var cols []*dataset.Column
	if filter != "" {
		if c, ok := t.Column(filter); ok {
			cols = append(cols, c)
		}
	} else {
		for _, c := range t.Columns() {
			if c.Kind == dataset.KindText {
				cols = append(cols, c)
			}
		}
	}
	var rows []int
	seen := map[int]struct{}{}
	for _, c := range cols {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			if _, dup := seen[i]; dup {
				continue
			}
			if containsAll(strings.ToLower(c.Value(i)), entity.Keywords) {
				rows = append(rows, i)
				seen[i] = struct{}{}
			}
		}
	}
	return rows
}

// totalAmountFamilies totals the tax, item-amount, and bill-amount column
// families over the entity's rows.
func (r *EntityResolver) totalAmountFamilies(t *dataset.Table, entity Entity, rows []int, refs *EntityReferences) {
	for _, c := range t.Columns() {
		name := strings.ToLower(c.Name)
		isTax := containsAny(name, taxTerms) && strings.Contains(name, "amt")
		isItem := strings.Contains(name, "item") && strings.Contains(name, "amount")
		isBill := strings.Contains(name, "bill") && strings.Contains(name, "amount")
		if !isTax && !isItem && !isBill {
			continue
		}
		total, ok := sumOverRows(c, rows)
		if !ok {
			continue
		}
		if refs.EntityTotals == nil {
			refs.EntityTotals = map[string]AmountTotal{}
		}
		total.Entity = entity.Name
		key := normalizeColumnKey(c.Name)
		refs.EntityTotals["entity_"+key+"_total"] = total
		switch {
		case isTax:
			// Legacy key kept for payload consumers predating the
			// per-column naming.
			if strings.Contains(key, "tax") && strings.Contains(key, "amt") {
				refs.EntityTotals["entity_tax_total"] = total
			}
		case isItem:
			refs.ItemColumn = c.Name
		case isBill:
			refs.BillColumn = c.Name
		}
	}
}

// ColumnTotals totals every monetary column of the table: tax columns plus
// amount columns, falling back to generically named value columns when
// neither is present. Keys are "total_" plus the normalized column name.
func ColumnTotals(t *dataset.Table) map[string]AmountTotal {
	var cols []*dataset.Column
	for _, c := range t.Columns() {
		name := strings.ToLower(c.Name)
		if containsAny(name, taxTerms) || strings.Contains(name, "amt") || strings.Contains(name, "amount") {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		for _, c := range t.Columns() {
			if containsAny(strings.ToLower(c.Name), fallbackAmountTerms) {
				cols = append(cols, c)
			}
		}
	}

	out := map[string]AmountTotal{}
	rows := t.AllRows()
	for _, c := range cols {
		total, ok := sumOverRows(c, rows)
		if !ok {
			continue
		}
		out["total_"+normalizeColumnKey(c.Name)] = total
	}
	return out
}

// sumOverRows cleans the column to numeric and totals it over rows. The
// column qualifies only when at least half of its non-null cells parse.
func sumOverRows(c *dataset.Column, rows []int) (AmountTotal, bool) {
	clean, parsed := c.CleanNumeric()
	if nonNull := c.NonNullCount(); nonNull == 0 || float64(parsed) < minParseShare*float64(nonNull) {
		return AmountTotal{}, false
	}
	vals := clean.Floats(rows)
	if len(vals) == 0 {
		return AmountTotal{}, false
	}
	var sum float64
	min, max := vals[0], vals[0]
	for _, v := range vals {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	avg := sum / float64(len(vals))
	return AmountTotal{
		Column:    c.Name,
		Total:     sum,
		AvgPerRow: &avg,
		Min:       &min,
		Max:       &max,
		RowCount:  len(vals),
		Currency:  Currency,
	}, true
}

// mentionedValues scans every text column for distinct non-null values
// (longer than three characters) that the prompt literally contains, or
// that carry all keywords of an entity the prompt names.
func mentionedValues(promptLower string, t *dataset.Table, entities []Entity) map[string][]string {
	var out map[string][]string
	for _, c := range t.Columns() {
		if c.Kind != dataset.KindText {
			continue
		}
		var hits []string
		matched := map[string]struct{}{}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v := c.Value(i)
			lower := strings.ToLower(v)
			if len([]rune(lower)) <= 3 {
				continue
			}
			if _, dup := matched[lower]; dup {
				continue
			}
			if strings.Contains(promptLower, lower) || matchesEntity(lower, entities) {
				hits = append(hits, v)
				matched[lower] = struct{}{}
			}
		}
		if len(hits) > 0 {
			if out == nil {
				out = map[string][]string{}
			}
			out[c.Name] = hits
		}
	}
	return out
}

func matchesEntity(lowerValue string, entities []Entity) bool {
	for _, e := range entities {
		if containsAll(lowerValue, e.Keywords) {
			return true
		}
	}
	return false
}

// chooseFilters maps each column that produced a value match to its first
// matched value, and picks the primary filter among them: priority-named
// columns first, then table column order.
func chooseFilters(t *dataset.Table, values map[string][]string) (map[string]string, string) {
	if len(values) == 0 {
		return nil, ""
	}
	filters := make(map[string]string, len(values))
	for col, vals := range values {
		filters[col] = vals[0]
	}
	for _, term := range filterPriority {
		for _, c := range t.Columns() {
			if _, ok := filters[c.Name]; ok && strings.Contains(strings.ToLower(c.Name), term) {
				return filters, c.Name
			}
		}
	}
	for _, c := range t.Columns() {
		if _, ok := filters[c.Name]; ok {
			return filters, c.Name
		}
	}
	return filters, ""
}

// normalizeColumnKey lowercases a column name and makes it key-safe:
// spaces become underscores, dots disappear.
func normalizeColumnKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, ".", "")
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func containsAll(s string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(s, term) {
			return false
		}
	}
	return true
}

func findColumn(t *dataset.Table, match func(lowerName string) bool) string {
	for _, c := range t.Columns() {
		if match(strings.ToLower(c.Name)) {
			return c.Name
		}
	}
	return ""
}
