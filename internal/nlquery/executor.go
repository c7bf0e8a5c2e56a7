package nlquery

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/profile"
)

const (
	topProductsLimit = 5
	topCitiesLimit   = 10
)

// Result is the outcome of executing one classified query.
type Result struct {
	QueryType string         `json:"query_type"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
}

// Executor runs a classified query against a table and its profile.
type Executor struct {
	index      *profile.SemanticColumnIndex
	timeFilter *TimeRangeFilter
	resolver   *EntityResolver
	log        *zap.Logger
}

func NewExecutor(index *profile.SemanticColumnIndex, timeFilter *TimeRangeFilter, resolver *EntityResolver, log *zap.Logger) *Executor {
	if index == nil {
		index = profile.NewSemanticColumnIndex(nil, 0)
	}
	if timeFilter == nil {
		timeFilter = NewTimeRangeFilter()
	}
	if resolver == nil {
		resolver = NewEntityResolver(nil, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{index: index, timeFilter: timeFilter, resolver: resolver, log: log}
}

// Execute dispatches on the query type. It never panics outward; a failure
// inside an analysis degrades to an unsuccessful result.
func (e *Executor) Execute(t *dataset.Table, prof *profile.DatasetProfile, prompt string, cls Classification) (res Result) {
	res.QueryType = cls.QueryType
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("query execution panicked", zap.String("query_type", cls.QueryType), zap.Any("panic", r))
			res = Result{QueryType: cls.QueryType, Success: false, Error: fmt.Sprintf("analysis failed: %v", r)}
		}
	}()

	switch cls.QueryType {
	case "highest_sales":
		return e.highestSales(t, prof, cls)
	case "top_products":
		return e.groupRanking(t, prof, cls, "product", "product_column", topProductsLimit)
	case "city_analysis":
		return e.groupRanking(t, prof, cls, "location", "city_column", topCitiesLimit)
	case "summary_statistics":
		return e.summaryStatistics(t, prof, cls)
	case "tax_calculation":
		return e.taxCalculation(t, prompt, cls)
	case "time_comparison", "trend_analysis", "product_insights":
		return Result{QueryType: cls.QueryType, Success: false,
			Error: fmt.Sprintf("%s analysis is not supported yet", cls.QueryType)}
	default:
		return Result{QueryType: IntentUnknown, Success: false,
			Error: "could not understand the question; try asking about totals, top products, or summary statistics"}
	}
}

// highestSales finds the maximum of the amount column, optionally narrowed
// by the prompt's time tokens, and returns the full row it occurs on.
func (e *Executor) highestSales(t *dataset.Table, prof *profile.DatasetProfile, cls Classification) Result {
	col := e.amountColumn(t, prof, cls.TargetColumn)
	if col == nil {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no numeric amount column found"}
	}
	rows := e.timeFilteredRows(t, prof, cls.TimeRange)

	best := -1
	bestVal := math.Inf(-1)
	for _, i := range rows {
		if col.IsNull(i) {
			continue
		}
		if v := col.Float(i); v > bestVal {
			bestVal = v
			best = i
		}
	}
	if best < 0 {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no rows matched the requested time range"}
	}
	return Result{QueryType: cls.QueryType, Success: true, Result: map[string]any{
		"column":    col.Name,
		"max_value": bestVal,
		"details":   t.Row(best),
	}}
}

// groupRanking sums the amount column per value of the grouping category
// column and returns the top groups in descending order.
func (e *Executor) groupRanking(t *dataset.Table, prof *profile.DatasetProfile, cls Classification, category, groupKey string, limit int) Result {
	groupCols := e.index.Columns(t, prof, category)
	if len(groupCols) == 0 {
		return Result{QueryType: cls.QueryType, Success: false,
			Error: fmt.Sprintf("no %s column found", category)}
	}
	groupCol, _ := t.Column(groupCols[0])
	metric := e.amountColumn(t, prof, cls.TargetColumn)
	if metric == nil {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no numeric amount column found"}
	}
	rows := e.timeFilteredRows(t, prof, cls.TimeRange)

	sums := map[string]float64{}
	for _, i := range rows {
		if groupCol.IsNull(i) || metric.IsNull(i) {
			continue
		}
		sums[groupCol.Value(i)] += metric.Float(i)
	}
	if len(sums) == 0 {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no rows to aggregate"}
	}

	order := make([]string, 0, len(sums))
	for k := range sums {
		order = append(order, k)
	}
	sort.Slice(order, func(a, b int) bool {
		if sums[order[a]] != sums[order[b]] {
			return sums[order[a]] > sums[order[b]]
		}
		return order[a] < order[b]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	results := make(map[string]float64, len(order))
	for _, k := range order {
		results[k] = sums[k]
	}
	return Result{QueryType: cls.QueryType, Success: true, Result: map[string]any{
		groupKey:        groupCol.Name,
		"metric_column": metric.Name,
		"results":       results,
		"order":         order,
	}}
}

// summaryStatistics describes the distribution of the target numeric
// column, defaulting to the first numeric column. The prompt's time tokens
// narrow the described rows just as they do for the other analyses.
func (e *Executor) summaryStatistics(t *dataset.Table, prof *profile.DatasetProfile, cls Classification) Result {
	col := e.amountColumn(t, prof, cls.TargetColumn)
	if col == nil {
		for _, c := range t.Columns() {
			if c.Kind == dataset.KindNumeric {
				col = c
				break
			}
		}
	}
	if col == nil {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no numeric column found"}
	}
	rows := e.timeFilteredRows(t, prof, cls.TimeRange)
	vals := col.Floats(rows)
	if len(vals) == 0 {
		return Result{QueryType: cls.QueryType, Success: false, Error: "column has no values in the requested range"}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return Result{QueryType: cls.QueryType, Success: true, Result: map[string]any{
		"column": col.Name,
		"count":  len(vals),
		"mean":   meanOf(vals),
		"std":    stdOf(vals),
		"min":    sorted[0],
		"q1":     quantileOf(sorted, 0.25),
		"median": quantileOf(sorted, 0.5),
		"q3":     quantileOf(sorted, 0.75),
		"max":    sorted[len(sorted)-1],
	}}
}

// taxCalculation totals every monetary column, scoped to named entities
// when the prompt mentions one.
func (e *Executor) taxCalculation(t *dataset.Table, prompt string, cls Classification) Result {
	out := map[string]any{}
	for key, total := range ColumnTotals(t) {
		out[key] = total
	}
	refs := e.resolver.Resolve(prompt, t)
	for key, total := range refs.EntityTotals {
		out[key] = total
	}
	if len(refs.SpecificEntities) > 0 {
		out["entities"] = refs.SpecificEntities
	}
	if len(out) == 0 {
		return Result{QueryType: cls.QueryType, Success: false, Error: "no tax or amount columns found"}
	}
	return Result{QueryType: cls.QueryType, Success: true, Result: out}
}

// amountColumn picks the numeric column to aggregate: the explicitly
// targeted column when it cleans to numeric, otherwise the first amount
// category column that does.
func (e *Executor) amountColumn(t *dataset.Table, prof *profile.DatasetProfile, target string) *dataset.Column {
	if target != "" {
		if c, ok := t.Column(target); ok {
			if clean, parsed := c.CleanNumeric(); parsed > 0 {
				return clean
			}
		}
	}
	for _, name := range e.index.Columns(t, prof, "amount") {
		c, _ := t.Column(name)
		if clean, parsed := c.CleanNumeric(); parsed > 0 {
			return clean
		}
	}
	return nil
}

// timeFilteredRows narrows the row set by the prompt's time tokens using
// the first date-category column.
func (e *Executor) timeFilteredRows(t *dataset.Table, prof *profile.DatasetProfile, tokens []string) []int {
	rows := t.AllRows()
	if len(tokens) == 0 {
		return rows
	}
	dateCols := e.index.Columns(t, prof, "date")
	if len(dateCols) == 0 {
		return rows
	}
	col, _ := t.Column(dateCols[0])
	return e.timeFilter.Apply(col, rows, tokens)
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stdOf(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := meanOf(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// quantileOf interpolates linearly between order statistics of a sorted
// slice.
func quantileOf(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
