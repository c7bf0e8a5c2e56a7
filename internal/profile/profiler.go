package profile

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

// ColumnStats captures per-column statistics. Exactly one of the
// type-specific payloads is populated depending on the column kind; all of
// them may be absent when profiling a column degraded.
type ColumnStats struct {
	Type           string            `json:"type"`
	UniqueCount    int               `json:"unique_count"`
	NullCount      int               `json:"null_count"`
	NullPercentage float64           `json:"null_percentage"`
	Numeric        *NumericStats     `json:"numeric_stats,omitempty"`
	Temporal       *TemporalStats    `json:"time_stats,omitempty"`
	Categorical    *CategoricalStats `json:"categorical_stats,omitempty"`
}

// NumericStats fields are nil whenever the underlying aggregate is
// undefined (empty or fully-null column) — never NaN or Inf.
type NumericStats struct {
	Min            *float64     `json:"min"`
	Max            *float64     `json:"max"`
	Mean           *float64     `json:"mean"`
	Median         *float64     `json:"median"`
	Std            *float64     `json:"std"`
	Q1             *float64     `json:"q1"`
	Q3             *float64     `json:"q3"`
	Outliers       OutlierStats `json:"outliers"`
	LikelyDiscrete bool         `json:"likely_discrete"`
}

// OutlierStats counts values outside the 1.5×IQR fences.
type OutlierStats struct {
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	LowerBound *float64 `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
}

// TemporalStats describes a temporal column. Weekday histogram buckets use
// Monday=0 .. Sunday=6.
type TemporalStats struct {
	MinDate   string      `json:"min_date,omitempty"`
	MaxDate   string      `json:"max_date,omitempty"`
	RangeDays *int        `json:"range_days"`
	ByYear    map[int]int `json:"by_year,omitempty"`
	ByMonth   map[int]int `json:"by_month,omitempty"`
	ByWeekday map[int]int `json:"by_weekday,omitempty"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CategoricalStats struct {
	TopValues          []ValueCount `json:"top_values"`
	IsUniqueIdentifier bool         `json:"is_unique_identifier"`
	AvgLength          *float64     `json:"avg_length"`
	MaxLength          *int         `json:"max_length"`
	LikelyCategorical  bool         `json:"likely_categorical"`
	SemanticType       string       `json:"semantic_type,omitempty"`
}

// ColumnProfiler computes ColumnStats for single columns.
type ColumnProfiler struct {
	semantic *SemanticTypeClassifier
	log      *zap.Logger
}

func NewColumnProfiler(log *zap.Logger) *ColumnProfiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ColumnProfiler{semantic: NewSemanticTypeClassifier(), log: log}
}

// Profile analyzes one column. A failure inside a type-specific branch
// degrades the result to the base stats instead of aborting the caller.
func (p *ColumnProfiler) Profile(c *dataset.Column) (stats ColumnStats) {
	n := c.Len()
	stats = ColumnStats{
		Type:        c.Kind.String(),
		UniqueCount: c.DistinctCount(),
		NullCount:   c.NullCount(),
	}
	if n > 0 {
		stats.NullPercentage = 100 * float64(stats.NullCount) / float64(n)
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("column profiling degraded", zap.String("column", c.Name), zap.Any("cause", r))
			stats.Numeric = nil
			stats.Temporal = nil
			stats.Categorical = nil
		}
	}()

	switch c.Kind {
	case dataset.KindNumeric:
		stats.Numeric = p.profileNumeric(c)
	case dataset.KindTime:
		stats.Temporal = p.profileTemporal(c)
	default:
		stats.Categorical = p.profileCategorical(c)
	}
	return stats
}

func (p *ColumnProfiler) profileNumeric(c *dataset.Column) *NumericStats {
	vals := c.Floats(nil)
	ns := &NumericStats{}
	if len(vals) == 0 {
		return ns
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	ns.Min = ptr(sorted[0])
	ns.Max = ptr(sorted[len(sorted)-1])
	ns.Mean = ptr(mean(vals))
	ns.Median = ptr(quantile(sorted, 0.5))
	if len(vals) > 1 {
		ns.Std = ptr(sampleStd(vals))
	}
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	ns.Q1 = ptr(q1)
	ns.Q3 = ptr(q3)

	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	count := 0
	for _, v := range vals {
		if v < lower || v > upper {
			count++
		}
	}
	ns.Outliers = OutlierStats{
		Count:      count,
		Percentage: 100 * float64(count) / float64(c.Len()),
		LowerBound: ptr(lower),
		UpperBound: ptr(upper),
	}

	distinct := c.DistinctCount()
	ns.LikelyDiscrete = float64(distinct) <= math.Min(20, 0.05*float64(c.Len()))
	return ns
}

func (p *ColumnProfiler) profileTemporal(c *dataset.Column) *TemporalStats {
	ts := &TemporalStats{}
	var minT, maxT time.Time
	seen := false
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Time(i)
		if !seen || v.Before(minT) {
			minT = v
		}
		if !seen || v.After(maxT) {
			maxT = v
		}
		seen = true
	}
	if !seen {
		return ts
	}
	ts.MinDate = minT.Format("2006-01-02")
	ts.MaxDate = maxT.Format("2006-01-02")
	days := int(maxT.Sub(minT).Hours() / 24)
	ts.RangeDays = &days

	// Histograms are best-effort: a failure leaves them out rather than
	// losing the min/max stats.
	func() {
		defer func() { _ = recover() }()
		byYear := map[int]int{}
		byMonth := map[int]int{}
		byWeekday := map[int]int{}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v := c.Time(i)
			byYear[v.Year()]++
			byMonth[int(v.Month())]++
			byWeekday[(int(v.Weekday())+6)%7]++
		}
		ts.ByYear = byYear
		ts.ByMonth = byMonth
		ts.ByWeekday = byWeekday
	}()
	return ts
}

func (p *ColumnProfiler) profileCategorical(c *dataset.Column) *CategoricalStats {
	cs := &CategoricalStats{}
	counts := map[string]int{}
	var totalLen, maxLen, nonNull int
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Value(i)
		counts[v]++
		nonNull++
		l := len([]rune(v))
		totalLen += l
		if l > maxLen {
			maxLen = l
		}
	}

	tops := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		tops = append(tops, ValueCount{Value: v, Count: n})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > 10 {
		tops = tops[:10]
	}
	cs.TopValues = tops
	cs.IsUniqueIdentifier = len(counts) == c.Len()
	if nonNull > 0 {
		cs.AvgLength = ptr(float64(totalLen) / float64(nonNull))
		cs.MaxLength = &maxLen
	}
	cs.LikelyCategorical = float64(len(counts)) <= math.Min(20, 0.1*float64(c.Len()))
	cs.SemanticType = p.semantic.Classify(c)
	return cs
}

func ptr(v float64) *float64 { return &v }

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// quantile interpolates linearly between order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
