package profile

import (
	"math"

	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

const (
	RelPotentialForeignKey = "potential_foreign_key"
	RelCorrelation         = "correlation"

	// Relationship detection is quadratic in column count; wider tables
	// skip it entirely.
	maxRelationshipColumns = 50

	strongCorrelation = 0.8
)

// Relationship is either a subset-style key relationship (Confidence set)
// or a strong numeric correlation (Coefficient and Direction set).
type Relationship struct {
	Type        string   `json:"type"`
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Coefficient *float64 `json:"value,omitempty"`
	Direction   string   `json:"direction,omitempty"`
}

// RelationshipDetector finds key containment and correlation relationships
// across a table's columns.
type RelationshipDetector struct {
	log *zap.Logger
}

func NewRelationshipDetector(log *zap.Logger) *RelationshipDetector {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelationshipDetector{log: log}
}

// Detect returns foreign-key candidates followed by strong correlations.
func (d *RelationshipDetector) Detect(t *dataset.Table) []Relationship {
	var out []Relationship
	if t.ColumnCount() > maxRelationshipColumns {
		d.log.Warn("skipping relationship detection for wide table", zap.Int("columns", t.ColumnCount()))
		return out
	}

	cols := t.Columns()
	distinct := make([]map[string]struct{}, len(cols))
	for i, c := range cols {
		distinct[i] = c.DistinctValues()
	}

	for i, src := range cols {
		// Low-cardinality text columns are labels, not keys.
		if src.Kind != dataset.KindNumeric && len(distinct[i]) < 10 {
			continue
		}
		for j, dst := range cols {
			if i == j || len(distinct[j]) == 0 {
				continue
			}
			if !isSubset(distinct[i], distinct[j]) {
				continue
			}
			conf := math.Min(100, 100*float64(len(distinct[i]))/float64(len(distinct[j])))
			out = append(out, Relationship{
				Type:       RelPotentialForeignKey,
				Source:     src.Name,
				Target:     dst.Name,
				Confidence: ptr(conf),
			})
		}
	}

	out = append(out, d.correlations(t)...)
	return out
}

func isSubset(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}

// correlations emits a relationship per unordered numeric column pair with
// |Pearson r| at or above the strong-correlation threshold. Degenerate
// pairs (constant columns, fewer than two shared rows) are skipped.
func (d *RelationshipDetector) correlations(t *dataset.Table) []Relationship {
	var numeric []*dataset.Column
	for _, c := range t.Columns() {
		if c.Kind == dataset.KindNumeric {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) < 2 {
		return nil
	}

	var out []Relationship
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r, ok := pearson(numeric[i], numeric[j])
			if !ok || math.Abs(r) < strongCorrelation {
				continue
			}
			direction := "positive"
			if r < 0 {
				direction = "negative"
			}
			out = append(out, Relationship{
				Type:        RelCorrelation,
				Source:      numeric[i].Name,
				Target:      numeric[j].Name,
				Coefficient: ptr(r),
				Direction:   direction,
			})
		}
	}
	return out
}

// pearson computes the correlation over rows where both columns are
// non-null.
func pearson(a, b *dataset.Column) (float64, bool) {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) || b.IsNull(i) {
			continue
		}
		xs = append(xs, a.Float(i))
		ys = append(ys, b.Float(i))
	}
	if len(xs) < 2 {
		return 0, false
	}
	mx := mean(xs)
	my := mean(ys)
	var num, dx2, dy2 float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	if dx2 == 0 || dy2 == 0 {
		return 0, false
	}
	r := num / math.Sqrt(dx2*dy2)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}
