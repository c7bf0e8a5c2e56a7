package profile

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

// BasicInfo summarizes a table's shape and overall null density.
type BasicInfo struct {
	RowCount       int     `json:"row_count"`
	ColumnCount    int     `json:"column_count"`
	NullCells      int     `json:"null_cells"`
	NullPercentage float64 `json:"null_percentage"`
}

// DatasetProfile is the full structural and semantic profile of one table.
type DatasetProfile struct {
	Fingerprint   string                 `json:"fingerprint"`
	Basic         BasicInfo              `json:"basic_info"`
	ColumnOrder   []string               `json:"column_order"`
	Columns       map[string]ColumnStats `json:"columns"`
	Relationships []Relationship         `json:"relationships"`
	Insights      []Insight              `json:"insights"`
}

// SemanticType returns the inferred semantic type of a column, or "".
func (p *DatasetProfile) SemanticType(column string) string {
	st, ok := p.Columns[column]
	if !ok || st.Categorical == nil {
		return ""
	}
	return st.Categorical.SemanticType
}

// Profiler assembles DatasetProfiles and caches them by table fingerprint.
// The cache is a bounded LRU; profiling is a pure function of the table, so
// concurrent computations for the same fingerprint may race and the last
// write wins, which is harmless.
type Profiler struct {
	columns  *ColumnProfiler
	rels     *RelationshipDetector
	insights *InsightSynthesizer
	log      *zap.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *DatasetProfile]

	computations atomic.Int64
}

// DefaultProfileCacheSize bounds the number of cached profiles per process.
const DefaultProfileCacheSize = 64

func NewProfiler(log *zap.Logger, cacheSize int) *Profiler {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultProfileCacheSize
	}
	cache, _ := lru.New[string, *DatasetProfile](cacheSize)
	return &Profiler{
		columns:  NewColumnProfiler(log),
		rels:     NewRelationshipDetector(log),
		insights: NewInsightSynthesizer(),
		log:      log,
		cache:    cache,
	}
}

// Computations reports how many profiles were actually computed (cache
// misses), for observability and tests.
func (p *Profiler) Computations() int64 { return p.computations.Load() }

// Profile returns the cached profile for the table's fingerprint, computing
// it on a miss. A single column's failure degrades that column's stats; the
// table-level profile always completes.
func (p *Profiler) Profile(t *dataset.Table) *DatasetProfile {
	fp := dataset.Fingerprint(t)
	if cached, ok := p.cache.Get(fp); ok {
		p.log.Debug("profile cache hit", zap.String("fingerprint", fp[:8]))
		return cached
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.cache.Get(fp); ok {
		return cached
	}

	p.computations.Add(1)
	prof := &DatasetProfile{
		Fingerprint: fp,
		Basic: BasicInfo{
			RowCount:    t.RowCount(),
			ColumnCount: t.ColumnCount(),
			NullCells:   t.NullCells(),
		},
		ColumnOrder: t.Names(),
		Columns:     make(map[string]ColumnStats, t.ColumnCount()),
	}
	if cells := t.RowCount() * t.ColumnCount(); cells > 0 {
		prof.Basic.NullPercentage = 100 * float64(prof.Basic.NullCells) / float64(cells)
	}
	for _, c := range t.Columns() {
		prof.Columns[c.Name] = p.columns.Profile(c)
	}
	prof.Relationships = p.rels.Detect(t)
	prof.Insights = p.insights.Synthesize(prof.ColumnOrder, prof.Columns)

	p.cache.Add(fp, prof)
	p.log.Info("dataset profiled",
		zap.String("fingerprint", fp[:8]),
		zap.Int("rows", t.RowCount()),
		zap.Int("columns", t.ColumnCount()),
		zap.Int("insights", len(prof.Insights)))
	return prof
}
