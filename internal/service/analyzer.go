package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/nlquery"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/profile"
)

// dataKeywords marks a prompt as dataset-related even when it names no
// column.
var dataKeywords = []string{
	"data", "csv", "column", "row", "table", "dataset",
	"sales", "total", "sum", "average", "tax", "amount",
	"product", "customer", "city", "trend", "statistic",
}

// Analyzer wires profiling, classification, and execution into one
// question-answering pipeline over a loaded table.
type Analyzer struct {
	profiler   *profile.Profiler
	classifier *nlquery.Classifier
	executor   *nlquery.Executor
	resolver   *nlquery.EntityResolver
	log        *zap.Logger
}

func NewAnalyzer(profiler *profile.Profiler, classifier *nlquery.Classifier, executor *nlquery.Executor, resolver *nlquery.EntityResolver, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		profiler:   profiler,
		classifier: classifier,
		executor:   executor,
		resolver:   resolver,
		log:        log,
	}
}

// Profile returns the dataset profile, computed or cached.
func (a *Analyzer) Profile(t *dataset.Table) *profile.DatasetProfile {
	return a.profiler.Profile(t)
}

// Ask answers one free-text question about the table. The returned payload
// is JSON-safe: every non-finite float has been replaced with null.
func (a *Analyzer) Ask(ctx context.Context, t *dataset.Table, prompt string) map[string]any {
	requestID := uuid.NewString()
	log := a.log.With(zap.String("request_id", requestID))
	log.Info("question received", zap.Int("prompt_len", len(prompt)))

	payload := map[string]any{
		"request_id": requestID,
	}

	if !isDatasetRelated(prompt, t) {
		log.Info("question judged unrelated to the dataset")
		payload["query_classification"] = nlquery.Classification{QueryType: nlquery.IntentUnknown}
		payload["specific_analysis"] = nlquery.Result{
			QueryType: nlquery.IntentUnknown,
			Success:   false,
			Error:     "the question does not appear to be about the loaded data",
		}
		return Sanitize(payload).(map[string]any)
	}

	prof := a.profiler.Profile(t)
	cls := a.classifier.Classify(ctx, prompt, t)
	if refs := a.resolver.Resolve(prompt, t); len(refs.SpecificEntities) > 0 {
		cls.TargetEntity = refs.SpecificEntities[0]
	}
	log.Info("question classified", zap.String("query_type", cls.QueryType))

	result := a.executor.Execute(t, prof, prompt, cls)

	payload["query_classification"] = cls
	payload["column_types"] = columnTypes(prof)
	payload["numeric_stats"] = numericStats(prof)
	payload["date_columns"] = dateColumns(prof)
	payload["specific_analysis"] = result
	return Sanitize(payload).(map[string]any)
}

// isDatasetRelated gates obviously off-topic prompts before the pipeline
// runs: a prompt qualifies when it names a column or uses a data keyword.
func isDatasetRelated(prompt string, t *dataset.Table) bool {
	lower := strings.ToLower(prompt)
	for _, name := range t.Names() {
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	for _, kw := range dataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func columnTypes(prof *profile.DatasetProfile) map[string]string {
	out := make(map[string]string, len(prof.Columns))
	for name, stats := range prof.Columns {
		out[name] = stats.Type
	}
	return out
}

func numericStats(prof *profile.DatasetProfile) map[string]*profile.NumericStats {
	out := map[string]*profile.NumericStats{}
	for _, name := range prof.ColumnOrder {
		if stats := prof.Columns[name]; stats.Numeric != nil {
			out[name] = stats.Numeric
		}
	}
	return out
}

func dateColumns(prof *profile.DatasetProfile) []string {
	var out []string
	for _, name := range prof.ColumnOrder {
		if prof.Columns[name].Temporal != nil {
			out = append(out, name)
		}
	}
	return out
}
