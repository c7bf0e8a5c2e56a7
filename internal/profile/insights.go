package profile

import "fmt"

// Insight is a derived, human-relevant flag about the dataset. Synthesis
// never mutates the stats it reads.
type Insight struct {
	Type            string           `json:"type"`
	Category        string           `json:"category"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	AffectedColumns []string         `json:"affected_columns"`
	Details         []map[string]any `json:"details"`
}

// InsightSynthesizer aggregates already-computed column stats into at most
// three insights: heavy missing values, heavy outliers, temporal coverage.
type InsightSynthesizer struct{}

func NewInsightSynthesizer() *InsightSynthesizer { return &InsightSynthesizer{} }

// Synthesize walks columns in table order so the affected-column lists are
// deterministic.
func (s *InsightSynthesizer) Synthesize(order []string, columns map[string]ColumnStats) []Insight {
	var insights []Insight

	var highNull []map[string]any
	var highNullNames []string
	for _, name := range order {
		st := columns[name]
		if st.NullPercentage > 20 {
			highNullNames = append(highNullNames, name)
			highNull = append(highNull, map[string]any{"name": name, "null_percentage": st.NullPercentage})
		}
	}
	if len(highNull) > 0 {
		insights = append(insights, Insight{
			Type:            "data_quality",
			Category:        "missing_values",
			Title:           "Columns with significant missing values",
			Description:     fmt.Sprintf("Found %d columns with more than 20%% missing values", len(highNull)),
			AffectedColumns: highNullNames,
			Details:         highNull,
		})
	}

	var outlierCols []map[string]any
	var outlierNames []string
	for _, name := range order {
		st := columns[name]
		if st.Numeric != nil && st.Numeric.Outliers.Percentage > 5 {
			outlierNames = append(outlierNames, name)
			outlierCols = append(outlierCols, map[string]any{"name": name, "outlier_percentage": st.Numeric.Outliers.Percentage})
		}
	}
	if len(outlierCols) > 0 {
		insights = append(insights, Insight{
			Type:            "data_quality",
			Category:        "outliers",
			Title:           "Columns with significant outliers",
			Description:     fmt.Sprintf("Found %d numeric columns with more than 5%% outliers", len(outlierCols)),
			AffectedColumns: outlierNames,
			Details:         outlierCols,
		})
	}

	var timeCols []map[string]any
	var timeNames []string
	for _, name := range order {
		st := columns[name]
		if st.Temporal != nil {
			timeNames = append(timeNames, name)
			timeCols = append(timeCols, map[string]any{
				"name":       name,
				"min_date":   st.Temporal.MinDate,
				"max_date":   st.Temporal.MaxDate,
				"range_days": st.Temporal.RangeDays,
			})
		}
	}
	if len(timeCols) > 0 {
		insights = append(insights, Insight{
			Type:            "data_structure",
			Category:        "time_coverage",
			Title:           "Time coverage analysis",
			Description:     fmt.Sprintf("Dataset contains %d datetime columns with time information", len(timeCols)),
			AffectedColumns: timeNames,
			Details:         timeCols,
		})
	}

	return insights
}
