package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/profile"
)

// MarkdownReport renders a dataset profile as a human-readable markdown
// document.
func MarkdownReport(prof *profile.DatasetProfile) string {
	var b strings.Builder

	b.WriteString("# Dataset Profile\n\n")
	fmt.Fprintf(&b, "- Rows: %d\n", prof.Basic.RowCount)
	fmt.Fprintf(&b, "- Columns: %d\n", prof.Basic.ColumnCount)
	fmt.Fprintf(&b, "- Missing cells: %d (%.1f%%)\n", prof.Basic.NullCells, prof.Basic.NullPercentage)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", prof.Fingerprint)

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Unique | Nulls | Notes |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, name := range prof.ColumnOrder {
		stats := prof.Columns[name]
		fmt.Fprintf(&b, "| %s | %s | %d | %.1f%% | %s |\n",
			name, stats.Type, stats.UniqueCount, stats.NullPercentage, columnNote(stats))
	}
	b.WriteString("\n")

	if len(prof.Relationships) > 0 {
		b.WriteString("## Relationships\n\n")
		for _, rel := range prof.Relationships {
			switch rel.Type {
			case profile.RelPotentialForeignKey:
				conf := 0.0
				if rel.Confidence != nil {
					conf = *rel.Confidence
				}
				fmt.Fprintf(&b, "- `%s` values are contained in `%s` (confidence %.0f%%)\n",
					rel.Source, rel.Target, conf)
			case profile.RelCorrelation:
				coef := 0.0
				if rel.Coefficient != nil {
					coef = *rel.Coefficient
				}
				fmt.Fprintf(&b, "- `%s` and `%s` are strongly correlated (r = %.2f)\n",
					rel.Source, rel.Target, coef)
			}
		}
		b.WriteString("\n")
	}

	if len(prof.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, ins := range prof.Insights {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", ins.Title, ins.Description)
			if len(ins.AffectedColumns) > 0 {
				fmt.Fprintf(&b, "Affected columns: %s\n\n", strings.Join(ins.AffectedColumns, ", "))
			}
		}
	}

	return b.String()
}

func columnNote(stats profile.ColumnStats) string {
	var notes []string
	if n := stats.Numeric; n != nil {
		if n.Outliers.Count > 0 {
			notes = append(notes, fmt.Sprintf("%d outliers", n.Outliers.Count))
		}
		if n.LikelyDiscrete {
			notes = append(notes, "likely discrete")
		}
	}
	if c := stats.Categorical; c != nil {
		if c.SemanticType != "" {
			notes = append(notes, "semantic: "+c.SemanticType)
		}
		if c.IsUniqueIdentifier {
			notes = append(notes, "unique identifier")
		}
	}
	if t := stats.Temporal; t != nil && t.MinDate != "" {
		notes = append(notes, fmt.Sprintf("%s to %s", t.MinDate, t.MaxDate))
	}
	sort.Strings(notes)
	return strings.Join(notes, "; ")
}
