package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/nlquery"
)

// Responder phrases an executed query result for the user. Implementations
// may be as simple as templates or as heavy as an LLM call.
type Responder interface {
	Respond(ctx context.Context, prompt string, result nlquery.Result) (string, error)
}

// PlainResponder renders results as short plain-text sentences with no
// external dependencies.
type PlainResponder struct{}

func (PlainResponder) Respond(_ context.Context, _ string, result nlquery.Result) (string, error) {
	if !result.Success {
		if result.Error != "" {
			return result.Error, nil
		}
		return "the question could not be answered from the data", nil
	}

	switch result.QueryType {
	case "highest_sales":
		return fmt.Sprintf("The highest value of %v is %v.",
			result.Result["column"], result.Result["max_value"]), nil
	case "top_products", "city_analysis":
		return rankedAnswer(result), nil
	case "tax_calculation":
		return totalsAnswer(result), nil
	case "summary_statistics":
		return fmt.Sprintf("%v: count %v, mean %v, median %v, min %v, max %v.",
			result.Result["column"], result.Result["count"], result.Result["mean"],
			result.Result["median"], result.Result["min"], result.Result["max"]), nil
	default:
		return "analysis complete", nil
	}
}

func rankedAnswer(result nlquery.Result) string {
	order, _ := result.Result["order"].([]string)
	results, _ := result.Result["results"].(map[string]float64)
	if len(order) == 0 {
		// Sanitized payloads carry generic types.
		if anyOrder, ok := result.Result["order"].([]any); ok {
			for _, v := range anyOrder {
				if s, ok := v.(string); ok {
					order = append(order, s)
				}
			}
		}
	}
	var parts []string
	for _, k := range order {
		if results != nil {
			parts = append(parts, fmt.Sprintf("%s (%g)", k, results[k]))
		} else {
			parts = append(parts, k)
		}
	}
	if len(parts) == 0 {
		return "no groups matched"
	}
	return "Top results: " + strings.Join(parts, ", ") + "."
}

func totalsAnswer(result nlquery.Result) string {
	keys := make([]string, 0, len(result.Result))
	for key := range result.Result {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var parts []string
	for _, key := range keys {
		total, ok := result.Result[key].(nlquery.AmountTotal)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s%g over %d rows",
			key, total.Currency, total.Total, total.RowCount))
	}
	if len(parts) == 0 {
		return "totals computed"
	}
	return strings.Join(parts, "; ") + "."
}
