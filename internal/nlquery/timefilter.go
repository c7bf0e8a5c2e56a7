package nlquery

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

var yearToken = regexp.MustCompile(`^20\d{2}$`)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// TimeRangeFilter narrows a row subset using the time tokens pulled out of
// a prompt. The clock is injectable so relative tokens ("last month") are
// testable.
type TimeRangeFilter struct {
	Now func() time.Time
}

func NewTimeRangeFilter() *TimeRangeFilter {
	return &TimeRangeFilter{Now: time.Now}
}

// Apply filters rows against col one token at a time; each recognized token
// further narrows the subset, so conjunctive prompts ("march 2023")
// intersect naturally. Unrecognized tokens are ignored. A column that is
// not temporal and cannot be coerced leaves the subset untouched.
func (f *TimeRangeFilter) Apply(col *dataset.Column, rows []int, tokens []string) []int {
	if col == nil || len(tokens) == 0 {
		return rows
	}
	col, ok := col.CleanTime()
	if !ok {
		return rows
	}
	for _, token := range tokens {
		if pred, ok := f.predicate(strings.ToLower(strings.TrimSpace(token))); ok {
			rows = filterRows(col, rows, pred)
		}
	}
	return rows
}

func (f *TimeRangeFilter) predicate(token string) (func(time.Time) bool, bool) {
	now := f.Now()
	switch token {
	case "last month", "previous month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		next := first.AddDate(0, 1, 0)
		return func(t time.Time) bool { return !t.Before(first) && t.Before(next) }, true
	case "this month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return func(t time.Time) bool { return !t.Before(first) }, true
	}
	if yearToken.MatchString(token) {
		year, _ := strconv.Atoi(token)
		return func(t time.Time) bool { return t.Year() == year }, true
	}
	if month, ok := monthsByName[token]; ok {
		return func(t time.Time) bool { return t.Month() == month }, true
	}
	return nil, false
}

func filterRows(col *dataset.Column, rows []int, pred func(time.Time) bool) []int {
	out := make([]int, 0, len(rows))
	for _, i := range rows {
		if col.IsNull(i) {
			continue
		}
		if pred(col.Time(i)) {
			out = append(out, i)
		}
	}
	return out
}
