package profile

import (
	"math/rand"
	"regexp"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
)

// SemanticPattern pairs a semantic type with the pattern its values must
// match. The declaration order is the tie-break when two patterns reach the
// same match rate.
type SemanticPattern struct {
	Type    string
	Pattern *regexp.Regexp
}

// DefaultSemanticPatterns are prefix-anchored: a value matches when the
// pattern matches from its first character.
func DefaultSemanticPatterns() []SemanticPattern {
	return []SemanticPattern{
		{"email", regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)},
		{"phone", regexp.MustCompile(`^\+?[\d\s()-]{8,}$`)},
		{"url", regexp.MustCompile(`^https?://\S+$`)},
		{"date_string", regexp.MustCompile(`^\d{1,4}[-/]\d{1,2}[-/]\d{1,4}$`)},
		{"numeric_id", regexp.MustCompile(`^\d+$`)},
		{"alphanumeric_id", regexp.MustCompile(`^[A-Za-z0-9-_]+$`)},
		{"address", regexp.MustCompile(`^\d+\s+[A-Za-z\s]+\s+(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr)`)},
		{"name", regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)},
	}
}

// SemanticTypeClassifier guesses the business meaning of a text column from
// a sample of its values. Sampling uses a fixed seed so repeated runs over
// the same column classify identically.
type SemanticTypeClassifier struct {
	patterns   []SemanticPattern
	sampleSize int
	rng        *rand.Rand
}

func NewSemanticTypeClassifier() *SemanticTypeClassifier {
	return &SemanticTypeClassifier{
		patterns:   DefaultSemanticPatterns(),
		sampleSize: 100,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Classify samples up to 100 non-null values and returns the semantic type
// whose pattern matches at least 80% of the sample. Below that threshold it
// falls back on value shape: very short values → "code", few distinct
// values → "category", otherwise "text".
func (s *SemanticTypeClassifier) Classify(c *dataset.Column) string {
	var values []string
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			values = append(values, c.Value(i))
		}
	}
	if len(values) == 0 {
		return "text"
	}
	sample := values
	if len(values) > s.sampleSize {
		sample = make([]string, 0, s.sampleSize)
		for _, idx := range s.rng.Perm(len(values))[:s.sampleSize] {
			sample = append(sample, values[idx])
		}
	}

	bestType := ""
	bestRate := -1.0
	for _, p := range s.patterns {
		matched := 0
		for _, v := range sample {
			if p.Pattern.MatchString(v) {
				matched++
			}
		}
		rate := 100 * float64(matched) / float64(len(sample))
		if rate > bestRate {
			bestRate = rate
			bestType = p.Type
		}
	}
	if bestRate >= 80 {
		return bestType
	}

	totalLen := 0
	for _, v := range values {
		totalLen += len([]rune(v))
	}
	if float64(totalLen)/float64(len(values)) <= 2 {
		return "code"
	}
	if c.DistinctCount() <= 10 {
		return "category"
	}
	return "text"
}
