package nlquery

import (
	"context"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/dataset"
	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/similarity"
)

const (
	// classifierThreshold accepts the trained model's prediction.
	classifierThreshold = 0.3
	// fallbackThreshold accepts a similarity match against an example
	// phrase; the first example to clear it wins.
	fallbackThreshold = 0.7
	// columnFuzzThreshold accepts a fuzzy prompt-word → column-name match.
	columnFuzzThreshold = 0.8
)

// Classification is the handoff from classification into execution.
type Classification struct {
	QueryType    string   `json:"query_type"`
	Confidence   *float64 `json:"confidence,omitempty"`
	TargetColumn string   `json:"target_column,omitempty"`
	TargetEntity string   `json:"target_entity,omitempty"`
	TimeRange    []string `json:"time_range,omitempty"`
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`),
	regexp.MustCompile(`(?:20\d{2}|\d{4})`),
	regexp.MustCompile(`(?:q[1-4]|quarter [1-4]|first quarter|second quarter|third quarter|fourth quarter)`),
	regexp.MustCompile(`(?:last|this|previous|next) (?:month|year|week|quarter)`),
}

// Classifier maps free text onto the closed intent set. A multinomial
// naive Bayes model over unigram+bigram counts is trained once from the
// intent corpus; a similarity scan over the example phrases confirms or
// replaces low-confidence predictions.
type Classifier struct {
	intents []IntentExamples
	model   *naiveBayes
	scorer  *similarity.Scorer
	log     *zap.Logger
}

func NewClassifier(intents []IntentExamples, scorer *similarity.Scorer, log *zap.Logger) *Classifier {
	if intents == nil {
		intents = DefaultIntents()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		intents: intents,
		model:   trainNaiveBayes(intents),
		scorer:  scorer,
		log:     log,
	}
}

// Classify determines the intent and extracts the target column and time
// tokens from the prompt. It never fails; an unclassifiable prompt yields
// IntentUnknown.
func (c *Classifier) Classify(ctx context.Context, prompt string, t *dataset.Table) Classification {
	promptLower := strings.ToLower(prompt)
	result := Classification{QueryType: IntentUnknown}

	if intent, conf := c.model.predict(prompt); conf > classifierThreshold {
		result.QueryType = intent
		result.Confidence = &conf
		c.log.Debug("query classified", zap.String("intent", intent), zap.Float64("confidence", conf))
	}

	if result.QueryType == IntentUnknown {
	scan:
		for _, intent := range c.intents {
			for _, example := range intent.Examples {
				sim := c.scorer.Score(ctx, promptLower, strings.ToLower(example))
				if sim > fallbackThreshold {
					result.QueryType = intent.Name
					result.Confidence = &sim
					c.log.Debug("query matched by similarity", zap.String("intent", intent.Name), zap.Float64("similarity", sim))
					break scan
				}
			}
		}
	}

	if t != nil {
		result.TargetColumn = c.targetColumn(promptLower, t)
	}
	result.TimeRange = extractTimeTokens(promptLower)
	return result
}

// targetColumn finds a column the prompt refers to: a direct lowercase
// substring mention wins; otherwise the first prompt word (longer than 3
// characters) that fuzzily matches a column name.
func (c *Classifier) targetColumn(promptLower string, t *dataset.Table) string {
	for _, name := range t.Names() {
		if strings.Contains(promptLower, strings.ToLower(name)) {
			return name
		}
	}
	names := t.Names()
	for _, word := range strings.Fields(promptLower) {
		if len(word) <= 3 {
			continue
		}
		bestScore := 0.0
		best := ""
		for _, name := range names {
			if r := similarity.Ratio(word, strings.ToLower(name)); r > bestScore {
				bestScore = r
				best = name
			}
		}
		if bestScore > columnFuzzThreshold {
			return best
		}
	}
	return ""
}

func extractTimeTokens(promptLower string) []string {
	var tokens []string
	for _, p := range timePatterns {
		tokens = append(tokens, p.FindAllString(promptLower, -1)...)
	}
	return tokens
}

// naiveBayes is a multinomial model over unigram and bigram counts with
// Laplace smoothing. Tokens outside the training vocabulary are ignored at
// prediction time.
type naiveBayes struct {
	classes     []string
	classTokens []map[string]int
	classTotals []int
	classDocs   []int
	totalDocs   int
	vocab       map[string]struct{}
}

func trainNaiveBayes(intents []IntentExamples) *naiveBayes {
	nb := &naiveBayes{vocab: map[string]struct{}{}}
	for _, intent := range intents {
		counts := map[string]int{}
		total := 0
		for _, example := range intent.Examples {
			for _, tok := range featurize(example) {
				counts[tok]++
				total++
				nb.vocab[tok] = struct{}{}
			}
		}
		nb.classes = append(nb.classes, intent.Name)
		nb.classTokens = append(nb.classTokens, counts)
		nb.classTotals = append(nb.classTotals, total)
		nb.classDocs = append(nb.classDocs, len(intent.Examples))
		nb.totalDocs += len(intent.Examples)
	}
	return nb
}

// predict returns the most probable class and its normalized posterior.
func (nb *naiveBayes) predict(text string) (string, float64) {
	if nb.totalDocs == 0 {
		return IntentUnknown, 0
	}
	var tokens []string
	for _, tok := range featurize(text) {
		if _, ok := nb.vocab[tok]; ok {
			tokens = append(tokens, tok)
		}
	}
	// No overlap with the corpus means the priors alone would decide;
	// that is not a prediction.
	if len(tokens) == 0 {
		return IntentUnknown, 0
	}

	vocabSize := len(nb.vocab)
	logProbs := make([]float64, len(nb.classes))
	for i := range nb.classes {
		lp := math.Log(float64(nb.classDocs[i]) / float64(nb.totalDocs))
		denom := float64(nb.classTotals[i] + vocabSize)
		for _, tok := range tokens {
			lp += math.Log(float64(nb.classTokens[i][tok]+1) / denom)
		}
		logProbs[i] = lp
	}

	// Normalize via log-sum-exp so the confidence is a proper posterior.
	maxLP := logProbs[0]
	for _, lp := range logProbs[1:] {
		if lp > maxLP {
			maxLP = lp
		}
	}
	var sum float64
	for _, lp := range logProbs {
		sum += math.Exp(lp - maxLP)
	}
	bestIdx := 0
	for i, lp := range logProbs {
		if lp > logProbs[bestIdx] {
			bestIdx = i
		}
	}
	return nb.classes[bestIdx], math.Exp(logProbs[bestIdx]-maxLP) / sum
}

var tokenSplit = regexp.MustCompile(`[a-z0-9%]+`)

// featurize lowercases and emits unigrams followed by bigrams.
func featurize(text string) []string {
	words := tokenSplit.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}
