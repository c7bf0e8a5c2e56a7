package similarity

import (
	"context"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vivoohoo/IntelligentCsvAnalyzer/internal/embed"
)

// DefaultMemoSize bounds the per-pair score memo.
const DefaultMemoSize = 512

// Scorer computes a [0,1] similarity between two strings. When an embedding
// backend is configured it is tried first; any failure falls through to the
// lexical blend. Scores are memoized per ordered (a, b) pair in a bounded
// LRU.
type Scorer struct {
	embedder embed.Embedder
	memo     *lru.Cache[string, float64]
	log      *zap.Logger
}

// NewScorer builds a scorer. embedder may be nil, in which case only the
// lexical blend is used.
func NewScorer(embedder embed.Embedder, memoSize int, log *zap.Logger) *Scorer {
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	memo, _ := lru.New[string, float64](memoSize)
	return &Scorer{embedder: embedder, memo: memo, log: log}
}

// Score returns the similarity of a and b.
func (s *Scorer) Score(ctx context.Context, a, b string) float64 {
	key := a + "\x00" + b
	if v, ok := s.memo.Get(key); ok {
		return v
	}
	score := s.compute(ctx, a, b)
	s.memo.Add(key, score)
	return score
}

func (s *Scorer) compute(ctx context.Context, a, b string) float64 {
	if s.embedder != nil {
		if score, err := s.embeddingScore(ctx, a, b); err == nil {
			return score
		} else {
			s.log.Debug("embedding similarity unavailable, using lexical blend", zap.Error(err))
		}
	}
	return LexicalBlend(a, b)
}

func (s *Scorer) embeddingScore(ctx context.Context, a, b string) (float64, error) {
	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return clamp01(cosine(va, vb)), nil
}

// cosine similarity between two vectors; 0 on dimension mismatch.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
