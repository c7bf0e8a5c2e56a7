package similarity

import (
	"context"
	"errors"
	"testing"
)

func TestRatio(t *testing.T) {
	if got := Ratio("abc", "abc"); got != 1 {
		t.Errorf("Ratio(x, x) = %v, want 1", got)
	}
	if got := Ratio("", ""); got != 1 {
		t.Errorf("Ratio of two empty strings = %v, want 1", got)
	}
	if got := Ratio("abc", ""); got != 0 {
		t.Errorf("Ratio against empty = %v, want 0", got)
	}
	if got := Ratio("abc", "xyz"); got < 0 || got >= 1 {
		t.Errorf("Ratio of unrelated strings = %v, want [0, 1)", got)
	}
}

func TestPartialRatio(t *testing.T) {
	// The needle appears verbatim inside the haystack.
	if got := PartialRatio("tax", "total tax collected"); got != 1 {
		t.Errorf("PartialRatio = %v, want 1", got)
	}
}

func TestTokenSortRatio(t *testing.T) {
	if got := TokenSortRatio("collected tax total", "total tax collected"); got != 1 {
		t.Errorf("TokenSortRatio ignores word order, got %v", got)
	}
}

func TestLexicalBlendBounds(t *testing.T) {
	pairs := [][2]string{
		{"total tax collected", "total tax collected"},
		{"tax", "total tax collected"},
		{"completely unrelated", "total tax collected"},
		{"", "x"},
	}
	for _, p := range pairs {
		got := LexicalBlend(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("LexicalBlend(%q, %q) = %v, out of [0, 1]", p[0], p[1], got)
		}
	}
	if got := LexicalBlend("total tax collected", "total tax collected"); got != 1 {
		t.Errorf("identical strings = %v, want 1", got)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("backend down")
}

type fixedEmbedder struct {
	vectors map[string][]float32
}

func (e fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return v, nil
}

func TestScorerFallsBackToLexical(t *testing.T) {
	s := NewScorer(failingEmbedder{}, 0, nil)
	got := s.Score(context.Background(), "total tax", "total tax")
	if got != 1 {
		t.Errorf("Score with failing embedder = %v, want lexical 1", got)
	}
}

func TestScorerUsesEmbeddings(t *testing.T) {
	s := NewScorer(fixedEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"c": {1, 0},
	}}, 0, nil)
	ctx := context.Background()
	if got := s.Score(ctx, "a", "c"); got != 1 {
		t.Errorf("parallel vectors = %v, want 1", got)
	}
	if got := s.Score(ctx, "a", "b"); got != 0 {
		t.Errorf("orthogonal vectors = %v, want 0", got)
	}
}

func TestScorerMemoizes(t *testing.T) {
	calls := 0
	s := NewScorer(countingEmbedder{calls: &calls}, 0, nil)
	ctx := context.Background()
	s.Score(ctx, "x", "y")
	s.Score(ctx, "x", "y")
	if calls != 2 {
		t.Errorf("embed calls = %d, want 2 (one per string, second lookup memoized)", calls)
	}
}

type countingEmbedder struct {
	calls *int
}

func (e countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	*e.calls++
	return []float32{1, 2, 3}, nil
}
