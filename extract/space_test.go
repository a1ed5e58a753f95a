package extract

import (
	"errors"
	"testing"

	"github.com/poiesic/spanbase/core"
)

func quickFox() *core.Context {
	return core.NewContext("The quick fox jumps", []int{0, 4, 10, 14}, map[string][]string{
		core.WordsAttribute: {"The", "quick", "fox", "jumps"},
	})
}

func TestNgramSpace_Unigrams(t *testing.T) {
	ctx := quickFox()

	spans, err := NgramSpace{MaxN: 1}.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(spans) != 4 {
		t.Fatalf("expected 4 unigrams, got %d", len(spans))
	}

	want := []string{"The", "quick", "fox", "jumps"}
	for i, g := range spans {
		if g.Span(" ") != want[i] {
			t.Errorf("span %d = %q, want %q", i, g.Span(" "), want[i])
		}
		if g.N() != 1 {
			t.Errorf("span %d covers %d words, want 1", i, g.N())
		}
	}
}

func TestNgramSpace_UpToBigrams(t *testing.T) {
	ctx := quickFox()

	spans, err := NgramSpace{MaxN: 2}.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// 4 unigrams + 3 bigrams, shortest first at each starting word.
	want := []string{"The", "The quick", "quick", "quick fox", "fox", "fox jumps", "jumps"}
	if len(spans) != len(want) {
		t.Fatalf("expected %d spans, got %d", len(want), len(spans))
	}
	for i, g := range spans {
		if g.Span(" ") != want[i] {
			t.Errorf("span %d = %q, want %q", i, g.Span(" "), want[i])
		}
	}
}

func TestNgramSpace_LongerThanContext(t *testing.T) {
	ctx := quickFox()

	spans, err := NgramSpace{MaxN: 10}.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// The widest span covers the whole sentence and no span runs past it.
	last := spans[len(spans)-1]
	if last.Span(" ") != "jumps" {
		t.Errorf("last span = %q, want %q", last.Span(" "), "jumps")
	}
	for _, g := range spans {
		if g.CharEnd > 18 {
			t.Errorf("span %s exceeds the context text", g)
		}
	}
}

func TestNgramSpace_Errors(t *testing.T) {
	ctx := quickFox()

	if _, err := (NgramSpace{MaxN: 0}).Apply(ctx); !errors.Is(err, ErrInvalidMaxN) {
		t.Errorf("MaxN=0 error = %v, want ErrInvalidMaxN", err)
	}

	wordless := core.NewContext("The quick fox jumps", []int{0, 4, 10, 14}, map[string][]string{
		"pos_tags": {"DT", "JJ", "NN", "VBZ"},
	})
	if _, err := (NgramSpace{MaxN: 1}).Apply(wordless); !errors.Is(err, ErrMissingWords) {
		t.Errorf("missing words error = %v, want ErrMissingWords", err)
	}
}
