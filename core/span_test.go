package core

import (
	"errors"
	"strconv"
	"testing"
)

// quickFox returns the canonical test context:
// "The quick fox jumps" with words starting at 0, 4, 10, 14.
func quickFox() *Context {
	return NewContext("The quick fox jumps", []int{0, 4, 10, 14}, map[string][]string{
		WordsAttribute: {"The", "quick", "fox", "jumps"},
		"pos_tags":     {"DT", "JJ", "NN", "VBZ"},
		"lemmas":       {"the", "quick", "fox", "jump"},
	})
}

// offsetFox returns the same sentence as a sub-span of a larger document,
// with document-absolute offsets starting at 100.
func offsetFox() *Context {
	return NewContext("The quick fox jumps", []int{100, 104, 110, 114}, map[string][]string{
		WordsAttribute: {"The", "quick", "fox", "jumps"},
	})
}

func TestNewNgram_MalformedSpan(t *testing.T) {
	ctx := quickFox()

	if _, err := NewNgram(ctx, 12, 4); !errors.Is(err, ErrMalformedSpan) {
		t.Errorf("NewNgram(12, 4) error = %v, want ErrMalformedSpan", err)
	}

	if _, err := NewNgram(nil, 0, 3); !errors.Is(err, ErrNilContext) {
		t.Errorf("NewNgram(nil context) error = %v, want ErrNilContext", err)
	}

	// A one-character span is the smallest valid span.
	g, err := NewNgram(ctx, 4, 4)
	if err != nil {
		t.Fatalf("NewNgram(4, 4) unexpected error: %v", err)
	}
	if g.Length() != 1 {
		t.Errorf("Length() = %d, want 1", g.Length())
	}
}

func TestNgram_WordBounds(t *testing.T) {
	ctx := quickFox()

	g, err := NewNgram(ctx, 4, 12)
	if err != nil {
		t.Fatalf("NewNgram: %v", err)
	}

	if got := g.WordStart(); got != 1 {
		t.Errorf("WordStart() = %d, want 1", got)
	}
	if got := g.WordEnd(); got != 2 {
		t.Errorf("WordEnd() = %d, want 2", got)
	}
	if got := g.N(); got != 2 {
		t.Errorf("N() = %d, want 2", got)
	}
	if got := g.Span(" "); got != "quick fox" {
		t.Errorf("Span() = %q, want %q", got, "quick fox")
	}
	if got := g.Length(); got != len(g.Span(" ")) {
		t.Errorf("Length() = %d, want len(Span()) = %d", got, len(g.Span(" ")))
	}
}

func TestNgram_CharToWordIndex(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 0, 18)

	tests := []struct {
		name string
		ci   int
		want int
	}{
		{"exact first offset", 0, 0},
		{"inside first word", 2, 0},
		{"exact second offset", 4, 1},
		{"inside second word", 7, 1},
		{"space before third word", 9, 1},
		{"exact last offset", 14, 3},
		{"inside last word", 17, 3},
		{"past last word", 40, 3},
		{"before first offset is undefined input", -3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CharToWordIndex(tt.ci); got != tt.want {
				t.Errorf("CharToWordIndex(%d) = %d, want %d", tt.ci, got, tt.want)
			}
		})
	}
}

func TestNgram_WordCharRoundTrip(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 0, 18)

	for wi := 0; wi < ctx.WordCount(); wi++ {
		ci, err := g.WordToCharIndex(wi)
		if err != nil {
			t.Fatalf("WordToCharIndex(%d): %v", wi, err)
		}
		if got := g.CharToWordIndex(ci); got != wi {
			t.Errorf("round trip of word %d: got %d", wi, got)
		}
	}

	if _, err := g.WordToCharIndex(-1); !errors.Is(err, ErrWordIndexRange) {
		t.Errorf("WordToCharIndex(-1) error = %v, want ErrWordIndexRange", err)
	}
	if _, err := g.WordToCharIndex(4); !errors.Is(err, ErrWordIndexRange) {
		t.Errorf("WordToCharIndex(4) error = %v, want ErrWordIndexRange", err)
	}
}

func TestNgram_SentenceRelativeCoordinates(t *testing.T) {
	ctx := offsetFox()

	g, _ := NewNgram(ctx, 104, 112)
	if got := g.SentOffset(); got != 100 {
		t.Errorf("SentOffset() = %d, want 100", got)
	}
	if got := g.SentCharStart(); got != 4 {
		t.Errorf("SentCharStart() = %d, want 4", got)
	}
	if got := g.SentCharEnd(); got != 12 {
		t.Errorf("SentCharEnd() = %d, want 12", got)
	}
	if got := g.Span(" "); got != "quick fox" {
		t.Errorf("Span() = %q, want %q", got, "quick fox")
	}
}

func TestNgram_AttribTokens(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 4, 12)

	tokens, err := g.AttribTokens("pos_tags")
	if err != nil {
		t.Fatalf("AttribTokens: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "JJ" || tokens[1] != "NN" {
		t.Errorf("AttribTokens(pos_tags) = %v, want [JJ NN]", tokens)
	}

	if _, err := g.AttribTokens("chunks"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("AttribTokens(chunks) error = %v, want ErrUnknownAttribute", err)
	}
}

func TestNgram_AttribSpan(t *testing.T) {
	ctx := quickFox()

	// Spans over the words attribute reproduce the raw text verbatim,
	// including inter-word characters; other attributes are joined with the
	// separator.
	full, _ := NewNgram(ctx, 0, 18)
	span, err := full.AttribSpan(WordsAttribute, "|")
	if err != nil {
		t.Fatalf("AttribSpan: %v", err)
	}
	if span != ctx.Text {
		t.Errorf("AttribSpan(words) = %q, want full text %q", span, ctx.Text)
	}

	lemmas, err := full.AttribSpan("lemmas", " ")
	if err != nil {
		t.Fatalf("AttribSpan: %v", err)
	}
	if lemmas != "the quick fox jump" {
		t.Errorf("AttribSpan(lemmas) = %q, want %q", lemmas, "the quick fox jump")
	}

	if _, err := full.AttribSpan("chunks", " "); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("AttribSpan(chunks) error = %v, want ErrUnknownAttribute", err)
	}
}

func TestNgram_SpanClipsToText(t *testing.T) {
	ctx := quickFox()

	// A span whose end runs past the text is clipped rather than rejected,
	// the same way a text slice would clip.
	over, err := NewNgram(ctx, 0, 40)
	if err != nil {
		t.Fatalf("NewNgram: %v", err)
	}
	if got := over.Span(" "); got != ctx.Text {
		t.Errorf("Span() = %q, want full text %q", got, ctx.Text)
	}

	// A span lying entirely past the text yields the empty string.
	beyond, err := NewNgram(ctx, 30, 40)
	if err != nil {
		t.Fatalf("NewNgram: %v", err)
	}
	if got := beyond.Span(" "); got != "" {
		t.Errorf("Span() = %q, want empty", got)
	}
}

func TestNgram_Slice(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 4, 12) // "quick fox"

	t.Run("from start offset", func(t *testing.T) {
		s, err := g.SliceFrom(1)
		if err != nil {
			t.Fatalf("SliceFrom: %v", err)
		}
		if s.CharStart != 5 || s.CharEnd != 12 {
			t.Errorf("SliceFrom(1) = chars [%d,%d], want [5,12]", s.CharStart, s.CharEnd)
		}
	})

	t.Run("negative stop counts back from span end", func(t *testing.T) {
		s, err := g.SliceTo(-1)
		if err != nil {
			t.Fatalf("SliceTo: %v", err)
		}
		if s.CharStart != 4 || s.CharEnd != 11 {
			t.Errorf("SliceTo(-1) = chars [%d,%d], want [4,11]", s.CharStart, s.CharEnd)
		}
	})

	t.Run("non-negative stop is exclusive", func(t *testing.T) {
		s, err := g.Slice(0, 5)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		if s.CharStart != 4 || s.CharEnd != 8 {
			t.Errorf("Slice(0, 5) = chars [%d,%d], want [4,8]", s.CharStart, s.CharEnd)
		}
		if s.Span(" ") != "quick" {
			t.Errorf("Slice(0, 5).Span() = %q, want %q", s.Span(" "), "quick")
		}
	})

	t.Run("slice matches direct construction", func(t *testing.T) {
		s, err := g.Slice(6, 9)
		if err != nil {
			t.Fatalf("Slice: %v", err)
		}
		want, _ := NewNgram(ctx, 10, 12)
		if !s.Equals(want) {
			t.Errorf("Slice(6, 9) = %s, want %s", s, want)
		}
	})

	t.Run("empty slice is malformed", func(t *testing.T) {
		if _, err := g.SliceTo(0); !errors.Is(err, ErrMalformedSpan) {
			t.Errorf("SliceTo(0) error = %v, want ErrMalformedSpan", err)
		}
	})

	t.Run("slice carries no metadata or ownership", func(t *testing.T) {
		g.Meta = map[string]string{"source": "matcher"}
		s, err := g.SliceFrom(1)
		if err != nil {
			t.Fatalf("SliceFrom: %v", err)
		}
		if s.Meta != nil {
			t.Errorf("sliced span carried metadata: %v", s.Meta)
		}
		if s.Context != g.Context {
			t.Error("sliced span must share the parent's context")
		}
	})
}

func TestNgram_StructuralEquality(t *testing.T) {
	ctx := quickFox()
	other := offsetFox()

	a, _ := NewNgram(ctx, 4, 12)
	b, _ := NewNgram(ctx, 4, 12)
	b.Meta = map[string]string{"ignored": "yes"}

	if !a.Equals(b) {
		t.Error("independently built spans with identical fields must be equal")
	}
	if a.HashValue() != b.HashValue() {
		t.Error("equal spans must hash equal")
	}

	shifted, _ := NewNgram(ctx, 5, 12)
	if a.Equals(shifted) {
		t.Error("different char start must break equality")
	}

	shorter, _ := NewNgram(ctx, 4, 11)
	if a.Equals(shorter) {
		t.Error("different char end must break equality")
	}

	elsewhere, _ := NewNgram(other, 4, 12)
	if a.Equals(elsewhere) {
		t.Error("different context must break equality")
	}

	if a.Equals(nil) {
		t.Error("nil is never equal")
	}
}

func TestNgram_String(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 4, 12)

	want := `Ngram("quick fox", context=` + strconv.FormatUint(uint64(ctx.Id), 10) + `, chars=[4,12], words=[1,2])`
	if got := g.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
