package core

import (
	"fmt"
	"strings"
)

// Ngram is a contiguous span of words within one Context, identified by
// inclusive character start and end offsets in the Context's
// document-absolute coordinate space.
//
// The Context reference is shared, not owned: the Context outlives and is
// independent of any Ngram built over it. Meta carries opaque key/value
// data attached by extractors; it is not interpreted here and does not
// participate in equality.
type Ngram struct {
	Context   *Context
	CharStart int
	CharEnd   int
	Meta      map[string]string
}

// NewNgram creates a span over ctx with inclusive character bounds.
// A span with charStart > charEnd is malformed and rejected.
func NewNgram(ctx *Context, charStart, charEnd int) (*Ngram, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if charStart > charEnd {
		return nil, fmt.Errorf("%w: chars=[%d,%d]", ErrMalformedSpan, charStart, charEnd)
	}
	return &Ngram{Context: ctx, CharStart: charStart, CharEnd: charEnd}, nil
}

// Length returns the number of characters spanned, inclusive of both ends.
func (n *Ngram) Length() int {
	return n.CharEnd - n.CharStart + 1
}

// CharToWordIndex maps an absolute character index to the index of the word
// containing it: the greatest i such that CharOffsets[i] <= ci, or the last
// word if ci lies within or past it. A ci before the first offset is
// undefined input and yields -1 by the scan mechanics.
func (n *Ngram) CharToWordIndex(ci int) int {
	last := -1
	for i, co := range n.Context.CharOffsets {
		switch {
		case ci == co:
			return i
		case ci < co:
			return i - 1
		}
		last = i
	}
	return last
}

// WordStart returns the index of the word containing the span's first character.
func (n *Ngram) WordStart() int {
	return n.CharToWordIndex(n.CharStart)
}

// WordEnd returns the index of the word containing the span's last character.
func (n *Ngram) WordEnd() int {
	return n.CharToWordIndex(n.CharEnd)
}

// N returns the number of words spanned.
func (n *Ngram) N() int {
	return n.WordEnd() - n.WordStart() + 1
}

// WordToCharIndex returns the starting character offset of word wi.
func (n *Ngram) WordToCharIndex(wi int) (int, error) {
	if wi < 0 || wi >= len(n.Context.CharOffsets) {
		return 0, fmt.Errorf("%w: %d (context has %d words)", ErrWordIndexRange, wi, len(n.Context.CharOffsets))
	}
	return n.Context.CharOffsets[wi], nil
}

// SentOffset returns the Context's own starting character offset.
func (n *Ngram) SentOffset() int {
	return n.Context.CharOffsets[0]
}

// SentCharStart returns the span start relative to the Context's own text.
func (n *Ngram) SentCharStart() int {
	return n.CharStart - n.SentOffset()
}

// SentCharEnd returns the span end relative to the Context's own text.
func (n *Ngram) SentCharEnd() int {
	return n.CharEnd - n.SentOffset()
}

// AttribTokens returns the named per-word attribute sequence sliced to the
// span's word range, inclusive.
func (n *Ngram) AttribTokens(name string) ([]string, error) {
	tokens, ok := n.Context.Attributes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return tokens[n.WordStart() : n.WordEnd()+1], nil
}

// AttribSpan renders the named attribute over the span's word range. For the
// words attribute it returns the exact substring of the Context's raw text,
// preserving original spacing and punctuation; any other attribute has no
// inter-token characters to preserve and is joined with sep.
func (n *Ngram) AttribSpan(name, sep string) (string, error) {
	if name == WordsAttribute {
		// Span bounds may run past the text; clip like a text slice would.
		text := n.Context.Text
		start := n.SentCharStart()
		stop := n.SentCharEnd() + 1
		if start < 0 {
			start = 0
		}
		if stop > len(text) {
			stop = len(text)
		}
		if start >= stop {
			return "", nil
		}
		return text[start:stop], nil
	}
	tokens, err := n.AttribTokens(name)
	if err != nil {
		return "", err
	}
	return strings.Join(tokens, sep), nil
}

// Span returns the verbatim source text covered by the span.
func (n *Ngram) Span(sep string) string {
	s, _ := n.AttribSpan(WordsAttribute, sep)
	return s
}

// Slice derives a new Ngram from a character range relative to this span,
// not to the Context. A non-negative stop is exclusive; a negative stop
// counts back from the span end. The result shares the Context but carries
// no identity, set membership, or metadata.
func (n *Ngram) Slice(start, stop int) (*Ngram, error) {
	return NewNgram(n.Context, n.CharStart+start, n.sliceEnd(stop))
}

// SliceFrom derives a new Ngram from start through the span end.
func (n *Ngram) SliceFrom(start int) (*Ngram, error) {
	return NewNgram(n.Context, n.CharStart+start, n.CharEnd)
}

// SliceTo derives a new Ngram from the span start up to stop, with the same
// stop semantics as Slice.
func (n *Ngram) SliceTo(stop int) (*Ngram, error) {
	return NewNgram(n.Context, n.CharStart, n.sliceEnd(stop))
}

func (n *Ngram) sliceEnd(stop int) int {
	if stop >= 0 {
		return n.CharStart + stop - 1
	}
	return n.CharEnd + stop
}

// Equals reports structural equality: same Context identity and same
// character bounds. Set membership and metadata are excluded.
func (n *Ngram) Equals(other *Ngram) bool {
	if other == nil {
		return false
	}
	return n.Context.Id == other.Context.Id &&
		n.CharStart == other.CharStart &&
		n.CharEnd == other.CharEnd
}

// HashValue returns a structural hash over (context identity, char bounds).
// Equal spans hash equal.
func (n *Ngram) HashValue() ID {
	return IDFromContent(fmt.Sprintf("%d:%d:%d", n.Context.Id, n.CharStart, n.CharEnd))
}

func (n *Ngram) String() string {
	return fmt.Sprintf("Ngram(%q, context=%d, chars=[%d,%d], words=[%d,%d])",
		n.Span(" "), n.Context.Id, n.CharStart, n.CharEnd, n.WordStart(), n.WordEnd())
}
