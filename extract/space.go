package extract

import (
	"fmt"

	"github.com/poiesic/spanbase/core"
)

// CandidateSpace enumerates the raw ngram spans a context offers for
// consideration, before any matching or filtering.
type CandidateSpace interface {
	Apply(c *core.Context) ([]*core.Ngram, error)
}

// Matcher filters spans produced by a CandidateSpace. A nil Matcher accepts
// every span.
type Matcher func(n *core.Ngram) bool

// NgramSpace enumerates every contiguous span of 1 to MaxN words.
// Spans are emitted in word order, shortest first at each starting word.
type NgramSpace struct {
	MaxN int
}

var _ CandidateSpace = NgramSpace{}

// Apply enumerates the context's word spans as character-bounded ngrams.
// The context must carry the words attribute so span ends can be bounded by
// the final word's length.
func (s NgramSpace) Apply(c *core.Context) ([]*core.Ngram, error) {
	if s.MaxN < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxN, s.MaxN)
	}
	words := c.Words()
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: context %d", ErrMissingWords, c.Id)
	}

	var spans []*core.Ngram
	for i := range c.CharOffsets {
		for n := 1; n <= s.MaxN && i+n <= len(words); n++ {
			j := i + n - 1
			start := c.CharOffsets[i]
			end := c.CharOffsets[j] + len(words[j]) - 1
			g, err := core.NewNgram(c, start, end)
			if err != nil {
				return nil, err
			}
			spans = append(spans, g)
		}
	}
	return spans, nil
}
