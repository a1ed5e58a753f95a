// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateContext validates a Context according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - CharOffsets must be non-empty and strictly increasing
//   - every attribute sequence must have one entry per word
//
// NOT validated:
//   - ID (0 is valid until assigned; content IDs are assigned at storage time)
//   - presence of particular attributes ("words" is conventional, not required)
func ValidateContext(c *Context) error {
	if c == nil {
		return fmt.Errorf("%w: context is nil", ErrInvalidContext)
	}

	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContext, ErrEmptyText)
	}

	if len(c.CharOffsets) == 0 {
		return fmt.Errorf("%w: no char offsets", ErrInvalidContext)
	}

	for i := 1; i < len(c.CharOffsets); i++ {
		if c.CharOffsets[i] <= c.CharOffsets[i-1] {
			return fmt.Errorf("%w: %w at index %d", ErrInvalidContext, ErrOffsetsNotIncreasing, i)
		}
	}

	for name, tokens := range c.Attributes {
		if len(tokens) != len(c.CharOffsets) {
			return fmt.Errorf("%w: %w for attribute %q (%d tokens, %d words)",
				ErrInvalidContext, ErrAttributeLength, name, len(tokens), len(c.CharOffsets))
		}
	}

	return nil
}

// ValidateNgram validates an Ngram span.
//
// Validation rules:
//   - Context must be set
//   - CharStart <= CharEnd (length >= 1)
//
// NOT validated:
//   - bounds against the Context's text; character indices below the
//     Context's own start are undefined input, not rejected input
func ValidateNgram(n *Ngram) error {
	if n == nil {
		return fmt.Errorf("%w: ngram is nil", ErrInvalidCandidate)
	}

	if n.Context == nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrNilContext)
	}

	if n.CharStart > n.CharEnd {
		return fmt.Errorf("%w: %w: chars=[%d,%d]", ErrInvalidCandidate, ErrMalformedSpan, n.CharStart, n.CharEnd)
	}

	return nil
}

// ValidateCandidate validates a Candidate, checking that exactly the variant
// selected by the discriminator is populated and is itself valid.
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	switch c.Type {
	case CandidateTypeNgram:
		if c.Ngram == nil || c.Pair != nil {
			return fmt.Errorf("%w: %w: ngram candidate must carry only a span", ErrInvalidCandidate, ErrVariantMismatch)
		}
		return ValidateNgram(c.Ngram)
	case CandidateTypeNgramPair:
		if c.Pair == nil || c.Ngram != nil {
			return fmt.Errorf("%w: %w: pair candidate must carry only a pair", ErrInvalidCandidate, ErrVariantMismatch)
		}
		for i, member := range []*Candidate{c.Pair.Ngram0, c.Pair.Ngram1} {
			if member == nil || member.Type != CandidateTypeNgram || member.Ngram == nil {
				return fmt.Errorf("%w: %w: pair member %d is not an ngram candidate", ErrInvalidCandidate, ErrVariantMismatch, i)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown candidate type %d", ErrInvalidCandidate, int(c.Type))
	}
}

// ValidateCandidateSet validates a CandidateSet.
func ValidateCandidateSet(s *CandidateSet) error {
	if s == nil {
		return fmt.Errorf("%w: set is nil", ErrInvalidCandidateSet)
	}

	if s.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidateSet, ErrEmptySetName)
	}

	return nil
}
