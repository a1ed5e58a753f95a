package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// WordsAttribute is the name of the literal word-text attribute on a Context.
// It is the only attribute whose span extraction reproduces the raw source
// text verbatim, inter-word characters included.
const WordsAttribute = "words"

// Context is a tokenized text unit (typically a sentence) that spans index
// into. CharOffsets holds each word's starting character index in the
// document-absolute coordinate space; CharOffsets[0] is the context's own
// starting offset. Attributes holds named per-word sequences (words, POS
// tags, lemmas) parallel to CharOffsets.
//
// A Context is immutable once produced upstream. Many Ngrams may share a
// single Context concurrently without coordination.
type Context struct {
	Id          ID
	Text        string
	CharOffsets []int
	Attributes  map[string][]string
}

// NewContext creates a Context with a content-based ID derived from its text.
func NewContext(text string, charOffsets []int, attributes map[string][]string) *Context {
	return &Context{
		Id:          IDFromContent(text),
		Text:        text,
		CharOffsets: charOffsets,
		Attributes:  attributes,
	}
}

// WordCount returns the number of words in the context.
func (c *Context) WordCount() int {
	return len(c.CharOffsets)
}

// Words returns the literal word tokens, or nil if the attribute is absent.
func (c *Context) Words() []string {
	return c.Attributes[WordsAttribute]
}

// CandidateType discriminates the concrete shape of a Candidate.
// The set of variants is closed; the tag is fixed at construction.
type CandidateType int

const (
	// CandidateTypeNgram is a contiguous word span within one Context.
	CandidateTypeNgram CandidateType = iota + 1
	// CandidateTypeNgramPair is a directed relation between two ngram candidates.
	CandidateTypeNgramPair
)

func (t CandidateType) String() string {
	switch t {
	case CandidateTypeNgram:
		return "ngram"
	case CandidateTypeNgramPair:
		return "ngram_pair"
	default:
		return fmt.Sprintf("candidate_type(%d)", int(t))
	}
}

// Candidate is an extracted item under consideration by the labeling
// pipeline. Exactly one of Ngram or Pair is populated, selected by Type.
// SetId references the CandidateSet that owns this candidate; a candidate
// belongs to exactly one set for its lifetime.
type Candidate struct {
	Id    ID
	SetId ID
	Type  CandidateType
	Ngram *Ngram
	Pair  *NgramPair
}

// NewNgramCandidate wraps an Ngram span as a Candidate.
func NewNgramCandidate(n *Ngram) *Candidate {
	return &Candidate{Type: CandidateTypeNgram, Ngram: n}
}

// NewPairCandidate wraps an NgramPair relation as a Candidate.
func NewPairCandidate(p *NgramPair) *Candidate {
	return &Candidate{Type: CandidateTypeNgramPair, Pair: p}
}

func (c *Candidate) String() string {
	switch c.Type {
	case CandidateTypeNgram:
		return c.Ngram.String()
	case CandidateTypeNgramPair:
		return c.Pair.String()
	default:
		return fmt.Sprintf("Candidate(%d)", c.Id)
	}
}

// NgramPair is a directed relation between two ngram candidates (0 -> 1).
// The pair relates the candidates without owning them; the two spans need
// not share a Context.
type NgramPair struct {
	Ngram0 *Candidate
	Ngram1 *Candidate
}

// NewNgramPair creates a pair relating two ngram candidates.
// Both candidates must be of the ngram variant.
func NewNgramPair(ngram0, ngram1 *Candidate) (*NgramPair, error) {
	for _, c := range []*Candidate{ngram0, ngram1} {
		if c == nil || c.Type != CandidateTypeNgram || c.Ngram == nil {
			return nil, fmt.Errorf("%w: pair members must be ngram candidates", ErrVariantMismatch)
		}
	}
	return &NgramPair{Ngram0: ngram0, Ngram1: ngram1}, nil
}

// At returns the pair member at index i. Valid indices are 0 and 1.
func (p *NgramPair) At(i int) (*Candidate, error) {
	switch i {
	case 0:
		return p.Ngram0, nil
	case 1:
		return p.Ngram1, nil
	default:
		return nil, fmt.Errorf("%w: %d (valid keys are 0 and 1)", ErrPairIndex, i)
	}
}

func (p *NgramPair) String() string {
	return fmt.Sprintf("NgramPair(%s, %s)", p.Ngram0.Ngram, p.Ngram1.Ngram)
}

// CandidateSet is a named, ordered collection that exclusively owns its
// candidates. Iteration order is insertion order and is stable until the
// membership is mutated.
type CandidateSet struct {
	Id         ID
	Name       string
	candidates []*Candidate
}

// NewCandidateSet creates an empty candidate set with the given name.
func NewCandidateSet(name string) *CandidateSet {
	return &CandidateSet{Name: name}
}

// Append adds a candidate to the end of the set and records the set as the
// candidate's owner.
func (s *CandidateSet) Append(c *Candidate) {
	c.SetId = s.Id
	s.candidates = append(s.candidates, c)
}

// Remove deletes a candidate from the set, preserving the order of the
// remaining candidates, and clears the candidate's owning-set reference.
func (s *CandidateSet) Remove(c *Candidate) error {
	for i, member := range s.candidates {
		if member == c {
			s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
			c.SetId = 0
			return nil
		}
	}
	return fmt.Errorf("%w: candidate %d not in set %q", ErrNotMember, c.Id, s.Name)
}

// Len returns the number of candidates in the set.
func (s *CandidateSet) Len() int {
	return len(s.candidates)
}

// At returns the candidate at position i in insertion order.
func (s *CandidateSet) At(i int) (*Candidate, error) {
	if i < 0 || i >= len(s.candidates) {
		return nil, fmt.Errorf("%w: %d (set has %d candidates)", ErrIndexRange, i, len(s.candidates))
	}
	return s.candidates[i], nil
}

// Candidates returns the candidates in insertion order.
// The returned slice is the set's backing storage; callers must not mutate it.
func (s *CandidateSet) Candidates() []*Candidate {
	return s.candidates
}

func (s *CandidateSet) String() string {
	return "Candidate Set (" + s.Name + ")"
}
