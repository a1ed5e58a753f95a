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

import "errors"

// Domain validation errors
var (
	// ErrInvalidContext indicates a Context failed validation.
	ErrInvalidContext = errors.New("invalid context")

	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrInvalidCandidateSet indicates a CandidateSet failed validation.
	ErrInvalidCandidateSet = errors.New("invalid candidate set")

	// ErrMalformedSpan indicates a span with char_start > char_end.
	ErrMalformedSpan = errors.New("malformed span")

	// ErrNilContext indicates an Ngram constructed without a Context.
	ErrNilContext = errors.New("ngram requires a context")

	// ErrWordIndexRange indicates a word index outside [0, word count).
	ErrWordIndexRange = errors.New("word index out of range")

	// ErrUnknownAttribute indicates a per-word attribute absent from the Context.
	ErrUnknownAttribute = errors.New("unknown context attribute")

	// ErrPairIndex indicates an NgramPair access with an index other than 0 or 1.
	ErrPairIndex = errors.New("invalid pair index")

	// ErrIndexRange indicates a CandidateSet access outside the set's bounds.
	ErrIndexRange = errors.New("candidate index out of range")

	// ErrNotMember indicates a removal of a candidate that is not in the set.
	ErrNotMember = errors.New("candidate not a member of set")

	// ErrVariantMismatch indicates a candidate variant inconsistent with its type tag.
	ErrVariantMismatch = errors.New("candidate variant mismatch")

	// ErrEmptyText indicates a Context with no text.
	ErrEmptyText = errors.New("context text cannot be empty")

	// ErrEmptySetName indicates a CandidateSet with no name.
	ErrEmptySetName = errors.New("candidate set name cannot be empty")

	// ErrOffsetsNotIncreasing indicates char offsets that are not strictly increasing.
	ErrOffsetsNotIncreasing = errors.New("char offsets must be strictly increasing")

	// ErrAttributeLength indicates an attribute sequence whose length differs
	// from the Context's word count.
	ErrAttributeLength = errors.New("attribute length must equal word count")
)
