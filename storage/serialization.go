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


package storage

import (
	"errors"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/spanbase/core"
)

// decodeErr classifies an unmarshal failure: structural failures keep their
// sentinel, anything else means the bytes ran out before a complete record.
func decodeErr(err error) error {
	if errors.Is(err, ErrSerializationFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTruncatedData, err)
}

// CandidateRecord is the flat wire form of a core.Candidate: in-memory
// pointers (context, pair members) are reduced to IDs at the storage
// boundary and rehydrated by lookup on read. The discriminator tag selects
// which field set is meaningful, mirroring the polymorphic candidate model.
type CandidateRecord struct {
	Id    core.ID
	SetId core.ID
	Type  core.CandidateType

	// Ngram variant
	ContextId core.ID
	CharStart int
	CharEnd   int
	Meta      map[string]string

	// NgramPair variant
	Ngram0Id core.ID
	Ngram1Id core.ID
}

// RecordFromCandidate flattens a candidate for persistence. The candidate
// must be valid; pair members must already carry persistent IDs.
func RecordFromCandidate(c *core.Candidate) (*CandidateRecord, error) {
	rec := &CandidateRecord{Id: c.Id, SetId: c.SetId, Type: c.Type}
	switch c.Type {
	case core.CandidateTypeNgram:
		rec.ContextId = c.Ngram.Context.Id
		rec.CharStart = c.Ngram.CharStart
		rec.CharEnd = c.Ngram.CharEnd
		rec.Meta = c.Ngram.Meta
	case core.CandidateTypeNgramPair:
		if c.Pair.Ngram0.Id == 0 || c.Pair.Ngram1.Id == 0 {
			return nil, fmt.Errorf("%w: pair references unpersisted ngram candidates", ErrIntegrity)
		}
		rec.Ngram0Id = c.Pair.Ngram0.Id
		rec.Ngram1Id = c.Pair.Ngram1.Id
	default:
		return nil, fmt.Errorf("%w: unknown candidate type %d", ErrSerializationFailed, int(c.Type))
	}
	return rec, nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, decodeErr(err)
	}
	return core.ID(v), nil
}

// MarshalContext serializes a Context to bytes.
func MarshalContext(c *core.Context) []byte {
	buf := make([]byte, contextMUS.Size(c))
	contextMUS.Marshal(c, buf)
	return buf
}

// UnmarshalContext deserializes a Context from bytes.
func UnmarshalContext(data []byte) (*core.Context, error) {
	c, _, err := contextMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr(err)
	}
	return c, nil
}

// MarshalCandidateSet serializes a CandidateSet record (identity and name;
// membership lives in the member index).
func MarshalCandidateSet(s *core.CandidateSet) []byte {
	buf := make([]byte, setMUS.Size(s))
	setMUS.Marshal(s, buf)
	return buf
}

// UnmarshalCandidateSet deserializes a CandidateSet record.
func UnmarshalCandidateSet(data []byte) (*core.CandidateSet, error) {
	s, _, err := setMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr(err)
	}
	return s, nil
}

// MarshalCandidate serializes a CandidateRecord to bytes.
func MarshalCandidate(rec *CandidateRecord) []byte {
	buf := make([]byte, candidateMUS.Size(rec))
	candidateMUS.Marshal(rec, buf)
	return buf
}

// UnmarshalCandidate deserializes a CandidateRecord from bytes.
func UnmarshalCandidate(data []byte) (*CandidateRecord, error) {
	rec, _, err := candidateMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr(err)
	}
	return rec, nil
}

// Hand-written MUS serializers. The records are small and flat, so the
// format is spelled out directly with mus-go varint/ord primitives.

var (
	contextMUS   = contextSer{}
	setMUS       = setSer{}
	candidateMUS = candidateSer{}
)

type contextSer struct{}

func (contextSer) Size(c *core.Context) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.Text)
	size += varint.Int.Size(len(c.CharOffsets))
	for _, co := range c.CharOffsets {
		size += varint.Int.Size(co)
	}
	size += varint.Int.Size(len(c.Attributes))
	for name, tokens := range c.Attributes {
		size += ord.String.Size(name)
		size += sizeStringSlice(tokens)
	}
	return
}

func (contextSer) Marshal(c *core.Context, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += varint.Int.Marshal(len(c.CharOffsets), bs[n:])
	for _, co := range c.CharOffsets {
		n += varint.Int.Marshal(co, bs[n:])
	}
	n += varint.Int.Marshal(len(c.Attributes), bs[n:])
	for name, tokens := range c.Attributes {
		n += ord.String.Marshal(name, bs[n:])
		n += marshalStringSlice(tokens, bs[n:])
	}
	return
}

func (contextSer) Unmarshal(bs []byte) (c *core.Context, n int, err error) {
	c = &core.Context{}
	var (
		id uint64
		n1 int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Id = core.ID(id)

	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		err = fmt.Errorf("%w: negative offset count", ErrSerializationFailed)
		return
	}
	if count > 0 {
		c.CharOffsets = make([]int, count)
		for i := 0; i < count; i++ {
			c.CharOffsets[i], n1, err = varint.Int.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}

	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		err = fmt.Errorf("%w: negative attribute count", ErrSerializationFailed)
		return
	}
	if count > 0 {
		c.Attributes = make(map[string][]string, count)
		for i := 0; i < count; i++ {
			var name string
			name, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			var tokens []string
			tokens, n1, err = unmarshalStringSlice(bs[n:])
			n += n1
			if err != nil {
				return
			}
			c.Attributes[name] = tokens
		}
	}
	return
}

type setSer struct{}

func (setSer) Size(s *core.CandidateSet) int {
	return varint.Uint64.Size(uint64(s.Id)) + ord.String.Size(s.Name)
}

func (setSer) Marshal(s *core.CandidateSet, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(s.Id), bs)
	n += ord.String.Marshal(s.Name, bs[n:])
	return
}

func (setSer) Unmarshal(bs []byte) (s *core.CandidateSet, n int, err error) {
	var (
		id uint64
		n1 int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	var name string
	name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s = &core.CandidateSet{Id: core.ID(id), Name: name}
	return
}

type candidateSer struct{}

func (candidateSer) Size(rec *CandidateRecord) (size int) {
	size = varint.Uint64.Size(uint64(rec.Id))
	size += varint.Uint64.Size(uint64(rec.SetId))
	size += varint.Int.Size(int(rec.Type))
	switch rec.Type {
	case core.CandidateTypeNgram:
		size += varint.Uint64.Size(uint64(rec.ContextId))
		size += varint.Int.Size(rec.CharStart)
		size += varint.Int.Size(rec.CharEnd)
		size += varint.Int.Size(len(rec.Meta))
		for k, v := range rec.Meta {
			size += ord.String.Size(k)
			size += ord.String.Size(v)
		}
	case core.CandidateTypeNgramPair:
		size += varint.Uint64.Size(uint64(rec.Ngram0Id))
		size += varint.Uint64.Size(uint64(rec.Ngram1Id))
	}
	return
}

func (candidateSer) Marshal(rec *CandidateRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(rec.Id), bs)
	n += varint.Uint64.Marshal(uint64(rec.SetId), bs[n:])
	n += varint.Int.Marshal(int(rec.Type), bs[n:])
	switch rec.Type {
	case core.CandidateTypeNgram:
		n += varint.Uint64.Marshal(uint64(rec.ContextId), bs[n:])
		n += varint.Int.Marshal(rec.CharStart, bs[n:])
		n += varint.Int.Marshal(rec.CharEnd, bs[n:])
		n += varint.Int.Marshal(len(rec.Meta), bs[n:])
		for k, v := range rec.Meta {
			n += ord.String.Marshal(k, bs[n:])
			n += ord.String.Marshal(v, bs[n:])
		}
	case core.CandidateTypeNgramPair:
		n += varint.Uint64.Marshal(uint64(rec.Ngram0Id), bs[n:])
		n += varint.Uint64.Marshal(uint64(rec.Ngram1Id), bs[n:])
	}
	return
}

func (candidateSer) Unmarshal(bs []byte) (rec *CandidateRecord, n int, err error) {
	rec = &CandidateRecord{}
	var (
		v  uint64
		n1 int
	)
	v, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	rec.Id = core.ID(v)

	v, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	rec.SetId = core.ID(v)

	var tag int
	tag, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	rec.Type = core.CandidateType(tag)

	switch rec.Type {
	case core.CandidateTypeNgram:
		v, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		rec.ContextId = core.ID(v)

		rec.CharStart, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		rec.CharEnd, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}

		var count int
		count, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		if count < 0 {
			err = fmt.Errorf("%w: negative meta count", ErrSerializationFailed)
			return
		}
		if count > 0 {
			rec.Meta = make(map[string]string, count)
			for i := 0; i < count; i++ {
				var k, val string
				k, n1, err = ord.String.Unmarshal(bs[n:])
				n += n1
				if err != nil {
					return
				}
				val, n1, err = ord.String.Unmarshal(bs[n:])
				n += n1
				if err != nil {
					return
				}
				rec.Meta[k] = val
			}
		}
	case core.CandidateTypeNgramPair:
		v, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		rec.Ngram0Id = core.ID(v)

		v, n1, err = varint.Uint64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		rec.Ngram1Id = core.ID(v)
	default:
		err = fmt.Errorf("%w: unknown candidate type %d", ErrSerializationFailed, tag)
	}
	return
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	var count int
	count, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if count < 0 {
		err = fmt.Errorf("%w: negative slice length", ErrSerializationFailed)
		return
	}
	if count == 0 {
		return
	}
	v = make([]string, count)
	var n1 int
	for i := 0; i < count; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}
