package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/spanbase/core"
)

// Key prefixes for different data types
const (
	contextRecordPrefix   = "ctxrec"
	candidateRecordPrefix = "canrec"
	candidateIDSeq        = "canrecseq"
	setRecordPrefix       = "cansrec"
	setIDSeq              = "cansrecseq"
	setNamePrefix         = "cansname"
	setMemberPrefix       = "cansmem"
)

// makeContextKey generates a key for a context by ID.
func makeContextKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", contextRecordPrefix, id))
}

// makeCandidateKey generates a key for a candidate by ID.
func makeCandidateKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", candidateRecordPrefix, id))
}

// makeSetKey generates a key for a candidate set by ID.
func makeSetKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", setRecordPrefix, id))
}

// makeSetNameKey generates a key for the unique set-name index.
func makeSetNameKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", setNamePrefix, name))
}

// makeSetMemberKey generates a composite key for the set membership index.
// Format: prefix:setID:candidateID. Candidate IDs come from a monotonically
// increasing sequence, so key order within a set is insertion order.
func makeSetMemberKey(setID, candidateID core.ID) []byte {
	prefix := setMemberPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for setID + 8 bytes for candidateID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(setID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(candidateID))
	return buf
}

// makePartialSetMemberKey generates a partial key for iterating a set's members.
// Format: prefix:setID
func makePartialSetMemberKey(setID core.ID) []byte {
	prefix := setMemberPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for setID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(setID))
	return buf
}
