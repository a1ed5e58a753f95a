package badger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	setSeq  *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	idSeq, err := backend.GetSequence(candidateIDSeq)
	if err != nil {
		return nil, err
	}

	setSeq, err := backend.GetSequence(setIDSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	return &CandidateRepository{
		backend: backend,
		idSeq:   idSeq,
		setSeq:  setSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *CandidateRepository) Close() error {
	if err := r.idSeq.Release(); err != nil {
		return err
	}
	return r.setSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CandidateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateCandidateSet creates an empty named candidate set.
func (r *CandidateRepository) CreateCandidateSet(ctx context.Context, name string) (*core.CandidateSet, error) {
	set := core.NewCandidateSet(name)
	if err := core.ValidateCandidateSet(set); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nameKey := makeSetNameKey(name)
		if _, err := tx.Get(nameKey); err == nil {
			return fmt.Errorf("%w: candidate set %q", storage.ErrDuplicateKey, name)
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		id, err := nextID(r.setSeq)
		if err != nil {
			return err
		}
		set.Id = id

		if err := tx.Set(makeSetKey(set.Id), storage.MarshalCandidateSet(set)); err != nil {
			return err
		}
		if err := tx.Set(nameKey, storage.MarshalID(set.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return set, nil
}

// GetCandidateSet retrieves a set by ID with its candidates hydrated.
func (r *CandidateRepository) GetCandidateSet(ctx context.Context, id core.ID) (*core.CandidateSet, error) {
	var result *core.CandidateSet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		set, err := readSet(tx, makeSetKey(id))
		if err != nil {
			return err
		}
		if set == nil {
			return storage.ErrNotFound
		}
		if err := r.hydrateSet(tx, set); err != nil {
			return err
		}
		result = set
		return nil
	}, false)
	return result, err
}

// GetCandidateSetByName retrieves a set by its unique name with its
// candidates hydrated.
func (r *CandidateRepository) GetCandidateSetByName(ctx context.Context, name string) (*core.CandidateSet, error) {
	var result *core.CandidateSet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := readSetName(tx, name)
		if err != nil {
			return err
		}

		set, err := readSet(tx, makeSetKey(id))
		if err != nil {
			return err
		}
		if set == nil {
			// Name index points at a missing set record.
			return fmt.Errorf("%w: set %q (id %d) has no record", storage.ErrIntegrity, name, id)
		}
		if err := r.hydrateSet(tx, set); err != nil {
			return err
		}
		result = set
		return nil
	}, false)
	return result, err
}

// ListCandidateSets retrieves all sets without hydrating their members.
func (r *CandidateRepository) ListCandidateSets(ctx context.Context) ([]*core.CandidateSet, error) {
	var results []*core.CandidateSet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(setRecordPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}
			var set *core.CandidateSet
			err := iter.Item().Value(func(val []byte) error {
				var err error
				set, err = storage.UnmarshalCandidateSet(val)
				return err
			})
			if err != nil {
				return err
			}
			if set != nil {
				results = append(results, set)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteCandidateSet removes a set and cascade-deletes every candidate it
// owns in a single transaction. A candidate must never outlive its owning
// set.
func (r *CandidateRepository) DeleteCandidateSet(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		set, err := readSet(tx, makeSetKey(id))
		if err != nil {
			return err
		}
		if set == nil {
			return storage.ErrNotFound
		}

		memberIDs, memberKeys, err := readMemberIndex(tx, id)
		if err != nil {
			return err
		}
		for i, candidateID := range memberIDs {
			if err := tx.Delete(makeCandidateKey(candidateID)); err != nil {
				return err
			}
			if err := tx.Delete(memberKeys[i]); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeSetNameKey(set.Name)); err != nil {
			return err
		}
		if err := tx.Delete(makeSetKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddCandidates persists candidates into the given set. The batch is
// all-or-nothing: on any error no candidate is stored, the set is left
// untouched, and the batch carries no identity, so a retry starts clean.
func (r *CandidateRepository) AddCandidates(ctx context.Context, set *core.CandidateSet, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, c := range candidates {
			if err := core.ValidateCandidate(c); err != nil {
				return err
			}
			if c.Type == core.CandidateTypeNgramPair {
				if err := checkPairMembers(tx, set, c); err != nil {
					return err
				}
			}

			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			c.Id = id
			c.SetId = set.Id

			rec, err := storage.RecordFromCandidate(c)
			if err != nil {
				return err
			}
			if err := tx.Set(makeCandidateKey(c.Id), storage.MarshalCandidate(rec)); err != nil {
				return err
			}
			if err := tx.Set(makeSetMemberKey(set.Id, c.Id), storage.MarshalID(c.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		for _, c := range candidates {
			c.Id = 0
			c.SetId = 0
		}
		return nil, err
	}

	// Storage is committed; now the in-memory set can follow.
	for _, c := range candidates {
		set.Append(c)
	}
	return candidates, nil
}

// RemoveCandidates removes candidates by their IDs. Removing an ngram also
// removes any pair candidates of the same set that reference it, so stored
// pairs never dangle. A pair already cascade-removed earlier in the batch
// counts as removed, not missing.
func (r *CandidateRepository) RemoveCandidates(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		removed := make(map[core.ID]bool)
		for _, id := range ids {
			if removed[id] {
				continue
			}

			key := makeCandidateKey(id)
			rec, err := readCandidate(tx, key)
			if err != nil {
				return err
			}
			if rec == nil {
				return storage.ErrNotFound
			}

			if rec.Type == core.CandidateTypeNgram {
				pairIDs, err := referencingPairs(tx, rec.SetId, id)
				if err != nil {
					return err
				}
				for _, pairID := range pairIDs {
					if err := tx.Delete(makeSetMemberKey(rec.SetId, pairID)); err != nil {
						return err
					}
					if err := tx.Delete(makeCandidateKey(pairID)); err != nil {
						return err
					}
					removed[pairID] = true
				}
			}

			if err := tx.Delete(makeSetMemberKey(rec.SetId, rec.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			removed[id] = true
		}
		return tx.Commit()
	}, true)
}

// GetCandidate retrieves a single candidate by ID, hydrated.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	var result *core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		rec, err := readCandidate(tx, makeCandidateKey(id))
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrNotFound
		}
		result, err = buildCandidate(tx, rec)
		return err
	}, false)
	return result, err
}

// GetSetCandidates retrieves the candidates owned by a set in insertion order.
func (r *CandidateRepository) GetSetCandidates(ctx context.Context, setID core.ID) ([]*core.Candidate, error) {
	var results []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = readSetCandidates(tx, setID)
		return err
	}, false)
	return results, err
}

// Helper methods

// nextID draws the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// checkPairMembers verifies that a pair candidate references persisted ngram
// candidates of the same set.
func checkPairMembers(tx *badger.Txn, set *core.CandidateSet, c *core.Candidate) error {
	for i, member := range []*core.Candidate{c.Pair.Ngram0, c.Pair.Ngram1} {
		if member.Id == 0 || member.SetId != set.Id {
			return fmt.Errorf("%w: pair member %d does not belong to set %q", storage.ErrIntegrity, i, set.Name)
		}
		rec, err := readCandidate(tx, makeCandidateKey(member.Id))
		if err != nil {
			return err
		}
		if rec == nil || rec.SetId != set.Id || rec.Type != core.CandidateTypeNgram {
			return fmt.Errorf("%w: pair member %d (id %d) does not resolve to an ngram in set %q",
				storage.ErrIntegrity, i, member.Id, set.Name)
		}
	}
	return nil
}

// referencingPairs returns the IDs of pair candidates in a set that
// reference the given ngram candidate.
func referencingPairs(tx *badger.Txn, setID, ngramID core.ID) ([]core.ID, error) {
	memberIDs, _, err := readMemberIndex(tx, setID)
	if err != nil {
		return nil, err
	}

	var pairIDs []core.ID
	for _, memberID := range memberIDs {
		if memberID == ngramID {
			continue
		}
		rec, err := readCandidate(tx, makeCandidateKey(memberID))
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Type != core.CandidateTypeNgramPair {
			continue
		}
		if rec.Ngram0Id == ngramID || rec.Ngram1Id == ngramID {
			pairIDs = append(pairIDs, rec.Id)
		}
	}
	return pairIDs, nil
}

// readCandidate reads a candidate record from the transaction.
// Returns nil without error when the key is absent.
func readCandidate(tx *badger.Txn, key []byte) (*storage.CandidateRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var rec *storage.CandidateRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		rec, unmarshalErr = storage.UnmarshalCandidate(val)
		return unmarshalErr
	})
	return rec, err
}

// readSet reads a candidate set record from the transaction.
func readSet(tx *badger.Txn, key []byte) (*core.CandidateSet, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var set *core.CandidateSet
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		set, unmarshalErr = storage.UnmarshalCandidateSet(val)
		return unmarshalErr
	})
	return set, err
}

// readSetName resolves a set name through the name index.
func readSetName(tx *badger.Txn, name string) (core.ID, error) {
	item, err := tx.Get(makeSetNameKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, storage.ErrNotFound
		}
		return 0, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return id, err
}

// readMemberIndex returns a set's member candidate IDs and their index keys
// in insertion order.
func readMemberIndex(tx *badger.Txn, setID core.ID) ([]core.ID, [][]byte, error) {
	var (
		ids  []core.ID
		keys [][]byte
	)

	prefix := makePartialSetMemberKey(setID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}

		var candidateID core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			candidateID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, nil, err
		}

		ids = append(ids, candidateID)
		keys = append(keys, iter.Item().KeyCopy(nil))
	}

	return ids, keys, nil
}

// readSetCandidates loads and hydrates a set's candidates in insertion order.
func readSetCandidates(tx *badger.Txn, setID core.ID) ([]*core.Candidate, error) {
	ids, _, err := readMemberIndex(tx, setID)
	if err != nil {
		return nil, err
	}

	var results []*core.Candidate
	for _, id := range ids {
		rec, err := readCandidate(tx, makeCandidateKey(id))
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: set %d member %d has no record", storage.ErrIntegrity, setID, id)
		}
		c, err := buildCandidate(tx, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, nil
}

// hydrateSet fills a set with its candidates in insertion order.
func (r *CandidateRepository) hydrateSet(tx *badger.Txn, set *core.CandidateSet) error {
	candidates, err := readSetCandidates(tx, set.Id)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		set.Append(c)
	}
	return nil
}

// buildCandidate rehydrates a flat record into the in-memory model,
// resolving context and pair-member references.
func buildCandidate(tx *badger.Txn, rec *storage.CandidateRecord) (*core.Candidate, error) {
	switch rec.Type {
	case core.CandidateTypeNgram:
		c, err := readContext(tx, makeContextKey(rec.ContextId))
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: ngram %d references missing context %d", storage.ErrIntegrity, rec.Id, rec.ContextId)
		}
		ngram, err := core.NewNgram(c, rec.CharStart, rec.CharEnd)
		if err != nil {
			return nil, err
		}
		ngram.Meta = rec.Meta
		return &core.Candidate{Id: rec.Id, SetId: rec.SetId, Type: rec.Type, Ngram: ngram}, nil

	case core.CandidateTypeNgramPair:
		members := make([]*core.Candidate, 2)
		for i, memberID := range []core.ID{rec.Ngram0Id, rec.Ngram1Id} {
			memberRec, err := readCandidate(tx, makeCandidateKey(memberID))
			if err != nil {
				return nil, err
			}
			if memberRec == nil || memberRec.SetId != rec.SetId {
				return nil, fmt.Errorf("%w: pair %d references candidate %d outside set %d",
					storage.ErrIntegrity, rec.Id, memberID, rec.SetId)
			}
			members[i], err = buildCandidate(tx, memberRec)
			if err != nil {
				return nil, err
			}
		}
		pair, err := core.NewNgramPair(members[0], members[1])
		if err != nil {
			return nil, err
		}
		return &core.Candidate{Id: rec.Id, SetId: rec.SetId, Type: rec.Type, Pair: pair}, nil

	default:
		return nil, fmt.Errorf("%w: candidate %d has unknown type %d", storage.ErrIntegrity, rec.Id, int(rec.Type))
	}
}
