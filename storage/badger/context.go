package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/storage"
)

// ContextRepository implements storage.ContextRepository for BadgerDB.
type ContextRepository struct {
	backend *Backend
}

var _ storage.ContextRepository = (*ContextRepository)(nil)

// NewContextRepository creates a new ContextRepository.
func NewContextRepository(backend *Backend) (*ContextRepository, error) {
	return &ContextRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ContextRepository has no resources to release.
func (r *ContextRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ContextRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddContexts stores one or more contexts under content-based IDs.
func (r *ContextRepository) AddContexts(ctx context.Context, contexts ...*core.Context) ([]*core.Context, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, c := range contexts {
			if err := core.ValidateContext(c); err != nil {
				return err
			}

			// Use content-based ID if not set
			if c.Id == 0 {
				c.Id = core.IDFromContent(c.Text)
			}

			key := makeContextKey(c.Id)
			if err := tx.Set(key, storage.MarshalContext(c)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return contexts, err
}

// GetContext retrieves a single context by ID.
func (r *ContextRepository) GetContext(ctx context.Context, id core.ID) (*core.Context, error) {
	var result *core.Context
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readContext(tx, makeContextKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetContexts retrieves multiple contexts by their IDs.
func (r *ContextRepository) GetContexts(ctx context.Context, ids ...core.ID) ([]*core.Context, error) {
	var result []*core.Context
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			c, err := readContext(tx, makeContextKey(id))
			if err != nil {
				return err
			}
			if c != nil {
				result = append(result, c)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListContexts retrieves all stored contexts.
func (r *ContextRepository) ListContexts(ctx context.Context) ([]*core.Context, error) {
	var results []*core.Context
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(contextRecordPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}
			var c *core.Context
			err := iter.Item().Value(func(val []byte) error {
				var err error
				c, err = storage.UnmarshalContext(val)
				return err
			})
			if err != nil {
				return err
			}
			if c != nil {
				results = append(results, c)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteContexts removes contexts by their IDs.
func (r *ContextRepository) DeleteContexts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeContextKey(id)
			c, err := readContext(tx, key)
			if err != nil {
				return err
			}
			if c == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readContext reads a context from the transaction.
// Returns nil without error when the key is absent.
func readContext(tx *badger.Txn, key []byte) (*core.Context, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var c *core.Context
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		c, unmarshalErr = storage.UnmarshalContext(val)
		return unmarshalErr
	})
	return c, err
}
