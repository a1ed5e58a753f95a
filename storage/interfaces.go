package storage

import (
	"context"

	"github.com/poiesic/spanbase/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ContextRepository provides operations for managing tokenized contexts.
// Contexts are immutable coordinate spaces shared by many candidates; they
// are stored under content-based IDs so repeated ingestion is idempotent.
type ContextRepository interface {
	Repository

	// AddContexts stores one or more contexts. Contexts with ID=0 are
	// assigned a content-based ID derived from their text. Returns the
	// contexts with IDs populated.
	AddContexts(ctx context.Context, contexts ...*core.Context) ([]*core.Context, error)

	// GetContext retrieves a single context by ID.
	// Returns ErrNotFound if the context doesn't exist.
	GetContext(ctx context.Context, id core.ID) (*core.Context, error)

	// GetContexts retrieves multiple contexts by their IDs.
	// Returns only the contexts that exist (no error for missing contexts).
	GetContexts(ctx context.Context, ids ...core.ID) ([]*core.Context, error)

	// ListContexts retrieves all stored contexts.
	ListContexts(ctx context.Context) ([]*core.Context, error)

	// DeleteContexts removes contexts by their IDs. Callers must not delete
	// a context still referenced by stored candidates.
	// Returns ErrNotFound if any context doesn't exist.
	DeleteContexts(ctx context.Context, ids ...core.ID) error
}

// CandidateRepository provides operations for managing candidates and the
// candidate sets that own them. It preserves the core model's invariants:
// set names are unique, (candidate id, set id) pairs are globally unique,
// a pair's ngram references resolve within the owning set, and deleting a
// set cascades over every candidate it owns.
type CandidateRepository interface {
	Repository

	// CreateCandidateSet creates an empty named candidate set.
	// Returns ErrDuplicateKey if a set with the name already exists.
	CreateCandidateSet(ctx context.Context, name string) (*core.CandidateSet, error)

	// GetCandidateSet retrieves a set by ID with its candidates hydrated in
	// insertion order. Returns ErrNotFound if the set doesn't exist.
	GetCandidateSet(ctx context.Context, id core.ID) (*core.CandidateSet, error)

	// GetCandidateSetByName retrieves a set by its unique name with its
	// candidates hydrated. Returns ErrNotFound if no set has the name.
	GetCandidateSetByName(ctx context.Context, name string) (*core.CandidateSet, error)

	// ListCandidateSets retrieves all sets without hydrating their members.
	ListCandidateSets(ctx context.Context) ([]*core.CandidateSet, error)

	// DeleteCandidateSet removes a set and cascade-deletes every candidate
	// it owns, atomically. Returns ErrNotFound if the set doesn't exist.
	DeleteCandidateSet(ctx context.Context, id core.ID) error

	// AddCandidates persists candidates into the given set: assigns sequence
	// IDs, records set membership, and appends to the in-memory set. Pair
	// candidates must reference already-persisted ngram candidates of the
	// same set; otherwise ErrIntegrity is returned. The batch is
	// all-or-nothing: on error nothing is stored and the set is untouched.
	AddCandidates(ctx context.Context, set *core.CandidateSet, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// RemoveCandidates removes candidates by their IDs, including their set
	// membership entries. Removing an ngram cascades to pair candidates that
	// reference it. Returns ErrNotFound if any candidate doesn't exist.
	RemoveCandidates(ctx context.Context, ids ...core.ID) error

	// GetCandidate retrieves a single candidate by ID, hydrated with its
	// context (and, for pairs, its member candidates).
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error)

	// GetSetCandidates retrieves the candidates owned by a set, hydrated,
	// in insertion order.
	GetSetCandidates(ctx context.Context, setID core.ID) ([]*core.Candidate, error)
}
