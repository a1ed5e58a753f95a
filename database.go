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


package spanbase

import (
	"context"
	"log/slog"

	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/extract"
	"github.com/poiesic/spanbase/storage"
	"github.com/poiesic/spanbase/storage/badger"
)

// Database bundles the storage backend with the context and candidate
// repositories behind a single open/close lifecycle.
type Database struct {
	backend       *badger.Backend
	contextRepo   storage.ContextRepository
	candidateRepo storage.CandidateRepository
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
}

// WithInMemory opens the backend in memory, without touching disk.
// Intended for tests and experiments.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	candidateRepo, err := badger.NewCandidateRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	contextRepo, err := badger.NewContextRepository(backend)
	if err != nil {
		candidateRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		contextRepo:   contextRepo,
		candidateRepo: candidateRepo,
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.contextRepo.Close(); err != nil {
		db.logger.Error("error closing context repository", "err", err)
		return err
	}
	if err := db.candidateRepo.Close(); err != nil {
		db.logger.Error("error closing candidate repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ContextRepository() storage.ContextRepository {
	return db.contextRepo
}

func (db *Database) CandidateRepository() storage.CandidateRepository {
	return db.candidateRepo
}

// NewExtractionPipeline creates an extraction pipeline over this database's
// repositories.
func (db *Database) NewExtractionPipeline(opts ...extract.Option) (*extract.Pipeline, error) {
	return extract.NewPipeline(db.candidateRepo, db.contextRepo, opts...)
}

// CreateCandidateSet creates an empty named candidate set.
func (db *Database) CreateCandidateSet(ctx context.Context, name string) (*core.CandidateSet, error) {
	return db.candidateRepo.CreateCandidateSet(ctx, name)
}

// AddNgram persists a span as an ngram candidate of the given set.
func (db *Database) AddNgram(ctx context.Context, set *core.CandidateSet, n *core.Ngram) (*core.Candidate, error) {
	added, err := db.candidateRepo.AddCandidates(ctx, set, core.NewNgramCandidate(n))
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// AddNgramPair persists a directed relation between two previously persisted
// ngram candidates of the same set.
func (db *Database) AddNgramPair(ctx context.Context, set *core.CandidateSet, ngram0, ngram1 *core.Candidate) (*core.Candidate, error) {
	pair, err := core.NewNgramPair(ngram0, ngram1)
	if err != nil {
		return nil, err
	}
	added, err := db.candidateRepo.AddCandidates(ctx, set, core.NewPairCandidate(pair))
	if err != nil {
		return nil, err
	}
	return added[0], nil
}
