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


// Package storage provides the storage abstraction layer for spanbase.
//
// This package defines repository interfaces that decouple storage
// implementation from the span model. It allows different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces to enforce
// abstraction:
//
//	repo, err := badger.NewCandidateRepository(backend)  // storage.CandidateRepository
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and lifecycle, shared by all repositories
//   - ContextRepository: immutable tokenized contexts under content-based IDs
//   - CandidateRepository: candidate sets and their polymorphic candidates
//
// Candidates are persisted as flat CandidateRecord values: pointer references
// (context, pair members) are reduced to IDs on write and rehydrated by
// lookup on read. The wire format is hand-written MUS serialization.
//
// # Invariants preserved for the core model
//
//   - candidate set names are unique
//   - (candidate id, set id) pairs are globally unique
//   - a pair's ngram references resolve within the owning set
//   - deleting a set cascade-deletes every candidate it owns; a candidate
//     never outlives its owning set
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
