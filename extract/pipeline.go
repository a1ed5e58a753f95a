package extract

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/spanbase/core"
	"github.com/poiesic/spanbase/storage"
)

// Pipeline orchestrates concurrent candidate extraction: it runs a
// CandidateSpace over many contexts on a worker pool and persists the
// resulting spans as candidates of a target set.
type Pipeline struct {
	candidateRepository storage.CandidateRepository
	contextRepository   storage.ContextRepository
	pool                *ants.Pool
	logger              *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new extraction pipeline.
func NewPipeline(
	candidateRepository storage.CandidateRepository,
	contextRepository storage.ContextRepository,
	opts ...Option,
) (*Pipeline, error) {
	if candidateRepository == nil {
		return nil, ErrCandidateRepositoryRequired
	}
	if contextRepository == nil {
		return nil, ErrContextRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		candidateRepository: candidateRepository,
		contextRepository:   contextRepository,
		pool:                pool,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Extract runs the space over the given contexts concurrently, filters spans
// through match (nil accepts all), and persists the survivors as ngram
// candidates of set in context order. The contexts are stored first so every
// persisted candidate's context reference resolves.
func (p *Pipeline) Extract(ctx context.Context, set *core.CandidateSet, contexts []*core.Context, space CandidateSpace, match Matcher) ([]*core.Candidate, error) {
	if set == nil {
		return nil, ErrSetRequired
	}
	if space == nil {
		return nil, ErrSpaceRequired
	}
	if len(contexts) == 0 {
		return nil, nil
	}

	if _, err := p.contextRepository.AddContexts(ctx, contexts...); err != nil {
		return nil, err
	}

	// One result slot per context: no contention, and flattening the slots
	// preserves context order regardless of worker scheduling.
	spans := make([][]*core.Ngram, len(contexts))
	errs := make([]error, len(contexts))

	var wg sync.WaitGroup
	for i, c := range contexts {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			spans[i], errs[i] = space.Apply(c)
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			p.logger.Error("extraction failed", "context", contexts[i].Id, "err", err)
			return nil, err
		}
	}

	var candidates []*core.Candidate
	for _, contextSpans := range spans {
		for _, g := range contextSpans {
			if match != nil && !match(g) {
				continue
			}
			candidates = append(candidates, core.NewNgramCandidate(g))
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	added, err := p.candidateRepository.AddCandidates(ctx, set, candidates...)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extraction complete",
		"set", set.Name, "contexts", len(contexts), "candidates", len(added))
	return added, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
