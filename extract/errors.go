package extract

import "errors"

var (
	// ErrCandidateRepositoryRequired is returned when a candidate repository is not provided.
	ErrCandidateRepositoryRequired = errors.New("candidate repository required")

	// ErrContextRepositoryRequired is returned when a context repository is not provided.
	ErrContextRepositoryRequired = errors.New("context repository required")

	// ErrSpaceRequired is returned when a candidate space is not provided.
	ErrSpaceRequired = errors.New("candidate space required")

	// ErrSetRequired is returned when a target candidate set is not provided.
	ErrSetRequired = errors.New("candidate set required")

	// ErrInvalidMaxN is returned for an ngram space with a word limit below 1.
	ErrInvalidMaxN = errors.New("max ngram length must be at least 1")

	// ErrMissingWords is returned when a context lacks the words attribute
	// needed to bound spans.
	ErrMissingWords = errors.New("context has no words attribute")
)
