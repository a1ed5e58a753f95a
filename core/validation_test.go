package core

import (
	"errors"
	"testing"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		name    string
		context *Context
		wantErr error
	}{
		{
			name:    "valid context",
			context: quickFox(),
			wantErr: nil,
		},
		{
			name:    "nil context",
			context: nil,
			wantErr: ErrInvalidContext,
		},
		{
			name:    "empty text",
			context: NewContext("", []int{0}, nil),
			wantErr: ErrEmptyText,
		},
		{
			name:    "no offsets",
			context: NewContext("The quick fox jumps", nil, nil),
			wantErr: ErrInvalidContext,
		},
		{
			name:    "offsets not strictly increasing",
			context: NewContext("The quick fox jumps", []int{0, 4, 4, 14}, nil),
			wantErr: ErrOffsetsNotIncreasing,
		},
		{
			name: "attribute length mismatch",
			context: NewContext("The quick fox jumps", []int{0, 4, 10, 14}, map[string][]string{
				"pos_tags": {"DT", "JJ"},
			}),
			wantErr: ErrAttributeLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContext(tt.context)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateContext() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContext() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	ctx := quickFox()
	g, _ := NewNgram(ctx, 4, 12)

	t.Run("valid ngram candidate", func(t *testing.T) {
		if err := ValidateCandidate(NewNgramCandidate(g)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("valid pair candidate", func(t *testing.T) {
		g2, _ := NewNgram(ctx, 0, 2)
		pair, _ := NewNgramPair(NewNgramCandidate(g), NewNgramCandidate(g2))
		if err := ValidateCandidate(NewPairCandidate(pair)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("nil candidate", func(t *testing.T) {
		if err := ValidateCandidate(nil); !errors.Is(err, ErrInvalidCandidate) {
			t.Errorf("error = %v, want ErrInvalidCandidate", err)
		}
	})

	t.Run("missing variant", func(t *testing.T) {
		c := &Candidate{Type: CandidateTypeNgram}
		if err := ValidateCandidate(c); !errors.Is(err, ErrVariantMismatch) {
			t.Errorf("error = %v, want ErrVariantMismatch", err)
		}
	})

	t.Run("both variants populated", func(t *testing.T) {
		g2, _ := NewNgram(ctx, 0, 2)
		pair, _ := NewNgramPair(NewNgramCandidate(g), NewNgramCandidate(g2))
		c := &Candidate{Type: CandidateTypeNgramPair, Pair: pair, Ngram: g}
		if err := ValidateCandidate(c); !errors.Is(err, ErrVariantMismatch) {
			t.Errorf("error = %v, want ErrVariantMismatch", err)
		}
	})

	t.Run("unknown discriminator", func(t *testing.T) {
		c := &Candidate{Type: CandidateType(9)}
		if err := ValidateCandidate(c); !errors.Is(err, ErrInvalidCandidate) {
			t.Errorf("error = %v, want ErrInvalidCandidate", err)
		}
	})

	t.Run("malformed span", func(t *testing.T) {
		c := NewNgramCandidate(&Ngram{Context: ctx, CharStart: 9, CharEnd: 3})
		if err := ValidateCandidate(c); !errors.Is(err, ErrMalformedSpan) {
			t.Errorf("error = %v, want ErrMalformedSpan", err)
		}
	})
}

func TestValidateCandidateSet(t *testing.T) {
	if err := ValidateCandidateSet(NewCandidateSet("train")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateCandidateSet(nil); !errors.Is(err, ErrInvalidCandidateSet) {
		t.Errorf("error = %v, want ErrInvalidCandidateSet", err)
	}
	if err := ValidateCandidateSet(NewCandidateSet("")); !errors.Is(err, ErrEmptySetName) {
		t.Errorf("error = %v, want ErrEmptySetName", err)
	}
}
