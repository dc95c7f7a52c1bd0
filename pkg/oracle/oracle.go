// Package oracle estimates how hard a password is to guess.
package oracle

import "context"

// Segment is a substring of the password the estimator matched to a pattern.
type Segment struct {
	Pattern           string `json:"pattern" yaml:"pattern"`
	Token             string `json:"-" yaml:"-"`
	DictionaryName    string `json:"dictionary_name,omitempty" yaml:"dictionary_name,omitempty"`
	IsDictionaryMatch bool   `json:"dictionary_match" yaml:"dictionary_match"`
}

// Estimate is the guessability estimate for a single password.
type Estimate struct {
	// GuessesLog10 is the base-10 log of the guesses needed to crack the password.
	GuessesLog10 float64   `json:"guesses_log10" yaml:"guesses_log10"`
	Segments     []Segment `json:"segments" yaml:"segments"`
}

// HasDictionaryMatch reports whether any segment came from a dictionary.
func (e *Estimate) HasDictionaryMatch() bool {
	if e == nil {
		return false
	}
	for _, s := range e.Segments {
		if s.IsDictionaryMatch {
			return true
		}
	}
	return false
}

// Func adapts a plain function to the estimator contract.
type Func func(ctx context.Context, password string) (*Estimate, error)

// Estimate calls f.
func (f Func) Estimate(ctx context.Context, password string) (*Estimate, error) {
	return f(ctx, password)
}

// Fixed returns an estimator that always yields the given estimate.
func Fixed(guessesLog10 float64, segments ...Segment) Func {
	return func(_ context.Context, _ string) (*Estimate, error) {
		return &Estimate{
			GuessesLog10: guessesLog10,
			Segments:     segments,
		}, nil
	}
}
