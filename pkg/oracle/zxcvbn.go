package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
	"github.com/ccojocar/zxcvbn-go/scoring"
)

const dictionaryPattern = "dictionary"

var (
	// ErrEstimate is returned when the estimator fails or panics.
	ErrEstimate = errors.New("estimate failed")

	log10Of2 = math.Log10(2)
)

// Zxcvbn estimates guessability with the zxcvbn matcher.
type Zxcvbn struct {
	userInputs []string
	timeout    time.Duration
}

// NewZxcvbn creates a zxcvbn-backed estimator. The user inputs are matched
// as an extra dictionary; a zero timeout means the context alone bounds the call.
func NewZxcvbn(userInputs []string, timeout time.Duration) *Zxcvbn {
	return &Zxcvbn{
		userInputs: userInputs,
		timeout:    timeout,
	}
}

type strengthResult struct {
	match scoring.MinEntropyMatch
	err   error
}

// Estimate runs the matcher for password.
func (z *Zxcvbn) Estimate(ctx context.Context, password string) (*Estimate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if z.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, z.timeout)
		defer cancel()
	}

	done := make(chan strengthResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- strengthResult{err: fmt.Errorf("%w: matcher panic: %v", ErrEstimate, r)}
			}
		}()
		done <- strengthResult{match: zxcvbn.PasswordStrength(password, z.userInputs)}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrEstimate, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return toEstimate(res.match), nil
	}
}

// zxcvbn reports entropy in bits, guesses = 2^entropy.
func toEstimate(m scoring.MinEntropyMatch) *Estimate {
	e := &Estimate{
		GuessesLog10: m.Entropy * log10Of2,
		Segments:     make([]Segment, 0, len(m.MatchSequence)),
	}
	for _, s := range m.MatchSequence {
		e.Segments = append(e.Segments, Segment{
			Pattern:           s.Pattern,
			Token:             s.Token,
			DictionaryName:    s.DictionaryName,
			IsDictionaryMatch: isDictionaryMatch(s.Pattern, s.Token),
		})
	}
	return e
}

// isDictionaryMatch reports whether a matched segment is a word list hit.
// zxcvbn also names the keyboard layout of spatial matches and the alphabet
// of sequence matches, so only the dictionary pattern counts. Single rune
// tokens are dropped; the l33t matcher emits them for lone symbols like @.
func isDictionaryMatch(pattern, token string) bool {
	return pattern == dictionaryPattern && utf8.RuneCountInString(token) > 1
}
