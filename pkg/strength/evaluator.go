package strength

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mchmarny/passcheck/pkg/oracle"
	"github.com/mchmarny/passcheck/pkg/reference"
)

const (
	// MaxAgeDaysDefault is the password lifetime used for age decay.
	MaxAgeDaysDefault = 90

	commonGuessesLog10 = 4
	expiryWarningDays  = 7
	expiringCapPercent = 20
	hoursPerDay        = 24

	msgMixCase      = "Your password should contain a mix of uppercase and lowercase letters."
	msgRequirements = "Your password should be at least 8 characters long and contain at least one lowercase letter, one uppercase letter, one digit, and one symbol."
	msgCommon       = "Your password is too common or predictable."
	msgDictionary   = "Your password is a dictionary word."
	msgExpired      = "Your password has expired. Please change it immediately."
	msgExpiresFmt   = "Your password will expire in %d days. Please consider changing it soon."
)

var (
	// ErrOracle is returned when the guessability estimate cannot be obtained.
	ErrOracle = errors.New("oracle error")

	// ErrConfig is returned when the category weights cannot normalize a score.
	ErrConfig = errors.New("invalid scoring configuration")
)

// Oracle estimates password guessability.
type Oracle interface {
	Estimate(ctx context.Context, password string) (*oracle.Estimate, error)
}

// Result is the outcome of a single evaluation.
type Result struct {
	// Score is the raw weighted score, never negative.
	Score int `json:"score" yaml:"score"`
	// Feedback holds the feedback lines joined by newline.
	Feedback string `json:"feedback" yaml:"feedback"`
	// Percent is the normalized score after age adjustments.
	Percent int  `json:"percent" yaml:"percent"`
	Tier    Tier `json:"tier" yaml:"tier"`
	Expired bool `json:"expired,omitempty" yaml:"expired,omitempty"`
}

// Lines returns the feedback split into lines.
func (r *Result) Lines() []string {
	if r == nil || r.Feedback == "" {
		return nil
	}
	return strings.Split(r.Feedback, "\n")
}

// Evaluator scores passwords. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	sets       *reference.Sets
	oracle     Oracle
	categories []Category
	total      int
	maxAgeDays int
	refCheck   bool
	now        func() time.Time
	observe    Observer
}

// Observer is called after every evaluation with its wall time. res is nil
// when err is set.
type Observer func(res *Result, elapsed time.Duration, err error)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the time source used for age decay.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxAge sets the password lifetime in days.
func WithMaxAge(days int) Option {
	return func(e *Evaluator) {
		if days > 0 {
			e.maxAgeDays = days
		}
	}
}

// WithCategories replaces the default category weights.
func WithCategories(cats []Category) Option {
	return func(e *Evaluator) {
		e.categories = append([]Category(nil), cats...)
	}
}

// WithReferenceCheck also penalizes passwords found verbatim in the loaded
// common-password or dictionary lists when the oracle did not flag them.
func WithReferenceCheck(enabled bool) Option {
	return func(e *Evaluator) {
		e.refCheck = enabled
	}
}

// WithObserver registers a callback for completed evaluations.
func WithObserver(fn Observer) Option {
	return func(e *Evaluator) {
		e.observe = fn
	}
}

// New creates an Evaluator.
func New(sets *reference.Sets, o Oracle, opts ...Option) (*Evaluator, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: oracle required", ErrConfig)
	}
	if sets == nil {
		sets = &reference.Sets{}
	}

	e := &Evaluator{
		sets:       sets,
		oracle:     o,
		categories: DefaultCategories(),
		maxAgeDays: MaxAgeDaysDefault,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.total = TotalWeight(e.categories)
	if e.total == 0 {
		return nil, fmt.Errorf("%w: category weights sum to zero", ErrConfig)
	}

	return e, nil
}

// Categories returns a copy of the categories in use.
func (e *Evaluator) Categories() []Category {
	return append([]Category(nil), e.categories...)
}

// Evaluate scores the password. A nil created skips age decay.
func (e *Evaluator) Evaluate(ctx context.Context, password string, created *time.Time) (*Result, error) {
	if e.observe == nil {
		return e.evaluate(ctx, password, created)
	}
	start := time.Now()
	res, err := e.evaluate(ctx, password, created)
	e.observe(res, time.Since(start), err)
	return res, err
}

func (e *Evaluator) evaluate(ctx context.Context, password string, created *time.Time) (*Result, error) {
	var feedback []string
	score := 0

	if isComplex(password) {
		if isSingleCase(password) {
			feedback = append(feedback, msgMixCase)
		}
		score += e.total
	} else {
		feedback = append(feedback, msgRequirements)
		score += sumOf(e.categories, compositionCategories...)
	}

	est, err := e.oracle.Estimate(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	if est == nil {
		return nil, fmt.Errorf("%w: empty estimate", ErrOracle)
	}

	if est.GuessesLog10 < commonGuessesLog10 || e.listed(e.sets.Common, password) {
		feedback = append(feedback, msgCommon)
		score += weightOf(e.categories, CategoryCommon)
	}

	if est.HasDictionaryMatch() || e.listed(e.sets.Dictionary, password) {
		feedback = append(feedback, msgDictionary)
		score += weightOf(e.categories, CategoryDictionary)
	}

	percent := int(math.RoundToEven(float64(score) / float64(e.total) * 100))

	expired := false
	if created != nil {
		remaining := e.maxAgeDays - ageInDays(e.now(), *created)
		switch {
		case remaining <= 0:
			feedback = append(feedback, msgExpired)
			percent = 0
			expired = true
		case remaining <= expiryWarningDays:
			feedback = append(feedback, fmt.Sprintf(msgExpiresFmt, remaining))
			percent = min(percent, expiringCapPercent)
		}
	}

	tier := TierFor(percent)
	feedback = append(feedback, tier.Message())

	slog.Debug("password evaluated",
		"score", score,
		"percent", percent,
		"tier", tier,
		"guesses_log10", est.GuessesLog10,
	)

	return &Result{
		Score:    max(0, score),
		Feedback: strings.Join(feedback, "\n"),
		Percent:  percent,
		Tier:     tier,
		Expired:  expired,
	}, nil
}

func (e *Evaluator) listed(s *reference.Set, password string) bool {
	return e.refCheck && s.Contains(password)
}

// ageInDays returns the whole days elapsed, rounded toward negative infinity.
func ageInDays(now, created time.Time) int {
	return int(math.Floor(now.Sub(created).Hours() / hoursPerDay))
}
