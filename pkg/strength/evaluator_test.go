package strength

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mchmarny/passcheck/pkg/oracle"
	"github.com/mchmarny/passcheck/pkg/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

	hardOracle = oracle.Fixed(12)
	easyOracle = oracle.Fixed(1.5, oracle.Segment{
		Pattern:           "dictionary",
		DictionaryName:    "Passwords",
		IsDictionaryMatch: true,
	})
)

func newTestEvaluator(t *testing.T, o Oracle, opts ...Option) *Evaluator {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	e, err := New(nil, o, opts...)
	require.NoError(t, err)
	return e
}

func daysAgo(d float64) *time.Time {
	ts := testNow.Add(-time.Duration(d * float64(hoursPerDay) * float64(time.Hour)))
	return &ts
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	assert.Len(t, cats, 8)
	assert.Equal(t, 8, TotalWeight(cats))
	assert.Equal(t, 16, sumOf(cats, compositionCategories...))
	assert.Equal(t, -4, weightOf(cats, CategoryCommon))
	assert.Equal(t, -2, weightOf(cats, CategoryDictionary))
	assert.Equal(t, 0, weightOf(cats, "leaked"))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		oracle   Oracle
		score    int
		percent  int
		tier     Tier
		feedback []string
	}{
		{
			name:     "complex mixed case",
			password: "Passw0rd!",
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
		{
			name:     "complex but common and dictionary",
			password: "Passw0rd!",
			oracle:   easyOracle,
			score:    2,
			percent:  25,
			tier:     TierStrong,
			feedback: []string{msgCommon, msgDictionary, "Your password is stong"},
		},
		{
			name:     "complex but common only",
			password: "Passw0rd!",
			oracle:   oracle.Fixed(3.9),
			score:    4,
			percent:  50,
			tier:     TierOkay,
			feedback: []string{msgCommon, "Your password is okay, but it can be improved."},
		},
		{
			name:     "complex with dictionary segment only",
			password: "Sunshine#2024",
			oracle:   oracle.Fixed(8, oracle.Segment{Pattern: "dictionary", IsDictionaryMatch: true}),
			score:    6,
			percent:  75,
			tier:     TierWeak,
			feedback: []string{msgDictionary, "Your password is weak."},
		},
		{
			name:     "guesses exactly at threshold are not common",
			password: "Passw0rd!",
			oracle:   oracle.Fixed(4),
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
		{
			name:     "short",
			password: "abc",
			oracle:   hardOracle,
			score:    16,
			percent:  200,
			tier:     TierVeryWeak,
			feedback: []string{msgRequirements, "Your password is very weak."},
		},
		{
			name:     "short and common",
			password: "abc",
			oracle:   easyOracle,
			score:    10,
			percent:  125,
			tier:     TierVeryWeak,
			feedback: []string{msgRequirements, msgCommon, msgDictionary, "Your password is very weak."},
		},
		{
			name:     "empty",
			password: "",
			oracle:   easyOracle,
			score:    10,
			percent:  125,
			tier:     TierVeryWeak,
			feedback: []string{msgRequirements, msgCommon, msgDictionary, "Your password is very weak."},
		},
		{
			name:     "long lowercase only",
			password: "correct-horse-battery-staple-9",
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{msgMixCase, "Your password is very weak."},
		},
		{
			name:     "long uppercase only",
			password: "PASSWORD1",
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{msgMixCase, "Your password is very weak."},
		},
		{
			name:     "single case keeps full weight before penalties",
			password: "password1",
			oracle:   easyOracle,
			score:    2,
			percent:  25,
			tier:     TierStrong,
			feedback: []string{msgMixCase, msgCommon, msgDictionary, "Your password is stong"},
		},
		{
			name:     "digits only has no cased letters",
			password: "12345678",
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
		{
			name:     "long without ascii characters",
			password: "ääääääää",
			oracle:   hardOracle,
			score:    16,
			percent:  200,
			tier:     TierVeryWeak,
			feedback: []string{msgRequirements, "Your password is very weak."},
		},
		{
			name:     "non ascii letters",
			password: "Pässwörd1!",
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
		{
			name:     "very long",
			password: strings.Repeat("Ab1!", 1000),
			oracle:   hardOracle,
			score:    8,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(t, tt.oracle)
			res, err := e.Evaluate(context.Background(), tt.password, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.percent, res.Percent)
			assert.Equal(t, tt.tier, res.Tier)
			assert.Equal(t, strings.Join(tt.feedback, "\n"), res.Feedback)
			assert.Equal(t, tt.feedback, res.Lines())
			assert.False(t, res.Expired)
		})
	}
}

func TestEvaluate_ShortPasswordsUsePartialWeights(t *testing.T) {
	e := newTestEvaluator(t, hardOracle)
	for _, p := range []string{"", "a", "Aa1!", "Aa1!Aa1", "1234567"} {
		res, err := e.Evaluate(context.Background(), p, nil)
		require.NoError(t, err)
		assert.Equal(t, 16, res.Score, p)
		assert.Equal(t, msgRequirements, res.Lines()[0], p)
	}
}

func TestEvaluate_AgeDecay(t *testing.T) {
	tests := []struct {
		name     string
		created  *time.Time
		oracle   Oracle
		percent  int
		tier     Tier
		expired  bool
		feedback []string
	}{
		{
			name:     "expired",
			created:  daysAgo(91),
			oracle:   hardOracle,
			percent:  0,
			tier:     TierVeryStrong,
			expired:  true,
			feedback: []string{msgExpired, "Your password is very strong."},
		},
		{
			name:     "expires today",
			created:  daysAgo(90),
			oracle:   hardOracle,
			percent:  0,
			tier:     TierVeryStrong,
			expired:  true,
			feedback: []string{msgExpired, "Your password is very strong."},
		},
		{
			name:     "five days remaining caps percent",
			created:  daysAgo(85),
			oracle:   hardOracle,
			percent:  20,
			tier:     TierStrong,
			feedback: []string{"Your password will expire in 5 days. Please consider changing it soon.", "Your password is stong"},
		},
		{
			name:     "partial days are dropped",
			created:  daysAgo(84.9),
			oracle:   hardOracle,
			percent:  20,
			tier:     TierStrong,
			feedback: []string{"Your password will expire in 6 days. Please consider changing it soon.", "Your password is stong"},
		},
		{
			name:     "seven days remaining",
			created:  daysAgo(83),
			oracle:   hardOracle,
			percent:  20,
			tier:     TierStrong,
			feedback: []string{"Your password will expire in 7 days. Please consider changing it soon.", "Your password is stong"},
		},
		{
			name:     "eight days remaining",
			created:  daysAgo(82),
			oracle:   hardOracle,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
		{
			name:     "cap applies to penalized score",
			created:  daysAgo(86),
			oracle:   easyOracle,
			percent:  20,
			tier:     TierStrong,
			feedback: []string{msgCommon, msgDictionary, "Your password will expire in 4 days. Please consider changing it soon.", "Your password is stong"},
		},
		{
			name:     "created in the future",
			created:  daysAgo(-3),
			oracle:   hardOracle,
			percent:  100,
			tier:     TierVeryWeak,
			feedback: []string{"Your password is very weak."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(t, tt.oracle)
			res, err := e.Evaluate(context.Background(), "Passw0rd!", tt.created)
			require.NoError(t, err)
			assert.Equal(t, tt.percent, res.Percent)
			assert.Equal(t, tt.tier, res.Tier)
			assert.Equal(t, tt.expired, res.Expired)
			assert.Equal(t, tt.feedback, res.Lines())
		})
	}
}

func TestEvaluate_AgeCapKeepsLowerPercent(t *testing.T) {
	cats := []Category{
		{Name: CategoryLength, Weight: 1},
		{Name: CategoryAge, Weight: 7},
	}
	e := newTestEvaluator(t, hardOracle, WithCategories(cats))

	res, err := e.Evaluate(context.Background(), "abc", nil)
	require.NoError(t, err)
	require.Equal(t, 12, res.Percent)

	res, err = e.Evaluate(context.Background(), "abc", daysAgo(85))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 12, res.Percent)
	assert.Equal(t, TierVeryStrong, res.Tier)
	assert.False(t, res.Expired)
	assert.Equal(t, []string{
		msgRequirements,
		"Your password will expire in 5 days. Please consider changing it soon.",
		"Your password is very strong.",
	}, res.Lines())
}

func TestEvaluate_AgeDoesNotChangeScore(t *testing.T) {
	e := newTestEvaluator(t, hardOracle)
	res, err := e.Evaluate(context.Background(), "Passw0rd!", daysAgo(200))
	require.NoError(t, err)
	assert.Equal(t, 8, res.Score)
	assert.Equal(t, 0, res.Percent)
}

func TestEvaluate_MaxAge(t *testing.T) {
	e := newTestEvaluator(t, hardOracle, WithMaxAge(30))
	res, err := e.Evaluate(context.Background(), "Passw0rd!", daysAgo(31))
	require.NoError(t, err)
	assert.True(t, res.Expired)

	// non-positive values keep the default
	e = newTestEvaluator(t, hardOracle, WithMaxAge(0))
	res, err = e.Evaluate(context.Background(), "Passw0rd!", daysAgo(31))
	require.NoError(t, err)
	assert.False(t, res.Expired)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := newTestEvaluator(t, easyOracle)
	created := daysAgo(86)

	r1, err := e.Evaluate(context.Background(), "Passw0rd!", created)
	require.NoError(t, err)
	r2, err := e.Evaluate(context.Background(), "Passw0rd!", created)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestEvaluate_ScoreNeverNegative(t *testing.T) {
	cats := []Category{
		{Name: CategoryLength, Weight: 1},
		{Name: CategoryCommon, Weight: -10},
		{Name: CategoryDictionary, Weight: -10},
	}
	e := newTestEvaluator(t, easyOracle, WithCategories(cats))

	res, err := e.Evaluate(context.Background(), "abc", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 100, res.Percent)
}

func TestEvaluate_RoundsHalfToEven(t *testing.T) {
	tests := []struct {
		length  int
		percent int
	}{
		{1, 12},
		{3, 38},
		{5, 62},
	}
	for _, tt := range tests {
		cats := []Category{
			{Name: CategoryLength, Weight: tt.length},
			{Name: CategoryAge, Weight: 8 - tt.length},
		}
		e := newTestEvaluator(t, hardOracle, WithCategories(cats))
		res, err := e.Evaluate(context.Background(), "abc", nil)
		require.NoError(t, err)
		assert.Equal(t, tt.percent, res.Percent)
	}
}

func TestEvaluate_OracleError(t *testing.T) {
	boom := errors.New("boom")
	e := newTestEvaluator(t, oracle.Func(func(context.Context, string) (*oracle.Estimate, error) {
		return nil, boom
	}))

	res, err := e.Evaluate(context.Background(), "Passw0rd!", nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluate_Observer(t *testing.T) {
	var calls int
	var got *Result
	e := newTestEvaluator(t, hardOracle, WithObserver(func(res *Result, elapsed time.Duration, err error) {
		calls++
		got = res
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
		assert.NoError(t, err)
	}))

	res, err := e.Evaluate(context.Background(), "Passw0rd!", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, res, got)
}

func TestEvaluate_ObserverOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	e := newTestEvaluator(t, oracle.Func(func(context.Context, string) (*oracle.Estimate, error) {
		return nil, boom
	}), WithObserver(func(res *Result, _ time.Duration, err error) {
		calls++
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrOracle)
	}))

	_, err := e.Evaluate(context.Background(), "Passw0rd!", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestEvaluate_OracleNilEstimate(t *testing.T) {
	e := newTestEvaluator(t, oracle.Func(func(context.Context, string) (*oracle.Estimate, error) {
		return nil, nil
	}))

	_, err := e.Evaluate(context.Background(), "Passw0rd!", nil)
	assert.ErrorIs(t, err, ErrOracle)
}

func TestEvaluate_ReferenceCheck(t *testing.T) {
	sets := &reference.Sets{
		Common:     reference.NewSet("letmein"),
		Dictionary: reference.NewSet("sunshine"),
	}
	clock := WithClock(func() time.Time { return testNow })

	loose, err := New(sets, hardOracle, clock)
	require.NoError(t, err)
	strict, err := New(sets, hardOracle, clock, WithReferenceCheck(true))
	require.NoError(t, err)

	res, err := loose.Evaluate(context.Background(), "letmein", nil)
	require.NoError(t, err)
	assert.Equal(t, 16, res.Score)

	res, err = strict.Evaluate(context.Background(), "LetMeIn", nil)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Score)
	assert.Contains(t, res.Lines(), msgCommon)

	res, err = strict.Evaluate(context.Background(), "sunshine", nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Score)
	assert.Equal(t, []string{msgMixCase, msgDictionary, "Your password is weak."}, res.Lines())
}

func TestEvaluate_ReferenceCheckPenalizesOnce(t *testing.T) {
	sets := &reference.Sets{
		Common:     reference.NewSet("letmein"),
		Dictionary: reference.NewSet("letmein"),
	}
	e, err := New(sets, easyOracle, WithReferenceCheck(true))
	require.NoError(t, err)

	res, err := e.Evaluate(context.Background(), "letmein", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Score)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(nil, hardOracle, WithCategories([]Category{
		{Name: CategoryLength, Weight: 2},
		{Name: CategoryCommon, Weight: -2},
	}))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = New(nil, hardOracle, WithCategories(nil))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestEvaluator_CategoriesCopy(t *testing.T) {
	e := newTestEvaluator(t, hardOracle)
	cats := e.Categories()
	cats[0].Weight = 100
	assert.Equal(t, 4, e.Categories()[0].Weight)
}

func TestResult_LinesEmpty(t *testing.T) {
	var r *Result
	assert.Nil(t, r.Lines())
	assert.Nil(t, (&Result{}).Lines())
}
