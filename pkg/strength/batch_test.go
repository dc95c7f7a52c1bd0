package strength

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mchmarny/passcheck/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAll_KeepsOrder(t *testing.T) {
	e := newTestEvaluator(t, oracle.Func(func(_ context.Context, p string) (*oracle.Estimate, error) {
		if len(p)%2 == 0 {
			return &oracle.Estimate{GuessesLog10: 1}, nil
		}
		return &oracle.Estimate{GuessesLog10: 10}, nil
	}))

	inputs := make([]Input, 0, 20)
	for i := range 20 {
		inputs = append(inputs, Input{Password: fmt.Sprintf("Passw0rd!%d", i)})
	}
	inputs = append(inputs, Input{Password: "Passw0rd!", Created: daysAgo(100)})

	results, err := e.EvaluateAll(context.Background(), inputs, 4)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	for i, in := range inputs {
		want, err := e.Evaluate(context.Background(), in.Password, in.Created)
		require.NoError(t, err)
		assert.Equal(t, want, results[i], in.Password)
	}
	assert.True(t, results[len(results)-1].Expired)
}

func TestEvaluateAll_ObservesEachInput(t *testing.T) {
	var calls atomic.Int64
	e := newTestEvaluator(t, hardOracle, WithObserver(func(*Result, time.Duration, error) {
		calls.Add(1)
	}))

	inputs := []Input{{Password: "abc"}, {Password: "Passw0rd!"}, {Password: "password"}}
	_, err := e.EvaluateAll(context.Background(), inputs, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(len(inputs)), calls.Load())
}

func TestEvaluateAll_Empty(t *testing.T) {
	e := newTestEvaluator(t, hardOracle)
	results, err := e.EvaluateAll(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEvaluateAll_Error(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	e := newTestEvaluator(t, oracle.Func(func(_ context.Context, p string) (*oracle.Estimate, error) {
		calls.Add(1)
		if p == "fail" {
			return nil, boom
		}
		return &oracle.Estimate{GuessesLog10: 10}, nil
	}))

	inputs := []Input{{Password: "ok"}, {Password: "fail"}, {Password: "also ok"}}
	results, err := e.EvaluateAll(context.Background(), inputs, 1)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "input 1")
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestEvaluateAll_CanceledContext(t *testing.T) {
	e := newTestEvaluator(t, hardOracle)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EvaluateAll(ctx, []Input{{Password: "x"}}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
