package strength

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Input is a single password submitted for batch evaluation.
type Input struct {
	Password string
	Created  *time.Time
}

// EvaluateAll evaluates inputs concurrently with at most limit evaluations
// in flight (no limit when limit <= 0). Results keep the input order. The
// first failure cancels the remaining evaluations.
func (e *Evaluator) EvaluateAll(ctx context.Context, inputs []Input, limit int) ([]*Result, error) {
	results := make([]*Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := e.Evaluate(ctx, in.Password, in.Created)
			if err != nil {
				return fmt.Errorf("evaluating input %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
