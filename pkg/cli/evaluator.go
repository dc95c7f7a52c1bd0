package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/passcheck/pkg/config"
	"github.com/mchmarny/passcheck/pkg/metrics"
	"github.com/mchmarny/passcheck/pkg/oracle"
	"github.com/mchmarny/passcheck/pkg/reference"
	"github.com/mchmarny/passcheck/pkg/strength"
)

func loadReferenceSets(cfg *appConfig) (*reference.Sets, error) {
	common := config.ResolvePath(cfg.Dir, cfg.Config.CommonPasswords)
	dict := config.ResolvePath(cfg.Dir, cfg.Config.DictionaryWords)

	sets, err := reference.LoadAll(common, dict)
	if err != nil {
		return nil, err
	}

	slog.Debug("reference sets loaded",
		"common", sets.Common.Len(),
		"dictionary", sets.Dictionary.Len(),
	)
	return sets, nil
}

// newEvaluator builds the evaluator from config. The dictionary list is only
// handed to the estimator in strict mode so the default scores match the
// plain zxcvbn estimate.
func newEvaluator(cfg *appConfig, strict bool, opts ...strength.Option) (*strength.Evaluator, *reference.Sets, error) {
	sets, err := loadReferenceSets(cfg)
	if err != nil {
		return nil, nil, err
	}

	strict = strict || cfg.Config.Strict

	var userInputs []string
	if strict {
		userInputs = sets.Dictionary.Words()
	}
	o := oracle.NewZxcvbn(userInputs, cfg.Config.OracleTimeout)

	opts = append([]strength.Option{
		strength.WithMaxAge(cfg.Config.MaxAgeDays),
		strength.WithReferenceCheck(strict),
	}, opts...)

	e, err := strength.New(sets, o, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating evaluator: %w", err)
	}
	return e, sets, nil
}

// observeMetrics records every evaluation under the given source label.
func observeMetrics(source string) strength.Option {
	return strength.WithObserver(func(res *strength.Result, elapsed time.Duration, err error) {
		if err != nil {
			metrics.ObserveError(source)
			return
		}
		metrics.ObserveEvaluation(source, string(res.Tier), elapsed)
	})
}
