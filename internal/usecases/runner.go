// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Logger defines the logging interface required by the use cases.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// DayRunner runs one puzzle part: it resolves the solution from the catalog,
// resolves input when the solution needs it, and executes the part.
type DayRunner struct {
	catalog domain.Catalog
	inputs  domain.InputSource
	harness *Harness
	logger  Logger
}

// NewDayRunner creates a new DayRunner with the given dependencies.
func NewDayRunner(
	catalog domain.Catalog,
	inputs domain.InputSource,
	harness *Harness,
	log Logger,
) *DayRunner {
	if harness == nil {
		harness = NewHarness()
	}
	return &DayRunner{
		catalog: catalog,
		inputs:  inputs,
		harness: harness,
		logger:  log,
	}
}

// Run executes the requested part.
//
// Lookup and input failures are returned as errors. A failing solution is not
// an error here: it is reported through RunOutput.Outcome so the caller can
// show the elapsed time alongside the failure.
func (r *DayRunner) Run(ctx context.Context, input domain.RunInput) (*domain.RunOutput, error) {
	part := input.Part.Effective()

	puzzle, err := r.catalog.Resolve(input.Key)
	if err != nil {
		return nil, err
	}

	text := ""
	if puzzle.NeedsInput {
		text, err = r.inputs.Get(ctx, input.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to get input for %s: %w", input.Key, err)
		}
	} else {
		r.logger.Debug(ctx, "solution needs no input", map[string]interface{}{
			"year": input.Key.Year,
			"day":  input.Key.Day,
		})
	}

	r.logger.Info(ctx, "running puzzle", map[string]interface{}{
		"year": input.Key.Year,
		"day":  input.Key.Day,
		"part": part.String(),
	})

	outcome := r.harness.Execute(ctx, puzzle.Solution, part, text)

	fields := map[string]interface{}{
		"year":       input.Key.Year,
		"day":        input.Key.Day,
		"part":       part.String(),
		"status":     outcome.Status.String(),
		"elapsed_ms": float64(outcome.Elapsed.Nanoseconds()) / 1e6,
	}
	if outcome.Status == domain.OutcomeFailed {
		r.logger.Error(ctx, "puzzle part failed", outcome.Err, fields)
	} else {
		r.logger.Info(ctx, "puzzle part finished", fields)
	}

	return &domain.RunOutput{
		Key:     input.Key,
		Part:    part,
		Outcome: outcome,
	}, nil
}
