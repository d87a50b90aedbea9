package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Harness invokes a single solution part and times it.
type Harness struct {
	now func() time.Time
}

// NewHarness creates a Harness using the wall clock.
func NewHarness() *Harness {
	return &Harness{now: time.Now}
}

// Execute runs the selected part of solution against input and classifies
// the result. Unspecified parts run part one. Elapsed time covers only the
// part call. Errors and panics raised by the part become OutcomeFailed; they
// never escape Execute.
func (h *Harness) Execute(
	ctx context.Context,
	solution domain.Solution,
	part domain.Part,
	input string,
) domain.Outcome {
	partFn := solution.PartOne
	if part.Effective() == domain.PartTwo {
		partFn = solution.PartTwo
	}

	var (
		answer domain.Answer
		err    error
	)

	start := h.now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		answer, err = partFn(ctx, input)
	}()
	elapsed := h.now().Sub(start)

	switch {
	case err != nil:
		return domain.Outcome{
			Status:  domain.OutcomeFailed,
			Err:     fmt.Errorf("%w: %w", domain.ErrSolutionFailed, err),
			Elapsed: elapsed,
		}
	case !answer.IsSolved():
		return domain.Outcome{Status: domain.OutcomeNotSolved, Elapsed: elapsed}
	default:
		return domain.Outcome{Status: domain.OutcomeSolved, Result: answer.Value(), Elapsed: elapsed}
	}
}
