// Package domain defines the core business entities and interfaces for advent-runner.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors. The CLI maps each family to a single terminal message.
var (
	// ErrUsage indicates a malformed or incomplete command line.
	ErrUsage = errors.New("usage error")

	// ErrConfiguration indicates missing or invalid settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrCredentialMissing indicates input must be fetched but no session cookie is configured.
	// It wraps ErrConfiguration.
	ErrCredentialMissing = fmt.Errorf("%w: no session cookie configured", ErrConfiguration)

	// ErrInvalidDayKey indicates a year or day outside the puzzle calendar.
	ErrInvalidDayKey = errors.New("invalid day")

	// ErrDayNotFound indicates no solution is registered for the requested key.
	ErrDayNotFound = errors.New("code not found")

	// ErrDuplicateDay indicates two solutions claim the same key.
	ErrDuplicateDay = errors.New("duplicate solution registration")

	// ErrInputDirNotFound indicates the input cache root does not exist.
	ErrInputDirNotFound = errors.New("input directory not found")

	// ErrFetchFailed indicates the remote input fetch did not complete.
	ErrFetchFailed = errors.New("failed to download puzzle input")

	// ErrSolutionFailed indicates a solution part returned an error or panicked.
	ErrSolutionFailed = errors.New("solution failed")

	// ErrRepositoryNotFound indicates the path is not inside a Git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")

	// ErrScaffoldExists indicates a solution already exists for the key.
	ErrScaffoldExists = errors.New("code already exists")
)

// Solution is one puzzle's implementation.
// Parts return NotSolved() when they have no answer yet and an error only
// for genuine failures.
type Solution interface {
	PartOne(ctx context.Context, input string) (Answer, error)
	PartTwo(ctx context.Context, input string) (Answer, error)
}

// Catalog resolves day keys to solutions.
type Catalog interface {
	// Resolve constructs the solution registered for key.
	// Returns an error wrapping ErrDayNotFound for unregistered keys.
	Resolve(key DayKey) (*Puzzle, error)

	// Has reports whether a solution is registered for key.
	Has(key DayKey) bool

	// Keys lists the registered keys ordered by year, then day.
	Keys() []DayKey
}

// InputSource provides puzzle input text for a day.
type InputSource interface {
	// Get returns the full input text for key, fetching it if necessary.
	Get(ctx context.Context, key DayKey) (string, error)
}

// Runner runs one puzzle part end to end.
type Runner interface {
	Run(ctx context.Context, input RunInput) (*RunOutput, error)
}

// Scaffolder creates new solution skeletons.
type Scaffolder interface {
	// Create writes a skeleton for key.
	// Returns an error wrapping ErrScaffoldExists if one already exists.
	Create(ctx context.Context, key DayKey) (*ScaffoldOutput, error)
}

// OutputWriter renders results for the user.
type OutputWriter interface {
	// WriteRun writes the elapsed time and the result or status of a run.
	WriteRun(out *RunOutput) error

	// WriteScaffold writes the files created by a scaffold.
	WriteScaffold(out *ScaffoldOutput) error
}
