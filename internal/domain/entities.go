// Package domain defines the core business entities and interfaces for advent-runner.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Puzzle calendar bounds.
const (
	// MinYear is the first year puzzles were published.
	MinYear = 2015

	// MinDay and MaxDay bound the days of a puzzle calendar.
	MinDay = 1
	MaxDay = 25
)

// DayKey identifies a single puzzle by year and day.
// It is the lookup key of the catalog and the cache key for puzzle input.
type DayKey struct {
	Year int
	Day  int
}

// Validate reports whether the key names a puzzle that can exist.
func (k DayKey) Validate() error {
	if k.Year < MinYear {
		return fmt.Errorf("%w: year %d is before %d", ErrInvalidDayKey, k.Year, MinYear)
	}
	if k.Day < MinDay || k.Day > MaxDay {
		return fmt.Errorf("%w: day %d is outside %d-%d", ErrInvalidDayKey, k.Day, MinDay, MaxDay)
	}
	return nil
}

// String renders the key as "2021 day 7".
func (k DayKey) String() string {
	return fmt.Sprintf("%d day %d", k.Year, k.Day)
}

// Less orders keys by year, then day.
func (k DayKey) Less(other DayKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Day < other.Day
}

// Part selects one half of a day's puzzle.
type Part int

const (
	// PartUnspecified means the command line did not name a part.
	PartUnspecified Part = iota
	PartOne
	PartTwo
)

// Effective returns the part that actually runs: unspecified defaults to one.
func (p Part) Effective() Part {
	if p == PartTwo {
		return PartTwo
	}
	return PartOne
}

// String renders the part as "part 1" or "part 2".
func (p Part) String() string {
	switch p {
	case PartOne:
		return "part 1"
	case PartTwo:
		return "part 2"
	default:
		return "part unspecified"
	}
}

// Verb is the action requested on the command line.
type Verb int

const (
	// VerbRun runs a puzzle part. It is the default verb.
	VerbRun Verb = iota

	// VerbScaffold creates a new solution skeleton.
	VerbScaffold
)

// String returns the verb name.
func (v Verb) String() string {
	if v == VerbScaffold {
		return "scaffold"
	}
	return "run"
}

// Request is the structured form of one invocation's command line.
type Request struct {
	Verb Verb
	Key  DayKey
	Part Part
}

// Answer is what a solution part produces when it does not fail.
// A zero Answer is "not solved".
type Answer struct {
	value  string
	solved bool
}

// Solved returns an answer carrying the given result text.
func Solved(result string) Answer {
	return Answer{value: result, solved: true}
}

// SolvedInt is a convenience for the common integer answer.
func SolvedInt(result int) Answer {
	return Solved(fmt.Sprint(result))
}

// NotSolved returns the answer of a part that has no solution yet.
func NotSolved() Answer {
	return Answer{}
}

// IsSolved reports whether the answer carries a result.
func (a Answer) IsSolved() bool {
	return a.solved
}

// Value returns the result text. It is empty for unsolved answers.
func (a Answer) Value() string {
	return a.value
}

// Puzzle is a resolved catalog entry with a freshly constructed solution.
type Puzzle struct {
	// Key is the key the solution was registered under.
	Key DayKey

	// NeedsInput reports whether the solution reads puzzle input.
	// When false the input cache is never consulted.
	NeedsInput bool

	// Solution is the constructed instance.
	Solution Solution
}

// OutcomeStatus classifies the result of running a part.
type OutcomeStatus int

const (
	// OutcomeSolved means the part produced a result.
	OutcomeSolved OutcomeStatus = iota

	// OutcomeNotSolved means the part explicitly has no answer yet.
	OutcomeNotSolved

	// OutcomeFailed means the part returned an error or panicked.
	OutcomeFailed
)

// String returns a lowercase status name for logging.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSolved:
		return "solved"
	case OutcomeNotSolved:
		return "not_solved"
	default:
		return "failed"
	}
}

// Outcome is the classified, timed result of one part invocation.
type Outcome struct {
	Status OutcomeStatus

	// Result is the answer text when Status is OutcomeSolved.
	Result string

	// Err is the failure when Status is OutcomeFailed.
	Err error

	// Elapsed covers only the part invocation, never input resolution.
	Elapsed time.Duration
}

// RunInput contains the parameters for running one puzzle part.
type RunInput struct {
	Key  DayKey
	Part Part
}

// RunOutput is the result of a completed run.
type RunOutput struct {
	Key     DayKey
	Part    Part
	Outcome Outcome
}

// ScaffoldOutput describes the files created by the scaffolder.
type ScaffoldOutput struct {
	Key DayKey

	// SolutionPath is the created solution source file.
	SolutionPath string

	// CreatedFiles lists every file written, including tests and the manifest.
	CreatedFiles []string

	// Staged reports whether the files were added to the git index.
	Staged bool
}

// DefaultCredentialName is the cookie name used when a bare value is configured.
const DefaultCredentialName = "session"

// Credential is the session cookie attached to remote input fetches.
type Credential struct {
	Name  string
	Value string
}

// ParseCredential parses "name=value" or a bare value into a Credential.
// A bare value is named DefaultCredentialName.
func ParseCredential(raw string) (Credential, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Credential{}, ErrCredentialMissing
	}

	name, value, found := strings.Cut(raw, "=")
	if !found {
		return Credential{Name: DefaultCredentialName, Value: raw}, nil
	}

	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return Credential{}, fmt.Errorf(
			"%w: session cookie must be in the form \"session=53616c7465...\"",
			ErrConfiguration,
		)
	}

	return Credential{Name: name, Value: value}, nil
}
