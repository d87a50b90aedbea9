package usecases

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Verb tokens recognised on the command line, compared case-insensitively.
const (
	RunVerb      = "run"
	NewDayVerb   = "newday"
	ScaffoldVerb = "scaffold"
)

var (
	// dayPattern matches "7a", "12B": a day number followed by a part letter.
	dayPattern = regexp.MustCompile(`(?i)^(\d+)([ab])$`)

	// yearPattern matches 2010-2029; years before domain.MinYear are ignored.
	yearPattern = regexp.MustCompile(`^20[12]\d$`)
)

// ParseRequest turns command-line tokens into a Request.
//
// Tokens are classified independently, so order does not matter, and
// unrecognised tokens are ignored. The year falls back to defaultYear.
// Returns an error wrapping domain.ErrUsage if no valid day was given.
func ParseRequest(tokens []string, defaultYear int) (domain.Request, error) {
	req := domain.Request{
		Verb: domain.VerbRun,
		Key:  domain.DayKey{Year: defaultYear},
	}

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)

		switch {
		case strings.EqualFold(tok, NewDayVerb), strings.EqualFold(tok, ScaffoldVerb):
			req.Verb = domain.VerbScaffold
		case strings.EqualFold(tok, RunVerb):
			req.Verb = domain.VerbRun
		case yearPattern.MatchString(tok):
			if year, _ := strconv.Atoi(tok); year >= domain.MinYear {
				req.Key.Year = year
			}
		case dayPattern.MatchString(tok):
			m := dayPattern.FindStringSubmatch(tok)
			day, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			req.Key.Day = day
			req.Part = domain.PartOne
			if strings.EqualFold(m[2], "b") {
				req.Part = domain.PartTwo
			}
		default:
			if day, err := strconv.Atoi(tok); err == nil && day >= domain.MinDay && day <= domain.MaxDay {
				req.Key.Day = day
			}
		}
	}

	if req.Key.Day == 0 {
		return domain.Request{}, fmt.Errorf("%w: day was not specified on the command line", domain.ErrUsage)
	}
	if err := req.Key.Validate(); err != nil {
		return domain.Request{}, fmt.Errorf("%w: %w", domain.ErrUsage, err)
	}

	return req, nil
}
