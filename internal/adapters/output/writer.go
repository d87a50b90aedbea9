// Package output provides adapters for writing application output.
package output

import (
	"fmt"
	"io"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Writer renders run and scaffold results for the user.
type Writer struct {
	out io.Writer
}

// NewWriterWithOutput creates a new Writer printing to out, normally stdout.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteRun writes the run header, elapsed time in milliseconds and the
// result, the not-solved marker or the failure message.
func (w *Writer) WriteRun(run *domain.RunOutput) error {
	var status string
	switch run.Outcome.Status {
	case domain.OutcomeSolved:
		status = "RESULT : " + run.Outcome.Result
	case domain.OutcomeNotSolved:
		status = "PUZZLE NOT SOLVED"
	default:
		msg := "unknown error"
		if run.Outcome.Err != nil {
			msg = run.Outcome.Err.Error()
		}
		status = "FAILED : " + msg
	}

	_, err := fmt.Fprintf(w.out, "Running %s %s\n\nELAPSED: %sms\n%s\n",
		run.Key, run.Part, FormatMillis(run.Outcome.Elapsed.Nanoseconds()), status)
	return err
}

// WriteScaffold writes the path of every created file.
func (w *Writer) WriteScaffold(s *domain.ScaffoldOutput) error {
	if _, err := fmt.Fprintf(w.out, "Created solution for %s at '%s'\n", s.Key, s.SolutionPath); err != nil {
		return err
	}
	for _, path := range s.CreatedFiles {
		if path == s.SolutionPath {
			continue
		}
		if _, err := fmt.Fprintf(w.out, "  also wrote %s\n", path); err != nil {
			return err
		}
	}
	if s.Staged {
		if _, err := fmt.Fprintln(w.out, "  files added to the git index"); err != nil {
			return err
		}
	}
	return nil
}

// FormatMillis renders a nanosecond duration as milliseconds with four
// decimal places, e.g. 1234567 -> "1.2346".
func FormatMillis(nanos int64) string {
	return fmt.Sprintf("%.4f", float64(nanos)/1e6)
}
