package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct {
	errorCalls int
}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})  {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {
	m.errorCalls++
}

// mockCatalog implements domain.Catalog for testing.
type mockCatalog struct {
	puzzles map[domain.DayKey]*domain.Puzzle
}

func (m *mockCatalog) Resolve(key domain.DayKey) (*domain.Puzzle, error) {
	if p, ok := m.puzzles[key]; ok {
		return p, nil
	}
	return nil, domain.ErrDayNotFound
}

func (m *mockCatalog) Has(key domain.DayKey) bool {
	_, ok := m.puzzles[key]
	return ok
}

func (m *mockCatalog) Keys() []domain.DayKey {
	keys := make([]domain.DayKey, 0, len(m.puzzles))
	for k := range m.puzzles {
		keys = append(keys, k)
	}
	return keys
}

// mockInputSource implements domain.InputSource for testing.
type mockInputSource struct {
	text  string
	err   error
	calls []domain.DayKey
}

func (m *mockInputSource) Get(_ context.Context, key domain.DayKey) (string, error) {
	m.calls = append(m.calls, key)
	return m.text, m.err
}

func TestDayRunner_Run(t *testing.T) {
	key := domain.DayKey{Year: 2021, Day: 1}

	tests := []struct {
		name       string
		needsInput bool
		part       domain.Part
		solution   *scriptedSolution
		inputs     *mockInputSource
		wantStatus domain.OutcomeStatus
		wantResult string
		wantPart   domain.Part
		wantInput  string
		wantGets   int
		wantErrLog int
	}{
		{
			name:       "solved part one with input",
			needsInput: true,
			part:       domain.PartOne,
			solution:   &scriptedSolution{one: solvedWith("7"), two: notSolved},
			inputs:     &mockInputSource{text: "199\n200\n"},
			wantStatus: domain.OutcomeSolved,
			wantResult: "7",
			wantPart:   domain.PartOne,
			wantInput:  "199\n200\n",
			wantGets:   1,
		},
		{
			name:       "unspecified part defaults to one",
			needsInput: true,
			part:       domain.PartUnspecified,
			solution:   &scriptedSolution{one: solvedWith("first"), two: solvedWith("second")},
			inputs:     &mockInputSource{text: "x"},
			wantStatus: domain.OutcomeSolved,
			wantResult: "first",
			wantPart:   domain.PartOne,
			wantInput:  "x",
			wantGets:   1,
		},
		{
			name:       "not solved part two",
			needsInput: true,
			part:       domain.PartTwo,
			solution:   &scriptedSolution{one: solvedWith("7"), two: notSolved},
			inputs:     &mockInputSource{text: "x"},
			wantStatus: domain.OutcomeNotSolved,
			wantPart:   domain.PartTwo,
			wantInput:  "x",
			wantGets:   1,
		},
		{
			name:       "inputless solution never touches the cache",
			needsInput: false,
			part:       domain.PartOne,
			solution:   &scriptedSolution{one: solvedWith("42"), two: notSolved},
			inputs:     &mockInputSource{err: domain.ErrCredentialMissing},
			wantStatus: domain.OutcomeSolved,
			wantResult: "42",
			wantPart:   domain.PartOne,
			wantInput:  "",
			wantGets:   0,
		},
		{
			name:       "failing solution is reported in the outcome",
			needsInput: false,
			part:       domain.PartOne,
			solution: &scriptedSolution{
				one: func(string) (domain.Answer, error) { return domain.Answer{}, errors.New("bad input") },
				two: notSolved,
			},
			inputs:     &mockInputSource{},
			wantStatus: domain.OutcomeFailed,
			wantPart:   domain.PartOne,
			wantInput:  "",
			wantErrLog: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &mockCatalog{puzzles: map[domain.DayKey]*domain.Puzzle{
				key: {Key: key, NeedsInput: tt.needsInput, Solution: tt.solution},
			}}
			log := &mockLogger{}
			runner := NewDayRunner(catalog, tt.inputs, nil, log)

			out, err := runner.Run(context.Background(), domain.RunInput{Key: key, Part: tt.part})

			require.NoError(t, err)
			require.NotNil(t, out)
			assert.Equal(t, key, out.Key)
			assert.Equal(t, tt.wantPart, out.Part)
			assert.Equal(t, tt.wantStatus, out.Outcome.Status)
			assert.Equal(t, tt.wantResult, out.Outcome.Result)
			assert.Len(t, tt.inputs.calls, tt.wantGets)
			assert.Equal(t, tt.wantErrLog, log.errorCalls)

			calls := append(append([]string{}, tt.solution.oneCalls...), tt.solution.twoCalls...)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantInput, calls[0])
		})
	}
}

func TestDayRunner_Run_UnknownDay(t *testing.T) {
	inputs := &mockInputSource{}
	runner := NewDayRunner(&mockCatalog{}, inputs, nil, &mockLogger{})

	out, err := runner.Run(context.Background(), domain.RunInput{
		Key:  domain.DayKey{Year: 2021, Day: 9},
		Part: domain.PartOne,
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrDayNotFound)
	assert.Empty(t, inputs.calls)
}

func TestDayRunner_Run_InputError(t *testing.T) {
	key := domain.DayKey{Year: 2021, Day: 1}
	sol := &scriptedSolution{one: solvedWith("unused"), two: notSolved}
	catalog := &mockCatalog{puzzles: map[domain.DayKey]*domain.Puzzle{
		key: {Key: key, NeedsInput: true, Solution: sol},
	}}
	inputs := &mockInputSource{err: domain.ErrFetchFailed}
	runner := NewDayRunner(catalog, inputs, nil, &mockLogger{})

	out, err := runner.Run(context.Background(), domain.RunInput{Key: key, Part: domain.PartOne})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Empty(t, sol.oneCalls, "solution must not run without input")
}
