package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Test mocks for dependency injection testing.

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// recordingLogger captures debug entries.
type recordingLogger struct {
	mockLogger
	debug map[string]map[string]interface{}
}

func (r *recordingLogger) Debug(_ context.Context, msg string, fields map[string]interface{}) {
	if r.debug == nil {
		r.debug = make(map[string]map[string]interface{})
	}
	r.debug[msg] = fields
}

// mockCatalog implements domain.Catalog for testing.
type mockCatalog struct {
	keys map[domain.DayKey]bool
}

func (m *mockCatalog) Resolve(key domain.DayKey) (*domain.Puzzle, error) {
	if !m.keys[key] {
		return nil, domain.ErrDayNotFound
	}
	return &domain.Puzzle{Key: key}, nil
}

func (m *mockCatalog) Has(key domain.DayKey) bool {
	return m.keys[key]
}

func (m *mockCatalog) Keys() []domain.DayKey {
	keys := make([]domain.DayKey, 0, len(m.keys))
	for k := range m.keys {
		keys = append(keys, k)
	}
	return keys
}

// mockRunner implements domain.Runner for testing.
type mockRunner struct {
	output   *domain.RunOutput
	err      error
	received domain.RunInput
}

func (m *mockRunner) Run(_ context.Context, input domain.RunInput) (*domain.RunOutput, error) {
	m.received = input
	return m.output, m.err
}

// mockScaffolder implements domain.Scaffolder for testing.
type mockScaffolder struct {
	output   *domain.ScaffoldOutput
	err      error
	received domain.DayKey
}

func (m *mockScaffolder) Create(_ context.Context, key domain.DayKey) (*domain.ScaffoldOutput, error) {
	m.received = key
	return m.output, m.err
}

// mockOutputWriter implements domain.OutputWriter for testing.
type mockOutputWriter struct {
	run      *domain.RunOutput
	scaffold *domain.ScaffoldOutput
	writeErr error
}

func (m *mockOutputWriter) WriteRun(run *domain.RunOutput) error {
	m.run = run
	return m.writeErr
}

func (m *mockOutputWriter) WriteScaffold(s *domain.ScaffoldOutput) error {
	m.scaffold = s
	return m.writeErr
}

// testDeps builds a complete dependency set around the given runner,
// scaffolder and writer.
func testDeps(runner *mockRunner, scaffolder *mockScaffolder, writer *mockOutputWriter) *Dependencies {
	return &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func(_ string) (*AppConfig, error) {
			return &AppConfig{DefaultYear: 2020, InputDirectory: "/puzzles/Input"}, nil
		},
		CatalogFactory: func() domain.Catalog {
			return &mockCatalog{keys: map[domain.DayKey]bool{{Year: 2021, Day: 1}: true}}
		},
		InputSourceFactory: func(_ *AppConfig, _ Logger) domain.InputSource { return nil },
		RunnerFactory: func(_ domain.Catalog, _ domain.InputSource, _ Logger) domain.Runner {
			return runner
		},
		ScaffolderFactory: func(_ *AppConfig, _ domain.Catalog, _ Logger) (domain.Scaffolder, error) {
			return scaffolder, nil
		},
		OutputWriterFactory: func(_ io.Writer) domain.OutputWriter { return writer },
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}
}

func solvedRun(key domain.DayKey, part domain.Part) *domain.RunOutput {
	return &domain.RunOutput{
		Key:  key,
		Part: part,
		Outcome: domain.Outcome{
			Status:  domain.OutcomeSolved,
			Result:  "42",
			Elapsed: time.Millisecond,
		},
	}
}

func TestNewRootCmd(t *testing.T) {
	// Set default deps so NewRootCmd() works
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	require.NotNil(t, cmd)
	assert.Equal(t, "advent [run|newday] [yyyy] <dd>[a|b]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	// Check flags are registered
	verboseFlag := cmd.Flags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	settingsFlag := cmd.Flags().Lookup("settings")
	require.NotNil(t, settingsFlag)
	assert.Equal(t, "s", settingsFlag.Shorthand)
	assert.Equal(t, "", settingsFlag.DefValue)
}

func TestNewRootCmd_HelpOutput(t *testing.T) {
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "advent")
	assert.Contains(t, output, "newday")
	assert.Contains(t, output, "--settings")
	assert.Contains(t, output, "--verbose")
}

func TestRootCmd_NilDependencies(t *testing.T) {
	cmd := NewRootCmdWithDeps(nil)
	cmd.SetArgs([]string{"7"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependencies not configured")
}

func TestRootCmd_ConfigLoadError(t *testing.T) {
	deps := &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func(_ string) (*AppConfig, error) {
			return nil, errors.New("failed to load config")
		},
		Stderr: io.Discard,
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"7"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRootCmd_SettingsFlagReachesLoader(t *testing.T) {
	var received string
	runner := &mockRunner{output: solvedRun(domain.DayKey{Year: 2020, Day: 7}, domain.PartOne)}
	deps := testDeps(runner, nil, &mockOutputWriter{})
	deps.ConfigLoader = func(path string) (*AppConfig, error) {
		received = path
		return &AppConfig{DefaultYear: 2020}, nil
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"--settings", "/etc/advent.yaml", "7"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/etc/advent.yaml", received)
}

func TestRootCmd_UsageError(t *testing.T) {
	runner := &mockRunner{}
	deps := testDeps(runner, nil, &mockOutputWriter{})
	var stderr bytes.Buffer
	deps.Stderr = &stderr

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"2021", "hello"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUsage)
	assert.Contains(t, stderr.String(), "day was not specified")
	assert.Contains(t, stderr.String(), "Usage:")
	assert.Equal(t, domain.RunInput{}, runner.received, "runner must not be called")
}

func TestRootCmd_Run(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantKey domain.DayKey
		want    domain.Part
	}{
		{name: "default year and part", args: []string{"7"}, wantKey: domain.DayKey{Year: 2020, Day: 7}, want: domain.PartUnspecified},
		{name: "explicit year and part two", args: []string{"2021", "1b"}, wantKey: domain.DayKey{Year: 2021, Day: 1}, want: domain.PartTwo},
		{name: "run verb", args: []string{"run", "1a", "2021"}, wantKey: domain.DayKey{Year: 2021, Day: 1}, want: domain.PartOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: solvedRun(tt.wantKey, tt.want.Effective())}
			writer := &mockOutputWriter{}

			cmd := NewRootCmdWithDeps(testDeps(runner, nil, writer))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			require.NoError(t, err)
			assert.Equal(t, domain.RunInput{Key: tt.wantKey, Part: tt.want}, runner.received)
			assert.Same(t, runner.output, writer.run)
		})
	}
}

func TestRootCmd_IgnoresUnknownFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown long flag before year", args: []string{"--foo", "2021", "1a"}},
		{name: "unknown shorthand before year", args: []string{"-x", "2021", "1a"}},
		{name: "unknown flag with inline value", args: []string{"--foo=bar", "2021", "1a"}},
		{name: "unknown flag between tokens", args: []string{"2021", "--dry-run", "1a"}},
		{name: "negative number", args: []string{"-3", "2021", "1a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := domain.DayKey{Year: 2021, Day: 1}
			runner := &mockRunner{output: solvedRun(key, domain.PartOne)}

			cmd := NewRootCmdWithDeps(testDeps(runner, nil, &mockOutputWriter{}))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			require.NoError(t, err)
			assert.Equal(t, domain.RunInput{Key: key, Part: domain.PartOne}, runner.received)
		})
	}
}

func TestRootCmd_KnownFlagsKeepTheirValues(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantSettings string
		wantVerbose  bool
	}{
		{name: "long flag with separate value", args: []string{"--settings", "a.yaml", "2021", "1a"}, wantSettings: "a.yaml"},
		{name: "long flag with inline value", args: []string{"--settings=b.yaml", "2021", "1a"}, wantSettings: "b.yaml"},
		{name: "shorthand with separate value", args: []string{"-s", "c.yaml", "2021", "1a"}, wantSettings: "c.yaml"},
		{name: "shorthand with attached value", args: []string{"-sd.yaml", "2021", "1a"}, wantSettings: "d.yaml"},
		{name: "combined shorthands", args: []string{"-vs", "e.yaml", "2021", "1a"}, wantSettings: "e.yaml", wantVerbose: true},
		{name: "unknown flag next to known ones", args: []string{"--foo", "-s", "f.yaml", "-x", "2021", "1a"}, wantSettings: "f.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "info")
			var received string
			key := domain.DayKey{Year: 2021, Day: 1}
			runner := &mockRunner{output: solvedRun(key, domain.PartOne)}
			deps := testDeps(runner, nil, &mockOutputWriter{})
			deps.ConfigLoader = func(path string) (*AppConfig, error) {
				received = path
				return &AppConfig{DefaultYear: 2020}, nil
			}

			cmd := NewRootCmdWithDeps(deps)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantSettings, received)
			assert.Equal(t, tt.wantVerbose, verbose)
			assert.Equal(t, domain.RunInput{Key: key, Part: domain.PartOne}, runner.received)
		})
	}
}

func TestRootCmd_ShorthandHelp(t *testing.T) {
	cmd := NewRootCmdWithDeps(&Dependencies{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"-h"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "--settings")
}

func TestRootCmd_Run_NotSolvedSucceeds(t *testing.T) {
	key := domain.DayKey{Year: 2021, Day: 1}
	runner := &mockRunner{output: &domain.RunOutput{
		Key:     key,
		Part:    domain.PartOne,
		Outcome: domain.Outcome{Status: domain.OutcomeNotSolved},
	}}
	writer := &mockOutputWriter{}

	cmd := NewRootCmdWithDeps(testDeps(runner, nil, writer))
	cmd.SetArgs([]string{"2021", "1"})

	require.NoError(t, cmd.Execute())
	assert.NotNil(t, writer.run)
}

func TestRootCmd_Run_FailedOutcome(t *testing.T) {
	key := domain.DayKey{Year: 2021, Day: 1}
	cause := errors.New("index out of range")
	runner := &mockRunner{output: &domain.RunOutput{
		Key:  key,
		Part: domain.PartOne,
		Outcome: domain.Outcome{
			Status: domain.OutcomeFailed,
			Err:    errors.Join(domain.ErrSolutionFailed, cause),
		},
	}}
	writer := &mockOutputWriter{}

	cmd := NewRootCmdWithDeps(testDeps(runner, nil, writer))
	cmd.SetArgs([]string{"2021", "1"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSolutionFailed)
	assert.Contains(t, err.Error(), "2021 day 1 part 1")
	assert.NotNil(t, writer.run, "failed outcome is still reported")
}

func TestRootCmd_Run_Errors(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		wantIs     error
		wantSubstr string
	}{
		{
			name:       "unknown day",
			runErr:     domain.ErrDayNotFound,
			wantIs:     domain.ErrDayNotFound,
			wantSubstr: "code not found for 2021 day 9",
		},
		{
			name:       "missing input directory",
			runErr:     domain.ErrInputDirNotFound,
			wantIs:     domain.ErrInputDirNotFound,
			wantSubstr: "/puzzles/Input",
		},
		{
			name:       "missing credential",
			runErr:     domain.ErrCredentialMissing,
			wantIs:     domain.ErrConfiguration,
			wantSubstr: "ADVENT_SESSION_COOKIE",
		},
		{
			name:       "fetch failure",
			runErr:     errors.Join(domain.ErrFetchFailed, errors.New("403 Forbidden")),
			wantIs:     domain.ErrFetchFailed,
			wantSubstr: "could not download input for 2021 day 9",
		},
		{
			name:       "other error passes through",
			runErr:     errors.New("disk on fire"),
			wantSubstr: "disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockOutputWriter{}
			cmd := NewRootCmdWithDeps(testDeps(&mockRunner{err: tt.runErr}, nil, writer))
			cmd.SetArgs([]string{"2021", "9"})

			err := cmd.Execute()

			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Contains(t, err.Error(), tt.wantSubstr)
			assert.Nil(t, writer.run)
		})
	}
}

func TestRootCmd_Run_UnknownDayLogsRegisteredKeys(t *testing.T) {
	log := &recordingLogger{}
	deps := testDeps(&mockRunner{err: domain.ErrDayNotFound}, nil, &mockOutputWriter{})
	deps.LoggerFactory = func() Logger { return log }

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"2021", "9"})

	require.ErrorIs(t, cmd.Execute(), domain.ErrDayNotFound)
	require.Contains(t, log.debug, "registered solutions")
	assert.Equal(t, "[2021 day 1]", log.debug["registered solutions"]["keys"])
}

func TestRootCmd_ScopesLoggerToRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]interface{}
	}{
		{
			name: "run",
			args: []string{"2021", "1b"},
			want: map[string]interface{}{"year": 2021, "day": 1, "part": "part 2", "verb": "run"},
		},
		{
			name: "scaffold",
			args: []string{"scaffold", "2022", "3"},
			want: map[string]interface{}{"year": 2022, "day": 3, "part": "part unspecified", "verb": "scaffold"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: solvedRun(domain.DayKey{Year: 2021, Day: 1}, domain.PartTwo)}
			scaffolder := &mockScaffolder{output: &domain.ScaffoldOutput{Key: domain.DayKey{Year: 2022, Day: 3}}}
			deps := testDeps(runner, scaffolder, &mockOutputWriter{})

			scoped := &mockLogger{}
			var gotFields map[string]interface{}
			var gotLogger Logger
			deps.LoggerScope = func(_ Logger, fields map[string]interface{}) Logger {
				gotFields = fields
				return scoped
			}
			deps.RunnerFactory = func(_ domain.Catalog, _ domain.InputSource, log Logger) domain.Runner {
				gotLogger = log
				return runner
			}
			deps.ScaffolderFactory = func(_ *AppConfig, _ domain.Catalog, log Logger) (domain.Scaffolder, error) {
				gotLogger = log
				return scaffolder, nil
			}

			cmd := NewRootCmdWithDeps(deps)
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.want, gotFields)
			assert.Same(t, scoped, gotLogger)
		})
	}
}

func TestRootCmd_Run_OutputWriteError(t *testing.T) {
	runner := &mockRunner{output: solvedRun(domain.DayKey{Year: 2021, Day: 1}, domain.PartOne)}
	writer := &mockOutputWriter{writeErr: errors.New("broken pipe")}

	cmd := NewRootCmdWithDeps(testDeps(runner, nil, writer))
	cmd.SetArgs([]string{"2021", "1"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "output error")
}

func TestRootCmd_Run_WithVerboseFlag(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	runner := &mockRunner{output: solvedRun(domain.DayKey{Year: 2021, Day: 1}, domain.PartOne)}

	cmd := NewRootCmdWithDeps(testDeps(runner, nil, &mockOutputWriter{}))
	cmd.SetArgs([]string{"-v", "2021", "1"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

func TestRootCmd_Scaffold(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want domain.DayKey
	}{
		{name: "newday with year", args: []string{"newday", "2022", "3"}, want: domain.DayKey{Year: 2022, Day: 3}},
		{name: "scaffold default year", args: []string{"scaffold", "12"}, want: domain.DayKey{Year: 2020, Day: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			scaffolder := &mockScaffolder{output: &domain.ScaffoldOutput{Key: tt.want, SolutionPath: "/x/day.go"}}
			writer := &mockOutputWriter{}

			cmd := NewRootCmdWithDeps(testDeps(runner, scaffolder, writer))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			require.NoError(t, err)
			assert.Equal(t, tt.want, scaffolder.received)
			assert.Same(t, scaffolder.output, writer.scaffold)
			assert.Equal(t, domain.RunInput{}, runner.received, "runner must not be called")
		})
	}
}

func TestRootCmd_Scaffold_AlreadyExists(t *testing.T) {
	scaffolder := &mockScaffolder{err: domain.ErrScaffoldExists}
	writer := &mockOutputWriter{}

	cmd := NewRootCmdWithDeps(testDeps(&mockRunner{}, scaffolder, writer))
	cmd.SetArgs([]string{"newday", "2021", "1"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScaffoldExists)
	assert.Contains(t, err.Error(), "code already exists for 2021 day 1")
	assert.Nil(t, writer.scaffold)
}

func TestRootCmd_Scaffold_FactoryError(t *testing.T) {
	deps := testDeps(&mockRunner{}, nil, &mockOutputWriter{})
	deps.ScaffolderFactory = func(_ *AppConfig, _ domain.Catalog, _ Logger) (domain.Scaffolder, error) {
		return nil, errors.New("go.mod not found")
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{"newday", "2021", "2"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scaffold")
	assert.Contains(t, err.Error(), "go.mod not found")
}

func TestWriteWarningf(t *testing.T) {
	var buf bytes.Buffer
	writeWarningf(&buf, "warning: %s\n", "careful")
	assert.Equal(t, "warning: careful\n", buf.String())

	// Failing writers are ignored.
	assert.NotPanics(t, func() { writeWarningf(failingWriter{}, "x") })
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }
