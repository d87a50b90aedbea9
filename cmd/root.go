// Package cmd provides the CLI commands for advent.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
	"github.com/MyCarrier-DevOps/advent-runner/internal/usecases"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance. It is called after --verbose
	// has been applied to the environment.
	LoggerFactory func() Logger

	// LoggerScope returns log carrying fields on every entry. Nil leaves the
	// logger unscoped.
	LoggerScope func(log Logger, fields map[string]interface{}) Logger

	// ConfigLoader loads application configuration. settingsPath is the
	// --settings flag value and may be empty.
	ConfigLoader func(settingsPath string) (*AppConfig, error)

	// CatalogFactory returns the catalog of registered solutions.
	CatalogFactory func() domain.Catalog

	// InputSourceFactory creates the puzzle input source.
	InputSourceFactory func(cfg *AppConfig, log Logger) domain.InputSource

	// RunnerFactory creates a Runner with the given dependencies.
	RunnerFactory func(catalog domain.Catalog, inputs domain.InputSource, log Logger) domain.Runner

	// ScaffolderFactory creates a Scaffolder writing into the configured solutions directory.
	ScaffolderFactory func(cfg *AppConfig, catalog domain.Catalog, log Logger) (domain.Scaffolder, error)

	// OutputWriterFactory creates an OutputWriter printing to w.
	OutputWriterFactory func(w io.Writer) domain.OutputWriter

	// Stdout is the writer for standard output (run reports).
	Stdout io.Writer

	// Stderr is the writer for standard error (usage and warnings).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// DefaultYear is used when the command line names no year.
	DefaultYear int

	// SessionCookie authenticates input downloads.
	SessionCookie string

	// InputDirectory is the input cache root.
	InputDirectory string

	// SolutionsDirectory is where scaffolded solutions are written.
	SolutionsDirectory string

	// BaseURL is the puzzle site address.
	BaseURL string

	// UserAgent is sent with input downloads.
	UserAgent string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// Command-line flags.
var (
	verbose      bool
	settingsPath string
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for advent.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "advent [run|newday] [yyyy] <dd>[a|b]",
		Short: "Run or scaffold Advent of Code puzzle solutions",
		Long: `advent runs one part of one day's puzzle solution and reports how long it took.

Arguments may appear in any order. A four-digit year selects the event
(defaulting to the configured year), a day number from 1 to 25 selects the
puzzle, and an 'a' or 'b' suffix selects part one or two (default: part one).
Puzzle input is read from <input dir>/<year>/dayNN.txt and downloaded on
first use with the configured session cookie.

'newday' (or 'scaffold') creates a skeleton solution for the day instead.

Examples:
  # Run part one of day 7 in the default year
  advent 7

  # Run part two of 2021 day 7
  advent 2021 7b

  # Scaffold a new solution
  advent newday 2022 3

  # Use another settings file and enable verbose logging
  advent -s ~/advent.yaml -v 2021 1a`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		// Unrecognised tokens, dash-prefixed ones included, are ignored rather
		// than rejected, so flags are parsed in RunE after dropping unknown ones.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, err := parseKnownFlags(cmd, args)
			if err != nil {
				return err
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}
			return runAdvent(cmd, args, deps)
		},
	}

	// Define flags
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")
	rootCmd.Flags().StringVarP(&settingsPath, "settings", "s", "",
		"Settings file (JSON or YAML); defaults to $ADVENT_SETTINGS or settings.json")

	return rootCmd
}

// parseKnownFlags parses the command's own flags out of args and returns the
// remaining positional tokens. Dash-prefixed tokens naming no known flag are
// dropped so they can neither fail parsing nor swallow the next token as a value.
func parseKnownFlags(cmd *cobra.Command, args []string) ([]string, error) {
	flags := cmd.Flags()
	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			kept = append(kept, args[i:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			kept = append(kept, arg)
			continue
		}

		known, needsValue := classifyFlag(cmd, arg)
		if !known {
			continue
		}
		kept = append(kept, arg)
		if needsValue && i+1 < len(args) {
			i++
			kept = append(kept, args[i])
		}
	}

	if err := flags.Parse(kept); err != nil {
		return nil, err
	}
	return flags.Args(), nil
}

// classifyFlag reports whether arg names a flag of cmd and whether that flag's
// value is carried by the next token ("-s path", "-vs path", "--settings path").
func classifyFlag(cmd *cobra.Command, arg string) (known, needsValue bool) {
	flags := cmd.Flags()

	if strings.HasPrefix(arg, "--") {
		name, _, inline := strings.Cut(arg[2:], "=")
		if name == "" {
			return false, false
		}
		flag := flags.Lookup(name)
		if flag == nil {
			return false, false
		}
		return true, flag.NoOptDefVal == "" && !inline
	}

	shorthands := arg[1:]
	for j := 0; j < len(shorthands); j++ {
		if shorthands[j] == '=' {
			return j > 0, false
		}
		flag := flags.ShorthandLookup(shorthands[j : j+1])
		if flag == nil {
			return false, false
		}
		if flag.NoOptDefVal == "" {
			// The rest of the token, if any, is the value.
			return true, j == len(shorthands)-1
		}
	}
	return true, false
}

// runAdvent parses the request and dispatches it with injected dependencies.
func runAdvent(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Get stderr for warnings
	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	stdout := deps.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	// Set log level based on verbose flag (best-effort)
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			// Best-effort warning: ignore fprintf error as this is non-critical
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	// Initialize logger
	log := deps.LoggerFactory()

	log.Debug(ctx, "starting advent", map[string]interface{}{
		"args":     args,
		"settings": settingsPath,
		"verbose":  verbose,
	})

	// Load configuration
	cfg, err := deps.ConfigLoader(settingsPath)
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return fmt.Errorf("configuration error: %w", err)
	}

	req, err := usecases.ParseRequest(args, cfg.DefaultYear)
	if err != nil {
		writeWarningf(stderr, "%v\n\n%s", err, cmd.UsageString())
		return err
	}

	if deps.LoggerScope != nil {
		log = deps.LoggerScope(log, map[string]interface{}{
			"year": req.Key.Year,
			"day":  req.Key.Day,
			"part": req.Part.String(),
			"verb": req.Verb.String(),
		})
	}

	catalog := deps.CatalogFactory()
	writer := deps.OutputWriterFactory(stdout)

	if req.Verb == domain.VerbScaffold {
		return runScaffold(ctx, req, cfg, catalog, writer, deps, log)
	}
	return runPuzzle(ctx, req, cfg, catalog, writer, deps, log)
}

// runPuzzle runs one part and reports it. A failed part is reported before
// its error is returned.
func runPuzzle(
	ctx context.Context,
	req domain.Request,
	cfg *AppConfig,
	catalog domain.Catalog,
	writer domain.OutputWriter,
	deps *Dependencies,
	log Logger,
) error {
	inputs := deps.InputSourceFactory(cfg, log)
	runner := deps.RunnerFactory(catalog, inputs, log)

	result, err := runner.Run(ctx, domain.RunInput{Key: req.Key, Part: req.Part})
	if err != nil {
		if errors.Is(err, domain.ErrDayNotFound) {
			log.Debug(ctx, "registered solutions", map[string]interface{}{
				"keys": fmt.Sprint(catalog.Keys()),
			})
		}
		return describeRunError(req.Key, cfg, err)
	}

	if err := writer.WriteRun(result); err != nil {
		log.Error(ctx, "failed to write output", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	if result.Outcome.Status == domain.OutcomeFailed {
		return fmt.Errorf("%s %s: %w", result.Key, result.Part, result.Outcome.Err)
	}
	return nil
}

// describeRunError maps runner errors to a single terminal message.
func describeRunError(key domain.DayKey, cfg *AppConfig, err error) error {
	switch {
	case errors.Is(err, domain.ErrDayNotFound):
		return fmt.Errorf("%w for %s", domain.ErrDayNotFound, key)
	case errors.Is(err, domain.ErrInputDirNotFound):
		return fmt.Errorf("%w: %s", domain.ErrInputDirNotFound, cfg.InputDirectory)
	case errors.Is(err, domain.ErrCredentialMissing):
		return fmt.Errorf("%w; set sessionCookie in the settings file or ADVENT_SESSION_COOKIE",
			domain.ErrCredentialMissing)
	case errors.Is(err, domain.ErrFetchFailed):
		return fmt.Errorf("could not download input for %s: %w", key, err)
	}
	return err
}

// runScaffold creates a skeleton solution and reports where it went.
func runScaffold(
	ctx context.Context,
	req domain.Request,
	cfg *AppConfig,
	catalog domain.Catalog,
	writer domain.OutputWriter,
	deps *Dependencies,
	log Logger,
) error {
	scaffolder, err := deps.ScaffolderFactory(cfg, catalog, log)
	if err != nil {
		log.Error(ctx, "failed to initialize scaffolder", err, map[string]interface{}{
			"path": cfg.SolutionsDirectory,
		})
		return fmt.Errorf("cannot scaffold into %s: %w", cfg.SolutionsDirectory, err)
	}

	result, err := scaffolder.Create(ctx, req.Key)
	if err != nil {
		if errors.Is(err, domain.ErrScaffoldExists) {
			return fmt.Errorf("%w for %s", domain.ErrScaffoldExists, req.Key)
		}
		log.Error(ctx, "failed to scaffold solution", err, map[string]interface{}{
			"year": req.Key.Year,
			"day":  req.Key.Day,
		})
		return err
	}

	if err := writer.WriteScaffold(result); err != nil {
		log.Error(ctx, "failed to write output", err, nil)
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		// Intentionally ignored: no recovery action for failed stderr writes
		return
	}
}
