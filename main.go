// Package main is the entry point for the advent CLI application.
// advent runs Advent of Code puzzle solutions against cached puzzle input
// and scaffolds new solutions.
package main

import (
	"context"
	"io"
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"

	"github.com/MyCarrier-DevOps/advent-runner/cmd"
	"github.com/MyCarrier-DevOps/advent-runner/internal/adapters/git"
	"github.com/MyCarrier-DevOps/advent-runner/internal/adapters/input"
	logadapter "github.com/MyCarrier-DevOps/advent-runner/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/advent-runner/internal/adapters/output"
	"github.com/MyCarrier-DevOps/advent-runner/internal/adapters/remote"
	"github.com/MyCarrier-DevOps/advent-runner/internal/adapters/scaffold"
	"github.com/MyCarrier-DevOps/advent-runner/internal/catalog"
	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
	"github.com/MyCarrier-DevOps/advent-runner/internal/infrastructure/config"
	_ "github.com/MyCarrier-DevOps/advent-runner/internal/solutions/all"
	"github.com/MyCarrier-DevOps/advent-runner/internal/usecases"
)

func main() {
	// Wire up production dependencies
	deps := &cmd.Dependencies{
		// The zap logger reads LOG_LEVEL when built, so it is created after
		// --verbose has been applied.
		LoggerFactory: func() cmd.Logger {
			return logadapter.NewZapAdapter(logger.NewZapLoggerFromConfig())
		},

		LoggerScope: scopeLogger,

		ConfigLoader: func(settingsPath string) (*cmd.AppConfig, error) {
			cfg, err := config.Load(settingsPath)
			if err != nil {
				return nil, err
			}
			return toAppConfig(cfg), nil
		},

		CatalogFactory: func() domain.Catalog {
			return catalog.Default()
		},

		InputSourceFactory: func(cfg *cmd.AppConfig, log cmd.Logger) domain.InputSource {
			client := remote.NewClient(cfg.BaseURL, cfg.UserAgent, nil, log)
			return input.NewFileCache(cfg.InputDirectory, cfg.SessionCookie, client, log)
		},

		RunnerFactory: func(c domain.Catalog, inputs domain.InputSource, log cmd.Logger) domain.Runner {
			return usecases.NewDayRunner(c, inputs, nil, log)
		},

		ScaffolderFactory: func(cfg *cmd.AppConfig, c domain.Catalog, log cmd.Logger) (domain.Scaffolder, error) {
			return scaffold.New(cfg.SolutionsDirectory, c, newStager(cfg.SolutionsDirectory, log), log)
		},

		OutputWriterFactory: func(w io.Writer) domain.OutputWriter {
			return output.NewWriterWithOutput(w)
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

// toAppConfig copies the loaded configuration into the command's view of it.
func toAppConfig(cfg *config.Config) *cmd.AppConfig {
	return &cmd.AppConfig{
		DefaultYear:        cfg.DefaultYear,
		SessionCookie:      cfg.SessionCookie,
		InputDirectory:     cfg.InputDirectory,
		SolutionsDirectory: cfg.SolutionsDirectory,
		BaseURL:            cfg.BaseURL,
		UserAgent:          cfg.UserAgent,
		LogLevel:           cfg.LogLevel,
		LogAppName:         cfg.LogAppName,
	}
}

// newStager returns a stager for the repository enclosing dir, or nil when
// dir is not inside a git repository.
func newStager(dir string, log cmd.Logger) scaffold.Stager {
	ws, err := git.OpenWorkspace(dir, log)
	if err != nil {
		log.Debug(context.Background(), "not staging scaffolded files", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil
	}
	log.Debug(context.Background(), "staging scaffolded files", map[string]interface{}{
		"repository": ws.Root(),
	})
	return ws
}

// scopeLogger stamps fields on every entry written through log.
func scopeLogger(log cmd.Logger, fields map[string]interface{}) cmd.Logger {
	if z, ok := log.(*logadapter.ZapAdapter); ok {
		return z.With(fields)
	}
	return log
}
