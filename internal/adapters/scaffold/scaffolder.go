// Package scaffold creates new solution skeletons from embedded templates.
//
// Solutions live in <dir>/year<YYYY>/day<NN>.go and register themselves with
// the catalog from init. The generated manifest <dir>/all/all.go blank-imports
// every year package so a new year becomes runnable without editing main.
package scaffold

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/mod/modfile"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// ManifestPackage is the directory, under the solutions directory, holding the manifest.
const ManifestPackage = "all"

// Logger defines the logging interface for the scaffolder.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Stager adds files to version control.
type Stager interface {
	Stage(ctx context.Context, paths ...string) error
}

// ErrModuleNotFound indicates no go.mod encloses the solutions directory.
var ErrModuleNotFound = errors.New("go.mod not found above solutions directory")

// Scaffolder implements domain.Scaffolder.
type Scaffolder struct {
	dir        string
	modulePath string
	importBase string
	catalog    domain.Catalog
	stager     Stager
	logger     Logger
}

// New creates a Scaffolder writing into dir. The module path used in
// generated imports is read from the nearest go.mod above dir. stager may be
// nil, in which case files are not staged.
func New(dir string, catalog domain.Catalog, stager Stager, log Logger) (*Scaffolder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid solutions directory %s: %w", dir, err)
	}

	moduleRoot, modulePath, err := FindModule(abs)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(moduleRoot, abs)
	if err != nil {
		return nil, fmt.Errorf("solutions directory %s is outside module %s: %w", abs, moduleRoot, err)
	}

	return &Scaffolder{
		dir:        abs,
		modulePath: modulePath,
		importBase: path.Join(modulePath, filepath.ToSlash(rel)),
		catalog:    catalog,
		stager:     stager,
		logger:     log,
	}, nil
}

// FindModule walks up from dir to the nearest go.mod and returns its
// directory and module path.
func FindModule(dir string) (root, modulePath string, err error) {
	for current := dir; ; {
		data, readErr := os.ReadFile(filepath.Join(current, "go.mod"))
		if readErr == nil {
			modulePath = modfile.ModulePath(data)
			if modulePath == "" {
				return "", "", fmt.Errorf("%w: %s has no module directive", ErrModuleNotFound, current)
			}
			return current, modulePath, nil
		}
		if !errors.Is(readErr, fs.ErrNotExist) {
			return "", "", fmt.Errorf("failed to read go.mod in %s: %w", current, readErr)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", "", fmt.Errorf("%w: %s", ErrModuleNotFound, dir)
		}
		current = parent
	}
}

// dayData feeds the day templates.
type dayData struct {
	Module   string
	Year     int
	Day      int
	TypeName string
}

// manifestData feeds the manifest template.
type manifestData struct {
	Imports []string
}

// SolutionPath returns the source path a solution for key is written to.
func (s *Scaffolder) SolutionPath(key domain.DayKey) string {
	return filepath.Join(s.yearDir(key.Year), fmt.Sprintf("day%02d.go", key.Day))
}

func (s *Scaffolder) yearDir(year int) string {
	return filepath.Join(s.dir, "year"+strconv.Itoa(year))
}

// ManifestPath returns the path of the generated manifest.
func (s *Scaffolder) ManifestPath() string {
	return filepath.Join(s.dir, ManifestPackage, ManifestPackage+".go")
}

// Create writes a solution skeleton and its test for key. It refuses to
// touch anything if the key is already registered or the file exists.
// When a later step fails, files written so far are removed again.
func (s *Scaffolder) Create(ctx context.Context, key domain.DayKey) (_ *domain.ScaffoldOutput, err error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	solutionPath := s.SolutionPath(key)
	if s.catalog != nil && s.catalog.Has(key) {
		return nil, fmt.Errorf("%w for %s", domain.ErrScaffoldExists, key)
	}
	if _, err := os.Stat(solutionPath); err == nil {
		return nil, fmt.Errorf("%w for %s at %s", domain.ErrScaffoldExists, key, solutionPath)
	}

	yearDir := s.yearDir(key.Year)
	newYear := false
	if _, err := os.Stat(yearDir); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info(ctx, "creating a new year's directory", map[string]interface{}{
			"path": yearDir,
		})
		if err := os.MkdirAll(yearDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", yearDir, err)
		}
		newYear = true
	}

	data := dayData{
		Module:   s.modulePath,
		Year:     key.Year,
		Day:      key.Day,
		TypeName: fmt.Sprintf("Day%02d", key.Day),
	}

	s.logger.Info(ctx, "creating solution file", map[string]interface{}{
		"year": key.Year,
		"day":  key.Day,
		"path": solutionPath,
	})

	out := &domain.ScaffoldOutput{Key: key, SolutionPath: solutionPath}
	defer func() {
		if err != nil {
			s.rollback(ctx, out.CreatedFiles, yearDir, newYear)
		}
	}()

	if err := s.render("day.go.tmpl", data, solutionPath); err != nil {
		return nil, err
	}
	out.CreatedFiles = append(out.CreatedFiles, solutionPath)

	testPath := strings.TrimSuffix(solutionPath, ".go") + "_test.go"
	if _, err := os.Stat(testPath); errors.Is(err, fs.ErrNotExist) {
		if err := s.render("day_test.go.tmpl", data, testPath); err != nil {
			return nil, err
		}
		out.CreatedFiles = append(out.CreatedFiles, testPath)
	}

	if _, err := os.Stat(s.ManifestPath()); newYear || err != nil {
		if err := s.WriteManifest(ctx); err != nil {
			return nil, err
		}
		out.CreatedFiles = append(out.CreatedFiles, s.ManifestPath())
	}

	if s.stager != nil {
		if err := s.stager.Stage(ctx, out.CreatedFiles...); err != nil {
			s.logger.Warn(ctx, "failed to stage scaffolded files", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			out.Staged = true
		}
	}

	return out, nil
}

// rollback removes files created by a failed Create, and the year directory
// if Create made it, so a retry starts from the same state.
func (s *Scaffolder) rollback(ctx context.Context, created []string, yearDir string, newYear bool) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := os.Remove(created[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn(ctx, "failed to remove scaffolded file", map[string]interface{}{
				"path":  created[i],
				"error": err.Error(),
			})
		}
	}
	if newYear {
		if err := os.Remove(yearDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn(ctx, "failed to remove year directory", map[string]interface{}{
				"path":  yearDir,
				"error": err.Error(),
			})
		}
	}
}

// WriteManifest regenerates the manifest from the year directories on disk.
func (s *Scaffolder) WriteManifest(ctx context.Context) error {
	years, err := s.yearPackages()
	if err != nil {
		return err
	}

	imports := make([]string, 0, len(years))
	for _, y := range years {
		imports = append(imports, path.Join(s.importBase, y))
	}

	manifest := s.ManifestPath()
	if err := os.MkdirAll(filepath.Dir(manifest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(manifest), err)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "manifest.go.tmpl", manifestData{Imports: imports}); err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}
	if err := os.WriteFile(manifest, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifest, err)
	}

	s.logger.Debug(ctx, "wrote solution manifest", map[string]interface{}{
		"path":  manifest,
		"years": years,
	})
	return nil
}

// yearPackages lists the year<YYYY> directories under dir, sorted.
func (s *Scaffolder) yearPackages() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var years []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "year") {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "year")); err != nil {
			continue
		}
		years = append(years, e.Name())
	}
	sort.Strings(years)
	return years, nil
}

// render executes the named template into a new file at dst.
// The file is created exclusively so an existing solution is never overwritten.
func (s *Scaffolder) render(name string, data dayData, dst string) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w at %s", domain.ErrScaffoldExists, dst)
		}
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return f.Close()
}
