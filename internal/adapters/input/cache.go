// Package input provides the on-disk puzzle input cache.
// Input is read from <root>/<year>/dayNN.txt, or downloaded once through a
// Fetcher and persisted there. A cached file is never rewritten.
package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Logger defines the logging interface for the input cache.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Fetcher downloads the input for one day and streams it to w.
type Fetcher interface {
	Fetch(ctx context.Context, key domain.DayKey, cred domain.Credential, w io.Writer) error
}

// FileCache implements domain.InputSource on top of a local directory tree.
type FileCache struct {
	root       string
	credential string
	fetcher    Fetcher
	logger     Logger
}

// NewFileCache creates a cache rooted at root. credential is the raw session
// cookie; it may be empty, in which case only cached inputs are available.
func NewFileCache(root, credential string, fetcher Fetcher, log Logger) *FileCache {
	return &FileCache{
		root:       root,
		credential: credential,
		fetcher:    fetcher,
		logger:     log,
	}
}

// Path returns the cache file path for key.
func (c *FileCache) Path(key domain.DayKey) string {
	return filepath.Join(c.root, strconv.Itoa(key.Year), fmt.Sprintf("day%02d.txt", key.Day))
}

// Get returns the input text for key. A cached file is returned verbatim
// without any network access. Otherwise the input is fetched exactly once;
// a failed fetch leaves no file behind.
func (c *FileCache) Get(ctx context.Context, key domain.DayKey) (string, error) {
	info, err := os.Stat(c.root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: '%s'", domain.ErrInputDirNotFound, c.root)
	}

	path := c.Path(key)
	c.logger.Info(ctx, "loading input", map[string]interface{}{
		"path": path,
	})

	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read cached input %s: %w", path, err)
	}

	return c.download(ctx, key, path)
}

// download fetches the input for key into path.
func (c *FileCache) download(ctx context.Context, key domain.DayKey, path string) (string, error) {
	if c.credential == "" {
		return "", fmt.Errorf("%w: put a valid session cookie in the settings to download %s",
			domain.ErrCredentialMissing, key)
	}
	cred, err := domain.ParseCredential(c.credential)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %w", domain.ErrFetchFailed, dir, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %w", domain.ErrFetchFailed, path, err)
	}

	c.logger.Info(ctx, "downloading input", map[string]interface{}{
		"year": key.Year,
		"day":  key.Day,
		"path": path,
	})

	var buf bytes.Buffer
	fetchErr := c.fetcher.Fetch(ctx, key, cred, io.MultiWriter(f, &buf))
	closeErr := f.Close()

	if fetchErr == nil && closeErr != nil {
		fetchErr = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if fetchErr != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			c.logger.Warn(ctx, "failed to remove partial input file", map[string]interface{}{
				"path":  path,
				"error": rmErr.Error(),
			})
		}
		return "", fmt.Errorf("%w for %s: %w", domain.ErrFetchFailed, key, fetchErr)
	}

	c.logger.Debug(ctx, "cached input", map[string]interface{}{
		"path":  path,
		"bytes": buf.Len(),
	})

	return buf.String(), nil
}
