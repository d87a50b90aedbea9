// Package config provides configuration loading for the advent-runner application.
// Settings come from an optional settings file (JSON or YAML), a .env file,
// environment variables and, for the session cookie, HashiCorp Vault.
// Later sources override earlier ones: defaults, settings file, environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Environment variable names.
const (
	// EnvSettingsFile is the path to the settings file.
	EnvSettingsFile = "ADVENT_SETTINGS"

	// EnvDefaultYear is the year used when the command line names none.
	EnvDefaultYear = "ADVENT_DEFAULT_YEAR"

	// EnvSessionCookie is the session cookie used to download input.
	EnvSessionCookie = "ADVENT_SESSION_COOKIE"

	// EnvInputDirectory is the input cache root.
	EnvInputDirectory = "ADVENT_INPUT_DIR"

	// EnvSolutionsDirectory is where scaffolded solutions are written.
	EnvSolutionsDirectory = "ADVENT_SOLUTIONS_DIR"

	// EnvAppDirectory is the directory relative paths are resolved against.
	EnvAppDirectory = "ADVENT_APP_DIR"

	// EnvBaseURL overrides the puzzle site address.
	EnvBaseURL = "ADVENT_BASE_URL"

	// EnvUserAgent overrides the User-Agent sent with input downloads.
	EnvUserAgent = "ADVENT_USER_AGENT"

	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvVaultSessionPath is the path in Vault KV where the session cookie is stored.
	EnvVaultSessionPath = "VAULT_SESSION_PATH"

	// EnvVaultSessionMount is the Vault KV mount point (defaults to "secret").
	EnvVaultSessionMount = "VAULT_SESSION_MOUNT"
)

// Default values.
const (
	DefaultSettingsFile       = "settings.json"
	DefaultYear               = 2020
	DefaultInputDirectory     = "Input"
	DefaultSolutionsDirectory = "internal/solutions"
	DefaultLogLevel           = "info"
	DefaultLogAppName         = "advent-runner"
	DefaultVaultSessionMount  = "secret"

	// VaultSessionKey is the key holding the cookie inside the Vault secret.
	VaultSessionKey = "session"
)

// Configuration errors. All of them wrap domain.ErrConfiguration.
var (
	// ErrSettingsNotFound indicates an explicitly requested settings file does not exist.
	ErrSettingsNotFound = fmt.Errorf("%w: settings file not found", domain.ErrConfiguration)

	// ErrSettingsInvalid indicates the settings file could not be parsed.
	ErrSettingsInvalid = fmt.Errorf("%w: settings file is not valid JSON or YAML", domain.ErrConfiguration)

	// ErrInvalidDefaultYear indicates the default year is not a puzzle year.
	ErrInvalidDefaultYear = fmt.Errorf("%w: default year must be %d or later", domain.ErrConfiguration, domain.MinYear)

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = fmt.Errorf("%w: failed to create Vault client", domain.ErrConfiguration)

	// ErrVaultSecretNotFound indicates the session cookie was not found in Vault.
	ErrVaultSecretNotFound = fmt.Errorf("%w: session cookie not found in Vault", domain.ErrConfiguration)
)

// VaultClient defines the interface for Vault operations.
// This interface allows for dependency injection and testing.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient using AppRole authentication.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds all application configuration.
type Config struct {
	// DefaultYear is used when the command line names no year.
	DefaultYear int

	// SessionCookie authenticates input downloads. Empty means none configured.
	SessionCookie string

	// InputDirectory is the absolute input cache root.
	InputDirectory string

	// SolutionsDirectory is the absolute directory scaffolded solutions go to.
	SolutionsDirectory string

	// AppDirectory is the directory relative paths were resolved against.
	AppDirectory string

	// BaseURL is the puzzle site address. Empty means the client default.
	BaseURL string

	// UserAgent is sent with input downloads. Empty means the client default.
	UserAgent string

	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// settings mirrors the settings file. Keys match case-insensitively so both
// "defaultYear" and "DefaultYear" work.
type settings struct {
	DefaultYear        int
	SessionCookie      string
	InputDirectory     string
	SolutionsDirectory string
	BaseURL            string
	UserAgent          string
}

// Load loads the application configuration.
// settingsPath may be empty, in which case ADVENT_SETTINGS or settings.json is used
// and a missing file is not an error.
func Load(settingsPath string) (*Config, error) {
	return LoadWithVaultClient(context.Background(), settingsPath, nil)
}

// LoadWithVaultClient loads configuration using the provided VaultClient factory.
// If vaultClientFactory is nil, DefaultVaultClientFactory is used.
// This function enables dependency injection for testing.
func LoadWithVaultClient(
	ctx context.Context,
	settingsPath string,
	vaultClientFactory VaultClientFactory,
) (*Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	fileSettings, err := loadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	appDir, err := resolveAppDirectory()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DefaultYear:        DefaultYear,
		SessionCookie:      fileSettings.SessionCookie,
		InputDirectory:     firstNonEmpty(fileSettings.InputDirectory, DefaultInputDirectory),
		SolutionsDirectory: firstNonEmpty(fileSettings.SolutionsDirectory, DefaultSolutionsDirectory),
		AppDirectory:       appDir,
		BaseURL:            fileSettings.BaseURL,
		UserAgent:          fileSettings.UserAgent,
		LogLevel:           DefaultLogLevel,
		LogAppName:         DefaultLogAppName,
	}
	if fileSettings.DefaultYear != 0 {
		cfg.DefaultYear = fileSettings.DefaultYear
	}

	if err := applyEnvironment(cfg); err != nil {
		return nil, err
	}

	if cfg.SessionCookie == "" {
		cookie, err := loadSessionCookieWithVault(ctx, vaultClientFactory)
		if err != nil {
			return nil, err
		}
		cfg.SessionCookie = cookie
	}

	cfg.InputDirectory = ResolvePath(appDir, cfg.InputDirectory)
	cfg.SolutionsDirectory = ResolvePath(appDir, cfg.SolutionsDirectory)

	if err := cfg.SanityCheck(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SanityCheck validates values that cannot be defaulted.
func (c *Config) SanityCheck() error {
	if c.DefaultYear < domain.MinYear {
		return fmt.Errorf("%w: got %d", ErrInvalidDefaultYear, c.DefaultYear)
	}
	return nil
}

// ResolvePath returns path unchanged if it is absolute, otherwise joined to base.
func ResolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// loadSettings reads the settings file. A missing default file yields empty settings.
func loadSettings(path string) (settings, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvSettingsFile)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultSettingsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return settings{}, fmt.Errorf("%w: %s", ErrSettingsNotFound, path)
			}
			return settings{}, nil
		}
		return settings{}, fmt.Errorf("%w: failed to read %s: %w", domain.ErrConfiguration, path, err)
	}

	return parseSettings(data)
}

// parseSettings decodes JSON or YAML settings with case-insensitive keys.
func parseSettings(data []byte) (settings, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return settings{}, fmt.Errorf("%w: %w", ErrSettingsInvalid, err)
	}

	values := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		values[strings.ToLower(k)] = v
	}

	var s settings
	var err error
	if s.DefaultYear, err = intSetting(values, "defaultyear"); err != nil {
		return settings{}, err
	}
	fields := map[string]*string{
		"sessioncookie":      &s.SessionCookie,
		"inputdirectory":     &s.InputDirectory,
		"solutionsdirectory": &s.SolutionsDirectory,
		"baseurl":            &s.BaseURL,
		"useragent":          &s.UserAgent,
	}
	for key, dst := range fields {
		if *dst, err = stringSetting(values, key); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}

func intSetting(values map[string]interface{}, key string) (int, error) {
	v, ok := values[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrSettingsInvalid, key)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrSettingsInvalid, key)
	}
}

func stringSetting(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrSettingsInvalid, key)
	}
	return strings.TrimSpace(s), nil
}

// applyEnvironment overrides cfg with any environment variables that are set.
func applyEnvironment(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv(EnvDefaultYear)); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a year", domain.ErrConfiguration, EnvDefaultYear, raw)
		}
		cfg.DefaultYear = year
	}

	cfg.SessionCookie = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvSessionCookie)), cfg.SessionCookie)
	cfg.InputDirectory = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvInputDirectory)), cfg.InputDirectory)
	cfg.SolutionsDirectory = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvSolutionsDirectory)), cfg.SolutionsDirectory)
	cfg.BaseURL = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvBaseURL)), cfg.BaseURL)
	cfg.UserAgent = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvUserAgent)), cfg.UserAgent)
	cfg.LogLevel = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvLogLevel)), cfg.LogLevel)
	cfg.LogAppName = firstNonEmpty(strings.TrimSpace(os.Getenv(EnvLogAppName)), cfg.LogAppName)

	return nil
}

// resolveAppDirectory returns ADVENT_APP_DIR or the working directory.
func resolveAppDirectory() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvAppDirectory)); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("%w: invalid %s: %w", domain.ErrConfiguration, EnvAppDirectory, err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: failed to determine working directory: %w", domain.ErrConfiguration, err)
	}
	return wd, nil
}

// loadSessionCookieWithVault reads the session cookie from Vault when
// VAULT_SESSION_PATH is set. It returns "" when Vault is not configured.
func loadSessionCookieWithVault(ctx context.Context, vaultClientFactory VaultClientFactory) (string, error) {
	path := os.Getenv(EnvVaultSessionPath)
	if path == "" {
		return "", nil
	}

	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}

	client, err := vaultClientFactory(ctx)
	if err != nil {
		return "", err
	}

	mount := firstNonEmpty(os.Getenv(EnvVaultSessionMount), DefaultVaultSessionMount)

	secretData, err := client.GetKVSecret(ctx, path, mount)
	if err != nil {
		return "", fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, path, err)
	}

	cookie, ok := secretData[VaultSessionKey].(string)
	if !ok || strings.TrimSpace(cookie) == "" {
		return "", fmt.Errorf("%w: secret at %s has no %q key", ErrVaultSecretNotFound, path, VaultSessionKey)
	}

	return strings.TrimSpace(cookie), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
