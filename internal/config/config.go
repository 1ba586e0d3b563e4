// Package config loads server settings from flags, the environment and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved server configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Search  SearchConfig
}

// AppConfig names the deployment.
type AppConfig struct {
	Environment string
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	// DataPath holds the database, the search index and the auth key.
	DataPath string
}

// DatabasePath returns the SQLite file location.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "simmer.db")
}

// SearchIndexPath returns the bleve index directory.
func (s StorageConfig) SearchIndexPath() string {
	return filepath.Join(s.DataPath, "search")
}

// AuthKeyPath returns the PASETO key file location.
func (s StorageConfig) AuthKeyPath() string {
	return filepath.Join(s.DataPath, "auth.key")
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Name               string
	Port               string        // Server port (default: 8080)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	CORSAllowedOrigins []string      // Origins allowed to call /api (default: none)
}

// AuthConfig sets token lifetimes and login throttling. The PASETO key lives at StorageConfig.AuthKeyPath.
type AuthConfig struct {
	AccessTokenDuration  time.Duration // default 15m
	RefreshTokenDuration time.Duration // default 720h
	// CookieSecure marks page session cookies Secure (default: true in production)
	CookieSecure bool
	// RateLimitPerMinute bounds login and signup attempts per client IP (default: 10)
	RateLimitPerMinute int
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled bool
}

// LoadConfig reads the process's own flags and environment. See Load.
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load parses args into fs and builds the configuration. A flag beats the
// environment, the environment beats the .env file, and the file beats built-in defaults.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database, search index and auth key")
	serverName := fs.String("server-name", "", "Name for the server")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	cookieSecure := fs.String("cookie-secure", "", "Mark session cookies Secure (default: true in production)")
	rateLimit := fs.String("auth-rate-limit", "", "Login/signup attempts per minute per IP (default: 10)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated origins allowed to call the API")

	searchEnabled := fs.String("search-enabled", "", "Enable the full-text search index (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: lookup(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: lookup(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: lookup(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name:               lookup(*serverName, "SERVER_NAME", "Simmer"),
			Port:               lookup(*serverPort, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(lookup(*corsOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Auth: AuthConfig{
			RateLimitPerMinute: lookupInt(*rateLimit, "AUTH_RATE_LIMIT_PER_MINUTE", 10),
		},
		Search: SearchConfig{
			Enabled: lookupBool(*searchEnabled, "SEARCH_ENABLED", true),
		},
	}
	cfg.Auth.CookieSecure = lookupBool(*cookieSecure, "COOKIE_SECURE", cfg.App.IsProduction())

	durations := []struct {
		flagValue, envKey, def, name string
		target                       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", "access token duration", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", "refresh token duration", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := lookup(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var (
	environments = []string{"development", "staging", "production"}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate reports the first setting that is missing or out of range.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	if !slices.Contains(environments, c.App.Environment) {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.Auth.RefreshTokenDuration < c.Auth.AccessTokenDuration {
		return errors.New("refresh token duration must not be shorter than access token duration")
	}

	if c.Auth.RateLimitPerMinute < 1 {
		return fmt.Errorf("invalid auth rate limit: %d (must be at least 1)", c.Auth.RateLimitPerMinute)
	}

	return nil
}

// expandPath resolves ~/ against the home directory and makes path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to ~/Simmer/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Simmer", "data")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// lookup resolves one setting: a non-empty flag wins, then the environment
// (which an .env file may have filled), then def.
func lookup(flagValue, envKey, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

// lookupBool treats true, 1 and yes as on, any other value as off.
func lookupBool(flagValue, envKey string, def bool) bool {
	switch v := strings.ToLower(lookup(flagValue, envKey, "")); v {
	case "":
		return def
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// lookupInt falls back to def when the value is missing or not a number.
func lookupInt(flagValue, envKey string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(lookup(flagValue, envKey, "")))
	if err != nil {
		return def
	}
	return n
}

type envVar struct{ key, value string }

// parseEnv reads KEY=value lines. Blank lines and # comments are skipped,
// and one layer of surrounding quotes is stripped from values.
func parseEnv(r io.Reader) ([]envVar, error) {
	var vars []envVar
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid format at line %d: %s", n, line)
		}
		vars = append(vars, envVar{
			key:   strings.TrimSpace(key),
			value: strings.Trim(strings.TrimSpace(value), `"'`),
		})
	}
	return vars, sc.Err()
}

// loadEnvFile exports the variables in path that the environment does not already set.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- operator-supplied path
	if err != nil {
		return err
	}
	defer f.Close()

	vars, err := parseEnv(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, v := range vars {
		if os.Getenv(v.key) != "" {
			continue
		}
		if err := os.Setenv(v.key, v.value); err != nil {
			return fmt.Errorf("set %s: %w", v.key, err)
		}
	}
	return nil
}
