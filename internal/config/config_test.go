package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 720 * time.Hour,
			RateLimitPerMinute:   10,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "staging", mutate: func(c *Config) { c.App.Environment = "staging" }},
		{name: "production", mutate: func(c *Config) { c.App.Environment = "production" }},
		{name: "missing environment", mutate: func(c *Config) { c.App.Environment = "" }, wantErr: "ENV is required"},
		{name: "unknown environment", mutate: func(c *Config) { c.App.Environment = "qa" }, wantErr: "invalid environment"},
		{name: "environment is case sensitive", mutate: func(c *Config) { c.App.Environment = "Production" }, wantErr: "invalid environment"},
		{name: "upper case log level", mutate: func(c *Config) { c.Logger.Level = "WARN" }},
		{name: "unknown log level", mutate: func(c *Config) { c.Logger.Level = "verbose" }, wantErr: "invalid log level"},
		{name: "empty data path", mutate: func(c *Config) { c.Storage.DataPath = "" }, wantErr: "data path"},
		{name: "zero access token", mutate: func(c *Config) { c.Auth.AccessTokenDuration = 0 }, wantErr: "positive"},
		{name: "refresh shorter than access", mutate: func(c *Config) { c.Auth.RefreshTokenDuration = time.Minute }, wantErr: "shorter"},
		{name: "no login attempts", mutate: func(c *Config) { c.Auth.RateLimitPerMinute = 0 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoragePaths(t *testing.T) {
	s := StorageConfig{DataPath: "/data"}
	assert.Equal(t, "/data/simmer.db", s.DatabasePath())
	assert.Equal(t, "/data/search", s.SearchIndexPath())
	assert.Equal(t, "/data/auth.key", s.AuthKeyPath())
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Simmer", "data"), cfg.Storage.DataPath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "~/recipes"}}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "recipes"), cfg.Storage.DataPath)
}

func TestExpandDataPath_RelativePath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "data"}}
	require.NoError(t, cfg.expandDataPath())
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ENV", "production")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{
		"-log-level", "debug",
		"-data-path", dir,
		"-env-file", filepath.Join(dir, "missing.env"),
		"-access-token-duration", "5m",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, "flag beats env")
	assert.Equal(t, "9090", cfg.Server.Port, "env beats default")
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Auth.CookieSecure, "secure cookies default on in production")
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, 10, cfg.Auth.RateLimitPerMinute)
}

func TestLoad_InvalidDuration(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-data-path", t.TempDir(), "-env-file", "", "-read-timeout", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read timeout")
}

func TestLoad_BadNumbersFallBackToDefault(t *testing.T) {
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("SEARCH_ENABLED", "no")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-data-path", t.TempDir(), "-env-file", ""})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Auth.RateLimitPerMinute)
	assert.False(t, cfg.Search.Enabled, "only true, 1 and yes enable a switch")
	assert.False(t, cfg.Auth.CookieSecure, "development serves plain cookies")
}

func TestLookup(t *testing.T) {
	t.Setenv("SIMMER_TEST_PORT", "9000")

	assert.Equal(t, "7000", lookup("7000", "SIMMER_TEST_PORT", "8080"))
	assert.Equal(t, "9000", lookup("", "SIMMER_TEST_PORT", "8080"))
	assert.Equal(t, "8080", lookup("", "SIMMER_TEST_UNSET", "8080"))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , ,"))
	assert.Equal(t, []string{"https://simmer.test"}, splitList(" https://simmer.test "))
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simmer.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvFile(t *testing.T) {
	// Register cleanup for every key the file may set; t.Setenv restores on exit.
	for _, key := range []string{"SIMMER_DB", "SIMMER_NAME", "SIMMER_QUOTE", "SIMMER_PADDED", "SIMMER_EMPTY"} {
		t.Setenv(key, "")
	}

	path := writeEnvFile(t, `
# data directory
SIMMER_DB=/var/lib/simmer

SIMMER_NAME="Sunday Kitchen"
SIMMER_QUOTE='it''s done'
   SIMMER_PADDED   =   spaced out
SIMMER_EMPTY=
`)
	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "/var/lib/simmer", os.Getenv("SIMMER_DB"))
	assert.Equal(t, "Sunday Kitchen", os.Getenv("SIMMER_NAME"))
	assert.Equal(t, "it''s done", os.Getenv("SIMMER_QUOTE"), "only the outer quotes are stripped")
	assert.Equal(t, "spaced out", os.Getenv("SIMMER_PADDED"))
	assert.Empty(t, os.Getenv("SIMMER_EMPTY"))
}

func TestLoadEnvFile_EnvironmentWins(t *testing.T) {
	t.Setenv("SIMMER_PORT", "9999")

	require.NoError(t, loadEnvFile(writeEnvFile(t, "SIMMER_PORT=1234\n")))
	assert.Equal(t, "9999", os.Getenv("SIMMER_PORT"))
}

func TestLoadEnvFile_Errors(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	t.Setenv("SIMMER_FIRST", "")
	err = loadEnvFile(writeEnvFile(t, "SIMMER_FIRST=ok\njust some words\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	t.Setenv("SERVER_NAME", "")
	path := writeEnvFile(t, "SERVER_NAME=Test Kitchen\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-data-path", t.TempDir(), "-env-file", path})
	require.NoError(t, err)
	assert.Equal(t, "Test Kitchen", cfg.Server.Name)
}

func TestParseEnv(t *testing.T) {
	vars, err := parseEnv(strings.NewReader("A=1\n#B=2\n\nC = \"three\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []envVar{{"A", "1"}, {"C", "three"}}, vars)
}

func TestLoad_MalformedEnvFileFails(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-data-path", t.TempDir(), "-env-file", writeEnvFile(t, "nonsense\n")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}
