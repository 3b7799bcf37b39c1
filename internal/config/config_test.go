package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/tmp/cardtrack"},
		Catalog: CatalogConfig{BaseURL: "https://api.scryfall.com"},
		Sync:    SyncConfig{Namespace: "cardtrack"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad environment", func(c *Config) { c.App.Environment = "prod" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"empty catalog url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"empty namespace", func(c *Config) { c.Sync.Namespace = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandDataPath_Default(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "CardTrack", "data"), cfg.Storage.DataPath)
}

func TestExpandDataPath_Tilde(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "~/lists"}}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "lists"), cfg.Storage.DataPath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("CARDTRACK_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "CARDTRACK_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "CARDTRACK_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "CARDTRACK_TEST_MISSING", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nCARDTRACK_ENVFILE_A=hello\nCARDTRACK_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("CARDTRACK_ENVFILE_A", "")
	t.Setenv("CARDTRACK_ENVFILE_B", "")
	os.Unsetenv("CARDTRACK_ENVFILE_A")
	os.Unsetenv("CARDTRACK_ENVFILE_B")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("CARDTRACK_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("CARDTRACK_ENVFILE_B"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("not-a-pair\n"), 0o600))

	assert.Error(t, loadEnvFile(envPath))
}

func TestDurationDefaults(t *testing.T) {
	// Spot-check that default duration strings parse.
	for _, raw := range []string{"30s", "720h", "15s", "60s"} {
		_, err := time.ParseDuration(raw)
		assert.NoError(t, err)
	}
}
