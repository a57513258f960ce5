package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Name:         "Test",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{DataPath: "/tmp/daleel/data"},
		Media: MediaConfig{BasePath: "/tmp/daleel/media", PublicBaseURL: "/media"},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "prod"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid environment")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid log level")
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.DataPath = ""

	err := cfg.Validate()
	assert.ErrorContains(t, err, "data path")
}

func TestExpandPath_Default(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)
}

func TestExpandPath_MakesAbsolute(t *testing.T) {
	got, err := expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment\nDALEEL_TEST_KEY=from-file\nDALEEL_TEST_QUOTED=\"quoted value\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0644))

	t.Cleanup(func() {
		_ = os.Unsetenv("DALEEL_TEST_KEY")
		_ = os.Unsetenv("DALEEL_TEST_QUOTED")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "from-file", os.Getenv("DALEEL_TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("DALEEL_TEST_QUOTED"))
}

func TestLoadEnvFile_EnvTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DALEEL_TEST_PRECEDENCE=file\n"), 0644))

	t.Setenv("DALEEL_TEST_PRECEDENCE", "env")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "env", os.Getenv("DALEEL_TEST_PRECEDENCE"))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("DALEEL_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "DALEEL_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "DALEEL_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "DALEEL_TEST_MISSING", "default"))
}
