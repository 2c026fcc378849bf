package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, "catalog: /srv/catalog.yaml\nlog:\n  level: debug\n  format: json\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog.yaml", cfg.Catalog)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DefaultsFillMissingKeys(t *testing.T) {
	path := writeConfig(t, "catalog: ''\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("TYPEKIT_LOG_LEVEL", "error")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")

	_, err = Load(viper.New(), writeConfig(t, "log:\n  level: loud\n"))
	require.ErrorContains(t, err, "invalid log level")

	_, err = Load(viper.New(), writeConfig(t, "log:\n  format: xml\n"))
	require.ErrorContains(t, err, "invalid log format")
}
