package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxPrograms, cfg.Relay.MaxPrograms)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("TSRELAY_SERVER_PORT", "9999")
	defer os.Unsetenv("TSRELAY_SERVER_PORT")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("relay:\n  max_programs: 5\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Relay.MaxPrograms)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), "/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
