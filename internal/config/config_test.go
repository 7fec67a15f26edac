package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: 10.0.0.5\nport: 9999\nworld_name: testworld\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Host)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "testworld", cfg.WorldName)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "saves", cfg.SavePath)
}

func TestLoadEmptyPathUsesGameConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "from-env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 1111\n"), 0o644))
	t.Setenv("GAME_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1111, cfg.Port)
}

func TestEnvOverrideAppliesOverFileDefaults(t *testing.T) {
	cfg := Default()
	t.Setenv("GAME_HOST", "192.168.1.1")
	t.Setenv("GAME_PORT", "5555")
	t.Setenv("GAME_CMD_PORT", "5556")
	t.Setenv("GAME_SAVE_PATH", "/tmp/saves")

	cfg.EnvOverride()

	assert.Equal(t, "192.168.1.1", cfg.Host)
	assert.Equal(t, 5555, cfg.Port)
	assert.Equal(t, 5556, cfg.CmdPort)
	assert.Equal(t, "/tmp/saves", cfg.SavePath)
}

func TestEnvOverrideIgnoresInvalidPort(t *testing.T) {
	cfg := Default()
	t.Setenv("GAME_PORT", "not-a-number")

	cfg.EnvOverride()

	assert.Equal(t, Default().Port, cfg.Port)
}

func TestEnvOverrideIgnoresEmptyVars(t *testing.T) {
	cfg := Default()
	orig := cfg
	cfg.EnvOverride()
	assert.Equal(t, orig, cfg)
}
