package worldsave

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, found, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Config{}, cfg)
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	root := t.TempDir()
	want := Config{Spawn: [3]float64{1.5, 80, -2.25}, Seed: 99}

	require.NoError(t, SaveConfig(root, want))
	got, found, err := LoadConfig(root)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestLoadConfigSkipsCommentsAndBlankLines(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SaveConfig(root, DefaultConfig(7)))

	cfg, found, err := LoadConfig(root)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DefaultConfig(7), cfg)
}

func TestLoadConfigRejectsMalformedSeed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SaveConfig(root, DefaultConfig(1)))
	path := configPath(root)
	require.NoError(t, os.WriteFile(path, []byte("seed = not-a-number;\n"), 0o644))

	_, _, err := LoadConfig(root)
	assert.Error(t, err)
}
