package worldsave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRegistryKnownFalseForNeverSeen(t *testing.T) {
	reg, err := OpenPlayerRegistry(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	_, known, err := reg.Known("alice")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestPlayerRegistryTouchThenKnown(t *testing.T) {
	reg, err := OpenPlayerRegistry(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	seenAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, reg.Touch("alice", seenAt))

	last, known, err := reg.Known("alice")
	require.NoError(t, err)
	assert.True(t, known)
	assert.True(t, seenAt.Equal(last))
}

func TestPlayerRegistryTouchOverwritesPreviousTimestamp(t *testing.T) {
	reg, err := OpenPlayerRegistry(t.TempDir())
	require.NoError(t, err)
	defer reg.Close()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, reg.Touch("alice", first))
	require.NoError(t, reg.Touch("alice", second))

	last, known, err := reg.Known("alice")
	require.NoError(t, err)
	assert.True(t, known)
	assert.True(t, second.Equal(last))
}
