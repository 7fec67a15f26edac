package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", TRACE.String())
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestHexDumpEmptyData(t *testing.T) {
	assert.Equal(t, "no data", HexDump(nil))
}

func TestHexDumpTruncatesTo256Bytes(t *testing.T) {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i)
	}
	dump := HexDump(data)
	assert.NotEmpty(t, dump)
	// hex.Dump of 256 bytes renders 16 lines of 16 bytes each.
	truncated := HexDump(data[:256])
	assert.Equal(t, truncated, dump)
}

func TestInitLoggerCreatesFileUnderWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, InitLogger("testcomponent"))
	defer CloseLogger()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "testcomponent_")
}

func TestLogMessageIsNoopBeforeInit(t *testing.T) {
	globalLogger = nil
	assert.NotPanics(t, func() {
		LogInfo("hello %s", "world")
	})
}
