package cmdparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommandSplitsNameAndArgs(t *testing.T) {
	cmd, ok := ParseCommand("/tp 10 64 0")
	assert.True(t, ok)
	assert.Equal(t, Command{Name: "tp", Args: []string{"10", "64", "0"}}, cmd)
}

func TestParseCommandLowercasesName(t *testing.T) {
	cmd, ok := ParseCommand("/TP 1 2 3")
	assert.True(t, ok)
	assert.Equal(t, "tp", cmd.Name)
}

func TestParseCommandRejectsPlainChat(t *testing.T) {
	_, ok := ParseCommand("hello there")
	assert.False(t, ok)
}

func TestParseCommandRejectsBareSlash(t *testing.T) {
	_, ok := ParseCommand("/   ")
	assert.False(t, ok)
}

func TestParseCommandTrimsSurroundingSpace(t *testing.T) {
	cmd, ok := ParseCommand("  /seed  ")
	assert.True(t, ok)
	assert.Equal(t, Command{Name: "seed", Args: []string{}}, cmd)
}

func TestResponsePrefixed(t *testing.T) {
	assert.Equal(t, " > hi", Response{Kind: ToSender, Text: "hi"}.Prefixed())
	assert.Equal(t, " ! bad", Response{Kind: ToError, Text: "bad"}.Prefixed())
	assert.Equal(t, " @ all", Response{Kind: Broadcast, Text: "all"}.Prefixed())
}

func TestRegistryDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry()
	resp := r.Dispatch("alice", Command{Name: "nope"})
	assert.Equal(t, []Response{{Kind: ToError, Text: "unknown command: nope"}}, resp)
}

func TestRegistryDispatchRegisteredCommandIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	var gotSender string
	var gotCmd Command
	r.Register("TP", func(sender string, cmd Command) []Response {
		gotSender = sender
		gotCmd = cmd
		return []Response{{Kind: ToSender, Text: "ok"}}
	})

	resp := r.Dispatch("alice", Command{Name: "tp", Args: []string{"1"}})
	assert.Equal(t, "alice", gotSender)
	assert.Equal(t, Command{Name: "tp", Args: []string{"1"}}, gotCmd)
	assert.Equal(t, []Response{{Kind: ToSender, Text: "ok"}}, resp)
}
