package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGotoIsZeroBased(t *testing.T) {
	for n, want := range map[int]string{1: "GOTO 0", 2: "GOTO 1", 3: "GOTO 2"} {
		assert.Equal(t, want, GotoFloor(n).Encode())
	}
}

func TestEncodeFixedCommands(t *testing.T) {
	assert.Equal(t, "RESET", Reset().Encode())
	assert.Equal(t, "STATUS", StatusRequest().Encode())
}

func TestEncodeHasNoLineBreaks(t *testing.T) {
	for _, c := range []Command{GotoFloor(1), GotoFloor(12), Reset(), StatusRequest()} {
		assert.False(t, strings.ContainsAny(c.Encode(), "\r\n"), c.String())
	}
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("  GOTO 2 ")
	require.NoError(t, err)
	assert.Equal(t, GotoFloor(2), c)

	c, err = ParseCommand("reset")
	require.NoError(t, err)
	assert.Equal(t, Reset(), c)

	c, err = ParseCommand("Status")
	require.NoError(t, err)
	assert.Equal(t, StatusRequest(), c)

	for _, bad := range []string{"", "goto", "goto 0", "goto x", "goto 1 2", "reset now", "jump"} {
		_, err := ParseCommand(bad)
		assert.ErrorIs(t, err, ErrInvalidCommand, bad)
	}
}

func TestParseCommandAcceptsString(t *testing.T) {
	for _, c := range []Command{GotoFloor(3), Reset(), StatusRequest()} {
		parsed, err := ParseCommand(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestDecodeVocabulary(t *testing.T) {
	cases := []struct {
		line  string
		kind  EventKind
		floor int
	}{
		{"FLOOR|2", EventFloor, 2},
		{"STATUS|1", EventStatus, 1},
		{"DONE|0", EventArrived, 0},
		{"RESET_DONE", EventResetDone, 0},
		{"OK RESET_DONE now", EventResetDone, 0},
	}
	for _, tc := range cases {
		ev, err := Decode(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.kind, ev.Kind, tc.line)
		assert.Equal(t, tc.floor, ev.Floor, tc.line)
		assert.Equal(t, tc.line, ev.Raw)
		assert.True(t, ev.UpdatesFloor())
	}
}

func TestDecodeUnrecognized(t *testing.T) {
	for _, line := range []string{"HELLO", "floor|2", "Pas 3", "FLOOR 2"} {
		ev, err := Decode(line)
		require.NoError(t, err)
		assert.Equal(t, EventUnrecognized, ev.Kind)
		assert.Equal(t, line, ev.Raw)
		assert.False(t, ev.UpdatesFloor())
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	for _, line := range []string{"FLOOR|abc", "STATUS|", "DONE|-1"} {
		ev, err := Decode(line)
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr), line)
		assert.Equal(t, line, decodeErr.Line)
		assert.Equal(t, EventUnrecognized, ev.Kind)
		assert.Equal(t, line, ev.Raw)
	}
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "arrived", EventArrived.String())
	assert.Equal(t, "unknown(42)", EventKind(42).String())
}
