package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiftLink/internal/device"
	"LiftLink/internal/state"
)

type readResult struct {
	line string
	err  error
}

// scriptedSource replays results, then reports a timeout forever.
type scriptedSource struct {
	mu      sync.Mutex
	results []readResult
	calls   int
}

func (s *scriptedSource) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return "", device.ErrReadTimeout
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.line, r.err
}

func (s *scriptedSource) ReadTimeout() time.Duration { return time.Millisecond }

func newTestReader(results ...readResult) (*Reader, *state.Live, *state.Log) {
	live := state.NewLive(nil)
	lg := state.NewLog(state.DefaultLogSize)
	r := NewReader(&scriptedSource{results: results}, live, lg)
	r.Now = func() time.Time { return time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC) }
	return r, live, lg
}

func TestReaderStepOutcomes(t *testing.T) {
	r, live, lg := newTestReader(
		readResult{line: "FLOOR|1\r"},
		readResult{err: device.ErrReadTimeout},
		readResult{line: "   "},
		readResult{err: device.ErrNotConnected},
		readResult{err: errors.New("i/o error")},
		readResult{line: "DONE|2"},
	)
	ctx := context.Background()

	assert.Equal(t, StepLine, r.Step(ctx))
	assert.Equal(t, 1, live.Snapshot().CurrentFloor)
	assert.Equal(t, StepTimeout, r.Step(ctx))
	assert.Equal(t, StepTimeout, r.Step(ctx))
	assert.Equal(t, StepIdle, r.Step(ctx))
	assert.Equal(t, StepFault, r.Step(ctx))
	assert.Equal(t, StepLine, r.Step(ctx))

	snap := live.Snapshot()
	assert.Equal(t, 2, snap.CurrentFloor)
	assert.Equal(t, "DONE|2", snap.LastMessage)
	assert.Equal(t, []string{"[08:30:00] DONE|2", "[08:30:00] FLOOR|1"}, lg.Lines())
}

func TestReaderAppliesInWireOrder(t *testing.T) {
	r, live, lg := newTestReader(
		readResult{line: "FLOOR|1"},
		readResult{line: "FLOOR|2"},
		readResult{line: "RESET_DONE"},
		readResult{line: "HELLO"},
	)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.Equal(t, StepLine, r.Step(ctx))
	}

	snap := live.Snapshot()
	assert.Equal(t, 0, snap.CurrentFloor)
	assert.Equal(t, "HELLO", snap.LastMessage)
	assert.Len(t, lg.Entries(), 4)
	assert.Equal(t, "HELLO", lg.Entries()[0].Message)
}

func TestReaderMalformedPayloadKeepsFloor(t *testing.T) {
	r, live, lg := newTestReader(
		readResult{line: "FLOOR|2"},
		readResult{line: "FLOOR|abc"},
	)
	ctx := context.Background()
	r.Step(ctx)
	assert.Equal(t, StepLine, r.Step(ctx))

	snap := live.Snapshot()
	assert.Equal(t, 2, snap.CurrentFloor)
	assert.Equal(t, "FLOOR|abc", snap.LastMessage)
	assert.Len(t, lg.Entries(), 2)
}

func TestReaderRunStopsOnCancel(t *testing.T) {
	r, live, _ := newTestReader(readResult{line: "STATUS|1"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return live.Snapshot().CurrentFloor == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestReaderPauseHonoursCancel(t *testing.T) {
	live := state.NewLive(nil)
	src := &slowSource{}
	r := NewReader(src, live, state.NewLog(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.Equal(t, StepIdle, r.Step(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

type slowSource struct{}

func (slowSource) ReadLine() (string, error) { return "", device.ErrNotConnected }

func (slowSource) ReadTimeout() time.Duration { return time.Hour }
