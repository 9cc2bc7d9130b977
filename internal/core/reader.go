package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/device"
	"LiftLink/internal/protocol"
	"LiftLink/internal/state"
)

// LineSource is the read side of the controller link.
type LineSource interface {
	// ReadLine returns one line, device.ErrReadTimeout when the line stayed
	// silent, device.ErrNotConnected without a port, or a read fault.
	ReadLine() (string, error)
	ReadTimeout() time.Duration
}

// StepResult is the outcome of one polling step.
type StepResult int

const (
	// StepLine means a line was decoded and applied.
	StepLine StepResult = iota
	// StepTimeout means the line stayed silent (or carried only blanks).
	StepTimeout
	// StepIdle means no port is open.
	StepIdle
	// StepFault means the read failed and the step was skipped.
	StepFault
)

// Reader bridges the controller link to the live state: every inbound line
// is decoded, logged and applied in wire order. It is the only writer of the
// floor and last-message fields.
type Reader struct {
	Source LineSource
	Live   *state.Live
	Log    *state.Log
	Now    func() time.Time
}

// NewReader creates a reader feeding live and log from src.
func NewReader(src LineSource, live *state.Live, log *state.Log) *Reader {
	return &Reader{Source: src, Live: live, Log: log, Now: time.Now}
}

// Run polls until ctx is cancelled. Read faults never stop the loop.
func (r *Reader) Run(ctx context.Context) error {
	log.Debug().Msg("[reader] started")
	defer log.Debug().Msg("[reader] stopped")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.Step(ctx)
	}
}

// Step performs a single bounded read and dispatches its outcome.
func (r *Reader) Step(ctx context.Context) StepResult {
	line, err := r.Source.ReadLine()
	switch {
	case err == nil:
		line = strings.TrimSpace(line)
		if line == "" {
			return StepTimeout
		}
		r.handle(line)
		return StepLine
	case errors.Is(err, device.ErrReadTimeout):
		return StepTimeout
	case errors.Is(err, device.ErrNotConnected):
		r.pause(ctx)
		return StepIdle
	default:
		log.Warn().Err(err).Msg("[reader] serial read failed")
		r.pause(ctx)
		return StepFault
	}
}

// pause waits one read interval so a dead or absent port does not spin.
func (r *Reader) pause(ctx context.Context) {
	t := time.NewTimer(r.Source.ReadTimeout())
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (r *Reader) handle(line string) {
	ev, err := protocol.Decode(line)
	if err != nil {
		log.Warn().Err(err).Msg("[reader] malformed controller line")
	}

	at := r.Now()
	r.Log.Add(at, line)
	snap := r.Live.Apply(ev, at)

	entry := log.Info().Str("line", line).Stringer("event", ev.Kind)
	if ev.UpdatesFloor() {
		entry = entry.Int("floor", snap.CurrentFloor)
	}
	entry.Msg("[reader] controller message")
}
