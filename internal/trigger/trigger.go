// Package trigger turns an external "target present" signal into elevator
// commands, acting once per rising edge and no more often than a cooldown.
package trigger

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/device"
	"LiftLink/internal/protocol"
)

// DefaultCooldown is the minimum spacing between triggered commands.
const DefaultCooldown = 3 * time.Second

// Sender transmits a command to the controller.
type Sender interface {
	Send(cmd protocol.Command) error
}

// Detector is the surface detection clients drive. *Trigger implements it.
type Detector interface {
	Observe(present bool) Result
	Remaining() time.Duration
}

// Result describes what one Observe call did.
type Result struct {
	Edge      bool          // the call was a NotDetected -> Detected transition
	Fired     bool          // the command was transmitted
	Remaining time.Duration // cooldown left when the edge was suppressed
	Err       error         // send failure, if any
}

// Suppressed reports an edge swallowed by the cooldown.
func (r Result) Suppressed() bool {
	return r.Edge && r.Remaining > 0
}

// Trigger is a two-state observer {NotDetected, Detected} gated by a cooldown.
type Trigger struct {
	Sender   Sender
	Command  protocol.Command
	Cooldown time.Duration
	Now      func() time.Time

	mu       sync.Mutex
	detected bool
	last     time.Time
	armed    bool
}

// New creates a trigger that sends cmd through s.
func New(s Sender, cmd protocol.Command, cooldown time.Duration) *Trigger {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Trigger{Sender: s, Command: cmd, Cooldown: cooldown, Now: time.Now}
}

// Observe feeds one detection sample. Only the transition from not detected
// to detected can send; repeated "present" samples are ignored.
func (t *Trigger) Observe(present bool) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	rising := present && !t.detected
	t.detected = present
	if !rising {
		return Result{}
	}

	now := t.Now()
	if t.armed {
		if elapsed := now.Sub(t.last); elapsed < t.Cooldown {
			remaining := t.Cooldown - elapsed
			log.Info().Dur("remaining", remaining).Msg("[trigger] cooldown active, detection ignored")
			return Result{Edge: true, Remaining: remaining}
		}
	}

	log.Info().Str("command", t.Command.String()).Msg("[trigger] target detected")
	err := t.Sender.Send(t.Command)
	if errors.Is(err, device.ErrNotConnected) {
		return Result{Edge: true, Err: err}
	}
	t.last, t.armed = now, true
	if err != nil {
		log.Warn().Err(err).Msg("[trigger] command dropped")
		return Result{Edge: true, Err: err}
	}
	return Result{Edge: true, Fired: true}
}

// Detected reports the observer state.
func (t *Trigger) Detected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detected
}

// Remaining returns the cooldown left before the next edge can fire.
func (t *Trigger) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return 0
	}
	if left := t.Cooldown - t.Now().Sub(t.last); left > 0 {
		return left
	}
	return 0
}

// ParsePresence interprets a textual detection sample. ok is false for
// anything other than 1/true/on/present or 0/false/off/absent (any case).
func ParsePresence(s string) (present, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "present":
		return true, true
	case "0", "false", "off", "absent":
		return false, true
	}
	return false, false
}
