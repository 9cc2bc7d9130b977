// Package state holds the live elevator record shared between the serial
// read loop and any number of display consumers.
package state

import (
	"sync"
	"time"

	"LiftLink/internal/protocol"
)

// Snapshot is a consistent copy of the live record.
type Snapshot struct {
	Connected    bool   `json:"connected"`
	Port         string `json:"port,omitempty"`
	CurrentFloor int    `json:"current_floor"`
	Moving       bool   `json:"moving"`
	LastMessage  string `json:"last_message"`
}

// Live is the single source of truth for connection and floor status.
// Writers are the read loop (Apply) and the connection manager
// (SetConnected/SetDisconnected); every mutation is published on the hub.
type Live struct {
	mu   sync.RWMutex
	snap Snapshot
	hub  *Hub
}

// NewLive returns a disconnected record at floor 0.
// hub may be nil when nobody listens for changes.
func NewLive(hub *Hub) *Live {
	return &Live{hub: hub}
}

// Snapshot returns the current record.
func (l *Live) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Connected reports whether a serial handle is open.
func (l *Live) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap.Connected
}

// SetConnected marks the record connected to port.
func (l *Live) SetConnected(port string) {
	l.mu.Lock()
	l.snap.Connected = true
	l.snap.Port = port
	snap := l.snap
	l.mu.Unlock()
	l.publish(Update{At: time.Now(), Snapshot: snap})
}

// SetDisconnected marks the record disconnected. Floor and last message are
// kept; motion is no longer known and is cleared.
func (l *Live) SetDisconnected() {
	l.mu.Lock()
	if !l.snap.Connected && l.snap.Port == "" {
		l.mu.Unlock()
		return
	}
	l.snap.Connected = false
	l.snap.Port = ""
	l.snap.Moving = false
	snap := l.snap
	l.mu.Unlock()
	l.publish(Update{At: time.Now(), Snapshot: snap})
}

// Apply folds a decoded event into the record. The raw line always becomes
// the last message; only recognized events move the floor. A FLOOR report
// means the car is between stops until DONE, STATUS or RESET_DONE.
func (l *Live) Apply(ev protocol.Event, at time.Time) Snapshot {
	l.mu.Lock()
	l.snap.LastMessage = ev.Raw
	switch ev.Kind {
	case protocol.EventFloor:
		l.snap.CurrentFloor = ev.Floor
		l.snap.Moving = true
	case protocol.EventStatus, protocol.EventArrived:
		l.snap.CurrentFloor = ev.Floor
		l.snap.Moving = false
	case protocol.EventResetDone:
		l.snap.CurrentFloor = 0
		l.snap.Moving = false
	}
	snap := l.snap
	l.mu.Unlock()

	l.publish(Update{At: at, Snapshot: snap, Event: &ev})
	return snap
}

func (l *Live) publish(u Update) {
	if l.hub != nil {
		l.hub.Publish(u)
	}
}
