package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind identifies a decoded inbound message.
type EventKind int

const (
	// EventUnrecognized is any line outside the vocabulary.
	EventUnrecognized EventKind = iota
	// EventFloor reports the car passing or standing at a floor.
	EventFloor
	// EventStatus answers a STATUS request.
	EventStatus
	// EventArrived confirms the car reached its target.
	EventArrived
	// EventResetDone confirms a RESET completed.
	EventResetDone
)

var eventNames = map[EventKind]string{
	EventUnrecognized: "unrecognized",
	EventFloor:        "floor",
	EventStatus:       "status",
	EventArrived:      "arrived",
	EventResetDone:    "reset_done",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// Event is a decoded controller line. Floor is zero-based, as on the wire.
type Event struct {
	Kind  EventKind
	Floor int
	Raw   string
}

// UpdatesFloor reports whether applying e changes the current floor.
func (e Event) UpdatesFloor() bool {
	return e.Kind != EventUnrecognized
}

// DecodeError reports a recognized prefix carrying an unusable payload.
type DecodeError struct {
	Line    string
	Payload string
	Err     error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: bad floor %q: %v", e.Line, e.Payload, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *DecodeError) Unwrap() error { return e.Err }

const resetDoneToken = "RESET_DONE"

var floorPrefixes = []struct {
	prefix string
	kind   EventKind
}{
	{"FLOOR|", EventFloor},
	{"STATUS|", EventStatus},
	{"DONE|", EventArrived},
}

// Decode parses one trimmed controller line.
//
// Lines outside the vocabulary decode to EventUnrecognized with a nil error.
// A recognized prefix whose payload is not a non-negative integer decodes to
// EventUnrecognized together with a *DecodeError, so callers can log the
// fault and keep going.
func Decode(line string) (Event, error) {
	for _, p := range floorPrefixes {
		if !strings.HasPrefix(line, p.prefix) {
			continue
		}
		payload := line[len(p.prefix):]
		floor, err := strconv.Atoi(payload)
		if err == nil && floor < 0 {
			err = fmt.Errorf("negative floor %d", floor)
		}
		if err != nil {
			return Event{Kind: EventUnrecognized, Raw: line}, &DecodeError{Line: line, Payload: payload, Err: err}
		}
		return Event{Kind: p.kind, Floor: floor, Raw: line}, nil
	}
	if strings.Contains(line, resetDoneToken) {
		return Event{Kind: EventResetDone, Raw: line}, nil
	}
	return Event{Kind: EventUnrecognized, Raw: line}, nil
}
