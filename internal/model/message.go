package model

import (
	"strconv"
	"time"

	"LiftLink/internal/state"
	"LiftLink/internal/trigger"
)

// StatusView is the document rendered by display clients.
type StatusView struct {
	Connected         bool     `json:"connected"`
	Port              string   `json:"port,omitempty"`
	CurrentFloor      int      `json:"current_floor"`
	FloorLabel        string   `json:"floor_label"`
	Moving            bool     `json:"moving"`
	Motion            string   `json:"motion"`
	LastMessage       string   `json:"last_message"`
	Log               []string `json:"log"`
	CooldownRemaining float64  `json:"cooldown_remaining_seconds"`
}

// NewStatusView combines a state snapshot with the formatted log lines.
func NewStatusView(snap state.Snapshot, log []string, cooldown time.Duration) StatusView {
	if log == nil {
		log = []string{}
	}
	return StatusView{
		Connected:         snap.Connected,
		Port:              snap.Port,
		CurrentFloor:      snap.CurrentFloor,
		FloorLabel:        FloorLabel(snap.CurrentFloor),
		Moving:            snap.Moving,
		Motion:            MotionLabel(snap),
		LastMessage:       snap.LastMessage,
		Log:               log,
		CooldownRemaining: cooldown.Seconds(),
	}
}

// FloorLabel names a zero-based floor for display.
func FloorLabel(floor int) string {
	if floor == 0 {
		return "Ground"
	}
	return "Floor " + strconv.Itoa(floor)
}

// Motion labels shown by display clients.
const (
	MotionAwaiting = "awaiting connection"
	MotionMoving   = "in motion"
	MotionStopped  = "stopped"
)

// MotionLabel describes whether the car is moving.
func MotionLabel(snap state.Snapshot) string {
	switch {
	case !snap.Connected:
		return MotionAwaiting
	case snap.Moving:
		return MotionMoving
	default:
		return MotionStopped
	}
}

// CommandRequest asks for one command, in operator form ("goto 2").
type CommandRequest struct {
	Command string `json:"command"`
}

// DetectionRequest is one sample of the detection signal.
type DetectionRequest struct {
	Present bool `json:"present"`
}

// DetectionResponse reports what a detection sample caused.
type DetectionResponse struct {
	Edge             bool    `json:"edge"`
	Fired            bool    `json:"fired"`
	RemainingSeconds float64 `json:"cooldown_remaining_seconds,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// NewDetectionResponse converts a trigger result.
func NewDetectionResponse(r trigger.Result) DetectionResponse {
	resp := DetectionResponse{
		Edge:             r.Edge,
		Fired:            r.Fired,
		RemainingSeconds: r.Remaining.Seconds(),
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}
