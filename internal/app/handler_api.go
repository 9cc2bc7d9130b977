package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/device"
	"LiftLink/internal/model"
	"LiftLink/internal/protocol"
)

const maxBodySize = 4 << 10

// handleState returns the current status view.
func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.View())
}

// handleCommand parses an operator command and sends it to the controller.
func (a *App) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req model.CommandRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid command request", http.StatusBadRequest)
		return
	}

	cmd, err := protocol.ParseCommand(req.Command)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.Sender.Send(cmd); err != nil {
		log.Warn().Err(err).Stringer("command", cmd).Msg("[app] command not sent")
		status := http.StatusBadGateway
		if errors.Is(err, device.ErrNotConnected) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	log.Info().Stringer("command", cmd).Str("from", r.RemoteAddr).Msg("[app] command sent")
	w.WriteHeader(http.StatusAccepted)
}

// handleDetection feeds one detection sample into the trigger.
func (a *App) handleDetection(w http.ResponseWriter, r *http.Request) {
	var req model.DetectionRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid detection request", http.StatusBadRequest)
		return
	}
	res := a.Detector.Observe(req.Present)
	writeJSON(w, http.StatusOK, model.NewDetectionResponse(res))
}

func decodeBody(r *http.Request, v any) error {
	defer func() {
		if cerr := r.Body.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("[app] failed to close request body")
		}
	}()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("[app] failed to write response")
	}
}
