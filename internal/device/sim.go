package device

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	serial "go.bug.st/serial"
)

// Simulator emulates the elevator controller firmware. It answers the same
// wire protocol as the real board so the host side can run without hardware.
type Simulator struct {
	Floors    int           // number of floors, ground floor is 0
	StepDelay time.Duration // pause between consecutive output lines

	floor int
}

// NewSimulator creates a simulator parked at the ground floor.
func NewSimulator(floors int, stepDelay time.Duration) *Simulator {
	if floors < 1 {
		floors = 1
	}
	return &Simulator{Floors: floors, StepDelay: stepDelay}
}

// Floor returns the simulated car position.
func (s *Simulator) Floor() int { return s.floor }

// Respond advances the simulation for one command line and returns the
// lines the controller emits, in order.
//
// A GOTO to the floor the car already stands on (other than ground) sends
// it back to ground, like presenting the same floor card twice.
func (s *Simulator) Respond(line string) []string {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case line == "STATUS":
		return []string{"STATUS|" + strconv.Itoa(s.floor)}
	case line == "RESET":
		out := s.moveTo(0)
		return append(out, "RESET_DONE")
	case strings.HasPrefix(line, "GOTO "):
		target, err := strconv.Atoi(strings.TrimPrefix(line, "GOTO "))
		if err != nil || target < 0 || target >= s.Floors {
			return []string{"ERR|" + line}
		}
		if target == s.floor && target != 0 {
			target = 0
		}
		out := s.moveTo(target)
		return append(out, "DONE|"+strconv.Itoa(target))
	}
	return []string{"ERR|" + line}
}

func (s *Simulator) moveTo(target int) []string {
	var out []string
	for s.floor != target {
		if s.floor < target {
			s.floor++
		} else {
			s.floor--
		}
		out = append(out, "FLOOR|"+strconv.Itoa(s.floor))
	}
	return out
}

// Run serves commands read from dev until stop is closed.
func (s *Simulator) Run(dev Device, stop <-chan struct{}) error {
	log.Info().Int("floors", s.Floors).Msg("[sim] simulator started")
	for {
		select {
		case <-stop:
			log.Info().Msg("[sim] simulation stopped")
			return nil
		default:
		}

		line, err := dev.ReadLine(DefaultReadTimeout)
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if errors.Is(err, io.EOF) {
			log.Info().Msg("[sim] host closed the link")
			return nil
		}
		if err != nil {
			log.Warn().Err(err).Msg("[sim] read error")
			time.Sleep(DefaultReadTimeout)
			continue
		}
		log.Debug().Str("line", line).Msg("[sim] received")

		for i, out := range s.Respond(line) {
			if i > 0 && s.StepDelay > 0 {
				select {
				case <-stop:
					return nil
				case <-time.After(s.StepDelay):
				}
			}
			if err := dev.WriteLine(out); err != nil {
				log.Warn().Err(err).Str("line", out).Msg("[sim] write error")
			} else {
				log.Debug().Str("line", out).Msg("[sim] sent")
			}
		}
	}
}

// Simulation defaults: ground floor plus two.
const (
	SimulatedPort    = "sim"
	DefaultSimFloors = 3
	DefaultSimStep   = 200 * time.Millisecond
)

// SimOpener returns an Opener that ignores the requested name and serial
// mode and attaches a fresh in-memory Simulator to each opened port. The
// simulator stops when the host closes its end.
func SimOpener(floors int, stepDelay time.Duration) Opener {
	return func(name string, _ *serial.Mode) (Port, error) {
		host, ctrl := NewPipe()
		sim := NewSimulator(floors, stepDelay)
		dev := NewSerialDevice(ctrl, name, 0)
		go func() {
			defer dev.Close()
			_ = sim.Run(dev, nil)
		}()
		return host, nil
	}
}
