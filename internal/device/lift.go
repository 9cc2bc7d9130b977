package device

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	serial "go.bug.st/serial"

	"LiftLink/internal/protocol"
	"LiftLink/internal/state"
)

// Defaults used when a Config field is zero.
const (
	DefaultBaudRate     = 9600
	DefaultReadTimeout  = 20 * time.Millisecond
	DefaultWriteTimeout = 100 * time.Millisecond
)

// Config describes how to reach the controller.
type Config struct {
	Port         string // preferred port; empty selects the first enumerated port
	BaudRate     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}

// Lift owns the single serial connection to the elevator controller.
// Only Lift opens, writes to or closes the port; the connection status is
// mirrored into the shared live state.
type Lift struct {
	// ListPorts enumerates candidate ports. Defaults to serial.GetPortsList.
	ListPorts func() ([]string, error)
	// OpenPort opens a port. Defaults to OpenSerial.
	OpenPort Opener

	cfg  Config
	live *state.Live

	mu      sync.RWMutex // guards dev; Connect/Close take it exclusively
	writeMu sync.Mutex
	dev     *SerialDevice
}

// NewLift creates a disconnected connection manager.
func NewLift(cfg Config, live *state.Live) *Lift {
	return &Lift{
		ListPorts: serial.GetPortsList,
		OpenPort:  OpenSerial,
		cfg:       cfg.withDefaults(),
		live:      live,
	}
}

// Config returns the effective configuration.
func (l *Lift) Config() Config { return l.cfg }

// Ports lists the enumerable serial ports.
func (l *Lift) Ports() ([]string, error) {
	return l.ListPorts()
}

// Connect opens the controller port. preferred overrides the configured port
// when non-empty. The preferred port is tried first even if it is not
// enumerated (virtual ports usually are not); on failure, or when no port is
// preferred, the first enumerated port is used. When nothing is enumerated the
// error always matches ErrNoPortAvailable.
func (l *Lift) Connect(preferred string) error {
	if preferred == "" {
		preferred = l.cfg.Port
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.closeLocked()

	ports, listErr := l.ListPorts()
	if listErr != nil {
		log.Warn().Err(listErr).Msg("[lift] port enumeration failed")
	}

	var candidates []string
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	for _, p := range ports {
		if p != preferred {
			candidates = append(candidates, p)
			break
		}
	}
	if len(candidates) == 0 {
		log.Error().Msg("[lift] no serial port found")
		return ErrNoPortAvailable
	}

	mode := &serial.Mode{BaudRate: l.cfg.BaudRate}
	var err error
	for _, name := range candidates {
		var port Port
		port, err = l.OpenPort(name, mode)
		if err != nil {
			err = &OpenError{Port: name, Err: err}
			log.Warn().Err(err).Str("port", name).Msg("[lift] open failed")
			continue
		}
		l.dev = NewSerialDevice(port, name, l.cfg.WriteTimeout)
		l.live.SetConnected(name)
		log.Info().Str("port", name).Int("baud", l.cfg.BaudRate).Msg("[lift] connected")
		return nil
	}
	if len(ports) == 0 {
		return errors.Join(ErrNoPortAvailable, err)
	}
	return err
}

// Connected reports whether a port is open.
func (l *Lift) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dev != nil
}

// PortName returns the open port name, or "" when disconnected.
func (l *Lift) PortName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.dev == nil {
		return ""
	}
	return l.dev.Name()
}

// Send transmits cmd once. Failures are logged and returned; nothing is retried.
func (l *Lift) Send(cmd protocol.Command) error {
	line := cmd.Encode()

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.dev == nil {
		log.Warn().Str("command", line).Msg("[lift] not connected, command dropped")
		return ErrNotConnected
	}

	l.writeMu.Lock()
	err := l.dev.WriteLine(line)
	l.writeMu.Unlock()
	if err != nil {
		werr := &WriteError{Line: line, Err: err}
		log.Error().Err(werr).Str("port", l.dev.Name()).Msg("[lift] send failed")
		return werr
	}
	log.Info().Str("command", line).Msg("[lift] sent")
	return nil
}

// ReadLine reads one line from the controller, bounded by the configured
// read timeout. It returns ErrNotConnected when no port is open.
func (l *Lift) ReadLine() (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.dev == nil {
		return "", ErrNotConnected
	}
	return l.dev.ReadLine(l.cfg.ReadTimeout)
}

// ReadTimeout returns the bound applied to each ReadLine.
func (l *Lift) ReadTimeout() time.Duration { return l.cfg.ReadTimeout }

// Close flushes and releases the port. Calling Close on a closed Lift is a no-op.
func (l *Lift) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *Lift) closeLocked() error {
	if l.dev == nil {
		l.live.SetDisconnected()
		return nil
	}
	name := l.dev.Name()
	err := l.dev.Close()
	l.dev = nil
	l.live.SetDisconnected()
	if err != nil {
		log.Warn().Err(err).Str("port", name).Msg("[lift] close error")
		return err
	}
	log.Info().Str("port", name).Msg("[lift] disconnected")
	return nil
}
