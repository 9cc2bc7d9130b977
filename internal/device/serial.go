// Package device implements SerialDevice using go.bug.st/serial,
// which provides real serial communication with the elevator controller.
package device

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	serial "go.bug.st/serial"
)

// MaxLineLength bounds the bytes buffered while waiting for a line break.
const MaxLineLength = 4096

// Port is the part of serial.Port used by SerialDevice.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	Drain() error
}

// Opener opens a serial port by name.
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real serial port.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SerialDevice implements Device on top of a Port.
// ReadLine must not be called concurrently with itself.
type SerialDevice struct {
	port         Port
	name         string
	writeTimeout time.Duration
	readTimeout  time.Duration
	timeoutSet   bool
	pending      []byte
	buf          []byte
	stalled      chan error // result of a write that outlived its timeout
}

// NewSerialDevice wraps an open port. A writeTimeout <= 0 lets writes block.
func NewSerialDevice(port Port, name string, writeTimeout time.Duration) *SerialDevice {
	return &SerialDevice{
		port:         port,
		name:         name,
		writeTimeout: writeTimeout,
		buf:          make([]byte, 256),
	}
}

// Name returns the port name.
func (s *SerialDevice) Name() string { return s.name }

// ReadLine reads a single line from the serial port. Bytes of an incomplete
// line are kept for the next call. A timeout <= 0 blocks until a full line.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	if s.port == nil {
		return "", ErrNotConnected
	}
	if line, ok := s.takeLine(); ok {
		return line, nil
	}
	if err := s.applyReadTimeout(timeout); err != nil {
		return "", err
	}

	for {
		n, err := s.port.Read(s.buf)
		if n > 0 {
			s.pending = append(s.pending, s.buf[:n]...)
		}
		if line, ok := s.takeLine(); ok {
			return line, nil
		}
		if len(s.pending) > MaxLineLength {
			s.pending = s.pending[:0]
			return "", ErrLineTooLong
		}
		if err != nil {
			return "", err
		}
		if timeout > 0 {
			return "", ErrReadTimeout
		}
	}
}

func (s *SerialDevice) applyReadTimeout(timeout time.Duration) error {
	if s.timeoutSet && s.readTimeout == timeout {
		return nil
	}
	t := timeout
	if t <= 0 {
		t = serial.NoTimeout
	}
	if err := s.port.SetReadTimeout(t); err != nil {
		return fmt.Errorf("set read timeout on %s: %w", s.name, err)
	}
	s.readTimeout, s.timeoutSet = timeout, true
	return nil
}

func (s *SerialDevice) takeLine() (string, bool) {
	i := bytes.IndexByte(s.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(s.pending[:i])
	s.pending = s.pending[i+1:]
	return line, true
}

// WriteLine writes a single line followed by '\n' to the serial port.
// line must not contain line breaks. After a write times out, later calls
// fail with ErrWriteBusy until that write has returned, so no line can
// overtake it on the wire.
func (s *SerialDevice) WriteLine(line string) error {
	if s.port == nil {
		return ErrNotConnected
	}
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("line %q contains a line break", line)
	}
	if s.stalled != nil {
		select {
		case <-s.stalled:
			s.stalled = nil
		default:
			return ErrWriteBusy
		}
	}
	data := append([]byte(line), '\n')
	if s.writeTimeout <= 0 {
		_, err := s.port.Write(data)
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.port.Write(data)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(s.writeTimeout):
		s.stalled = done
		return ErrWriteTimeout
	}
}

// Close flushes pending output and closes the underlying serial connection.
func (s *SerialDevice) Close() error {
	if s.port == nil {
		return nil
	}
	drainErr := s.port.Drain()
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	s.stalled = nil
	if err == nil && drainErr != nil {
		err = fmt.Errorf("drain %s: %w", s.name, drainErr)
	}
	return err
}
