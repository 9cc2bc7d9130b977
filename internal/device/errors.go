package device

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPortAvailable indicates that no serial port could be enumerated.
	ErrNoPortAvailable = errors.New("no serial port available")
	// ErrNotConnected indicates an operation that needs an open port.
	ErrNotConnected = errors.New("controller not connected")
	// ErrReadTimeout is the expected result of a read on a silent line.
	ErrReadTimeout = errors.New("read timeout")
	// ErrWriteTimeout indicates a write that did not finish in time.
	ErrWriteTimeout = errors.New("write timeout")
	// ErrWriteBusy indicates that a timed-out write is still pending on the port.
	ErrWriteBusy = errors.New("previous write still pending")
	// ErrLineTooLong indicates inbound data without a line break beyond MaxLineLength.
	ErrLineTooLong = errors.New("line too long")
)

// OpenError wraps a failure to open a serial port.
type OpenError struct {
	Port string
	Err  error
}

// Error implements error.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open serial %s: %v", e.Port, e.Err)
}

// Unwrap returns the serial library error.
func (e *OpenError) Unwrap() error { return e.Err }

// WriteError wraps a failure to transmit a command line.
type WriteError struct {
	Line string
	Err  error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Line, e.Err)
}

// Unwrap returns the I/O error.
func (e *WriteError) Unwrap() error { return e.Err }
