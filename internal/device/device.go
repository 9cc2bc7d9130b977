// Package device defines the line-oriented link to the elevator controller
// and the connection manager that owns its serial port.
package device

import "time"

// Device is a line-oriented link to a controller.
type Device interface {
	// ReadLine reads a single line terminated by '\n', without the terminator.
	// If timeout > 0 it returns ErrReadTimeout once timeout elapses without a full line.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n'.
	WriteLine(s string) error

	// Close releases the underlying port.
	Close() error
}
