// internal/reader/errors.go
package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs an open session
	ErrNotConnected = errors.New("reader not connected")

	// ErrSessionClosed is returned to a scan whose session was torn down
	// by connect or disconnect while it was collecting
	ErrSessionClosed = errors.New("reader session closed")
)

// ConnectionError reports a failure to open the serial link
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to reader on %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DisconnectionError reports a failure of the close primitive
type DisconnectionError struct {
	Port string
	Err  error
}

func (e *DisconnectionError) Error() string {
	return fmt.Sprintf("failed to disconnect reader on %s: %v", e.Port, e.Err)
}

func (e *DisconnectionError) Unwrap() error { return e.Err }

// WriteError reports a transmit failure on an open link
type WriteError struct {
	Port string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to reader on %s: %v", e.Port, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports an I/O failure while collecting a response
type ReadError struct {
	Port string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read from reader on %s: %v", e.Port, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
