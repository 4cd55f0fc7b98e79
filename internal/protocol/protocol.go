// internal/protocol/protocol.go
package protocol

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rfid-service/internal/model"
)

// Transport is the byte-level link to a reader
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error

	// Collect accumulates every byte that arrives until window elapses and
	// returns them, possibly none. If ctx ends first it returns the cause.
	Collect(ctx context.Context, window time.Duration) ([]byte, error)

	// Diagnostics
	Stats() model.TransportStats
}

// Factory creates an unopened transport for the given configuration
type Factory func(config *SerialConfig, logger *zap.Logger) Transport
