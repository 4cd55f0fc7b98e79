// internal/discovery/scanner.go
package discovery

import (
	"context"

	"rfid-service/internal/model"
)

// PortScanner enumerates the serial ports a reader could be attached to.
// Results are neither filtered nor ranked.
type PortScanner interface {
	ListPorts(ctx context.Context) ([]model.SerialEndpoint, error)
}
