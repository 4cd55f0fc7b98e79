// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"rfid-service/internal/model"
)

// Scanner lists serial ports through the platform enumerator
type Scanner struct {
	logger    *zap.Logger
	vendors   *VendorDatabase
	enumerate func() ([]*enumerator.PortDetails, error)
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		logger:    logger.With(zap.String("scanner", "serial")),
		vendors:   NewVendorDatabase(),
		enumerate: enumerator.GetDetailedPortsList,
	}
}

// ListPorts returns every serial port currently present on the host
func (s *Scanner) ListPorts(ctx context.Context) ([]model.SerialEndpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := s.enumerate()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	endpoints := make([]model.SerialEndpoint, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		endpoints = append(endpoints, s.toEndpoint(d))
	}

	s.logger.Debug("Serial ports enumerated", zap.Int("count", len(endpoints)))
	return endpoints, nil
}

func (s *Scanner) toEndpoint(d *enumerator.PortDetails) model.SerialEndpoint {
	endpoint := model.SerialEndpoint{
		Path:  d.Name,
		IsUSB: d.IsUSB,
	}
	if d.IsUSB {
		endpoint.VendorID = normalizeID(d.VID)
		endpoint.ProductID = normalizeID(d.PID)
		endpoint.SerialNumber = d.SerialNumber
		endpoint.Product = d.Product
		endpoint.Manufacturer = s.vendors.Manufacturer(d.VID)
	}
	return endpoint
}
