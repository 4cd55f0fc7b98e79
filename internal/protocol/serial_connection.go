// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"rfid-service/internal/model"
)

const (
	readChunkSize    = 256
	readPollInterval = 10 * time.Millisecond
)

// SerialConnection implements Transport for serial connections
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
	stats  model.TransportStats
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the serial connection
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sc.logger.Info("Opening serial port", zap.Int("baud_rate", sc.config.BaudRate))

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(sc.config.Port, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	sc.port = port
	sc.isOpen = true
	sc.stats = model.TransportStats{LastActivity: time.Now()}

	sc.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial connection
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.isOpen = false
	if err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.logger.Info("Serial port closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.isOpen && sc.port != nil
}

// Write discards unread input and writes data to the serial port
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return fmt.Errorf("serial port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Bytes that arrived outside a collection window belong to no scan.
	if err := sc.port.ResetInputBuffer(); err != nil {
		sc.logger.Warn("Failed to reset input buffer", zap.Error(err))
	}

	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.ErrorCount++
		sc.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("failed to write to serial port: %w", err)
	}

	if n != len(data) {
		sc.stats.ErrorCount++
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	sc.stats.BytesWritten += int64(n)
	sc.stats.LastActivity = time.Now()

	sc.logger.Debug("Serial write completed", zap.Int("bytes", n), zap.String("data", RenderHex(data)))
	return nil
}

// Collect reads everything arriving on the port until window elapses
func (sc *SerialConnection) Collect(ctx context.Context, window time.Duration) ([]byte, error) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil, fmt.Errorf("serial port not open")
	}

	deadline := time.Now().Add(window)
	chunk := make([]byte, readChunkSize)
	var response []byte

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		select {
		case <-ctx.Done():
			return response, context.Cause(ctx)
		default:
		}

		if err := sc.port.SetReadTimeout(min(remaining, readPollInterval)); err != nil {
			sc.stats.ErrorCount++
			return response, fmt.Errorf("failed to set read timeout: %w", err)
		}

		n, err := sc.port.Read(chunk)
		if err != nil {
			sc.stats.ErrorCount++
			sc.logger.Error("Serial read failed", zap.Error(err))
			return response, fmt.Errorf("failed to read from serial port: %w", err)
		}
		response = append(response, chunk[:n]...)
	}

	sc.stats.BytesRead += int64(len(response))
	sc.stats.ScanCount++
	sc.stats.LastActivity = time.Now()

	sc.logger.Debug("Serial collection completed",
		zap.Int("bytes", len(response)),
		zap.String("data", RenderHex(response)),
	)
	return response, nil
}

// Stats returns a snapshot of link counters
func (sc *SerialConnection) Stats() model.TransportStats {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.stats
}
