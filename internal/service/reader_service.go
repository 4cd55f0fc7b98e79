// internal/service/reader_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rfid-service/internal/config"
	"rfid-service/internal/discovery"
	"rfid-service/internal/model"
	"rfid-service/internal/reader"
	"rfid-service/internal/utils"
)

// ErrPortRequired is returned when connect is called without a port path
var ErrPortRequired = errors.New("port is required")

// EventPublisher receives reader events
type EventPublisher interface {
	Publish(event *model.ReaderEvent)
}

// ReaderService handles reader lifecycle and scanning for the process
type ReaderService struct {
	session *reader.Session
	ports   discovery.PortScanner
	events  EventPublisher
	config  *config.Config
	logger  *utils.ServiceLogger

	mu         sync.RWMutex
	connecting bool
	failed     bool
	lastError  string
}

// NewReaderService creates a new reader service instance
func NewReaderService(
	session *reader.Session,
	ports discovery.PortScanner,
	events EventPublisher,
	config *config.Config,
	logger *zap.Logger,
) *ReaderService {
	return &ReaderService{
		session: session,
		ports:   ports,
		events:  events,
		config:  config,
		logger:  utils.NewServiceLogger(logger, "reader-service"),
	}
}

// ListPorts enumerates serial ports available on the host
func (rs *ReaderService) ListPorts(ctx context.Context) ([]model.SerialEndpoint, error) {
	ports, err := rs.ports.ListPorts(ctx)
	if err != nil {
		rs.logger.Error("Failed to list serial ports", zap.Error(err))
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	return ports, nil
}

// DefaultPosition returns the configured position used when a caller gives none
func (rs *ReaderService) DefaultPosition() int {
	return rs.config.Reader.DefaultPosition
}

// Connect opens port, replacing any existing connection
func (rs *ReaderService) Connect(ctx context.Context, port string, position int) error {
	if port == "" {
		return ErrPortRequired
	}

	rs.mu.Lock()
	rs.connecting = true
	rs.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, rs.config.Reader.ConnectTimeout)
	defer cancel()

	err := rs.session.Connect(connectCtx, port, position)

	rs.mu.Lock()
	rs.connecting = false
	rs.mu.Unlock()

	if err != nil {
		rs.recordFailure(port, position, err)
		return fmt.Errorf("failed to connect to reader: %w", err)
	}

	rs.clearFailure()
	rs.publish(model.NewReaderEvent(model.EventReaderConnected, port, position))

	rs.logger.Info("Reader connected",
		zap.String("port", port),
		zap.Int("position", position),
	)
	return nil
}

// Disconnect closes the reader connection. It is a no-op when disconnected.
func (rs *ReaderService) Disconnect(ctx context.Context) error {
	state := rs.session.State()

	if err := rs.session.Disconnect(); err != nil {
		rs.recordFailure(state.Port, state.Position, err)
		return fmt.Errorf("failed to disconnect reader: %w", err)
	}

	rs.clearFailure()
	if state.Connected {
		rs.publish(model.NewReaderEvent(model.EventReaderDisconnected, state.Port, state.Position))
		rs.logger.Info("Reader disconnected", zap.String("port", state.Port))
	}
	return nil
}

// Scan performs one inventory scan
func (rs *ReaderService) Scan(ctx context.Context) (*model.TagReading, error) {
	scanCtx, cancel := context.WithTimeout(ctx, rs.config.Reader.ScanTimeout)
	defer cancel()

	reading, err := rs.session.Scan(scanCtx)
	if err != nil {
		if !errors.Is(err, reader.ErrNotConnected) {
			state := rs.session.State()
			rs.recordFailure(state.Port, state.Position, err)
		}
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if reading.Detected() {
		state := rs.session.State()
		event := model.NewReaderEvent(model.EventTagRead, state.Port, reading.Position)
		event.Reading = reading
		rs.publish(event)
	}
	return reading, nil
}

// IsConnected reports whether the reader is connected
func (rs *ReaderService) IsConnected() bool {
	return rs.session.IsConnected()
}

// Status returns the externally visible reader state
func (rs *ReaderService) Status() model.ReaderStatus {
	state := rs.session.State()

	rs.mu.RLock()
	connecting, failed, lastError := rs.connecting, rs.failed, rs.lastError
	rs.mu.RUnlock()

	status := model.ReaderStatus{
		IsConnected: state.Connected,
		Port:        state.Port,
		Position:    state.Position,
		LastError:   lastError,
		Stats:       state.Stats,
	}

	switch {
	case connecting:
		status.Status = model.StateConnecting
	case state.Connected:
		status.Status = model.StateConnected
	case failed:
		status.Status = model.StateError
	default:
		status.Status = model.StateDisconnected
	}

	if state.Connected {
		connectedAt := state.ConnectedAt
		status.ConnectedAt = &connectedAt
	}
	return status
}

// Shutdown disconnects the reader during service stop
func (rs *ReaderService) Shutdown(ctx context.Context) error {
	if !rs.session.IsConnected() {
		return nil
	}
	rs.logger.LogServiceStop("shutdown")
	return rs.Disconnect(ctx)
}

func (rs *ReaderService) recordFailure(port string, position int, err error) {
	rs.mu.Lock()
	rs.failed = true
	rs.lastError = err.Error()
	rs.mu.Unlock()

	event := model.NewReaderEvent(model.EventReaderError, port, position)
	event.Error = err.Error()
	rs.publish(event)

	rs.logger.Warn("Reader operation failed",
		zap.String("port", port),
		zap.Error(err),
	)
}

func (rs *ReaderService) clearFailure() {
	rs.mu.Lock()
	rs.failed = false
	rs.lastError = ""
	rs.mu.Unlock()
}

func (rs *ReaderService) publish(event *model.ReaderEvent) {
	if rs.events == nil {
		return
	}
	rs.events.Publish(event)
}
