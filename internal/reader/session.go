// internal/reader/session.go
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rfid-service/internal/model"
	"rfid-service/internal/protocol"
	"rfid-service/internal/utils"
)

// DefaultPosition tags readings when the caller supplies no position
const DefaultPosition = 1

// Config holds session parameters
type Config struct {
	// Address is the reader address placed in outbound frames
	Address byte
	// Window bounds response collection after each write
	Window time.Duration
}

// DefaultConfig returns the broadcast address and the reader's fixed collection window
func DefaultConfig() Config {
	return Config{
		Address: protocol.BroadcastAddress,
		Window:  protocol.CollectWindow,
	}
}

// State is a snapshot of the session
type State struct {
	Connected   bool
	Port        string
	Position    int
	ConnectedAt time.Time
	Stats       model.TransportStats
}

// Session owns the single live connection to a reader. Connect, Disconnect
// and Scan are serialized; a scan holding the session when Connect or
// Disconnect is called fails with ErrSessionClosed, including one that has
// not yet started writing.
type Session struct {
	factory protocol.Factory
	config  Config
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex

	stateMu     sync.RWMutex
	transport   protocol.Transport
	port        string
	position    int
	connectedAt time.Time
	rlog        *utils.ReaderLogger

	scanMu     sync.Mutex
	cancelScan context.CancelCauseFunc
	closing    int // Connect/Disconnect calls waiting for or holding mu
}

// NewSession creates a disconnected session
func NewSession(factory protocol.Factory, config Config, logger *zap.Logger) *Session {
	if config.Window <= 0 {
		config.Window = protocol.CollectWindow
	}
	return &Session{
		factory:  factory,
		config:   config,
		logger:   logger.With(zap.String("component", "reader-session")),
		now:      time.Now,
		position: DefaultPosition,
	}
}

// Connect opens port, replacing any existing connection
func (s *Session) Connect(ctx context.Context, port string, position int) error {
	s.abortScan()
	s.mu.Lock()
	s.endClose()
	defer s.mu.Unlock()

	if s.current() != nil {
		if err := s.closeLocked(); err != nil {
			return err
		}
	}

	rlog := utils.NewReaderLogger(s.logger, port, position)
	transport := s.factory(protocol.NewSerialConfig(port), rlog.Logger)
	if err := transport.Open(ctx); err != nil {
		rlog.LogConnection("connect", false, err)
		return &ConnectionError{Port: port, Err: err}
	}

	s.stateMu.Lock()
	s.transport = transport
	s.port = port
	s.position = position
	s.connectedAt = s.now()
	s.rlog = rlog
	s.stateMu.Unlock()

	rlog.LogConnection("connect", true, nil)
	return nil
}

// Disconnect closes the open connection. It is a no-op when disconnected.
func (s *Session) Disconnect() error {
	s.abortScan()
	s.mu.Lock()
	s.endClose()
	defer s.mu.Unlock()

	if s.current() == nil {
		return nil
	}
	return s.closeLocked()
}

// Scan sends one inventory command and decodes what arrives within the window
func (s *Session) Scan(ctx context.Context) (*model.TagReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateMu.RLock()
	transport, port, position, rlog := s.transport, s.port, s.position, s.rlog
	s.stateMu.RUnlock()

	if transport == nil || !transport.IsOpen() {
		return nil, ErrNotConnected
	}

	scanCtx, cancel := context.WithCancelCause(ctx)
	s.setCancel(cancel)
	defer func() {
		s.setCancel(nil)
		cancel(nil)
	}()

	frame, err := protocol.InventoryFrame(s.config.Address)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()

	if err := transport.Write(scanCtx, frame.Bytes()); err != nil {
		err = s.scanFailure(scanCtx, ctx, err, func(cause error) error {
			return &WriteError{Port: port, Err: cause}
		})
		rlog.LogScan(nil, 0, time.Since(startTime), err)
		return nil, err
	}

	response, err := transport.Collect(scanCtx, s.config.Window)
	if err != nil {
		err = s.scanFailure(scanCtx, ctx, err, func(cause error) error {
			return &ReadError{Port: port, Err: cause}
		})
		rlog.LogScan(nil, len(response), time.Since(startTime), err)
		return nil, err
	}

	reading := protocol.DecodeInventory(response, position, s.now())
	rlog.LogScan(reading, len(response), time.Since(startTime), nil)
	if ce := rlog.Check(zap.DebugLevel, "Inventory exchange"); ce != nil {
		ce.Write(zap.Stringer("frame", frame), zap.String("response", protocol.RenderHex(response)))
	}
	return reading, nil
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	state := State{
		Connected: s.transport != nil,
		Port:      s.port,
		Position:  s.position,
	}
	if s.transport != nil {
		state.ConnectedAt = s.connectedAt
		state.Stats = s.transport.Stats()
	}
	return state
}

// IsConnected reports whether a connection is open
func (s *Session) IsConnected() bool {
	return s.current() != nil
}

func (s *Session) current() protocol.Transport {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.transport
}

// closeLocked releases the transport even when the close primitive fails.
// s.mu must be held.
func (s *Session) closeLocked() error {
	s.stateMu.Lock()
	transport, port, rlog := s.transport, s.port, s.rlog
	s.transport = nil
	s.rlog = nil
	s.connectedAt = time.Time{}
	s.stateMu.Unlock()

	if err := transport.Close(); err != nil {
		rlog.LogConnection("disconnect", false, err)
		return &DisconnectionError{Port: port, Err: err}
	}

	rlog.LogConnection("disconnect", true, nil)
	return nil
}

// scanFailure classifies a write or collect error
func (s *Session) scanFailure(scanCtx, callerCtx context.Context, err error, wrap func(error) error) error {
	if errors.Is(context.Cause(scanCtx), ErrSessionClosed) || errors.Is(err, ErrSessionClosed) {
		return ErrSessionClosed
	}
	if callerCtx.Err() != nil {
		return fmt.Errorf("scan cancelled: %w", callerCtx.Err())
	}
	return wrap(err)
}

// setCancel registers the running scan. A scan registering while a close is
// pending is cancelled at once.
func (s *Session) setCancel(cancel context.CancelCauseFunc) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.cancelScan = cancel
	if cancel != nil && s.closing > 0 {
		cancel(ErrSessionClosed)
	}
}

// abortScan marks a close as pending and cancels the running scan, if any.
// The caller must call endClose once it holds s.mu.
func (s *Session) abortScan() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.closing++
	if s.cancelScan != nil {
		s.cancelScan(ErrSessionClosed)
	}
}

func (s *Session) endClose() {
	s.scanMu.Lock()
	s.closing--
	s.scanMu.Unlock()
}
