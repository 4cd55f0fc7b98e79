// Package protocoltest provides an in-memory protocol.Transport for tests.
package protocoltest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"rfid-service/internal/model"
	"rfid-service/internal/protocol"
)

// ErrNotOpen is returned by fake transports used before Open
var ErrNotOpen = errors.New("fake transport not open")

// Behavior controls how a Transport reacts during collection
type Behavior int

const (
	// Respond returns the scripted response once the window elapses.
	Respond Behavior = iota
	// Hang ignores the window and blocks until the context ends.
	Hang
)

// Transport is a scripted fake link
type Transport struct {
	Port     string
	Response []byte
	Behavior Behavior

	// OpenDelay makes Open wait this long, or until ctx ends.
	OpenDelay time.Duration

	OpenErr    error
	CloseErr   error
	WriteErr   error
	CollectErr error

	// Collecting, when set, receives a value each time Collect starts.
	Collecting chan struct{}

	spy *Spy

	mu     sync.Mutex
	open   bool
	writes [][]byte
	stats  model.TransportStats
}

// Open implements protocol.Transport
func (t *Transport) Open(ctx context.Context) error {
	t.spy.record("open:" + t.Port)
	if t.OpenDelay > 0 {
		timer := time.NewTimer(t.OpenDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if t.OpenErr != nil {
		return t.OpenErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = true
	return nil
}

// Close implements protocol.Transport
func (t *Transport) Close() error {
	t.spy.record("close:" + t.Port)
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
	return t.CloseErr
}

// IsOpen implements protocol.Transport
func (t *Transport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Write implements protocol.Transport
func (t *Transport) Write(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return ErrNotOpen
	}
	if t.WriteErr != nil {
		t.stats.ErrorCount++
		return t.WriteErr
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	t.writes = append(t.writes, frame)
	t.stats.BytesWritten += int64(len(data))
	return nil
}

// Collect implements protocol.Transport
func (t *Transport) Collect(ctx context.Context, window time.Duration) ([]byte, error) {
	if t.Collecting != nil {
		t.Collecting <- struct{}{}
	}
	if t.CollectErr != nil {
		return nil, t.CollectErr
	}

	var expired <-chan time.Time
	if t.Behavior == Respond {
		timer := time.NewTimer(window)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-expired:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.BytesRead += int64(len(t.Response))
	t.stats.ScanCount++
	out := make([]byte, len(t.Response))
	copy(out, t.Response)
	return out, nil
}

// Stats implements protocol.Transport
func (t *Transport) Stats() model.TransportStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Writes returns every frame written so far
func (t *Transport) Writes() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.writes))
	copy(out, t.writes)
	return out
}

// Spy hands out fake transports and records the order of opens and closes
type Spy struct {
	// Configure, when set, is applied to each new transport before it is returned.
	Configure func(t *Transport)

	mu         sync.Mutex
	calls      []string
	transports []*Transport
}

// Factory returns a protocol.Factory backed by this spy
func (s *Spy) Factory() protocol.Factory {
	return func(config *protocol.SerialConfig, logger *zap.Logger) protocol.Transport {
		t := &Transport{Port: config.Port, spy: s}
		if s.Configure != nil {
			s.Configure(t)
		}
		s.mu.Lock()
		s.transports = append(s.transports, t)
		s.mu.Unlock()
		return t
	}
}

// Calls returns the recorded "open:<port>" and "close:<port>" calls in order
func (s *Spy) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Transports returns every transport created so far
func (s *Spy) Transports() []*Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Transport, len(s.transports))
	copy(out, s.transports)
	return out
}

// Last returns the most recently created transport, or nil
func (s *Spy) Last() *Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transports) == 0 {
		return nil
	}
	return s.transports[len(s.transports)-1]
}

// OpenCount counts open calls
func (s *Spy) OpenCount() int {
	return s.count("open:")
}

// CloseCount counts close calls
func (s *Spy) CloseCount() int {
	return s.count("close:")
}

func (s *Spy) count(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (s *Spy) record(call string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}
