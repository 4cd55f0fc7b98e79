package reader

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"rfid-service/internal/model"
	"rfid-service/internal/protocol"
	"rfid-service/internal/protocol/protocoltest"
)

var inventoryGolden = []byte{0x06, 0xFF, 0x01, 0x00, 0x06, 0x28, 0xF1}

func newTestSession(t *testing.T, spy *protocoltest.Spy) *Session {
	t.Helper()
	return NewSession(spy.Factory(), DefaultConfig(), zaptest.NewLogger(t))
}

func TestConnectReplacesExistingConnection(t *testing.T) {
	spy := &protocoltest.Spy{}
	s := newTestSession(t, spy)
	ctx := context.Background()

	if err := s.Connect(ctx, "COM3", 1); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if err := s.Connect(ctx, "COM4", 2); err != nil {
		t.Fatalf("second connect: %v", err)
	}

	want := []string{"open:COM3", "close:COM3", "open:COM4"}
	if got := spy.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}

	state := s.State()
	if !state.Connected || state.Port != "COM4" || state.Position != 2 {
		t.Errorf("state = %+v", state)
	}
	if state.ConnectedAt.IsZero() {
		t.Error("ConnectedAt not set")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	spy := &protocoltest.Spy{}
	s := newTestSession(t, spy)

	if err := s.Disconnect(); err != nil {
		t.Fatalf("disconnect without session: %v", err)
	}

	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("first disconnect: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}

	if spy.OpenCount() != 1 || spy.CloseCount() != 1 {
		t.Errorf("opens=%d closes=%d, want 1 and 1", spy.OpenCount(), spy.CloseCount())
	}
	if s.IsConnected() {
		t.Error("session still connected")
	}
}

func TestScanWithoutConnection(t *testing.T) {
	s := newTestSession(t, &protocoltest.Spy{})

	_, err := s.Scan(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestScanEndToEnd(t *testing.T) {
	responses := [][]byte{
		{0xAA, 0xBB, 0xCC, 0xFE, 0x11, 0x22, 0x33},
		{0xAA, 0xBB, 0xCC, 0x11, 0x22, 0x33},
	}
	created := 0
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.Response = responses[created]
		created++
	}}
	s := newTestSession(t, spy)
	ctx := context.Background()

	if err := s.Connect(ctx, "COM3", 2); err != nil {
		t.Fatalf("connect: %v", err)
	}
	reading, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reading.Status != model.TagStatusNotDetected || reading.UID != "" || reading.Position != 2 {
		t.Errorf("first reading = %+v", reading)
	}

	if err := s.Connect(ctx, "COM3", 2); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	reading, err = s.Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reading.Status != model.TagStatusSuccess || reading.UID != "112233" || reading.Position != 2 {
		t.Errorf("second reading = %+v", reading)
	}
	if reading.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	for i, tr := range spy.Transports() {
		writes := tr.Writes()
		if len(writes) != 1 || !bytes.Equal(writes[0], inventoryGolden) {
			t.Errorf("transport %d writes = % X", i, writes)
		}
	}
}

func TestScanSilentReaderCompletesWithinWindow(t *testing.T) {
	spy := &protocoltest.Spy{}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	start := time.Now()
	reading, err := s.Scan(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if reading.Status != model.TagStatusNotDetected || reading.UID != "" {
		t.Errorf("reading = %+v", reading)
	}
	if elapsed < DefaultConfig().Window {
		t.Errorf("scan returned after %v, before the collection window", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("scan took %v", elapsed)
	}
}

func TestDisconnectFailsPendingScan(t *testing.T) {
	collecting := make(chan struct{})
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.Behavior = protocoltest.Hang
		tr.Collecting = collecting
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background())
		errCh <- err
	}()

	<-collecting
	if err := s.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("scan err = %v, want ErrSessionClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending scan was not released")
	}

	want := []string{"open:COM3", "close:COM3"}
	if got := spy.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReconnectFailsPendingScan(t *testing.T) {
	collecting := make(chan struct{}, 1)
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		if tr.Port == "COM3" {
			tr.Behavior = protocoltest.Hang
			tr.Collecting = collecting
		}
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background())
		errCh <- err
	}()

	<-collecting
	if err := s.Connect(context.Background(), "COM5", 3); err != nil {
		t.Fatalf("reconnect: %v", err)
	}

	if err := <-errCh; !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("scan err = %v, want ErrSessionClosed", err)
	}
	if st := s.State(); st.Port != "COM5" || st.Position != 3 {
		t.Errorf("state = %+v", st)
	}
}

func TestScanStartingDuringPendingCloseFails(t *testing.T) {
	spy := &protocoltest.Spy{}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// A Connect or Disconnect has announced itself but not yet taken the
	// session, so the scan that holds it now must not run a full window.
	s.abortScan()
	start := time.Now()
	_, err := s.Scan(context.Background())
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("err = %v, want ErrSessionClosed", err)
	}
	if elapsed := time.Since(start); elapsed >= protocol.CollectWindow {
		t.Errorf("scan ran %v, want it cut short", elapsed)
	}
	s.endClose()

	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("scan after close settled: %v", err)
	}
}

func TestScanTransportClosedUnderneath(t *testing.T) {
	spy := &protocoltest.Spy{}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := spy.Last().Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := s.Scan(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if n := len(spy.Last().Writes()); n != 0 {
		t.Errorf("writes = %d, want none", n)
	}
}

func TestScanCallerCancellation(t *testing.T) {
	collecting := make(chan struct{}, 1)
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.Behavior = protocoltest.Hang
		tr.Collecting = collecting
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Scan(ctx)
		errCh <- err
	}()

	<-collecting
	cancel()

	err := <-errCh
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrSessionClosed) {
		t.Fatal("caller cancellation reported as ErrSessionClosed")
	}
	if !s.IsConnected() {
		t.Error("caller cancellation must not close the session")
	}
}

func TestConnectError(t *testing.T) {
	cause := errors.New("permission denied")
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.OpenErr = cause
	}}
	s := newTestSession(t, spy)

	err := s.Connect(context.Background(), "/dev/ttyUSB9", 1)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want *ConnectionError", err)
	}
	if connErr.Port != "/dev/ttyUSB9" || !errors.Is(err, cause) {
		t.Errorf("connErr = %+v", connErr)
	}
	if s.IsConnected() {
		t.Error("session connected after failed open")
	}
}

func TestDisconnectError(t *testing.T) {
	cause := errors.New("i/o error")
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.CloseErr = cause
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	err := s.Disconnect()
	var discErr *DisconnectionError
	if !errors.As(err, &discErr) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want *DisconnectionError", err)
	}
	if s.IsConnected() {
		t.Error("handle not released after failed close")
	}
	if err := s.Disconnect(); err != nil {
		t.Errorf("disconnect after release: %v", err)
	}
}

func TestScanWriteError(t *testing.T) {
	cause := errors.New("device unplugged")
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.WriteErr = cause
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := s.Scan(context.Background())
	var writeErr *WriteError
	if !errors.As(err, &writeErr) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
	if writeErr.Port != "COM3" {
		t.Errorf("port = %q", writeErr.Port)
	}
}

func TestScanReadError(t *testing.T) {
	cause := errors.New("read failed")
	spy := &protocoltest.Spy{Configure: func(tr *protocoltest.Transport) {
		tr.CollectErr = cause
	}}
	s := newTestSession(t, spy)
	if err := s.Connect(context.Background(), "COM3", 1); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := s.Scan(context.Background())
	var readErr *ReadError
	if !errors.As(err, &readErr) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want *ReadError", err)
	}
}
