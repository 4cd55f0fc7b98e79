package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"rfid-service/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubReader struct {
	mu sync.Mutex

	ports      []model.SerialEndpoint
	portsErr   error
	connectErr error
	discErr    error
	reading    *model.TagReading
	scanErr    error
	status     model.ReaderStatus

	connectedPort     string
	connectedPosition int
}

func (s *stubReader) ListPorts(ctx context.Context) ([]model.SerialEndpoint, error) {
	return s.ports, s.portsErr
}

func (s *stubReader) Connect(ctx context.Context, port string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connectedPort, s.connectedPosition = port, position
	s.status = model.ReaderStatus{IsConnected: true, Port: port, Position: position, Status: model.StateConnected}
	return nil
}

func (s *stubReader) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discErr != nil {
		return s.discErr
	}
	s.status = model.ReaderStatus{Status: model.StateDisconnected}
	return nil
}

func (s *stubReader) Scan(ctx context.Context) (*model.TagReading, error) {
	return s.reading, s.scanErr
}

func (s *stubReader) Status() model.ReaderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Status == "" {
		return model.ReaderStatus{Status: model.StateDisconnected, Position: 1}
	}
	return s.status
}

func (s *stubReader) DefaultPosition() int { return 1 }

func successReading() *model.TagReading {
	return &model.TagReading{UID: "112233", Status: model.TagStatusSuccess, Position: 2, Timestamp: time.Now()}
}
