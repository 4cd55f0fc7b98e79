// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventReaderConnected    EventType = "READER_CONNECTED"
	EventReaderDisconnected EventType = "READER_DISCONNECTED"
	EventReaderError        EventType = "READER_ERROR"
	EventTagRead            EventType = "TAG_READ"
)

// ReaderEvent represents an event emitted by the reader service
type ReaderEvent struct {
	ID        uuid.UUID   `json:"id"`
	EventType EventType   `json:"event_type"`
	Port      string      `json:"port,omitempty"`
	Position  int         `json:"position"`
	Reading   *TagReading `json:"reading,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewReaderEvent creates an event stamped with a fresh ID and the current time
func NewReaderEvent(eventType EventType, port string, position int) *ReaderEvent {
	return &ReaderEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Port:      port,
		Position:  position,
		Timestamp: time.Now(),
	}
}
