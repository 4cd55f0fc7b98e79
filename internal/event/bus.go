// internal/event/bus.go
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"rfid-service/internal/model"
)

const (
	queueSize      = 1000
	subscriberSize = 100
)

// Bus fans reader events out to subscribers. Slow subscribers miss events
// rather than stalling the publisher.
type Bus struct {
	subscribers map[int]*subscription
	nextID      int
	events      chan *model.ReaderEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

type subscription struct {
	types map[model.EventType]bool
	ch    chan *model.ReaderEvent
}

func (s *subscription) wants(t model.EventType) bool {
	return len(s.types) == 0 || s.types[t]
}

// NewBus creates a new event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]*subscription),
		events:      make(chan *model.ReaderEvent, queueSize),
		logger:      logger.With(zap.String("component", "event-bus")),
	}
}

// Start distributes queued events until ctx is done
func (b *Bus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.events:
			b.distribute(event)
		}
	}
}

// Publish queues an event without blocking
func (b *Bus) Publish(event *model.ReaderEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are given. The returned func unsubscribes and
// closes the channel.
func (b *Bus) Subscribe(types ...model.EventType) (<-chan *model.ReaderEvent, func()) {
	sub := &subscription{
		types: make(map[model.EventType]bool, len(types)),
		ch:    make(chan *model.ReaderEvent, subscriberSize),
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mutex.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = sub
	b.mutex.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mutex.Lock()
			delete(b.subscribers, id)
			b.mutex.Unlock()
			close(sub.ch)
		})
	}
}

// SubscriberCount returns the number of active subscriptions
func (b *Bus) SubscriberCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subscribers)
}

func (b *Bus) distribute(event *model.ReaderEvent) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for _, sub := range b.subscribers {
		if !sub.wants(event.EventType) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.logger.Debug("Subscriber is slow, skipping event",
				zap.String("event_type", string(event.EventType)),
			)
		}
	}
}
