package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mezonai/sawlet/logx"
)

type SubscriberID string

type Subscriber struct {
	ID      SubscriberID
	Channel chan AccountEvent
}

// EventBus fans account events out to in-process subscribers.
// Slow subscribers miss events rather than stall the publisher.
type EventBus struct {
	subscribers map[SubscriberID]*Subscriber
	mu          sync.RWMutex
	buffer      int
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[SubscriberID]*Subscriber),
		buffer:      50,
	}
}

func (eb *EventBus) Subscribe() (SubscriberID, <-chan AccountEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := SubscriberID(uuid.Must(uuid.NewV7()).String())
	ch := make(chan AccountEvent, eb.buffer)
	eb.subscribers[id] = &Subscriber{ID: id, Channel: ch}

	logx.Debug("EVENTBUS", fmt.Sprintf("Subscribed to account events | subscriber_id=%s | total_subscribers=%d", id, len(eb.subscribers)))
	return id, ch
}

// Unsubscribe removes a subscription by ID and closes its channel
func (eb *EventBus) Unsubscribe(id SubscriberID) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subscriber, exists := eb.subscribers[id]
	if !exists {
		logx.Warn("EVENTBUS", fmt.Sprintf("Attempted to unsubscribe non-existent subscriber | subscriber_id=%s", id))
		return false
	}

	delete(eb.subscribers, id)
	close(subscriber.Channel)
	return true
}

// Publish delivers event to every subscriber with room in its buffer
func (eb *EventBus) Publish(event AccountEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, subscriber := range eb.subscribers {
		select {
		case subscriber.Channel <- event:
		default:
			logx.Warn("EVENTBUS", fmt.Sprintf("Subscriber channel full | subscriber_id=%s | address=%s", id, event.Address()))
		}
	}
}

// Close unsubscribes everyone
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, subscriber := range eb.subscribers {
		close(subscriber.Channel)
		delete(eb.subscribers, id)
	}
}

// GetTotalSubscriptions returns the total number of active subscriptions
func (eb *EventBus) GetTotalSubscriptions() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return len(eb.subscribers)
}
