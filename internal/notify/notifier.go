// Package notify provides the process-scoped, non-blocking notification
// channel used to surface storage and network failures to the user without
// interrupting the active session.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cardtrackapp/cardtrack-server/internal/id"
)

// Level classifies a notification for display purposes.
type Level string

// Notification levels.
const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification is a user-visible, non-blocking message.
type Notification struct {
	Level   Level     `json:"level"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Subscriber receives notifications on a buffered channel. Slow subscribers
// have notifications dropped rather than blocking the publisher.
type Subscriber struct {
	ID string
	C  chan Notification
}

// Notifier fans notifications out to subscribers. Publishing never blocks and
// never fails; that is the point of the side channel.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	logger      *slog.Logger
}

// New creates a Notifier.
func New(logger *slog.Logger) *Notifier {
	return &Notifier{
		subscribers: make(map[string]*Subscriber),
		logger:      logger,
	}
}

// Subscribe registers a subscriber. Call Unsubscribe with the returned
// subscriber's ID when done.
func (n *Notifier) Subscribe() (*Subscriber, error) {
	subID, err := id.Generate("ntf")
	if err != nil {
		return nil, err
	}

	sub := &Subscriber{
		ID: subID,
		C:  make(chan Notification, 16),
	}

	n.mu.Lock()
	n.subscribers[sub.ID] = sub
	n.mu.Unlock()

	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (n *Notifier) Unsubscribe(subID string) {
	n.mu.Lock()
	sub, ok := n.subscribers[subID]
	if ok {
		delete(n.subscribers, subID)
	}
	n.mu.Unlock()

	if ok {
		close(sub.C)
	}
}

// Publish delivers a notification to all subscribers without blocking.
func (n *Notifier) Publish(level Level, code, message string) {
	note := Notification{
		Level:   level,
		Code:    code,
		Message: message,
		At:      time.Now(),
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, sub := range n.subscribers {
		select {
		case sub.C <- note:
		default:
			if n.logger != nil {
				n.logger.Warn("dropped notification for slow subscriber",
					slog.String("subscriber_id", sub.ID),
					slog.String("code", code))
			}
		}
	}
}

// Info publishes an info-level notification.
func (n *Notifier) Info(message string) {
	n.Publish(LevelInfo, "", message)
}

// Error publishes an error-level notification with a machine-readable code.
func (n *Notifier) Error(code, message string) {
	n.Publish(LevelError, code, message)
}

// SubscriberCount returns the number of active subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
