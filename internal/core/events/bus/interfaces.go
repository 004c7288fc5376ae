package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() and are called synchronously in the
// publisher's goroutine, in subscription order. Handler errors are joined and
// returned from Publish. Metrics are collected only while at least one
// observer is registered.
type EventBus interface {
	Publish(event Event) error
	// PublishWithFilters drops the event silently if any filter rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishAsync delivers in a new goroutine; the channel receives the joined
	// error (or nil) and is closed.
	PublishAsync(event Event) <-chan error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
}

// Event is an immutable message. Implementations treat it as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
	EventFilter  func(event Event) bool
)

type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel is idempotent.
	Cancel() error
}

// EventBusObserver is told about every publish. Observers should return
// quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, took time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
