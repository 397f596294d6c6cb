package bus

import "time"

// EventBus is an in-process publish/subscribe bus.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type() string.
// - Topics: handlers subscribe within a topic; deleting a topic drops all of
//   its subscriptions at once. The default topic is "".
// - Synchronous delivery: Publish calls handlers in the caller goroutine, in
//   subscription order.
// - Error aggregation: handler errors are joined and returned from Publish.
// - One-shot subscriptions are delivered at most once and then cancelled.
// - Metrics are produced only when observers are registered.
//
// Handlers may cancel subscriptions (their own included) while an event is
// being delivered; the set of handlers for a delivery is fixed when it starts.
type EventBus interface {
	// Publish delivers event to the default topic.
	Publish(event Event) error
	// PublishToTopic delivers event to the subscribers of its type in topic.
	PublishToTopic(topic string, event Event) error

	// Subscribe registers a handler for eventType in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// SubscribeOnce registers a handler that is cancelled after its first delivery.
	SubscribeOnce(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. It is safe to call with nil.
	Unsubscribe(sub Subscription) error

	// CreateTopic declares a topic. Repeat declarations are idempotent.
	CreateTopic(name string) error
	// DeleteTopic cancels every subscription in the topic and forgets it.
	DeleteTopic(name string) error
	// Topics returns a snapshot of known topics.
	Topics() []TopicInfo

	// AddObserver registers an observer to receive delivery callbacks.
	AddObserver(obs Observer)
	// RemoveObserver unregisters a previously added observer.
	RemoveObserver(obs Observer)
	// Metrics returns the counters accumulated while observers were registered.
	Metrics() Metrics
}

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event. A returned error is joined
	// into the result of the publishing call.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration)
}

// Metrics is a minimal set of counters, updated only while at least one
// observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

// TopicInfo is a snapshot of a topic.
type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
