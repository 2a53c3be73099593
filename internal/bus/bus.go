package bus

import "sync"

// Topic names an event stream on the bus.
type Topic string

const (
	// TopicUpdated carries the full current notification list and unread
	// count after any change to either.
	TopicUpdated Topic = "updated"

	// TopicUnreadCountChanged carries the unread count alone, published
	// whenever it changes.
	TopicUnreadCountChanged Topic = "unread-count-changed"

	// TopicNewItems carries the notifications first observed by the most
	// recent poll cycle.
	TopicNewItems Topic = "new-items"

	// TopicPollingStarted fires when the synchronizer begins polling.
	TopicPollingStarted Topic = "polling-started"

	// TopicPollingStopped fires when the synchronizer is explicitly stopped.
	TopicPollingStopped Topic = "polling-stopped"

	// TopicPollingError fires when polling gives up after consecutive
	// fetch failures.
	TopicPollingError Topic = "polling-error"

	// TopicEngagementUpdated carries recomputed engagement state for one
	// piece of content after an optimistic apply, confirm, or rollback.
	TopicEngagementUpdated Topic = "engagement-updated"

	// TopicFollowUpdated carries recomputed follow state for one creator.
	TopicFollowUpdated Topic = "follow-updated"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a process-wide publish/subscribe channel decoupling producers of
// state changes from their consumers. Delivery is synchronous and in
// subscription order; a panicking handler does not prevent delivery to the
// remaining handlers and never propagates to the publisher.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscription
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers a handler for the topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every handler registered for topic at the
// time of the call. Handlers added or removed by a handler take effect for
// the next publish, not the current one.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	for _, s := range subs {
		invoke(s.handler, payload)
	}
}

// invoke runs a single handler, swallowing any panic so one bad consumer
// cannot break the rest of the delivery chain.
func invoke(h Handler, payload any) {
	defer func() {
		_ = recover()
	}()
	h(payload)
}
