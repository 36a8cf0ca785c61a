package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrBusClosed is returned by Subscribe after Shutdown.
var ErrBusClosed = errors.New("events: bus is shut down")

// subscriptionBuffer is the channel capacity of a subscription. Publishing
// never blocks: a subscriber that falls this far behind misses events.
const subscriptionBuffer = 100

// Handler receives events synchronously on the publishing goroutine.
type Handler func(Event)

// Bus provides publish/subscribe for engine events. Channel subscriptions
// suit hosts running their own goroutine; handlers suit code that lives on
// the frame goroutine with the engine.
type Bus struct {
	subscribers map[Topic]map[*Subscription]bool
	handlers    map[Topic]map[int]Handler
	nextHandler int
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	now         func() time.Time
}

// Subscription represents a subscription to one or more topics
type Subscription struct {
	topics    []Topic
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once // Ensures channel is only closed once
}

// NewBus creates a new Bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Topic]map[*Subscription]bool),
		handlers:    make(map[Topic]map[int]Handler),
		shutdown:    make(chan struct{}),
		now:         time.Now,
	}
}

func (b *Bus) closed() bool {
	b.shutdownMu.Lock()
	defer b.shutdownMu.Unlock()
	return b.isShutdown
}

// Subscribe creates a channel subscription to the given topics. It ends when
// ctx is cancelled, Unsubscribe is called or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topics ...Topic) (*Subscription, error) {
	if b.closed() {
		return nil, ErrBusClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topics:  topics,
		channel: make(chan Event, subscriptionBuffer),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	b.mu.Lock()
	for _, topic := range topics {
		if b.subscribers[topic] == nil {
			b.subscribers[topic] = make(map[*Subscription]bool)
		}
		b.subscribers[topic][sub] = true
	}
	b.mu.Unlock()

	// Monitor context cancellation
	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// On registers a synchronous handler for topic and returns a function that
// removes it.
func (b *Bus) On(topic Topic, h Handler) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHandler++
	id := b.nextHandler
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	b.handlers[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// Publish delivers payload to every handler and subscriber of topic.
// Handlers run first, in registration order; channel sends never block.
func (b *Bus) Publish(topic Topic, payload any) {
	if b == nil || b.closed() {
		return
	}
	ev := Event{Topic: topic, At: b.now(), Payload: payload}

	// Take a snapshot under lock; handlers may subscribe or unsubscribe
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers[topic]))
	for id := range b.handlers[topic] {
		ids = append(ids, id)
	}
	handlers := make([]Handler, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		handlers = append(handlers, b.handlers[topic][id])
	}
	subs := make([]*Subscription, 0, len(b.subscribers[topic]))
	for sub := range b.subscribers[topic] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
			// Channel full, skip (non-blocking)
		}
	}
}

// SubscriberCount returns the number of channel subscribers for a topic
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Shutdown closes all subscriptions and drops all handlers
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic, subs := range b.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.handlers = make(map[Topic]map[int]Handler)
	b.mu.Unlock()
}

// Channel returns the subscription's event channel
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	for _, topic := range s.topics {
		if s.bus.subscribers[topic] != nil {
			delete(s.bus.subscribers[topic], s)
			if len(s.bus.subscribers[topic]) == 0 {
				delete(s.bus.subscribers, topic)
			}
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
