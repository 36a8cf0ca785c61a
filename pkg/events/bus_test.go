package events

import (
	"context"
	"testing"
	"time"
)

// TestBasicPubSub tests basic publish/subscribe functionality
func TestBasicPubSub(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), TopicSelection)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	bus.Publish(TopicSelection, SelectionChanged{NodeID: "person:1"})

	select {
	case ev := <-sub.Channel():
		got, ok := ev.Payload.(SelectionChanged)
		if !ok || got.NodeID != "person:1" {
			t.Errorf("unexpected payload %#v", ev.Payload)
		}
		if ev.Topic != TopicSelection {
			t.Errorf("Topic = %q", ev.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestMultiTopicSubscription(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), TopicHover, TopicIsolation)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	bus.Publish(TopicHover, HoverChanged{NodeID: "a"})
	bus.Publish(TopicSelection, SelectionChanged{NodeID: "ignored"})
	bus.Publish(TopicIsolation, IsolationChanged{Active: true, Focus: "a"})

	var topics []Topic
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub.Channel():
			topics = append(topics, ev.Topic)
		case <-time.After(time.Second):
			t.Fatal("Timeout waiting for event")
		}
	}
	if topics[0] != TopicHover || topics[1] != TopicIsolation {
		t.Errorf("received %v", topics)
	}

	sub.Unsubscribe()
	if bus.SubscriberCount(TopicHover) != 0 || bus.SubscriberCount(TopicIsolation) != 0 {
		t.Error("Unsubscribe should remove the subscription from every topic")
	}
}

func TestHandlersRunSynchronously(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	var order []string
	bus.On(TopicLayoutProgress, func(Event) { order = append(order, "first") })
	remove := bus.On(TopicLayoutProgress, func(Event) { order = append(order, "second") })

	bus.Publish(TopicLayoutProgress, LayoutProgress{Done: 1, Total: 2})
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("handlers ran as %v", order)
	}

	remove()
	order = nil
	bus.Publish(TopicLayoutProgress, LayoutProgress{Done: 2, Total: 2})
	if len(order) != 1 {
		t.Errorf("removed handler still ran: %v", order)
	}
}

func TestContextCancellationUnsubscribes(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx, TopicSurface)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestShutdown(t *testing.T) {
	bus := NewBus()
	sub, _ := bus.Subscribe(context.Background(), TopicGraphLoaded)
	bus.Shutdown()
	bus.Shutdown()

	if _, ok := <-sub.Channel(); ok {
		t.Error("channel should be closed after Shutdown")
	}
	if _, err := bus.Subscribe(context.Background(), TopicGraphLoaded); err != ErrBusClosed {
		t.Errorf("Subscribe after Shutdown error = %v, want ErrBusClosed", err)
	}
	bus.Publish(TopicGraphLoaded, GraphLoaded{}) // must not panic
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub, _ := bus.Subscribe(context.Background(), TopicHover)
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer*3; i++ {
			bus.Publish(TopicHover, HoverChanged{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus
	bus.Publish(TopicHover, HoverChanged{})
}
