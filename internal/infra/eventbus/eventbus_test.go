package eventbus

import (
	"testing"
	"time"
)

func TestEventBus_PublishAndSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("tool.dispatched")

	bus.Publish("tool.dispatched", "hello")

	select {
	case evt := <-ch:
		if evt.Topic != "tool.dispatched" {
			t.Errorf("expected topic 'tool.dispatched', got %q", evt.Topic)
		}
		if evt.Payload != "hello" {
			t.Errorf("expected payload 'hello', got %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: expected event to be received within 100ms")
	}
}

func TestEventBus_MultipleSubscribers_AllReceive(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe("multi.topic")
	ch2 := bus.Subscribe("multi.topic")

	bus.Publish("multi.topic", 42)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Payload != 42 {
				t.Errorf("subscriber %d: expected payload 42, got %v", i, evt.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEventBus_DifferentTopics_NoInterference(t *testing.T) {
	bus := New()
	chA := bus.Subscribe("topic.a")
	chB := bus.Subscribe("topic.b")

	bus.Publish("topic.a", "for-a")

	select {
	case evt := <-chA:
		if evt.Payload != "for-a" {
			t.Errorf("topic.a: unexpected payload %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("topic.a: timeout waiting for event")
	}

	// topic.b should have received nothing
	select {
	case evt := <-chB:
		t.Errorf("topic.b: received unexpected event: %v", evt)
	default:
	}
}

func TestEventBus_NonBlockingPublish_FullBuffer(t *testing.T) {
	bus := New()
	// Subscribe but never consume, so the buffer fills up.
	_ = bus.Subscribe("overflow.topic")

	done := make(chan struct{})
	go func() {
		for i := 0; i <= defaultBufferSize+10; i++ {
			bus.Publish("overflow.topic", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Error("Publish blocked when buffer was full (should be non-blocking)")
	}
}

func TestEventBus_FullBuffer_CountsDrops(t *testing.T) {
	bus := New()
	_ = bus.Subscribe("overflow.topic")

	for i := 0; i < defaultBufferSize+3; i++ {
		bus.Publish("overflow.topic", i)
	}

	if got := bus.Dropped(); got != 3 {
		t.Errorf("expected 3 dropped deliveries, got %d", got)
	}
}

func TestEventBus_Close_ClosesSubscribers(t *testing.T) {
	bus := New()
	ch := bus.Subscribe("tool.unknown")

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel was not closed")
	}

	// Publishing and subscribing after Close must be safe.
	bus.Publish("tool.unknown", "late")
	if _, ok := <-bus.Subscribe("tool.unknown"); ok {
		t.Error("subscribe after close should return a closed channel")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}
