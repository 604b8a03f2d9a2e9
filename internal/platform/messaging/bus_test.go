package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	contractsv1 "creatorflow/contracts/events/v1"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan contractsv1.Envelope, 2)
	if err := bus.Subscribe(ctx, contractsv1.TopicTask, "cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, contractsv1.TopicPayment, contractsv1.Envelope{EventID: "other"}); err != nil {
		t.Fatalf("publish other topic: %v", err)
	}
	if err := bus.Publish(ctx, contractsv1.TopicTask, contractsv1.Envelope{EventID: "e-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "e-1" {
			t.Fatalf("unexpected event %q", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not delivered")
	}
	select {
	case event := <-received:
		t.Fatalf("unexpected extra delivery %q", event.EventID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusRetriesFailedHandlerThenMovesOn(t *testing.T) {
	bus := NewBus(nil)
	bus.attempts = 2
	bus.backoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan string, 8)
	_ = bus.Subscribe(ctx, "topic", "cg", func(_ context.Context, event contractsv1.Envelope) error {
		calls <- event.EventID
		return errors.New("boom")
	})
	_ = bus.Publish(ctx, "topic", contractsv1.Envelope{EventID: "e-1"})
	_ = bus.Publish(ctx, "topic", contractsv1.Envelope{EventID: "e-2"})

	for _, want := range []string{"e-1", "e-1", "e-2", "e-2"} {
		select {
		case got := <-calls:
			if got != want {
				t.Fatalf("expected %s, got %s", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("missing delivery of %s", want)
		}
	}
}

func TestBusRedeliversUntilHandlerSucceeds(t *testing.T) {
	bus := NewBus(nil)
	bus.backoff = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	done := make(chan int, 1)
	_ = bus.Subscribe(ctx, "topic", "cg", func(context.Context, contractsv1.Envelope) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		done <- attempts
		return nil
	})
	if err := bus.Publish(ctx, "topic", contractsv1.Envelope{EventID: "e-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-done:
		if got != 2 {
			t.Fatalf("expected success on the second attempt, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not redelivered after a handler failure")
	}
}

func TestBusPublishFailsWhenSubscriberLags(t *testing.T) {
	bus := NewBus(nil)
	bus.buffer = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	_ = bus.Subscribe(ctx, "topic", "cg", func(context.Context, contractsv1.Envelope) error {
		<-release
		return nil
	})
	defer close(release)

	var err error
	for i := 0; i < 5 && err == nil; i++ {
		err = bus.Publish(ctx, "topic", contractsv1.Envelope{EventID: "e"})
	}
	if !errors.Is(err, ErrSubscriberBusy) {
		t.Fatalf("expected ErrSubscriberBusy once the buffer is full, got %v", err)
	}
}

func TestBusRemovesSubscriberOnCancel(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	_ = bus.Subscribe(ctx, "topic", "cg", func(context.Context, contractsv1.Envelope) error { return nil })
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		bus.mu.RLock()
		remaining := len(bus.subscribers["topic"])
		bus.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber was not removed")
}

func TestDurableName(t *testing.T) {
	if got := durableName("fulfillment-service", "catalog.product_added"); got != "fulfillment-service__catalog_product_added" {
		t.Fatalf("unexpected durable name %q", got)
	}
}
