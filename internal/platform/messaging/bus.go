package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	contractsv1 "creatorflow/contracts/events/v1"
)

const moduleName = "internal/platform/messaging"

// ErrSubscriberBusy is returned by Publish when a subscriber buffer is full.
// The outbox relay keeps the row pending and publishes it again later.
var ErrSubscriberBusy = errors.New("subscriber buffer is full")

// Bus is the in-process event bus used when API and worker share one
// process, and by tests. Publish fails instead of dropping when a subscriber
// lags, and failed handlers are retried a bounded number of times.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan contractsv1.Envelope
	buffer      int
	attempts    int
	backoff     time.Duration
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan contractsv1.Envelope),
		buffer:      128,
		attempts:    5,
		backoff:     100 * time.Millisecond,
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	b.mu.RLock()
	subs := append([]chan contractsv1.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			b.logger.Warn("subscriber is lagging, event left for retry",
				"event", "bus_publish_busy",
				"module", moduleName,
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
			return fmt.Errorf("publish %s to %s: %w", event.EventID, topic, ErrSubscriberBusy)
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", moduleName,
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

// Subscribe delivers topic events to handler on its own goroutine until ctx
// is cancelled. A failing handler is retried with doubling backoff; after
// the last attempt the event is logged and skipped.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	ch := make(chan contractsv1.Envelope, b.buffer)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := b.deliver(ctx, event, handler); err != nil && ctx.Err() == nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", moduleName,
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"attempts", b.attempts,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) deliver(
	ctx context.Context,
	event contractsv1.Envelope,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	attempts := b.attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := b.backoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, event); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func (b *Bus) removeSubscriber(topic string, target chan contractsv1.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan contractsv1.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
