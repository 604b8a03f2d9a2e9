package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	contractsv1 "creatorflow/contracts/events/v1"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamConfig names the stream backing every topic the service
// publishes or consumes.
type JetStreamConfig struct {
	URL        string
	Stream     string
	Subjects   []string
	ClientName string
	AckWait    time.Duration
	MaxDeliver int
}

// JetStream publishes envelopes to a NATS JetStream stream with the event id
// as message id, so broker-side dedup absorbs relay retries.
type JetStream struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream string
	cfg    JetStreamConfig
	logger *slog.Logger
}

func ConnectJetStream(ctx context.Context, cfg JetStreamConfig, logger *slog.Logger) (*JetStream, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Stream) == "" {
		return nil, errors.New("jetstream stream name is required")
	}
	if len(cfg.Subjects) == 0 {
		cfg.Subjects = []string{"fulfillment.>", "catalog.>"}
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = 30 * time.Second
	}
	if cfg.MaxDeliver <= 0 {
		cfg.MaxDeliver = 10
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open jetstream: %w", err)
	}
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.Stream,
		Subjects:   cfg.Subjects,
		Storage:    jetstream.FileStorage,
		Duplicates: 2 * time.Minute,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure jetstream stream %s: %w", cfg.Stream, err)
	}

	logger.Info("jetstream connected",
		"event", "jetstream_connected",
		"module", moduleName,
		"layer", "platform",
		"stream", cfg.Stream,
	)
	return &JetStream{
		conn:   conn,
		js:     js,
		stream: cfg.Stream,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (j *JetStream) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ack, err := j.js.Publish(ctx, topic, payload, jetstream.WithMsgID(event.EventID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	j.logger.Debug("event published",
		"event", "jetstream_publish",
		"module", moduleName,
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate,
	)
	return nil
}

// Subscribe binds a durable consumer named after the consumer group and
// topic. Handler errors nak the message for redelivery; undecodable messages
// are terminated.
func (j *JetStream) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	consumer, err := j.js.CreateOrUpdateConsumer(ctx, j.stream, jetstream.ConsumerConfig{
		Durable:       durableName(consumerGroup, topic),
		FilterSubject: topic,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       j.cfg.AckWait,
		MaxDeliver:    j.cfg.MaxDeliver,
	})
	if err != nil {
		return fmt.Errorf("ensure consumer for %s: %w", topic, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		var event contractsv1.Envelope
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			j.logger.Error("undecodable event terminated",
				"event", "jetstream_decode_failed",
				"module", moduleName,
				"layer", "platform",
				"topic", topic,
				"consumer_group", consumerGroup,
				"error", err.Error(),
			)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			j.logger.Error("consumer handler failed",
				"event", "jetstream_consume_failed",
				"module", moduleName,
				"layer", "platform",
				"topic", topic,
				"consumer_group", consumerGroup,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", topic, err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()
	return nil
}

func (j *JetStream) Close() error {
	if j == nil || j.conn == nil {
		return nil
	}
	return j.conn.Drain()
}

// durableName derives a JetStream-safe durable name; dots, spaces and
// wildcards are not allowed there.
func durableName(consumerGroup string, topic string) string {
	replacer := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_", "/", "_")
	return replacer.Replace(strings.TrimSpace(consumerGroup) + "__" + strings.TrimSpace(topic))
}
