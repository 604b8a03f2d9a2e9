package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/commands"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

const defaultConsumerGroup = "fulfillment-product-added-cg"

// ProductAddedConsumer runs the shipment backfill for catalog product events.
// The dedup reservation commits with the backfill, so a failed attempt leaves
// the event free for redelivery.
type ProductAddedConsumer struct {
	Subscriber    ports.EventSubscriber
	UnitOfWork    ports.UnitOfWork
	Dedup         ports.EventDedupStore
	AddProduct    commands.AddProductUseCase
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c ProductAddedConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, contractsv1.TopicProductAdded, group, c.Handle)
}

func (c ProductAddedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}

	var payload contractsv1.ProductAdded
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode product added payload: %w", err)
	}
	if strings.TrimSpace(payload.CampaignID) == "" || strings.TrimSpace(payload.ProductID) == "" {
		return fmt.Errorf("product added event missing campaign_id or product_id")
	}

	var (
		result           commands.AddProductResult
		alreadyProcessed bool
	)
	err := c.UnitOfWork.WithinTx(ctx, func(ctx context.Context) error {
		seen, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(c.dedupTTL()))
		if err != nil {
			return err
		}
		if seen {
			alreadyProcessed = true
			return nil
		}
		result, err = c.AddProduct.Execute(ctx, commands.AddProductCommand{
			Actor:      entities.SystemActor("catalog-consumer"),
			CampaignID: payload.CampaignID,
			ProductID:  payload.ProductID,
			Name:       payload.Name,
		})
		return err
	})
	if err != nil {
		logger.Error("product added backfill failed",
			"event", "fulfillment_product_added_backfill_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"campaign_id", payload.CampaignID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("product added event already processed",
			"event", "fulfillment_product_added_replayed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	logger.Info("product added event processed",
		"event", "fulfillment_product_added_processed",
		"module", application.ModuleName,
		"layer", "worker",
		"event_id", event.EventID,
		"campaign_id", payload.CampaignID,
		"shipments_created", len(result.ShipmentsCreated),
	)
	return nil
}

func (c ProductAddedConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
