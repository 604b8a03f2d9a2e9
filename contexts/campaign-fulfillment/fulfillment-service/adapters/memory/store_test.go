package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

func TestWithinTxRestoresSnapshotOnError(t *testing.T) {
	store := NewStore(Seed{}, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.CreateTask(ctx, entities.Task{TaskID: "t-1", ApplicationID: "a-1", Status: entities.TaskStatusSelected}); err != nil {
			return err
		}
		return store.WithinTx(ctx, func(ctx context.Context) error {
			if err := store.CreatePayment(ctx, entities.Payment{PaymentID: "p-1", TaskID: "t-1", Amount: 10, Status: entities.PaymentStatusPending}); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.GetTask(ctx, "t-1"); !errors.Is(err, domainerrors.ErrTaskNotFound) {
		t.Fatalf("task must be rolled back, got %v", err)
	}
	if _, err := store.GetPayment(ctx, "p-1"); !errors.Is(err, domainerrors.ErrPaymentNotFound) {
		t.Fatalf("nested write must be rolled back, got %v", err)
	}
}

func TestUniquenessConstraints(t *testing.T) {
	store := NewStore(Seed{}, nil)
	ctx := context.Background()

	if err := store.CreateTask(ctx, entities.Task{TaskID: "t-1", ApplicationID: "a-1"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := store.CreateTask(ctx, entities.Task{TaskID: "t-2", ApplicationID: "a-1"}); !errors.Is(err, domainerrors.ErrTaskAlreadyExists) {
		t.Fatalf("expected duplicate task per application, got %v", err)
	}

	request := entities.ShipmentRequest{ShipmentRequestID: "s-1", CampaignID: "c-1", CreatorID: "u-1", Status: entities.ShipmentStatusWaitingAddress}
	if err := store.CreateShipmentRequest(ctx, request); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	request.ShipmentRequestID = "s-2"
	if err := store.CreateShipmentRequest(ctx, request); !errors.Is(err, domainerrors.ErrShipmentAlreadyExists) {
		t.Fatalf("expected duplicate shipment per pair, got %v", err)
	}

	if err := store.CreatePayment(ctx, entities.Payment{PaymentID: "p-1", TaskID: "t-1"}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if err := store.CreatePayment(ctx, entities.Payment{PaymentID: "p-2", TaskID: "t-1"}); !errors.Is(err, domainerrors.ErrPaymentAlreadyExists) {
		t.Fatalf("expected duplicate payment per task, got %v", err)
	}
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	store := NewStore(Seed{}, nil)
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	record := ports.IdempotencyRecord{Key: "k-1", RequestHash: "h-1", ResponsePayload: []byte(`{}`), ExpiresAt: now.Add(time.Hour)}
	if err := store.PutIdempotency(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.PutIdempotency(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "h-2"}); !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, found, _ := store.GetIdempotency(ctx, "k-1", now); !found {
		t.Fatalf("expected live record")
	}
	if _, found, _ := store.GetIdempotency(ctx, "k-1", now.Add(2*time.Hour)); found {
		t.Fatalf("expected expired record to be evicted")
	}
}

func TestOutboxPendingAndMarkSent(t *testing.T) {
	store := NewStore(Seed{}, nil)
	ctx := context.Background()
	for _, id := range []string{"e-1", "e-2", "e-3"} {
		if err := store.AppendOutbox(ctx, "topic", ports.EventEnvelope{EventID: id, EventType: "x", OccurredAt: time.Now()}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	if err := store.AppendOutbox(ctx, "topic", ports.EventEnvelope{EventID: "e-1"}); !errors.Is(err, domainerrors.ErrRepositoryInvariantBroke) {
		t.Fatalf("expected duplicate outbox id to fail, got %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 2)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "e-1" || pending[1].OutboxID != "e-2" {
		t.Fatalf("unexpected pending page %+v", pending)
	}
	if err := store.MarkOutboxSent(ctx, "e-1", time.Now()); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	pending, _ = store.ListPendingOutbox(ctx, 10)
	if len(pending) != 2 || pending[0].OutboxID != "e-2" {
		t.Fatalf("expected e-1 to be skipped, got %+v", pending)
	}
}

func TestCampaignProductCount(t *testing.T) {
	store := NewStore(Seed{Campaigns: []entities.Campaign{{CampaignID: "c-1"}}}, nil)
	ctx := context.Background()

	created, err := store.AddProduct(ctx, entities.Product{ProductID: "p-1", CampaignID: "c-1"})
	if err != nil || !created {
		t.Fatalf("expected product to be created, got %v %v", created, err)
	}
	created, err = store.AddProduct(ctx, entities.Product{ProductID: "p-1", CampaignID: "c-1"})
	if err != nil || created {
		t.Fatalf("expected duplicate product to be reported, got %v %v", created, err)
	}
	campaign, err := store.GetCampaign(ctx, "c-1")
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if campaign.ProductCount != 1 || !campaign.HasProducts() {
		t.Fatalf("expected one product, got %d", campaign.ProductCount)
	}
}
