package commands

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
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

const (
	sourceService         = "fulfillment-service"
	defaultIdempotencyTTL = 7 * 24 * time.Hour
)

// Runtime carries the collaborators every command needs besides its
// repositories. A nil UnitOfWork runs steps directly against the repositories.
type Runtime struct {
	UnitOfWork     ports.UnitOfWork
	Outbox         ports.OutboxWriter
	Audit          ports.AuditLog
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (r Runtime) logger() *slog.Logger {
	return application.ResolveLogger(r.Logger)
}

func (r Runtime) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

func (r Runtime) newID(ctx context.Context) (string, error) {
	if r.IDGen == nil {
		return "", fmt.Errorf("id generator is not configured")
	}
	return r.IDGen.NewID(ctx)
}

func (r Runtime) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.UnitOfWork == nil {
		return fn(ctx)
	}
	return r.UnitOfWork.WithinTx(ctx, fn)
}

// emit writes a change event to the outbox. It must run inside the same
// transaction as the state change it describes.
func (r Runtime) emit(
	ctx context.Context,
	topic string,
	eventType string,
	partitionKeyPath string,
	change contractsv1.EntityChange,
) error {
	if r.Outbox == nil {
		return nil
	}
	eventID, err := r.newID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	partitionKey := change.EntityID
	switch partitionKeyPath {
	case "campaign_id":
		partitionKey = change.CampaignID
	case "creator_id":
		partitionKey = change.CreatorID
	}
	return r.Outbox.AppendOutbox(ctx, topic, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       r.now(),
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             data,
	})
}

// audit appends an audit entry after the primary write has committed.
// Failures are logged and never returned.
func (r Runtime) audit(
	ctx context.Context,
	actor entities.Actor,
	action string,
	entity string,
	entityID string,
	metadata map[string]any,
) {
	if r.Audit == nil {
		return
	}
	logger := r.logger()
	entryID, err := r.newID(ctx)
	if err == nil {
		err = r.Audit.AppendAudit(ctx, entities.AuditEntry{
			EntryID:   entryID,
			ActorID:   actor.ActorID,
			ActorRole: actor.Role,
			Action:    action,
			Entity:    entity,
			EntityID:  entityID,
			Metadata:  metadata,
			CreatedAt: r.now(),
		})
	}
	if err != nil {
		logger.Warn("audit append failed",
			"event", "fulfillment_audit_append_failed",
			"module", application.ModuleName,
			"layer", "application",
			"action", action,
			"entity", entity,
			"entity_id", entityID,
			"error", err.Error(),
		)
	}
}

// replay loads a stored response for key. It returns false when the key is
// unused or idempotency is not configured.
func (r Runtime) replay(ctx context.Context, key string, requestHash string, out any) (bool, error) {
	if r.Idempotency == nil || strings.TrimSpace(key) == "" {
		return false, nil
	}
	record, found, err := r.Idempotency.GetIdempotency(ctx, key, r.now())
	if err != nil || !found {
		return false, err
	}
	// A reused idempotency key must map to an identical request payload.
	if record.RequestHash != requestHash {
		r.logger().Warn("idempotency key conflict",
			"event", "fulfillment_idempotency_conflict",
			"module", application.ModuleName,
			"layer", "application",
			"idempotency_key", key,
		)
		return false, domainerrors.ErrIdempotencyKeyConflict
	}
	if err := json.Unmarshal(record.ResponsePayload, out); err != nil {
		return false, fmt.Errorf("decode idempotent response: %w", err)
	}
	return true, nil
}

func (r Runtime) remember(ctx context.Context, key string, requestHash string, result any) error {
	if r.Idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	ttl := r.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return r.Idempotency.PutIdempotency(ctx, ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       r.now().Add(ttl),
	})
}

func hashRequest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func requireActor(actor entities.Actor) error {
	if !actor.Valid() {
		return domainerrors.ErrUnauthorizedActor
	}
	return nil
}

func timePtr(value time.Time) *time.Time {
	return &value
}
