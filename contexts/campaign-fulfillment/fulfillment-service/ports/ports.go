package ports

import (
	"context"
	"io"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	contractsv1 "creatorflow/contracts/events/v1"
)

// CampaignRepository reads campaign catalog state. Campaign.ProductCount is
// resolved on every load.
type CampaignRepository interface {
	GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error)
	// AddProduct registers a product and reports false when the id already existed.
	AddProduct(ctx context.Context, product entities.Product) (bool, error)
}

type ApplicationRepository interface {
	GetApplication(ctx context.Context, applicationID string) (entities.Application, error)
	UpdateApplication(ctx context.Context, application entities.Application) error
	ListApplicationsByCampaign(
		ctx context.Context,
		campaignID string,
		status entities.ApplicationStatus,
	) ([]entities.Application, error)
}

// TaskRepository owns task persistence. At most one task exists per
// application id; CreateTask fails with ErrTaskAlreadyExists otherwise.
type TaskRepository interface {
	CreateTask(ctx context.Context, task entities.Task) error
	GetTask(ctx context.Context, taskID string) (entities.Task, error)
	GetTaskByApplication(ctx context.Context, applicationID string) (entities.Task, bool, error)
	ListTasksByCampaignCreator(ctx context.Context, campaignID string, creatorID string) ([]entities.Task, error)
	UpdateTask(ctx context.Context, task entities.Task) error
}

// ShipmentRepository keeps at most one request per (campaign, creator) pair.
type ShipmentRepository interface {
	CreateShipmentRequest(ctx context.Context, request entities.ShipmentRequest) error
	GetShipmentRequest(ctx context.Context, requestID string) (entities.ShipmentRequest, error)
	FindShipmentRequest(ctx context.Context, campaignID string, creatorID string) (entities.ShipmentRequest, bool, error)
	UpdateShipmentRequest(ctx context.Context, request entities.ShipmentRequest) error
}

// AddressDirectory resolves creator addresses owned by the profile service.
type AddressDirectory interface {
	GetAddress(ctx context.Context, addressID string) (entities.Address, error)
}

// ShipmentStatusProvider is the only view Task Lifecycle has of shipments.
type ShipmentStatusProvider interface {
	ShipmentStatus(ctx context.Context, campaignID string, creatorID string) (entities.ShipmentStatus, error)
}

type ContentRepository interface {
	CreateUpload(ctx context.Context, upload entities.Upload) error
	ListUploads(ctx context.Context, taskID string) ([]entities.Upload, error)
	// TransitionUploads moves every upload of the task in status from to status to.
	TransitionUploads(
		ctx context.Context,
		taskID string,
		from entities.UploadStatus,
		to entities.UploadStatus,
		updatedAt time.Time,
	) (int, error)
	CreateRevisionRequest(ctx context.Context, request entities.RevisionRequest) error
	ListRevisionRequests(ctx context.Context, taskID string) ([]entities.RevisionRequest, error)
	ResolveOpenRevisions(ctx context.Context, taskID string, resolvedAt time.Time) (int, error)
	CreateRating(ctx context.Context, rating entities.Rating) error
	CreateApproval(ctx context.Context, approval entities.Approval) error
}

type PaymentFilter struct {
	Status    entities.PaymentStatus
	CreatorID string
	Limit     int
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment entities.Payment) error
	GetPayment(ctx context.Context, paymentID string) (entities.Payment, error)
	GetPaymentByTask(ctx context.Context, taskID string) (entities.Payment, bool, error)
	UpdatePayment(ctx context.Context, payment entities.Payment) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]entities.Payment, error)
	CreateBatchPayout(ctx context.Context, batch entities.BatchPayout) error
	GetBatchPayout(ctx context.Context, batchID string) (entities.BatchPayout, error)
	UpdateBatchPayout(ctx context.Context, batch entities.BatchPayout) error
}

// AuditLog is write-only from the orchestrator side.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry entities.AuditEntry) error
}

// UnitOfWork runs fn atomically. Repositories called with the ctx passed to
// fn join the same transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ContentStorage persists upload bodies and returns an opaque storage ref.
// DeleteObject removes a body whose upload record was never committed.
type ContentStorage interface {
	PutObject(ctx context.Context, key string, contentType string, body io.Reader, size int64) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// IdempotencyRecord captures dedupe metadata for mutating requests. The
// response payload is replayed verbatim when the same key and request repeat.
type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutIdempotency(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter appends an event next to the state change that produced it.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, topic string, event EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	Topic        string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventDedupStore provides idempotent processing guarantees for consumed events.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
