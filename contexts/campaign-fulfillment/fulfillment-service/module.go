package fulfillmentservice

import (
	"log/slog"
	"time"

	httpadapter "creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/http"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/adapters/memory"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/commands"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/queries"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/application/workers"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

// Module is the composition surface of the fulfillment orchestrator.
// Runtime wiring consumes Handler and the workers; Store is set only by
// NewInMemoryModule for tests and local runs.
type Module struct {
	Handler         httpadapter.Handler
	Relay           workers.OutboxRelay
	ProductConsumer workers.ProductAddedConsumer
	Store           *memory.Store
}

type Dependencies struct {
	Campaigns    ports.CampaignRepository
	Applications ports.ApplicationRepository
	Tasks        ports.TaskRepository
	Shipments    ports.ShipmentRepository
	Addresses    ports.AddressDirectory
	Content      ports.ContentRepository
	Payments     ports.PaymentRepository
	Storage      ports.ContentStorage
	UnitOfWork   ports.UnitOfWork
	Outbox       ports.OutboxWriter
	OutboxReader ports.OutboxRepository
	Audit        ports.AuditLog
	Idempotency  ports.IdempotencyStore
	EventDedup   ports.EventDedupStore
	Publisher    ports.EventPublisher
	Subscriber   ports.EventSubscriber
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator

	UploadPolicy    services.UploadPolicy
	IdempotencyTTL  time.Duration
	EventDedupTTL   time.Duration
	OutboxBatchSize int
	ConsumerGroup   string
	Logger          *slog.Logger
}

// NewModule wires the fulfillment use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	runtime := commands.Runtime{
		UnitOfWork:     deps.UnitOfWork,
		Outbox:         deps.Outbox,
		Audit:          deps.Audit,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	shipmentStatus := queries.ShipmentStatusUseCase{
		Shipments: deps.Shipments,
		Campaigns: deps.Campaigns,
		Logger:    deps.Logger,
	}
	addProduct := commands.AddProductUseCase{
		Runtime:      runtime,
		Campaigns:    deps.Campaigns,
		Applications: deps.Applications,
		Tasks:        deps.Tasks,
		Shipments:    deps.Shipments,
	}

	handler := httpadapter.Handler{
		ApproveApplication: commands.ApproveApplicationUseCase{
			Runtime:      runtime,
			Applications: deps.Applications,
			Campaigns:    deps.Campaigns,
			Tasks:        deps.Tasks,
			Shipments:    deps.Shipments,
		},
		RejectApplication: commands.RejectApplicationUseCase{
			Runtime:      runtime,
			Applications: deps.Applications,
			Campaigns:    deps.Campaigns,
		},
		AddProduct: addProduct,
		SubmitAddress: commands.SubmitShipmentAddressUseCase{
			Runtime:   runtime,
			Shipments: deps.Shipments,
			Campaigns: deps.Campaigns,
			Addresses: deps.Addresses,
		},
		MarkShipped: commands.MarkShippedUseCase{
			Runtime:   runtime,
			Shipments: deps.Shipments,
			Campaigns: deps.Campaigns,
		},
		ConfirmDelivery: commands.ConfirmDeliveryUseCase{
			Runtime:   runtime,
			Shipments: deps.Shipments,
			Campaigns: deps.Campaigns,
		},
		FlagIssue: commands.FlagShipmentIssueUseCase{
			Runtime:   runtime,
			Shipments: deps.Shipments,
			Campaigns: deps.Campaigns,
		},
		StartWork: commands.StartWorkUseCase{
			Runtime:   runtime,
			Tasks:     deps.Tasks,
			Shipments: shipmentStatus,
		},
		OpenDispute: commands.OpenDisputeUseCase{
			Runtime:   runtime,
			Tasks:     deps.Tasks,
			Campaigns: deps.Campaigns,
		},
		UploadContent: commands.UploadContentUseCase{
			Runtime:   runtime,
			Tasks:     deps.Tasks,
			Content:   deps.Content,
			Shipments: shipmentStatus,
			Storage:   deps.Storage,
			Policy:    deps.UploadPolicy,
		},
		RequestRevision: commands.RequestRevisionUseCase{
			Runtime:   runtime,
			Tasks:     deps.Tasks,
			Campaigns: deps.Campaigns,
			Content:   deps.Content,
		},
		ApproveContent: commands.ApproveContentUseCase{
			Runtime:   runtime,
			Tasks:     deps.Tasks,
			Campaigns: deps.Campaigns,
			Content:   deps.Content,
			Payments:  deps.Payments,
		},
		MarkPaid: commands.MarkPaidUseCase{
			Runtime:  runtime,
			Payments: deps.Payments,
			Tasks:    deps.Tasks,
		},
		CreateBatchPayout: commands.CreateBatchPayoutUseCase{
			Runtime:  runtime,
			Payments: deps.Payments,
			Tasks:    deps.Tasks,
		},
		ShipmentStatus: shipmentStatus,
		Tasks: queries.TaskQueryUseCase{
			Tasks:     deps.Tasks,
			Campaigns: deps.Campaigns,
			Content:   deps.Content,
			Payments:  deps.Payments,
			Shipments: shipmentStatus,
			Logger:    deps.Logger,
		},
		Payments: queries.PaymentQueryUseCase{
			Payments: deps.Payments,
			Logger:   deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxReader,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		ProductConsumer: workers.ProductAddedConsumer{
			Subscriber:    deps.Subscriber,
			UnitOfWork:    deps.UnitOfWork,
			Dedup:         deps.EventDedup,
			AddProduct:    addProduct,
			Clock:         deps.Clock,
			ConsumerGroup: deps.ConsumerGroup,
			DedupTTL:      deps.EventDedupTTL,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the use cases against the in-memory adapter.
// Publisher and Subscriber stay nil until the caller attaches a bus.
func NewInMemoryModule(seed memory.Seed, logger *slog.Logger) Module {
	store := memory.NewStore(seed, logger)
	module := NewModule(Dependencies{
		Campaigns:       store,
		Applications:    store,
		Tasks:           store,
		Shipments:       store,
		Addresses:       store,
		Content:         store,
		Payments:        store,
		Storage:         store,
		UnitOfWork:      store,
		Outbox:          store,
		OutboxReader:    store,
		Audit:           store,
		Idempotency:     store,
		EventDedup:      store,
		Clock:           store,
		IDGenerator:     store,
		UploadPolicy:    services.DefaultUploadPolicy(),
		IdempotencyTTL:  7 * 24 * time.Hour,
		EventDedupTTL:   7 * 24 * time.Hour,
		OutboxBatchSize: 100,
		ConsumerGroup:   "fulfillment-service",
		Logger:          logger,
	})
	module.Store = store
	return module
}
