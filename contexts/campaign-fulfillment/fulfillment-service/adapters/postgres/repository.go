package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository implements every fulfillment persistence port on top of gorm.
// It runs against PostgreSQL in production and SQLite in tests.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger

	seqMu   sync.Mutex
	lastSeq int64
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: application.ResolveLogger(logger),
	}
}

// Migrate creates or updates the fulfillment tables.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(allModels()...)
}

type txKey struct{}

// WithinTx runs fn inside a database transaction. Repository calls made with
// the ctx handed to fn use that transaction; nested calls join it.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		r.logger.Debug("fulfillment transaction rolled back",
			"event", "fulfillment_tx_rolled_back",
			"module", application.ModuleName,
			"layer", "adapter",
			"error", err.Error(),
		)
	}
	return err
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues time-ordered UUIDv7 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// nextSequence returns a strictly increasing outbox sequence for this process.
func (r *Repository) nextSequence() int64 {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()
	next := time.Now().UnixNano()
	if next <= r.lastSeq {
		next = r.lastSeq + 1
	}
	r.lastSeq = next
	return next
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
