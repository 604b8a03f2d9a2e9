package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

// Store is an in-memory adapter implementing every fulfillment port for local
// runtime and tests. It is not intended as production persistence.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state state

	failures map[string]error
	sequence uint64
	clock    func() time.Time
	logger   *slog.Logger
}

type state struct {
	campaigns    map[string]entities.Campaign
	products     map[string]entities.Product
	applications map[string]entities.Application
	tasks        map[string]entities.Task
	shipments    map[string]entities.ShipmentRequest
	addresses    map[string]entities.Address
	uploads      map[string]entities.Upload
	revisions    map[string]entities.RevisionRequest
	ratings      map[string]entities.Rating
	approvals    map[string]entities.Approval
	payments     map[string]entities.Payment
	batches      map[string]entities.BatchPayout
	audit        []entities.AuditEntry
	objects      map[string][]byte
	idempotency  map[string]ports.IdempotencyRecord
	outbox       map[string]ports.OutboxMessage
	outboxOrder  []string
	outboxSent   map[string]time.Time
	eventDedup   map[string]string
}

// Seed is the initial catalog state owned by collaborators outside the
// orchestrator. Tasks, Shipments and Uploads let tests start mid-workflow.
type Seed struct {
	Campaigns    []entities.Campaign
	Products     []entities.Product
	Applications []entities.Application
	Addresses    []entities.Address
	Tasks        []entities.Task
	Shipments    []entities.ShipmentRequest
	Uploads      []entities.Upload
}

func NewStore(seed Seed, logger *slog.Logger) *Store {
	s := &Store{
		state:    newState(),
		failures: make(map[string]error),
		logger:   application.ResolveLogger(logger),
	}
	for _, campaign := range seed.Campaigns {
		s.state.campaigns[campaign.CampaignID] = campaign
	}
	for _, product := range seed.Products {
		s.state.products[product.ProductID] = product
	}
	for _, app := range seed.Applications {
		s.state.applications[app.ApplicationID] = app
	}
	for _, address := range seed.Addresses {
		s.state.addresses[address.AddressID] = address
	}
	for _, task := range seed.Tasks {
		s.state.tasks[task.TaskID] = task
	}
	for _, request := range seed.Shipments {
		s.state.shipments[request.ShipmentRequestID] = request
	}
	for _, upload := range seed.Uploads {
		s.state.uploads[upload.UploadID] = upload
	}
	return s
}

func newState() state {
	return state{
		campaigns:    make(map[string]entities.Campaign),
		products:     make(map[string]entities.Product),
		applications: make(map[string]entities.Application),
		tasks:        make(map[string]entities.Task),
		shipments:    make(map[string]entities.ShipmentRequest),
		addresses:    make(map[string]entities.Address),
		uploads:      make(map[string]entities.Upload),
		revisions:    make(map[string]entities.RevisionRequest),
		ratings:      make(map[string]entities.Rating),
		approvals:    make(map[string]entities.Approval),
		payments:     make(map[string]entities.Payment),
		batches:      make(map[string]entities.BatchPayout),
		objects:      make(map[string][]byte),
		idempotency:  make(map[string]ports.IdempotencyRecord),
		outbox:       make(map[string]ports.OutboxMessage),
		outboxSent:   make(map[string]time.Time),
		eventDedup:   make(map[string]string),
	}
}

func (st state) clone() state {
	out := newState()
	copyMap(out.campaigns, st.campaigns)
	copyMap(out.products, st.products)
	copyMap(out.applications, st.applications)
	copyMap(out.tasks, st.tasks)
	copyMap(out.shipments, st.shipments)
	copyMap(out.addresses, st.addresses)
	copyMap(out.uploads, st.uploads)
	copyMap(out.revisions, st.revisions)
	copyMap(out.ratings, st.ratings)
	copyMap(out.approvals, st.approvals)
	copyMap(out.payments, st.payments)
	copyMap(out.batches, st.batches)
	copyMap(out.objects, st.objects)
	copyMap(out.idempotency, st.idempotency)
	copyMap(out.outbox, st.outbox)
	copyMap(out.outboxSent, st.outboxSent)
	copyMap(out.eventDedup, st.eventDedup)
	out.audit = append([]entities.AuditEntry(nil), st.audit...)
	out.outboxOrder = append([]string(nil), st.outboxOrder...)
	return out
}

func copyMap[K comparable, V any](dst map[K]V, src map[K]V) {
	for key, value := range src {
		dst[key] = value
	}
}

type txKey struct{}

// WithinTx serializes transactions and restores a snapshot when fn fails.
// Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		s.logger.Debug("memory transaction rolled back",
			"event", "memory_tx_rolled_back",
			"module", application.ModuleName,
			"layer", "adapter",
			"error", err.Error(),
		)
		return err
	}
	return nil
}

// FailOn makes the next call of the named operation return err. Tests use it
// to exercise rollback and best-effort paths.
func (s *Store) FailOn(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = err
}

// injected must be called with s.mu held.
func (s *Store) injected(operation string) error {
	err, ok := s.failures[operation]
	if !ok {
		return nil
	}
	delete(s.failures, operation)
	return err
}

// SetClock pins Now for deterministic tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("cf-%d", value), nil
}

func (s *Store) AppendAudit(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("AppendAudit"); err != nil {
		return err
	}
	metadata := make(map[string]any, len(entry.Metadata))
	copyMap(metadata, entry.Metadata)
	entry.Metadata = metadata
	s.state.audit = append(s.state.audit, entry)
	return nil
}

func (s *Store) AuditEntries() []entities.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.AuditEntry(nil), s.state.audit...)
}

// PutObject keeps upload bodies in memory and returns a memory:// ref.
func (s *Store) PutObject(_ context.Context, key string, _ string, body io.Reader, size int64) (string, error) {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("PutObject"); err != nil {
		return "", err
	}
	s.state.objects[key] = buf.Bytes()
	return "memory://" + key, nil
}

func (s *Store) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeleteObject"); err != nil {
		return err
	}
	delete(s.state.objects, key)
	return nil
}

// ObjectCount reports how many upload bodies are stored.
func (s *Store) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.objects)
}

func (s *Store) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.state.objects[key]
	return body, ok
}

func (s *Store) GetIdempotency(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.state.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	// Expired keys are lazily evicted on read.
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.state.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutIdempotency(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyKeyConflict
		}
		return nil
	}
	record.ResponsePayload = append([]byte(nil), record.ResponsePayload...)
	s.state.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, topic string, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("AppendOutbox"); err != nil {
		return err
	}
	if _, exists := s.state.outbox[event.EventID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.state.outbox[event.EventID] = ports.OutboxMessage{
		OutboxID:     event.EventID,
		Topic:        topic,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	s.state.outboxOrder = append(s.state.outboxOrder, event.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.state.outboxOrder {
		if _, sent := s.state.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.state.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.state.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

// OutboxEvents returns every outbox row in write order, sent or not.
func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.state.outboxOrder))
	for _, id := range s.state.outboxOrder {
		if evt, ok := s.state.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.eventDedup[eventID]; ok {
		if existing != payloadHash {
			return false, domainerrors.ErrIdempotencyKeyConflict
		}
		return true, nil
	}
	s.state.eventDedup[eventID] = payloadHash
	return false, nil
}
