package memory

import (
	"context"
	"sort"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

func (s *Store) GetCampaign(_ context.Context, campaignID string) (entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, ok := s.state.campaigns[campaignID]
	if !ok {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	campaign.ProductCount = s.countProductsLocked(campaignID)
	return campaign, nil
}

func (s *Store) AddProduct(_ context.Context, product entities.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.campaigns[product.CampaignID]; !ok {
		return false, domainerrors.ErrCampaignNotFound
	}
	if existing, ok := s.state.products[product.ProductID]; ok {
		if existing.CampaignID != product.CampaignID {
			return false, domainerrors.ErrRepositoryInvariantBroke
		}
		return false, nil
	}
	s.state.products[product.ProductID] = product
	return true, nil
}

func (s *Store) countProductsLocked(campaignID string) int {
	count := 0
	for _, product := range s.state.products {
		if product.CampaignID == campaignID {
			count++
		}
	}
	return count
}

func (s *Store) GetApplication(_ context.Context, applicationID string) (entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.state.applications[applicationID]
	if !ok {
		return entities.Application{}, domainerrors.ErrApplicationNotFound
	}
	return app, nil
}

func (s *Store) UpdateApplication(_ context.Context, app entities.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.applications[app.ApplicationID]; !ok {
		return domainerrors.ErrApplicationNotFound
	}
	s.state.applications[app.ApplicationID] = app
	return nil
}

func (s *Store) ListApplicationsByCampaign(
	_ context.Context,
	campaignID string,
	status entities.ApplicationStatus,
) ([]entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Application, 0)
	for _, app := range s.state.applications {
		if app.CampaignID != campaignID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		items = append(items, app)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ApplicationID < items[j].ApplicationID
	})
	return items, nil
}

func (s *Store) CreateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("CreateTask"); err != nil {
		return err
	}
	if _, exists := s.state.tasks[task.TaskID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	for _, existing := range s.state.tasks {
		if existing.ApplicationID == task.ApplicationID {
			return domainerrors.ErrTaskAlreadyExists
		}
	}
	s.state.tasks[task.TaskID] = task
	return nil
}

func (s *Store) GetTask(_ context.Context, taskID string) (entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.state.tasks[taskID]
	if !ok {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return task, nil
}

func (s *Store) GetTaskByApplication(_ context.Context, applicationID string) (entities.Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.state.tasks {
		if task.ApplicationID == applicationID {
			return task, true, nil
		}
	}
	return entities.Task{}, false, nil
}

func (s *Store) ListTasksByCampaignCreator(_ context.Context, campaignID string, creatorID string) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Task, 0)
	for _, task := range s.state.tasks {
		if task.CampaignID == campaignID && task.CreatorID == creatorID {
			items = append(items, task)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpdateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("UpdateTask"); err != nil {
		return err
	}
	if _, ok := s.state.tasks[task.TaskID]; !ok {
		return domainerrors.ErrTaskNotFound
	}
	s.state.tasks[task.TaskID] = task
	return nil
}

func (s *Store) CreateShipmentRequest(_ context.Context, request entities.ShipmentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.shipments[request.ShipmentRequestID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	for _, existing := range s.state.shipments {
		if existing.CampaignID == request.CampaignID && existing.CreatorID == request.CreatorID {
			return domainerrors.ErrShipmentAlreadyExists
		}
	}
	s.state.shipments[request.ShipmentRequestID] = request
	return nil
}

func (s *Store) GetShipmentRequest(_ context.Context, requestID string) (entities.ShipmentRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.state.shipments[requestID]
	if !ok {
		return entities.ShipmentRequest{}, domainerrors.ErrShipmentNotFound
	}
	return request, nil
}

func (s *Store) FindShipmentRequest(_ context.Context, campaignID string, creatorID string) (entities.ShipmentRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, request := range s.state.shipments {
		if request.CampaignID == campaignID && request.CreatorID == creatorID {
			return request, true, nil
		}
	}
	return entities.ShipmentRequest{}, false, nil
}

func (s *Store) UpdateShipmentRequest(_ context.Context, request entities.ShipmentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.shipments[request.ShipmentRequestID]; !ok {
		return domainerrors.ErrShipmentNotFound
	}
	s.state.shipments[request.ShipmentRequestID] = request
	return nil
}

func (s *Store) GetAddress(_ context.Context, addressID string) (entities.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	address, ok := s.state.addresses[addressID]
	if !ok {
		return entities.Address{}, domainerrors.ErrAddressNotFound
	}
	return address, nil
}

func (s *Store) CreateUpload(_ context.Context, upload entities.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.uploads[upload.UploadID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.state.uploads[upload.UploadID] = upload
	return nil
}

func (s *Store) ListUploads(_ context.Context, taskID string) ([]entities.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Upload, 0)
	for _, upload := range s.state.uploads {
		if upload.TaskID == taskID {
			items = append(items, upload)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].UploadID < items[j].UploadID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionUploads(
	_ context.Context,
	taskID string,
	from entities.UploadStatus,
	to entities.UploadStatus,
	updatedAt time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, upload := range s.state.uploads {
		if upload.TaskID != taskID || upload.Status != from {
			continue
		}
		upload.Status = to
		upload.UpdatedAt = updatedAt.UTC()
		s.state.uploads[id] = upload
		changed++
	}
	return changed, nil
}

func (s *Store) CreateRevisionRequest(_ context.Context, request entities.RevisionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.revisions[request.RevisionRequestID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	request.Tags = append([]string(nil), request.Tags...)
	s.state.revisions[request.RevisionRequestID] = request
	return nil
}

func (s *Store) ListRevisionRequests(_ context.Context, taskID string) ([]entities.RevisionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.RevisionRequest, 0)
	for _, request := range s.state.revisions {
		if request.TaskID == taskID {
			request.Tags = append([]string(nil), request.Tags...)
			items = append(items, request)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RevisionRequestID < items[j].RevisionRequestID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ResolveOpenRevisions(_ context.Context, taskID string, resolvedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved := 0
	for id, request := range s.state.revisions {
		if request.TaskID != taskID || request.Status != entities.RevisionStatusOpen {
			continue
		}
		at := resolvedAt.UTC()
		request.Status = entities.RevisionStatusResolved
		request.ResolvedAt = &at
		s.state.revisions[id] = request
		resolved++
	}
	return resolved, nil
}

func (s *Store) CreateRating(_ context.Context, rating entities.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.ratings {
		if existing.TaskID == rating.TaskID {
			return domainerrors.ErrRepositoryInvariantBroke
		}
	}
	s.state.ratings[rating.RatingID] = rating
	return nil
}

func (s *Store) CreateApproval(_ context.Context, approval entities.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.approvals {
		if existing.TaskID == approval.TaskID {
			return domainerrors.ErrRepositoryInvariantBroke
		}
	}
	s.state.approvals[approval.ApprovalID] = approval
	return nil
}

// Ratings lists recorded ratings for a task; the rating port is write-only.
func (s *Store) Ratings(taskID string) []entities.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Rating, 0)
	for _, rating := range s.state.ratings {
		if rating.TaskID == taskID {
			items = append(items, rating)
		}
	}
	return items
}

func (s *Store) CreatePayment(_ context.Context, payment entities.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("CreatePayment"); err != nil {
		return err
	}
	if _, exists := s.state.payments[payment.PaymentID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	for _, existing := range s.state.payments {
		if existing.TaskID == payment.TaskID {
			return domainerrors.ErrPaymentAlreadyExists
		}
	}
	s.state.payments[payment.PaymentID] = payment
	return nil
}

func (s *Store) GetPayment(_ context.Context, paymentID string) (entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.state.payments[paymentID]
	if !ok {
		return entities.Payment{}, domainerrors.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Store) GetPaymentByTask(_ context.Context, taskID string) (entities.Payment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, payment := range s.state.payments {
		if payment.TaskID == taskID {
			return payment, true, nil
		}
	}
	return entities.Payment{}, false, nil
}

func (s *Store) UpdatePayment(_ context.Context, payment entities.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.injected("UpdatePayment"); err != nil {
		return err
	}
	if _, ok := s.state.payments[payment.PaymentID]; !ok {
		return domainerrors.ErrPaymentNotFound
	}
	s.state.payments[payment.PaymentID] = payment
	return nil
}

func (s *Store) ListPayments(_ context.Context, filter ports.PaymentFilter) ([]entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Payment, 0)
	for _, payment := range s.state.payments {
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		if filter.CreatorID != "" && payment.CreatorID != filter.CreatorID {
			continue
		}
		items = append(items, payment)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PaymentID < items[j].PaymentID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) CreateBatchPayout(_ context.Context, batch entities.BatchPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.batches[batch.BatchID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	batch.PaymentIDs = append([]string(nil), batch.PaymentIDs...)
	s.state.batches[batch.BatchID] = batch
	return nil
}

func (s *Store) GetBatchPayout(_ context.Context, batchID string) (entities.BatchPayout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.state.batches[batchID]
	if !ok {
		return entities.BatchPayout{}, domainerrors.ErrBatchNotFound
	}
	batch.PaymentIDs = append([]string(nil), batch.PaymentIDs...)
	return batch, nil
}

func (s *Store) UpdateBatchPayout(_ context.Context, batch entities.BatchPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.state.batches[batch.BatchID]
	if !ok {
		return domainerrors.ErrBatchNotFound
	}
	// The payment id snapshot is immutable once the batch is inserted.
	batch.PaymentIDs = existing.PaymentIDs
	s.state.batches[batch.BatchID] = batch
	return nil
}
