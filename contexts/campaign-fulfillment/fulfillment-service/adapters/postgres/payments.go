package postgresadapter

import (
	"context"
	"encoding/json"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

func (r *Repository) CreatePayment(ctx context.Context, payment entities.Payment) error {
	db := r.conn(ctx)
	var existing int64
	if err := db.Model(&paymentModel{}).Where("task_id = ?", payment.TaskID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return domainerrors.ErrPaymentAlreadyExists
	}
	row := paymentModelFromEntity(payment)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrPaymentAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetPayment(ctx context.Context, paymentID string) (entities.Payment, error) {
	var row paymentModel
	if err := r.conn(ctx).Where("payment_id = ?", paymentID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.Payment{}, domainerrors.ErrPaymentNotFound
		}
		return entities.Payment{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPaymentByTask(ctx context.Context, taskID string) (entities.Payment, bool, error) {
	var rows []paymentModel
	if err := r.conn(ctx).Where("task_id = ?", taskID).Limit(1).Find(&rows).Error; err != nil {
		return entities.Payment{}, false, err
	}
	if len(rows) == 0 {
		return entities.Payment{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (r *Repository) UpdatePayment(ctx context.Context, payment entities.Payment) error {
	row := paymentModelFromEntity(payment)
	result := r.conn(ctx).Model(&paymentModel{}).
		Where("payment_id = ?", payment.PaymentID).
		Updates(map[string]any{
			"status":      row.Status,
			"invoice_url": row.InvoiceURL,
			"batch_id":    row.BatchID,
			"paid_at":     row.PaidAt,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPaymentNotFound
	}
	return nil
}

func (r *Repository) ListPayments(ctx context.Context, filter ports.PaymentFilter) ([]entities.Payment, error) {
	query := r.conn(ctx).Model(&paymentModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.CreatorID != "" {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	query = query.Order("created_at ASC").Order("payment_id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var rows []paymentModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Payment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateBatchPayout(ctx context.Context, batch entities.BatchPayout) error {
	ids := batch.PaymentIDs
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	row := batchPayoutModel{
		BatchID:     batch.BatchID,
		PaymentIDs:  string(encoded),
		TotalAmount: batch.TotalAmount,
		Status:      string(batch.Status),
		Notes:       batch.Notes,
		CreatedByID: batch.CreatedByID,
		CreatedAt:   batch.CreatedAt.UTC(),
		ExecutedAt:  utcPtr(batch.ExecutedAt),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) GetBatchPayout(ctx context.Context, batchID string) (entities.BatchPayout, error) {
	var row batchPayoutModel
	if err := r.conn(ctx).Where("batch_id = ?", batchID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.BatchPayout{}, domainerrors.ErrBatchNotFound
		}
		return entities.BatchPayout{}, err
	}
	return row.toEntity(), nil
}

// UpdateBatchPayout never rewrites the payment id snapshot.
func (r *Repository) UpdateBatchPayout(ctx context.Context, batch entities.BatchPayout) error {
	result := r.conn(ctx).Model(&batchPayoutModel{}).
		Where("batch_id = ?", batch.BatchID).
		Updates(map[string]any{
			"total_amount": batch.TotalAmount,
			"status":       string(batch.Status),
			"notes":        batch.Notes,
			"executed_at":  utcPtr(batch.ExecutedAt),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBatchNotFound
	}
	return nil
}
