package postgresadapter

import (
	"context"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

func (r *Repository) CreateTask(ctx context.Context, task entities.Task) error {
	db := r.conn(ctx)
	var existing int64
	if err := db.Model(&taskModel{}).Where("application_id = ?", task.ApplicationID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return domainerrors.ErrTaskAlreadyExists
	}
	row := taskModelFromEntity(task)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrTaskAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetTask(ctx context.Context, taskID string) (entities.Task, error) {
	var row taskModel
	if err := r.conn(ctx).Where("task_id = ?", taskID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.Task{}, domainerrors.ErrTaskNotFound
		}
		return entities.Task{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetTaskByApplication(ctx context.Context, applicationID string) (entities.Task, bool, error) {
	var rows []taskModel
	if err := r.conn(ctx).Where("application_id = ?", applicationID).Limit(1).Find(&rows).Error; err != nil {
		return entities.Task{}, false, err
	}
	if len(rows) == 0 {
		return entities.Task{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (r *Repository) ListTasksByCampaignCreator(ctx context.Context, campaignID string, creatorID string) ([]entities.Task, error) {
	var rows []taskModel
	if err := r.conn(ctx).
		Where("campaign_id = ? AND creator_id = ?", campaignID, creatorID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateTask(ctx context.Context, task entities.Task) error {
	row := taskModelFromEntity(task)
	result := r.conn(ctx).Model(&taskModel{}).
		Where("task_id = ?", task.TaskID).
		Updates(map[string]any{
			"status":           row.Status,
			"requires_product": row.RequiresProduct,
			"payment_amount":   row.PaymentAmount,
			"due_at":           row.DueAt,
			"dispute_reason":   row.DisputeReason,
			"started_at":       row.StartedAt,
			"submitted_at":     row.SubmittedAt,
			"approved_at":      row.ApprovedAt,
			"paid_at":          row.PaidAt,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) CreateShipmentRequest(ctx context.Context, request entities.ShipmentRequest) error {
	db := r.conn(ctx)
	var existing int64
	if err := db.Model(&shipmentModel{}).
		Where("campaign_id = ? AND creator_id = ?", request.CampaignID, request.CreatorID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return domainerrors.ErrShipmentAlreadyExists
	}
	row := shipmentModelFromEntity(request)
	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrShipmentAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetShipmentRequest(ctx context.Context, requestID string) (entities.ShipmentRequest, error) {
	var row shipmentModel
	if err := r.conn(ctx).Where("shipment_request_id = ?", requestID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.ShipmentRequest{}, domainerrors.ErrShipmentNotFound
		}
		return entities.ShipmentRequest{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindShipmentRequest(ctx context.Context, campaignID string, creatorID string) (entities.ShipmentRequest, bool, error) {
	var rows []shipmentModel
	if err := r.conn(ctx).
		Where("campaign_id = ? AND creator_id = ?", campaignID, creatorID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return entities.ShipmentRequest{}, false, err
	}
	if len(rows) == 0 {
		return entities.ShipmentRequest{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (r *Repository) UpdateShipmentRequest(ctx context.Context, request entities.ShipmentRequest) error {
	row := shipmentModelFromEntity(request)
	result := r.conn(ctx).Model(&shipmentModel{}).
		Where("shipment_request_id = ?", request.ShipmentRequestID).
		Updates(map[string]any{
			"status":          row.Status,
			"address_id":      row.AddressID,
			"tracking_number": row.TrackingNumber,
			"carrier":         row.Carrier,
			"issue_reason":    row.IssueReason,
			"issue_note":      row.IssueNote,
			"shipped_at":      row.ShippedAt,
			"delivered_at":    row.DeliveredAt,
			"updated_at":      row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrShipmentNotFound
	}
	return nil
}
