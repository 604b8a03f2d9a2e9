package commands

import (
	"context"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	contractsv1 "creatorflow/contracts/events/v1"
)

func (r Runtime) emitApplication(
	ctx context.Context,
	eventType string,
	application entities.Application,
	previous entities.ApplicationStatus,
	actor entities.Actor,
	attributes map[string]any,
) error {
	return r.emit(ctx, contractsv1.TopicApplication, eventType, "campaign_id", contractsv1.EntityChange{
		EntityType:     entities.AuditEntityApplication,
		EntityID:       application.ApplicationID,
		CampaignID:     application.CampaignID,
		CreatorID:      application.CreatorID,
		Status:         string(application.Status),
		PreviousStatus: string(previous),
		ActorID:        actor.ActorID,
		Attributes:     attributes,
	})
}

func (r Runtime) emitTask(
	ctx context.Context,
	eventType string,
	task entities.Task,
	previous entities.TaskStatus,
	actor entities.Actor,
) error {
	return r.emit(ctx, contractsv1.TopicTask, eventType, "task_id", contractsv1.EntityChange{
		EntityType:     entities.AuditEntityTask,
		EntityID:       task.TaskID,
		CampaignID:     task.CampaignID,
		CreatorID:      task.CreatorID,
		Status:         string(task.Status),
		PreviousStatus: string(previous),
		ActorID:        actor.ActorID,
		Attributes: map[string]any{
			"requires_product": task.RequiresProduct,
			"payment_amount":   task.PaymentAmount,
		},
	})
}

func (r Runtime) emitShipment(
	ctx context.Context,
	eventType string,
	request entities.ShipmentRequest,
	previous entities.ShipmentStatus,
	actor entities.Actor,
) error {
	return r.emit(ctx, contractsv1.TopicShipment, eventType, "shipment_request_id", contractsv1.EntityChange{
		EntityType:     entities.AuditEntityShipment,
		EntityID:       request.ShipmentRequestID,
		CampaignID:     request.CampaignID,
		CreatorID:      request.CreatorID,
		Status:         string(request.Status),
		PreviousStatus: string(previous),
		ActorID:        actor.ActorID,
	})
}

func (r Runtime) emitContent(
	ctx context.Context,
	eventType string,
	entityType string,
	entityID string,
	task entities.Task,
	status string,
	actor entities.Actor,
) error {
	return r.emit(ctx, contractsv1.TopicContent, eventType, "creator_id", contractsv1.EntityChange{
		EntityType: entityType,
		EntityID:   entityID,
		CampaignID: task.CampaignID,
		CreatorID:  task.CreatorID,
		Status:     status,
		ActorID:    actor.ActorID,
		Attributes: map[string]any{"task_id": task.TaskID},
	})
}

func (r Runtime) emitPayment(
	ctx context.Context,
	eventType string,
	payment entities.Payment,
	previous entities.PaymentStatus,
	actor entities.Actor,
) error {
	return r.emit(ctx, contractsv1.TopicPayment, eventType, "creator_id", contractsv1.EntityChange{
		EntityType:     entities.AuditEntityPayment,
		EntityID:       payment.PaymentID,
		CampaignID:     payment.CampaignID,
		CreatorID:      payment.CreatorID,
		Status:         string(payment.Status),
		PreviousStatus: string(previous),
		ActorID:        actor.ActorID,
		Attributes: map[string]any{
			"task_id":  payment.TaskID,
			"amount":   payment.Amount,
			"batch_id": payment.BatchID,
		},
	})
}

func (r Runtime) emitBatch(ctx context.Context, batch entities.BatchPayout, actor entities.Actor) error {
	return r.emit(ctx, contractsv1.TopicBatchPayout, contractsv1.EventBatchPayoutExecuted, "batch_id", contractsv1.EntityChange{
		EntityType: entities.AuditEntityBatchPayout,
		EntityID:   batch.BatchID,
		Status:     string(batch.Status),
		ActorID:    actor.ActorID,
		Attributes: map[string]any{
			"payment_ids":  batch.PaymentIDs,
			"total_amount": batch.TotalAmount,
		},
	})
}
