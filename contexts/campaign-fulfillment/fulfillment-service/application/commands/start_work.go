package commands

import (
	"context"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

type StartWorkCommand struct {
	Actor  entities.Actor
	TaskID string
}

type TaskResult struct {
	Task entities.Task
}

type StartWorkUseCase struct {
	Runtime
	Tasks     ports.TaskRepository
	Shipments ports.ShipmentStatusProvider
}

// Execute moves a selected task into production. Product campaigns require a
// delivered shipment; the error then carries the current shipment status.
func (u StartWorkUseCase) Execute(ctx context.Context, cmd StartWorkCommand) (TaskResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return TaskResult{}, err
	}
	cmd.TaskID = strings.TrimSpace(cmd.TaskID)
	if cmd.TaskID == "" {
		return TaskResult{}, domainerrors.ErrInvalidInput
	}

	var result TaskResult
	err := u.withinTx(ctx, func(ctx context.Context) error {
		task, err := u.Tasks.GetTask(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if err := services.AuthorizeCreator(cmd.Actor, task.CreatorID); err != nil {
			return err
		}
		if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusInProduction); err != nil {
			return err
		}
		if task.RequiresProduct {
			status, err := u.Shipments.ShipmentStatus(ctx, task.CampaignID, task.CreatorID)
			if err != nil {
				return err
			}
			if err := services.EnsureShipmentDelivered(task, status); err != nil {
				return err
			}
		}

		now := u.now()
		previous := task.Status
		task.Status = entities.TaskStatusInProduction
		task.StartedAt = timePtr(now)
		task.UpdatedAt = now
		if err := u.Tasks.UpdateTask(ctx, task); err != nil {
			return err
		}
		if err := u.emitTask(ctx, contractsv1.EventTaskStatusChanged, task, previous, cmd.Actor); err != nil {
			return err
		}
		result.Task = task
		return nil
	})
	if err != nil {
		logger.Warn("start work rejected",
			"event", "fulfillment_start_work_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"actor_id", cmd.Actor.ActorID,
			"error", err.Error(),
		)
		return TaskResult{}, err
	}

	u.audit(ctx, cmd.Actor, "task.start_work", entities.AuditEntityTask, cmd.TaskID, map[string]any{
		"status": string(result.Task.Status),
	})
	logger.Info("task started",
		"event", "fulfillment_task_started",
		"module", application.ModuleName,
		"layer", "application",
		"task_id", cmd.TaskID,
	)
	return result, nil
}
