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

type OpenDisputeCommand struct {
	Actor  entities.Actor
	TaskID string
	Reason string
}

type OpenDisputeUseCase struct {
	Runtime
	Tasks     ports.TaskRepository
	Campaigns ports.CampaignRepository
}

// Execute parks a non-terminal task in disputed. There is no resolution flow.
func (u OpenDisputeUseCase) Execute(ctx context.Context, cmd OpenDisputeCommand) (TaskResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return TaskResult{}, err
	}
	cmd.TaskID = strings.TrimSpace(cmd.TaskID)
	cmd.Reason = strings.TrimSpace(cmd.Reason)
	if cmd.TaskID == "" || cmd.Reason == "" {
		return TaskResult{}, domainerrors.ErrInvalidInput
	}

	var (
		result   TaskResult
		previous entities.TaskStatus
	)
	err := u.withinTx(ctx, func(ctx context.Context) error {
		task, err := u.Tasks.GetTask(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		campaign, err := u.Campaigns.GetCampaign(ctx, task.CampaignID)
		if err != nil {
			return err
		}
		if err := services.AuthorizeParticipant(cmd.Actor, campaign, task.CreatorID); err != nil {
			return err
		}
		if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusDisputed); err != nil {
			return err
		}

		previous = task.Status
		task.Status = entities.TaskStatusDisputed
		task.DisputeReason = cmd.Reason
		task.UpdatedAt = u.now()
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
		logger.Warn("open dispute failed",
			"event", "fulfillment_open_dispute_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
		return TaskResult{}, err
	}

	u.audit(ctx, cmd.Actor, "task.open_dispute", entities.AuditEntityTask, cmd.TaskID, map[string]any{
		"previous_status": string(previous),
		"reason":          cmd.Reason,
	})
	logger.Info("task disputed",
		"event", "fulfillment_task_disputed",
		"module", application.ModuleName,
		"layer", "application",
		"task_id", cmd.TaskID,
		"previous_status", previous,
	)
	return result, nil
}
