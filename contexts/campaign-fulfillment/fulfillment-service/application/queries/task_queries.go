package queries

import (
	"context"
	"log/slog"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

type GetTaskQuery struct {
	Actor  entities.Actor
	TaskID string
}

// TaskView is the task read model shown to creators, brands and staff.
type TaskView struct {
	Task           entities.Task
	ShipmentStatus entities.ShipmentStatus
	Uploads        []entities.Upload
	Revisions      []entities.RevisionRequest
	Payment        *entities.Payment
}

type TaskQueryUseCase struct {
	Tasks     ports.TaskRepository
	Campaigns ports.CampaignRepository
	Content   ports.ContentRepository
	Payments  ports.PaymentRepository
	Shipments ports.ShipmentStatusProvider
	Logger    *slog.Logger
}

func (u TaskQueryUseCase) GetTask(ctx context.Context, query GetTaskQuery) (TaskView, error) {
	logger := application.ResolveLogger(u.Logger)
	query.TaskID = strings.TrimSpace(query.TaskID)
	if query.TaskID == "" {
		return TaskView{}, domainerrors.ErrInvalidInput
	}

	task, err := u.Tasks.GetTask(ctx, query.TaskID)
	if err != nil {
		return TaskView{}, err
	}
	campaign, err := u.Campaigns.GetCampaign(ctx, task.CampaignID)
	if err != nil {
		return TaskView{}, err
	}
	if err := services.AuthorizeParticipant(query.Actor, campaign, task.CreatorID); err != nil {
		return TaskView{}, err
	}

	view := TaskView{Task: task, ShipmentStatus: entities.ShipmentStatusNotRequested}
	if task.RequiresProduct && u.Shipments != nil {
		if view.ShipmentStatus, err = u.Shipments.ShipmentStatus(ctx, task.CampaignID, task.CreatorID); err != nil {
			return TaskView{}, err
		}
	}
	if view.Uploads, err = u.Content.ListUploads(ctx, task.TaskID); err != nil {
		return TaskView{}, err
	}
	if view.Revisions, err = u.Content.ListRevisionRequests(ctx, task.TaskID); err != nil {
		return TaskView{}, err
	}
	payment, found, err := u.Payments.GetPaymentByTask(ctx, task.TaskID)
	if err != nil {
		logger.Error("get task payment lookup failed",
			"event", "fulfillment_get_task_payment_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", task.TaskID,
			"error", err.Error(),
		)
		return TaskView{}, err
	}
	if found {
		view.Payment = &payment
	}
	return view, nil
}

// CanTransition is the standalone pre-check callers use before a mutating
// task call. Unknown target statuses report false.
func (u TaskQueryUseCase) CanTransition(ctx context.Context, taskID string, target entities.TaskStatus) (bool, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return false, domainerrors.ErrInvalidInput
	}
	task, err := u.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	if !entities.IsSupportedTaskStatus(target) {
		return false, nil
	}
	return services.CanTransitionTask(task.Status, target), nil
}
