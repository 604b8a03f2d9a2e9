package commands

import (
	"context"
	"strconv"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

type ApproveApplicationCommand struct {
	Actor          entities.Actor
	ApplicationID  string
	CustomPrice    *float64
	IdempotencyKey string
}

type ApproveApplicationResult struct {
	TaskID            string  `json:"task_id"`
	PaymentAmount     float64 `json:"payment_amount"`
	ShipmentRequestID string  `json:"shipment_request_id,omitempty"`
	TaskCreated       bool    `json:"task_created"`
	Replayed          bool    `json:"-"`
}

type ApproveApplicationUseCase struct {
	Runtime
	Applications ports.ApplicationRepository
	Campaigns    ports.CampaignRepository
	Tasks        ports.TaskRepository
	Shipments    ports.ShipmentRepository
}

// Execute approves an application and makes sure exactly one task exists for
// it. Re-approving after a rejection reuses the task created the first time.
func (u ApproveApplicationUseCase) Execute(
	ctx context.Context,
	cmd ApproveApplicationCommand,
) (ApproveApplicationResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return ApproveApplicationResult{}, err
	}
	cmd.ApplicationID = strings.TrimSpace(cmd.ApplicationID)
	if cmd.ApplicationID == "" {
		return ApproveApplicationResult{}, domainerrors.ErrInvalidInput
	}

	requestHash := hashRequest(cmd.Actor.ActorID, cmd.ApplicationID, formatPrice(cmd.CustomPrice))
	var replayed ApproveApplicationResult
	if found, err := u.replay(ctx, cmd.IdempotencyKey, requestHash, &replayed); err != nil {
		return ApproveApplicationResult{}, err
	} else if found {
		replayed.Replayed = true
		return replayed, nil
	}

	var (
		result   ApproveApplicationResult
		previous entities.ApplicationStatus
	)
	err := u.withinTx(ctx, func(ctx context.Context) error {
		app, err := u.Applications.GetApplication(ctx, cmd.ApplicationID)
		if err != nil {
			return err
		}
		campaign, err := u.Campaigns.GetCampaign(ctx, app.CampaignID)
		if err != nil {
			return err
		}
		if err := services.AuthorizeBrandReview(cmd.Actor, campaign); err != nil {
			return err
		}

		now := u.now()
		task, found, err := u.Tasks.GetTaskByApplication(ctx, app.ApplicationID)
		if err != nil {
			return err
		}
		if !found {
			price := campaign.ResolvePrice(cmd.CustomPrice)
			if price <= 0 {
				return domainerrors.ErrPriceRequired
			}
			taskID, err := u.newID(ctx)
			if err != nil {
				return err
			}
			task = entities.Task{
				TaskID:          taskID,
				ApplicationID:   app.ApplicationID,
				CampaignID:      app.CampaignID,
				CreatorID:       app.CreatorID,
				Status:          entities.TaskStatusSelected,
				RequiresProduct: campaign.HasProducts(),
				PaymentAmount:   price,
				DueAt:           campaign.DeadlineAt,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := u.Tasks.CreateTask(ctx, task); err != nil {
				return err
			}
			if err := u.emitTask(ctx, contractsv1.EventTaskCreated, task, "", cmd.Actor); err != nil {
				return err
			}
			result.TaskCreated = true
		} else if campaign.HasProducts() && !task.RequiresProduct && !task.IsTerminal() {
			task.RequiresProduct = true
			task.UpdatedAt = now
			if err := u.Tasks.UpdateTask(ctx, task); err != nil {
				return err
			}
			if err := u.emitTask(ctx, contractsv1.EventTaskProductLinked, task, task.Status, cmd.Actor); err != nil {
				return err
			}
		}

		if task.RequiresProduct {
			request, _, err := ensureShipmentRequest(ctx, u.Runtime, u.Shipments, app.CampaignID, app.CreatorID, cmd.Actor)
			if err != nil {
				return err
			}
			result.ShipmentRequestID = request.ShipmentRequestID
		}

		previous = app.Status
		if app.Status != entities.ApplicationStatusApproved {
			app.Status = entities.ApplicationStatusApproved
			app.DecidedByID = cmd.Actor.ActorID
			app.DecidedAt = timePtr(now)
			app.UpdatedAt = now
			if err := u.Applications.UpdateApplication(ctx, app); err != nil {
				return err
			}
			if err := u.emitApplication(ctx, contractsv1.EventApplicationApproved, app, previous, cmd.Actor, map[string]any{
				"task_id": task.TaskID,
			}); err != nil {
				return err
			}
		}

		result.TaskID = task.TaskID
		result.PaymentAmount = task.PaymentAmount
		return nil
	})
	if err != nil {
		logger.Warn("approve application failed",
			"event", "fulfillment_approve_application_failed",
			"module", application.ModuleName,
			"layer", "application",
			"application_id", cmd.ApplicationID,
			"actor_id", cmd.Actor.ActorID,
			"error", err.Error(),
		)
		return ApproveApplicationResult{}, err
	}

	u.audit(ctx, cmd.Actor, "application.approve", entities.AuditEntityApplication, cmd.ApplicationID, map[string]any{
		"task_id":         result.TaskID,
		"payment_amount":  result.PaymentAmount,
		"previous_status": string(previous),
		"task_created":    result.TaskCreated,
	})
	if err := u.remember(ctx, cmd.IdempotencyKey, requestHash, result); err != nil {
		return ApproveApplicationResult{}, err
	}

	logger.Info("application approved",
		"event", "fulfillment_application_approved",
		"module", application.ModuleName,
		"layer", "application",
		"application_id", cmd.ApplicationID,
		"task_id", result.TaskID,
		"task_created", result.TaskCreated,
		"payment_amount", result.PaymentAmount,
	)
	return result, nil
}

func formatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}
