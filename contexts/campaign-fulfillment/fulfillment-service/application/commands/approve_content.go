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

type ApproveContentCommand struct {
	Actor          entities.Actor
	TaskID         string
	Rating         entities.RatingScores
	Note           string
	IdempotencyKey string
}

type ApproveContentResult struct {
	TaskID     string  `json:"task_id"`
	PaymentID  string  `json:"payment_id"`
	RatingID   string  `json:"rating_id"`
	ApprovalID string  `json:"approval_id"`
	Amount     float64 `json:"amount"`
	Replayed   bool    `json:"-"`
}

type ApproveContentUseCase struct {
	Runtime
	Tasks     ports.TaskRepository
	Campaigns ports.CampaignRepository
	Content   ports.ContentRepository
	Payments  ports.PaymentRepository
}

// Execute records rating and approval, approves the task and opens the
// pending payment as one unit of work.
func (u ApproveContentUseCase) Execute(ctx context.Context, cmd ApproveContentCommand) (ApproveContentResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return ApproveContentResult{}, err
	}
	cmd.TaskID = strings.TrimSpace(cmd.TaskID)
	if cmd.TaskID == "" {
		return ApproveContentResult{}, domainerrors.ErrInvalidInput
	}
	if !cmd.Rating.Valid() {
		return ApproveContentResult{}, domainerrors.ErrRatingOutOfRange
	}

	requestHash := hashRequest(
		cmd.Actor.ActorID,
		cmd.TaskID,
		strconv.Itoa(cmd.Rating.Quality),
		strconv.Itoa(cmd.Rating.Timeliness),
		strconv.Itoa(cmd.Rating.Communication),
		strings.TrimSpace(cmd.Note),
	)
	var replayed ApproveContentResult
	if found, err := u.replay(ctx, cmd.IdempotencyKey, requestHash, &replayed); err != nil {
		return ApproveContentResult{}, err
	} else if found {
		replayed.Replayed = true
		return replayed, nil
	}

	var result ApproveContentResult
	err := u.withinTx(ctx, func(ctx context.Context) error {
		task, err := u.Tasks.GetTask(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		campaign, err := u.Campaigns.GetCampaign(ctx, task.CampaignID)
		if err != nil {
			return err
		}
		if err := services.AuthorizeBrandReview(cmd.Actor, campaign); err != nil {
			return err
		}
		uploads, err := u.Content.ListUploads(ctx, task.TaskID)
		if err != nil {
			return err
		}
		if len(uploads) == 0 {
			return domainerrors.ErrNoUploadToApprove
		}
		if task.PaymentAmount <= 0 {
			return domainerrors.ErrPaymentAmountMissing
		}
		if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusApproved); err != nil {
			return err
		}

		now := u.now()
		ids := make([]string, 3)
		for i := range ids {
			if ids[i], err = u.newID(ctx); err != nil {
				return err
			}
		}
		rating := entities.Rating{
			RatingID:  ids[0],
			TaskID:    task.TaskID,
			CreatorID: task.CreatorID,
			Scores:    cmd.Rating,
			RatedByID: cmd.Actor.ActorID,
			CreatedAt: now,
		}
		if err := u.Content.CreateRating(ctx, rating); err != nil {
			return err
		}
		approval := entities.Approval{
			ApprovalID:   ids[1],
			TaskID:       task.TaskID,
			ApprovedByID: cmd.Actor.ActorID,
			Note:         strings.TrimSpace(cmd.Note),
			CreatedAt:    now,
		}
		if err := u.Content.CreateApproval(ctx, approval); err != nil {
			return err
		}
		if _, err := u.Content.TransitionUploads(ctx, task.TaskID, entities.UploadStatusPending, entities.UploadStatusApproved, now); err != nil {
			return err
		}
		if err := u.emitContent(ctx, contractsv1.EventContentApproved, "approval", approval.ApprovalID, task, "approved", cmd.Actor); err != nil {
			return err
		}

		previous := task.Status
		task.Status = entities.TaskStatusApproved
		task.ApprovedAt = timePtr(now)
		task.UpdatedAt = now
		if err := u.Tasks.UpdateTask(ctx, task); err != nil {
			return err
		}
		if err := u.emitTask(ctx, contractsv1.EventTaskStatusChanged, task, previous, cmd.Actor); err != nil {
			return err
		}

		payment, err := createPayment(ctx, u.Runtime, u.Payments, ids[2], task, task.PaymentAmount, cmd.Actor)
		if err != nil {
			return err
		}
		result = ApproveContentResult{
			TaskID:     task.TaskID,
			PaymentID:  payment.PaymentID,
			RatingID:   rating.RatingID,
			ApprovalID: approval.ApprovalID,
			Amount:     payment.Amount,
		}
		return nil
	})
	if err != nil {
		logger.Warn("approve content failed",
			"event", "fulfillment_approve_content_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
		return ApproveContentResult{}, err
	}

	u.audit(ctx, cmd.Actor, "content.approve", entities.AuditEntityTask, cmd.TaskID, map[string]any{
		"payment_id":    result.PaymentID,
		"amount":        result.Amount,
		"quality":       cmd.Rating.Quality,
		"timeliness":    cmd.Rating.Timeliness,
		"communication": cmd.Rating.Communication,
	})
	if err := u.remember(ctx, cmd.IdempotencyKey, requestHash, result); err != nil {
		return ApproveContentResult{}, err
	}

	logger.Info("content approved",
		"event", "fulfillment_content_approved",
		"module", application.ModuleName,
		"layer", "application",
		"task_id", cmd.TaskID,
		"payment_id", result.PaymentID,
		"amount", result.Amount,
	)
	return result, nil
}
