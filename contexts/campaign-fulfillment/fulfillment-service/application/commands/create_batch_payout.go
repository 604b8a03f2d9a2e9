package commands

import (
	"context"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
)

type CreateBatchPayoutCommand struct {
	Actor          entities.Actor
	PaymentIDs     []string
	Notes          string
	IdempotencyKey string
}

type CreateBatchPayoutResult struct {
	BatchID     string   `json:"batch_id"`
	TotalAmount float64  `json:"total_amount"`
	PaymentIDs  []string `json:"payment_ids"`
	Status      string   `json:"status"`
	Replayed    bool     `json:"-"`
}

type CreateBatchPayoutUseCase struct {
	Runtime
	Payments ports.PaymentRepository
	Tasks    ports.TaskRepository
}

// Execute runs the payout steps in this order inside one unit of work:
// 1) check every payment is pending and its task approved
// 2) insert the batch as pending
// 3) mark every payment paid
// 4) mark every owning task paid
// 5) mark the batch executed.
// Any failure rolls all of them back.
func (u CreateBatchPayoutUseCase) Execute(ctx context.Context, cmd CreateBatchPayoutCommand) (CreateBatchPayoutResult, error) {
	logger := u.logger()
	if err := services.AuthorizeStaff(cmd.Actor); err != nil {
		return CreateBatchPayoutResult{}, err
	}
	paymentIDs := uniqueIDs(cmd.PaymentIDs)
	if len(paymentIDs) == 0 {
		return CreateBatchPayoutResult{}, domainerrors.ErrPaymentIDsRequired
	}
	notes := strings.TrimSpace(cmd.Notes)

	requestHash := hashRequest(append([]string{cmd.Actor.ActorID, notes}, paymentIDs...)...)
	var replayed CreateBatchPayoutResult
	if found, err := u.replay(ctx, cmd.IdempotencyKey, requestHash, &replayed); err != nil {
		return CreateBatchPayoutResult{}, err
	} else if found {
		replayed.Replayed = true
		return replayed, nil
	}

	var result CreateBatchPayoutResult
	err := u.withinTx(ctx, func(ctx context.Context) error {
		payments := make([]entities.Payment, 0, len(paymentIDs))
		tasks := make([]entities.Task, 0, len(paymentIDs))
		for _, paymentID := range paymentIDs {
			payment, err := u.Payments.GetPayment(ctx, paymentID)
			if err != nil {
				return err
			}
			task, err := payableTask(ctx, u.Tasks, payment)
			if err != nil {
				return err
			}
			payments = append(payments, payment)
			tasks = append(tasks, task)
		}

		batchID, err := u.newID(ctx)
		if err != nil {
			return err
		}
		now := u.now()
		batch := entities.BatchPayout{
			BatchID:     batchID,
			PaymentIDs:  paymentIDs,
			TotalAmount: entities.SumPayments(payments),
			Status:      entities.BatchPayoutStatusPending,
			Notes:       notes,
			CreatedByID: cmd.Actor.ActorID,
			CreatedAt:   now,
		}
		if err := u.Payments.CreateBatchPayout(ctx, batch); err != nil {
			return err
		}

		for _, payment := range payments {
			if _, err := payPayment(ctx, u.Runtime, u.Payments, payment, batchID, "", now, cmd.Actor); err != nil {
				return err
			}
		}
		for _, task := range tasks {
			if err := markTaskPaid(ctx, u.Runtime, u.Tasks, task, now, cmd.Actor); err != nil {
				return err
			}
		}

		batch.Status = entities.BatchPayoutStatusExecuted
		batch.ExecutedAt = timePtr(now)
		if err := u.Payments.UpdateBatchPayout(ctx, batch); err != nil {
			return err
		}
		if err := u.emitBatch(ctx, batch, cmd.Actor); err != nil {
			return err
		}
		result = CreateBatchPayoutResult{
			BatchID:     batch.BatchID,
			TotalAmount: batch.TotalAmount,
			PaymentIDs:  batch.PaymentIDs,
			Status:      string(batch.Status),
		}
		return nil
	})
	if err != nil {
		logger.Error("batch payout failed",
			"event", "fulfillment_batch_payout_failed",
			"module", application.ModuleName,
			"layer", "application",
			"payment_count", len(paymentIDs),
			"error", err.Error(),
		)
		return CreateBatchPayoutResult{}, err
	}

	u.audit(ctx, cmd.Actor, "payout.execute_batch", entities.AuditEntityBatchPayout, result.BatchID, map[string]any{
		"payment_ids":  result.PaymentIDs,
		"total_amount": result.TotalAmount,
	})
	if err := u.remember(ctx, cmd.IdempotencyKey, requestHash, result); err != nil {
		return CreateBatchPayoutResult{}, err
	}

	logger.Info("batch payout executed",
		"event", "fulfillment_batch_payout_executed",
		"module", application.ModuleName,
		"layer", "application",
		"batch_id", result.BatchID,
		"payment_count", len(result.PaymentIDs),
		"total_amount", result.TotalAmount,
	)
	return result, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	items := make([]string, 0, len(ids))
	for _, id := range ids {
		value := strings.TrimSpace(id)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		items = append(items, value)
	}
	return items
}
