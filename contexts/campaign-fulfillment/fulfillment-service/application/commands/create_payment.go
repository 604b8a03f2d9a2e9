package commands

import (
	"context"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

// createPayment opens the pending payment for an approved task. It is only
// reachable from content approval and must run inside its transaction.
func createPayment(
	ctx context.Context,
	rt Runtime,
	payments ports.PaymentRepository,
	paymentID string,
	task entities.Task,
	amount float64,
	actor entities.Actor,
) (entities.Payment, error) {
	if amount <= 0 {
		return entities.Payment{}, domainerrors.ErrPaymentAmountMissing
	}
	now := rt.now()
	payment := entities.Payment{
		PaymentID:  paymentID,
		TaskID:     task.TaskID,
		CreatorID:  task.CreatorID,
		CampaignID: task.CampaignID,
		Amount:     amount,
		Status:     entities.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := payments.CreatePayment(ctx, payment); err != nil {
		return entities.Payment{}, err
	}
	if err := rt.emitPayment(ctx, contractsv1.EventPaymentCreated, payment, "", actor); err != nil {
		return entities.Payment{}, err
	}
	return payment, nil
}
