package commands

import (
	"context"
	"strings"
	"time"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

type MarkPaidCommand struct {
	Actor      entities.Actor
	PaymentID  string
	InvoiceURL string
}

type MarkPaidResult struct {
	Payment     entities.Payment
	AlreadyPaid bool
}

type MarkPaidUseCase struct {
	Runtime
	Payments ports.PaymentRepository
	Tasks    ports.TaskRepository
}

// Execute settles one payment and its task. Settling an already paid
// payment is a no-op.
func (u MarkPaidUseCase) Execute(ctx context.Context, cmd MarkPaidCommand) (MarkPaidResult, error) {
	logger := u.logger()
	if err := services.AuthorizeStaff(cmd.Actor); err != nil {
		return MarkPaidResult{}, err
	}
	cmd.PaymentID = strings.TrimSpace(cmd.PaymentID)
	if cmd.PaymentID == "" {
		return MarkPaidResult{}, domainerrors.ErrInvalidInput
	}

	var result MarkPaidResult
	err := u.withinTx(ctx, func(ctx context.Context) error {
		payment, err := u.Payments.GetPayment(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}
		if payment.Status == entities.PaymentStatusPaid {
			result = MarkPaidResult{Payment: payment, AlreadyPaid: true}
			return nil
		}
		now := u.now()
		paid, err := settlePayment(ctx, u.Runtime, u.Payments, u.Tasks, payment, "", strings.TrimSpace(cmd.InvoiceURL), now, cmd.Actor)
		if err != nil {
			return err
		}
		result.Payment = paid
		return nil
	})
	if err != nil {
		logger.Warn("mark paid failed",
			"event", "fulfillment_mark_paid_failed",
			"module", application.ModuleName,
			"layer", "application",
			"payment_id", cmd.PaymentID,
			"error", err.Error(),
		)
		return MarkPaidResult{}, err
	}
	if result.AlreadyPaid {
		return result, nil
	}

	u.audit(ctx, cmd.Actor, "payment.mark_paid", entities.AuditEntityPayment, cmd.PaymentID, map[string]any{
		"task_id":     result.Payment.TaskID,
		"amount":      result.Payment.Amount,
		"invoice_url": result.Payment.InvoiceURL,
	})
	logger.Info("payment marked paid",
		"event", "fulfillment_payment_paid",
		"module", application.ModuleName,
		"layer", "application",
		"payment_id", cmd.PaymentID,
		"task_id", result.Payment.TaskID,
	)
	return result, nil
}

// settlePayment marks a pending payment paid and moves its task to paid.
func settlePayment(
	ctx context.Context,
	rt Runtime,
	payments ports.PaymentRepository,
	tasks ports.TaskRepository,
	payment entities.Payment,
	batchID string,
	invoiceURL string,
	at time.Time,
	actor entities.Actor,
) (entities.Payment, error) {
	task, err := payableTask(ctx, tasks, payment)
	if err != nil {
		return entities.Payment{}, err
	}
	paid, err := payPayment(ctx, rt, payments, payment, batchID, invoiceURL, at, actor)
	if err != nil {
		return entities.Payment{}, err
	}
	if err := markTaskPaid(ctx, rt, tasks, task, at, actor); err != nil {
		return entities.Payment{}, err
	}
	return paid, nil
}

// payableTask loads the task behind a pending payment and requires it approved.
func payableTask(ctx context.Context, tasks ports.TaskRepository, payment entities.Payment) (entities.Task, error) {
	if payment.Status != entities.PaymentStatusPending {
		return entities.Task{}, domainerrors.ErrPaymentNotPending
	}
	task, err := tasks.GetTask(ctx, payment.TaskID)
	if err != nil {
		return entities.Task{}, err
	}
	if task.Status != entities.TaskStatusApproved {
		return entities.Task{}, domainerrors.ErrTaskNotApproved
	}
	return task, nil
}

func payPayment(
	ctx context.Context,
	rt Runtime,
	payments ports.PaymentRepository,
	payment entities.Payment,
	batchID string,
	invoiceURL string,
	at time.Time,
	actor entities.Actor,
) (entities.Payment, error) {
	previous := payment.Status
	payment.Status = entities.PaymentStatusPaid
	payment.PaidAt = timePtr(at)
	payment.UpdatedAt = at
	if batchID != "" {
		payment.BatchID = batchID
	}
	if invoiceURL != "" {
		payment.InvoiceURL = invoiceURL
	}
	if err := payments.UpdatePayment(ctx, payment); err != nil {
		return entities.Payment{}, err
	}
	if err := rt.emitPayment(ctx, contractsv1.EventPaymentPaid, payment, previous, actor); err != nil {
		return entities.Payment{}, err
	}
	return payment, nil
}

func markTaskPaid(ctx context.Context, rt Runtime, tasks ports.TaskRepository, task entities.Task, at time.Time, actor entities.Actor) error {
	if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusPaid); err != nil {
		return err
	}
	previous := task.Status
	task.Status = entities.TaskStatusPaid
	task.PaidAt = timePtr(at)
	task.UpdatedAt = at
	if err := tasks.UpdateTask(ctx, task); err != nil {
		return err
	}
	return rt.emitTask(ctx, contractsv1.EventTaskStatusChanged, task, previous, actor)
}
