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

const maxPaymentPageSize = 500

type ListPaymentsQuery struct {
	Actor     entities.Actor
	Status    entities.PaymentStatus
	CreatorID string
	Limit     int
}

type PaymentQueryUseCase struct {
	Payments ports.PaymentRepository
	Logger   *slog.Logger
}

// ListPayments returns every payment for staff; creators only see their own.
func (u PaymentQueryUseCase) ListPayments(ctx context.Context, query ListPaymentsQuery) ([]entities.Payment, error) {
	logger := application.ResolveLogger(u.Logger)
	if !query.Actor.Valid() {
		return nil, domainerrors.ErrUnauthorizedActor
	}
	creatorID := strings.TrimSpace(query.CreatorID)
	switch {
	case query.Actor.IsStaff():
	case query.Actor.Role == entities.ActorRoleCreator:
		if creatorID != "" && creatorID != query.Actor.ActorID {
			return nil, domainerrors.ErrUnauthorizedActor
		}
		creatorID = query.Actor.ActorID
	default:
		return nil, domainerrors.ErrUnauthorizedActor
	}
	if query.Status != "" &&
		query.Status != entities.PaymentStatusPending &&
		query.Status != entities.PaymentStatusPaid &&
		query.Status != entities.PaymentStatusFailed {
		return nil, domainerrors.ErrInvalidInput
	}
	limit := query.Limit
	if limit <= 0 || limit > maxPaymentPageSize {
		limit = maxPaymentPageSize
	}

	items, err := u.Payments.ListPayments(ctx, ports.PaymentFilter{
		Status:    query.Status,
		CreatorID: creatorID,
		Limit:     limit,
	})
	if err != nil {
		logger.Error("list payments failed",
			"event", "fulfillment_list_payments_failed",
			"module", application.ModuleName,
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return items, nil
}

func (u PaymentQueryUseCase) GetBatchPayout(ctx context.Context, actor entities.Actor, batchID string) (entities.BatchPayout, error) {
	if err := services.AuthorizeStaff(actor); err != nil {
		return entities.BatchPayout{}, err
	}
	batchID = strings.TrimSpace(batchID)
	if batchID == "" {
		return entities.BatchPayout{}, domainerrors.ErrInvalidInput
	}
	return u.Payments.GetBatchPayout(ctx, batchID)
}
