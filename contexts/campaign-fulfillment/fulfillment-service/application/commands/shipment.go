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

type ShipmentResult struct {
	Shipment entities.ShipmentRequest
}

// ensureShipmentRequest returns the request for the pair, creating it in
// waiting_address when absent.
func ensureShipmentRequest(
	ctx context.Context,
	rt Runtime,
	shipments ports.ShipmentRepository,
	campaignID string,
	creatorID string,
	actor entities.Actor,
) (entities.ShipmentRequest, bool, error) {
	existing, found, err := shipments.FindShipmentRequest(ctx, campaignID, creatorID)
	if err != nil {
		return entities.ShipmentRequest{}, false, err
	}
	if found {
		return existing, false, nil
	}
	if err := services.ValidateShipmentTransition(
		entities.ShipmentStatusNotRequested,
		entities.ShipmentStatusWaitingAddress,
	); err != nil {
		return entities.ShipmentRequest{}, false, err
	}

	requestID, err := rt.newID(ctx)
	if err != nil {
		return entities.ShipmentRequest{}, false, err
	}
	now := rt.now()
	request := entities.ShipmentRequest{
		ShipmentRequestID: requestID,
		CampaignID:        campaignID,
		CreatorID:         creatorID,
		Status:            entities.ShipmentStatusWaitingAddress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// A concurrent insert for the pair surfaces as ErrShipmentAlreadyExists.
	// The transaction is unusable after the violation, so the caller retries.
	if err := shipments.CreateShipmentRequest(ctx, request); err != nil {
		return entities.ShipmentRequest{}, false, err
	}
	if err := rt.emitShipment(ctx, contractsv1.EventShipmentRequested, request, entities.ShipmentStatusNotRequested, actor); err != nil {
		return entities.ShipmentRequest{}, false, err
	}
	return request, true, nil
}

// shipmentTransition is the shared load/authorize/guard/write path of every
// shipment step.
type shipmentTransition struct {
	action    string
	target    entities.ShipmentStatus
	authorize func(actor entities.Actor, campaign entities.Campaign, request entities.ShipmentRequest) error
	apply     func(ctx context.Context, request *entities.ShipmentRequest) error
}

func runShipmentTransition(
	ctx context.Context,
	rt Runtime,
	shipments ports.ShipmentRepository,
	campaigns ports.CampaignRepository,
	actor entities.Actor,
	requestID string,
	step shipmentTransition,
) (ShipmentResult, error) {
	logger := rt.logger()
	if err := requireActor(actor); err != nil {
		return ShipmentResult{}, err
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ShipmentResult{}, domainerrors.ErrInvalidInput
	}

	var (
		result   ShipmentResult
		previous entities.ShipmentStatus
	)
	err := rt.withinTx(ctx, func(ctx context.Context) error {
		request, err := shipments.GetShipmentRequest(ctx, requestID)
		if err != nil {
			return err
		}
		campaign, err := campaigns.GetCampaign(ctx, request.CampaignID)
		if err != nil {
			return err
		}
		if err := step.authorize(actor, campaign, request); err != nil {
			return err
		}
		if err := services.ValidateShipmentTransition(request.Status, step.target); err != nil {
			return err
		}
		previous = request.Status
		if step.apply != nil {
			if err := step.apply(ctx, &request); err != nil {
				return err
			}
		}
		request.Status = step.target
		request.UpdatedAt = rt.now()
		if err := shipments.UpdateShipmentRequest(ctx, request); err != nil {
			return err
		}
		if err := rt.emitShipment(ctx, contractsv1.EventShipmentStatusChanged, request, previous, actor); err != nil {
			return err
		}
		result.Shipment = request
		return nil
	})
	if err != nil {
		logger.Warn("shipment transition failed",
			"event", "fulfillment_shipment_transition_failed",
			"module", application.ModuleName,
			"layer", "application",
			"shipment_request_id", requestID,
			"target_status", step.target,
			"actor_id", actor.ActorID,
			"error", err.Error(),
		)
		return ShipmentResult{}, err
	}

	rt.audit(ctx, actor, step.action, entities.AuditEntityShipment, requestID, map[string]any{
		"previous_status": string(previous),
		"status":          string(step.target),
	})
	logger.Info("shipment status changed",
		"event", "fulfillment_shipment_status_changed",
		"module", application.ModuleName,
		"layer", "application",
		"shipment_request_id", requestID,
		"previous_status", previous,
		"status", step.target,
	)
	return result, nil
}

func authorizeShipmentCreator(actor entities.Actor, _ entities.Campaign, request entities.ShipmentRequest) error {
	return services.AuthorizeCreator(actor, request.CreatorID)
}

func authorizeShipmentStaff(actor entities.Actor, _ entities.Campaign, _ entities.ShipmentRequest) error {
	return services.AuthorizeStaff(actor)
}

func authorizeShipmentParticipant(actor entities.Actor, campaign entities.Campaign, request entities.ShipmentRequest) error {
	return services.AuthorizeParticipant(actor, campaign, request.CreatorID)
}

type SubmitShipmentAddressCommand struct {
	Actor             entities.Actor
	ShipmentRequestID string
	AddressID         string
}

type SubmitShipmentAddressUseCase struct {
	Runtime
	Shipments ports.ShipmentRepository
	Campaigns ports.CampaignRepository
	Addresses ports.AddressDirectory
}

func (u SubmitShipmentAddressUseCase) Execute(ctx context.Context, cmd SubmitShipmentAddressCommand) (ShipmentResult, error) {
	addressID := strings.TrimSpace(cmd.AddressID)
	return runShipmentTransition(ctx, u.Runtime, u.Shipments, u.Campaigns, cmd.Actor, cmd.ShipmentRequestID, shipmentTransition{
		action:    "shipment.submit_address",
		target:    entities.ShipmentStatusAddressReceived,
		authorize: authorizeShipmentCreator,
		apply: func(ctx context.Context, request *entities.ShipmentRequest) error {
			if addressID == "" {
				return domainerrors.ErrAddressNotFound
			}
			address, err := u.Addresses.GetAddress(ctx, addressID)
			if err != nil {
				return err
			}
			// Addresses of other creators are reported as missing.
			if address.CreatorID != "" && address.CreatorID != request.CreatorID {
				return domainerrors.ErrAddressNotFound
			}
			request.AddressID = address.AddressID
			return nil
		},
	})
}

type MarkShippedCommand struct {
	Actor             entities.Actor
	ShipmentRequestID string
	TrackingNumber    string
	Carrier           string
}

type MarkShippedUseCase struct {
	Runtime
	Shipments ports.ShipmentRepository
	Campaigns ports.CampaignRepository
}

func (u MarkShippedUseCase) Execute(ctx context.Context, cmd MarkShippedCommand) (ShipmentResult, error) {
	return runShipmentTransition(ctx, u.Runtime, u.Shipments, u.Campaigns, cmd.Actor, cmd.ShipmentRequestID, shipmentTransition{
		action:    "shipment.mark_shipped",
		target:    entities.ShipmentStatusShipped,
		authorize: authorizeShipmentStaff,
		apply: func(_ context.Context, request *entities.ShipmentRequest) error {
			request.TrackingNumber = strings.TrimSpace(cmd.TrackingNumber)
			request.Carrier = strings.TrimSpace(cmd.Carrier)
			request.ShippedAt = timePtr(u.now())
			return nil
		},
	})
}

type ConfirmDeliveryCommand struct {
	Actor             entities.Actor
	ShipmentRequestID string
}

type ConfirmDeliveryUseCase struct {
	Runtime
	Shipments ports.ShipmentRepository
	Campaigns ports.CampaignRepository
}

func (u ConfirmDeliveryUseCase) Execute(ctx context.Context, cmd ConfirmDeliveryCommand) (ShipmentResult, error) {
	return runShipmentTransition(ctx, u.Runtime, u.Shipments, u.Campaigns, cmd.Actor, cmd.ShipmentRequestID, shipmentTransition{
		action:    "shipment.confirm_delivery",
		target:    entities.ShipmentStatusDelivered,
		authorize: authorizeShipmentCreator,
		apply: func(_ context.Context, request *entities.ShipmentRequest) error {
			request.DeliveredAt = timePtr(u.now())
			return nil
		},
	})
}

type FlagShipmentIssueCommand struct {
	Actor             entities.Actor
	ShipmentRequestID string
	Reason            string
	Note              string
}

type FlagShipmentIssueUseCase struct {
	Runtime
	Shipments ports.ShipmentRepository
	Campaigns ports.CampaignRepository
}

// Execute moves the request to issue. Issue has no exit; recovery is a
// manual operations task.
func (u FlagShipmentIssueUseCase) Execute(ctx context.Context, cmd FlagShipmentIssueCommand) (ShipmentResult, error) {
	reason := strings.TrimSpace(cmd.Reason)
	return runShipmentTransition(ctx, u.Runtime, u.Shipments, u.Campaigns, cmd.Actor, cmd.ShipmentRequestID, shipmentTransition{
		action:    "shipment.flag_issue",
		target:    entities.ShipmentStatusIssue,
		authorize: authorizeShipmentParticipant,
		apply: func(_ context.Context, request *entities.ShipmentRequest) error {
			if reason == "" {
				return domainerrors.ErrInvalidInput
			}
			request.IssueReason = reason
			request.IssueNote = strings.TrimSpace(cmd.Note)
			return nil
		},
	})
}
