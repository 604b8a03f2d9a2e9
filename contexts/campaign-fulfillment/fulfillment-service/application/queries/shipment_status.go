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

type GetShipmentStatusQuery struct {
	Actor      entities.Actor
	CampaignID string
	CreatorID  string
}

type GetShipmentStatusResult struct {
	Status   entities.ShipmentStatus
	Shipment *entities.ShipmentRequest
}

// ShipmentStatusUseCase answers the shipment gate for a (campaign, creator)
// pair. It also implements ports.ShipmentStatusProvider for task commands.
type ShipmentStatusUseCase struct {
	Shipments ports.ShipmentRepository
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (u ShipmentStatusUseCase) Execute(ctx context.Context, query GetShipmentStatusQuery) (GetShipmentStatusResult, error) {
	logger := application.ResolveLogger(u.Logger)
	query.CampaignID = strings.TrimSpace(query.CampaignID)
	query.CreatorID = strings.TrimSpace(query.CreatorID)
	if query.CampaignID == "" || query.CreatorID == "" {
		return GetShipmentStatusResult{}, domainerrors.ErrInvalidInput
	}
	campaign, err := u.Campaigns.GetCampaign(ctx, query.CampaignID)
	if err != nil {
		return GetShipmentStatusResult{}, err
	}
	if err := services.AuthorizeParticipant(query.Actor, campaign, query.CreatorID); err != nil {
		return GetShipmentStatusResult{}, err
	}

	request, found, err := u.Shipments.FindShipmentRequest(ctx, query.CampaignID, query.CreatorID)
	if err != nil {
		logger.Error("get shipment status failed",
			"event", "fulfillment_get_shipment_status_failed",
			"module", application.ModuleName,
			"layer", "application",
			"campaign_id", query.CampaignID,
			"creator_id", query.CreatorID,
			"error", err.Error(),
		)
		return GetShipmentStatusResult{}, err
	}
	if !found {
		return GetShipmentStatusResult{Status: entities.ShipmentStatusNotRequested}, nil
	}
	return GetShipmentStatusResult{Status: request.Status, Shipment: &request}, nil
}

// ShipmentStatus reports not_requested when no request exists for the pair.
func (u ShipmentStatusUseCase) ShipmentStatus(
	ctx context.Context,
	campaignID string,
	creatorID string,
) (entities.ShipmentStatus, error) {
	request, found, err := u.Shipments.FindShipmentRequest(ctx, campaignID, creatorID)
	if err != nil {
		return "", err
	}
	if !found {
		return entities.ShipmentStatusNotRequested, nil
	}
	return request.Status, nil
}
