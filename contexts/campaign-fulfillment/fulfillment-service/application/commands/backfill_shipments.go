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

type AddProductCommand struct {
	Actor      entities.Actor
	CampaignID string
	ProductID  string
	Name       string
}

type AddProductResult struct {
	ProductCreated   bool
	ShipmentsCreated []string
	TasksUpdated     []string
}

// AddProductUseCase registers a product and, when it is the campaign's first,
// backfills shipment requests for creators approved before products existed.
type AddProductUseCase struct {
	Runtime
	Campaigns    ports.CampaignRepository
	Applications ports.ApplicationRepository
	Tasks        ports.TaskRepository
	Shipments    ports.ShipmentRepository
}

func (u AddProductUseCase) Execute(ctx context.Context, cmd AddProductCommand) (AddProductResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return AddProductResult{}, err
	}
	cmd.CampaignID = strings.TrimSpace(cmd.CampaignID)
	cmd.ProductID = strings.TrimSpace(cmd.ProductID)
	if cmd.CampaignID == "" || cmd.ProductID == "" {
		return AddProductResult{}, domainerrors.ErrInvalidInput
	}

	var result AddProductResult
	err := u.withinTx(ctx, func(ctx context.Context) error {
		campaign, err := u.Campaigns.GetCampaign(ctx, cmd.CampaignID)
		if err != nil {
			return err
		}
		if err := services.AuthorizeBrandReview(cmd.Actor, campaign); err != nil {
			return err
		}
		hadProducts := campaign.HasProducts()

		created, err := u.Campaigns.AddProduct(ctx, entities.Product{
			ProductID:  cmd.ProductID,
			CampaignID: cmd.CampaignID,
			Name:       strings.TrimSpace(cmd.Name),
			CreatedAt:  u.now(),
		})
		if err != nil {
			return err
		}
		result.ProductCreated = created
		if !created || hadProducts {
			return nil
		}
		return u.backfill(ctx, cmd, &result)
	})
	if err != nil {
		logger.Warn("add product failed",
			"event", "fulfillment_add_product_failed",
			"module", application.ModuleName,
			"layer", "application",
			"campaign_id", cmd.CampaignID,
			"product_id", cmd.ProductID,
			"error", err.Error(),
		)
		return AddProductResult{}, err
	}

	if result.ProductCreated {
		u.audit(ctx, cmd.Actor, "campaign.add_product", entities.AuditEntityCampaign, cmd.CampaignID, map[string]any{
			"product_id":        cmd.ProductID,
			"shipments_created": result.ShipmentsCreated,
			"tasks_updated":     result.TasksUpdated,
		})
	}
	logger.Info("campaign product registered",
		"event", "fulfillment_product_added",
		"module", application.ModuleName,
		"layer", "application",
		"campaign_id", cmd.CampaignID,
		"product_id", cmd.ProductID,
		"product_created", result.ProductCreated,
		"shipments_created", len(result.ShipmentsCreated),
		"tasks_updated", len(result.TasksUpdated),
	)
	return result, nil
}

func (u AddProductUseCase) backfill(ctx context.Context, cmd AddProductCommand, result *AddProductResult) error {
	approved, err := u.Applications.ListApplicationsByCampaign(ctx, cmd.CampaignID, entities.ApplicationStatusApproved)
	if err != nil {
		return err
	}
	for _, app := range approved {
		request, created, err := ensureShipmentRequest(ctx, u.Runtime, u.Shipments, app.CampaignID, app.CreatorID, cmd.Actor)
		if err != nil {
			return err
		}
		if created {
			result.ShipmentsCreated = append(result.ShipmentsCreated, request.ShipmentRequestID)
		}

		tasks, err := u.Tasks.ListTasksByCampaignCreator(ctx, app.CampaignID, app.CreatorID)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if task.IsTerminal() || task.RequiresProduct {
				continue
			}
			task.RequiresProduct = true
			task.UpdatedAt = u.now()
			if err := u.Tasks.UpdateTask(ctx, task); err != nil {
				return err
			}
			if err := u.emitTask(ctx, contractsv1.EventTaskProductLinked, task, task.Status, cmd.Actor); err != nil {
				return err
			}
			result.TasksUpdated = append(result.TasksUpdated, task.TaskID)
		}
	}
	return nil
}
