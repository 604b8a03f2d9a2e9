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

type RejectApplicationCommand struct {
	Actor         entities.Actor
	ApplicationID string
	ReasonCode    string
	Note          string
}

type RejectApplicationResult struct {
	Application entities.Application
}

type RejectApplicationUseCase struct {
	Runtime
	Applications ports.ApplicationRepository
	Campaigns    ports.CampaignRepository
}

// Execute rejects an application. Feedback is mandatory only the first time;
// once an application carries feedback the decision can be flipped without it
// and a note too short to stand on its own is ignored.
// An existing task is left untouched.
func (u RejectApplicationUseCase) Execute(
	ctx context.Context,
	cmd RejectApplicationCommand,
) (RejectApplicationResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return RejectApplicationResult{}, err
	}
	cmd.ApplicationID = strings.TrimSpace(cmd.ApplicationID)
	cmd.ReasonCode = strings.TrimSpace(cmd.ReasonCode)
	cmd.Note = strings.TrimSpace(cmd.Note)
	if cmd.ApplicationID == "" {
		return RejectApplicationResult{}, domainerrors.ErrInvalidInput
	}

	var (
		result   RejectApplicationResult
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

		if !app.HasRejectionFeedback() {
			if cmd.ReasonCode == "" {
				return domainerrors.ErrReasonCodeRequired
			}
			if !entities.NoteLongEnough(cmd.Note) {
				return domainerrors.ErrNoteTooShort
			}
		} else if !entities.NoteLongEnough(cmd.Note) {
			// Stored feedback stands; a short note does not replace it.
			cmd.Note = ""
		}
		if cmd.ReasonCode != "" {
			app.RejectionReasonCode = cmd.ReasonCode
		}
		if cmd.Note != "" {
			app.RejectionNote = cmd.Note
		}

		now := u.now()
		previous = app.Status
		app.Status = entities.ApplicationStatusRejected
		app.DecidedByID = cmd.Actor.ActorID
		app.DecidedAt = timePtr(now)
		app.UpdatedAt = now
		if err := u.Applications.UpdateApplication(ctx, app); err != nil {
			return err
		}
		if err := u.emitApplication(ctx, contractsv1.EventApplicationRejected, app, previous, cmd.Actor, map[string]any{
			"reason_code": app.RejectionReasonCode,
		}); err != nil {
			return err
		}
		result.Application = app
		return nil
	})
	if err != nil {
		logger.Warn("reject application failed",
			"event", "fulfillment_reject_application_failed",
			"module", application.ModuleName,
			"layer", "application",
			"application_id", cmd.ApplicationID,
			"actor_id", cmd.Actor.ActorID,
			"error", err.Error(),
		)
		return RejectApplicationResult{}, err
	}

	u.audit(ctx, cmd.Actor, "application.reject", entities.AuditEntityApplication, cmd.ApplicationID, map[string]any{
		"reason_code":     result.Application.RejectionReasonCode,
		"previous_status": string(previous),
	})
	logger.Info("application rejected",
		"event", "fulfillment_application_rejected",
		"module", application.ModuleName,
		"layer", "application",
		"application_id", cmd.ApplicationID,
		"previous_status", previous,
	)
	return result, nil
}
