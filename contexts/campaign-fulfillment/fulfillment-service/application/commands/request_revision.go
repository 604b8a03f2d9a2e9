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

type RequestRevisionCommand struct {
	Actor  entities.Actor
	TaskID string
	Tags   []string
	Note   string
}

type RequestRevisionResult struct {
	Revision entities.RevisionRequest
	Task     entities.Task
}

type RequestRevisionUseCase struct {
	Runtime
	Tasks     ports.TaskRepository
	Campaigns ports.CampaignRepository
	Content   ports.ContentRepository
}

func (u RequestRevisionUseCase) Execute(ctx context.Context, cmd RequestRevisionCommand) (RequestRevisionResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return RequestRevisionResult{}, err
	}
	cmd.TaskID = strings.TrimSpace(cmd.TaskID)
	if cmd.TaskID == "" {
		return RequestRevisionResult{}, domainerrors.ErrInvalidInput
	}
	tags := normalizeTags(cmd.Tags)
	if len(tags) == 0 {
		return RequestRevisionResult{}, domainerrors.ErrRevisionTagsRequired
	}
	if !entities.NoteLongEnough(cmd.Note) {
		return RequestRevisionResult{}, domainerrors.ErrNoteTooShort
	}

	var result RequestRevisionResult
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
			return domainerrors.ErrNoUploadForRevision
		}
		if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusNeedsEdits); err != nil {
			return err
		}

		revisionID, err := u.newID(ctx)
		if err != nil {
			return err
		}
		now := u.now()
		revision := entities.RevisionRequest{
			RevisionRequestID: revisionID,
			TaskID:            task.TaskID,
			Tags:              tags,
			Note:              strings.TrimSpace(cmd.Note),
			Status:            entities.RevisionStatusOpen,
			RequestedByID:     cmd.Actor.ActorID,
			CreatedAt:         now,
		}
		if err := u.Content.CreateRevisionRequest(ctx, revision); err != nil {
			return err
		}
		if _, err := u.Content.TransitionUploads(ctx, task.TaskID, entities.UploadStatusPending, entities.UploadStatusRejected, now); err != nil {
			return err
		}
		if err := u.emitContent(ctx, contractsv1.EventContentRevisionRequested, entities.AuditEntityRevision, revisionID, task, string(revision.Status), cmd.Actor); err != nil {
			return err
		}

		previous := task.Status
		task.Status = entities.TaskStatusNeedsEdits
		task.UpdatedAt = now
		if err := u.Tasks.UpdateTask(ctx, task); err != nil {
			return err
		}
		if err := u.emitTask(ctx, contractsv1.EventTaskStatusChanged, task, previous, cmd.Actor); err != nil {
			return err
		}
		result = RequestRevisionResult{Revision: revision, Task: task}
		return nil
	})
	if err != nil {
		logger.Warn("request revision failed",
			"event", "fulfillment_request_revision_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
		return RequestRevisionResult{}, err
	}

	u.audit(ctx, cmd.Actor, "content.request_revision", entities.AuditEntityRevision, result.Revision.RevisionRequestID, map[string]any{
		"task_id": cmd.TaskID,
		"tags":    tags,
	})
	logger.Info("revision requested",
		"event", "fulfillment_revision_requested",
		"module", application.ModuleName,
		"layer", "application",
		"task_id", cmd.TaskID,
		"revision_request_id", result.Revision.RevisionRequestID,
	)
	return result, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	items := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag))
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
