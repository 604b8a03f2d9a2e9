package commands

import (
	"context"
	"fmt"
	"path"
	"strings"

	application "creatorflow/contexts/campaign-fulfillment/fulfillment-service/application"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/services"
	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/ports"
	contractsv1 "creatorflow/contracts/events/v1"
)

type UploadContentCommand struct {
	Actor           entities.Actor
	TaskID          string
	File            entities.UploadFile
	DeliverableType string
}

type UploadContentResult struct {
	Upload entities.Upload
	Task   entities.Task
}

type UploadContentUseCase struct {
	Runtime
	Tasks     ports.TaskRepository
	Content   ports.ContentRepository
	Shipments ports.ShipmentStatusProvider
	Storage   ports.ContentStorage
	Policy    services.UploadPolicy
}

// Execute stores the file first and then records the upload and the task
// transition in one unit of work. The stored body is deleted when that unit
// of work fails. A concurrent upload that already moved the
// task to uploaded does not fail the second one.
func (u UploadContentUseCase) Execute(ctx context.Context, cmd UploadContentCommand) (UploadContentResult, error) {
	logger := u.logger()
	if err := requireActor(cmd.Actor); err != nil {
		return UploadContentResult{}, err
	}
	cmd.TaskID = strings.TrimSpace(cmd.TaskID)
	if cmd.TaskID == "" || cmd.File.Body == nil {
		return UploadContentResult{}, domainerrors.ErrInvalidInput
	}

	task, err := u.Tasks.GetTask(ctx, cmd.TaskID)
	if err != nil {
		return UploadContentResult{}, err
	}
	if err := services.AuthorizeCreator(cmd.Actor, task.CreatorID); err != nil {
		return UploadContentResult{}, err
	}
	if err := services.ValidateTaskTransition(task.Status, entities.TaskStatusUploaded); err != nil {
		return UploadContentResult{}, err
	}
	if task.RequiresProduct {
		status, err := u.Shipments.ShipmentStatus(ctx, task.CampaignID, task.CreatorID)
		if err != nil {
			return UploadContentResult{}, err
		}
		if err := services.EnsureShipmentDelivered(task, status); err != nil {
			return UploadContentResult{}, err
		}
	}
	if err := u.Policy.Validate(cmd.File); err != nil {
		logger.Warn("upload rejected by policy",
			"event", "fulfillment_upload_policy_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"content_type", cmd.File.ContentType,
			"size_bytes", cmd.File.SizeBytes,
			"error", err.Error(),
		)
		return UploadContentResult{}, err
	}

	uploadID, err := u.newID(ctx)
	if err != nil {
		return UploadContentResult{}, err
	}
	fileName := cleanFileName(cmd.File.FileName)
	objectKey := fmt.Sprintf("tasks/%s/%s-%s", task.TaskID, uploadID, fileName)
	storageRef, err := u.Storage.PutObject(
		ctx,
		objectKey,
		cmd.File.ContentType,
		cmd.File.Body,
		cmd.File.SizeBytes,
	)
	if err != nil {
		logger.Error("upload storage failed",
			"event", "fulfillment_upload_storage_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
		return UploadContentResult{}, err
	}

	var result UploadContentResult
	err = u.withinTx(ctx, func(ctx context.Context) error {
		current, err := u.Tasks.GetTask(ctx, cmd.TaskID)
		if err != nil {
			return err
		}
		if current.Status != entities.TaskStatusUploaded {
			if err := services.ValidateTaskTransition(current.Status, entities.TaskStatusUploaded); err != nil {
				return err
			}
		}

		now := u.now()
		upload := entities.Upload{
			UploadID:        uploadID,
			TaskID:          current.TaskID,
			StorageRef:      storageRef,
			FileName:        fileName,
			ContentType:     cmd.File.ContentType,
			SizeBytes:       cmd.File.SizeBytes,
			DeliverableType: strings.TrimSpace(cmd.DeliverableType),
			Status:          entities.UploadStatusPending,
			UploadedByID:    cmd.Actor.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := u.Content.CreateUpload(ctx, upload); err != nil {
			return err
		}
		if _, err := u.Content.ResolveOpenRevisions(ctx, current.TaskID, now); err != nil {
			return err
		}
		if err := u.emitContent(ctx, contractsv1.EventContentUploaded, entities.AuditEntityUpload, upload.UploadID, current, string(upload.Status), cmd.Actor); err != nil {
			return err
		}

		if current.Status != entities.TaskStatusUploaded {
			previous := current.Status
			current.Status = entities.TaskStatusUploaded
			current.SubmittedAt = timePtr(now)
			current.UpdatedAt = now
			if err := u.Tasks.UpdateTask(ctx, current); err != nil {
				return err
			}
			if err := u.emitTask(ctx, contractsv1.EventTaskStatusChanged, current, previous, cmd.Actor); err != nil {
				return err
			}
		}
		result = UploadContentResult{Upload: upload, Task: current}
		return nil
	})
	if err != nil {
		logger.Warn("upload content failed",
			"event", "fulfillment_upload_content_failed",
			"module", application.ModuleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"storage_ref", storageRef,
			"error", err.Error(),
		)
		if deleteErr := u.Storage.DeleteObject(context.WithoutCancel(ctx), objectKey); deleteErr != nil {
			logger.Warn("orphaned upload object not deleted",
				"event", "fulfillment_upload_orphan_delete_failed",
				"module", application.ModuleName,
				"layer", "application",
				"task_id", cmd.TaskID,
				"storage_ref", storageRef,
				"error", deleteErr.Error(),
			)
		}
		return UploadContentResult{}, err
	}

	u.audit(ctx, cmd.Actor, "content.upload", entities.AuditEntityUpload, uploadID, map[string]any{
		"task_id":          cmd.TaskID,
		"deliverable_type": result.Upload.DeliverableType,
		"size_bytes":       result.Upload.SizeBytes,
	})
	logger.Info("content uploaded",
		"event", "fulfillment_content_uploaded",
		"module", application.ModuleName,
		"layer", "application",
		"task_id", cmd.TaskID,
		"upload_id", uploadID,
	)
	return result, nil
}

func cleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
