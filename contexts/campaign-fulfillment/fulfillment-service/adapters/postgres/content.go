package postgresadapter

import (
	"context"
	"encoding/json"
	"time"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

func (r *Repository) CreateUpload(ctx context.Context, upload entities.Upload) error {
	row := uploadModel{
		UploadID:        upload.UploadID,
		TaskID:          upload.TaskID,
		StorageRef:      upload.StorageRef,
		FileName:        upload.FileName,
		ContentType:     upload.ContentType,
		SizeBytes:       upload.SizeBytes,
		DeliverableType: upload.DeliverableType,
		Status:          string(upload.Status),
		UploadedByID:    upload.UploadedByID,
		CreatedAt:       upload.CreatedAt.UTC(),
		UpdatedAt:       upload.UpdatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListUploads(ctx context.Context, taskID string) ([]entities.Upload, error) {
	var rows []uploadModel
	if err := r.conn(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Order("upload_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Upload, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TransitionUploads(
	ctx context.Context,
	taskID string,
	from entities.UploadStatus,
	to entities.UploadStatus,
	updatedAt time.Time,
) (int, error) {
	result := r.conn(ctx).Model(&uploadModel{}).
		Where("task_id = ? AND status = ?", taskID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) CreateRevisionRequest(ctx context.Context, request entities.RevisionRequest) error {
	tags := request.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	row := revisionModel{
		RevisionRequestID: request.RevisionRequestID,
		TaskID:            request.TaskID,
		Tags:              string(encoded),
		Note:              request.Note,
		Status:            string(request.Status),
		RequestedByID:     request.RequestedByID,
		CreatedAt:         request.CreatedAt.UTC(),
		ResolvedAt:        utcPtr(request.ResolvedAt),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListRevisionRequests(ctx context.Context, taskID string) ([]entities.RevisionRequest, error) {
	var rows []revisionModel
	if err := r.conn(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Order("revision_request_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.RevisionRequest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ResolveOpenRevisions(ctx context.Context, taskID string, resolvedAt time.Time) (int, error) {
	result := r.conn(ctx).Model(&revisionModel{}).
		Where("task_id = ? AND status = ?", taskID, string(entities.RevisionStatusOpen)).
		Updates(map[string]any{
			"status":      string(entities.RevisionStatusResolved),
			"resolved_at": resolvedAt.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) CreateRating(ctx context.Context, rating entities.Rating) error {
	row := ratingModel{
		RatingID:      rating.RatingID,
		TaskID:        rating.TaskID,
		CreatorID:     rating.CreatorID,
		Quality:       rating.Scores.Quality,
		Timeliness:    rating.Scores.Timeliness,
		Communication: rating.Scores.Communication,
		RatedByID:     rating.RatedByID,
		CreatedAt:     rating.CreatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) CreateApproval(ctx context.Context, approval entities.Approval) error {
	row := approvalModel{
		ApprovalID:   approval.ApprovalID,
		TaskID:       approval.TaskID,
		ApprovedByID: approval.ApprovedByID,
		Note:         approval.Note,
		CreatedAt:    approval.CreatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}
