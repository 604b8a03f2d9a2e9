package services

import (
	"strings"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"
)

const DefaultMaxUploadBytes int64 = 500 << 20

type UploadPolicy struct {
	MaxBytes            int64
	AllowedContentTypes []string
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxBytes: DefaultMaxUploadBytes,
		AllowedContentTypes: []string{
			"video/mp4",
			"video/quicktime",
			"video/webm",
			"image/jpeg",
			"image/png",
		},
	}
}

func (p UploadPolicy) Validate(file entities.UploadFile) error {
	if file.SizeBytes <= 0 {
		return domainerrors.ErrEmptyFile
	}
	limit := p.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if file.SizeBytes > limit {
		return domainerrors.ErrFileTooLarge
	}
	if !p.allows(file.ContentType) {
		return domainerrors.ErrUnsupportedFileType
	}
	return nil
}

func (p UploadPolicy) allows(contentType string) bool {
	value := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	if value == "" {
		return false
	}
	allowed := p.AllowedContentTypes
	if len(allowed) == 0 {
		allowed = DefaultUploadPolicy().AllowedContentTypes
	}
	for _, item := range allowed {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
