package entities

import (
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

const MinFeedbackNoteLength = 10

type Application struct {
	ApplicationID       string
	CampaignID          string
	CreatorID           string
	Status              ApplicationStatus
	RejectionReasonCode string
	RejectionNote       string
	DecidedByID         string
	DecidedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasRejectionFeedback is true once a complete reason code and note were
// recorded; later decision flips may then omit feedback.
func (a Application) HasRejectionFeedback() bool {
	return strings.TrimSpace(a.RejectionReasonCode) != "" &&
		NoteLongEnough(a.RejectionNote)
}

func NoteLongEnough(note string) bool {
	return len([]rune(strings.TrimSpace(note))) >= MinFeedbackNoteLength
}
