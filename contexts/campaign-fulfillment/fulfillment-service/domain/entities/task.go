package entities

import "time"

type TaskStatus string

const (
	TaskStatusSelected     TaskStatus = "selected"
	TaskStatusInProduction TaskStatus = "in_production"
	TaskStatusUploaded     TaskStatus = "uploaded"
	TaskStatusNeedsEdits   TaskStatus = "needs_edits"
	TaskStatusApproved     TaskStatus = "approved"
	TaskStatusPaid         TaskStatus = "paid"
	TaskStatusDisputed     TaskStatus = "disputed"
)

type Task struct {
	TaskID          string
	ApplicationID   string
	CampaignID      string
	CreatorID       string
	Status          TaskStatus
	RequiresProduct bool
	PaymentAmount   float64
	DueAt           *time.Time
	DisputeReason   string
	StartedAt       *time.Time
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal covers paid and the unresolved disputed escape state.
func (t Task) IsTerminal() bool {
	return t.Status == TaskStatusPaid || t.Status == TaskStatusDisputed
}

func IsSupportedTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusSelected,
		TaskStatusInProduction,
		TaskStatusUploaded,
		TaskStatusNeedsEdits,
		TaskStatusApproved,
		TaskStatusPaid,
		TaskStatusDisputed:
		return true
	default:
		return false
	}
}
