package entities

import (
	"io"
	"time"
)

type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "pending"
	UploadStatusApproved UploadStatus = "approved"
	UploadStatusRejected UploadStatus = "rejected"
)

type Upload struct {
	UploadID        string
	TaskID          string
	StorageRef      string
	FileName        string
	ContentType     string
	SizeBytes       int64
	DeliverableType string
	Status          UploadStatus
	UploadedByID    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UploadFile is the inbound file handed to content intake.
type UploadFile struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

type RevisionStatus string

const (
	RevisionStatusOpen     RevisionStatus = "open"
	RevisionStatusResolved RevisionStatus = "resolved"
)

type RevisionRequest struct {
	RevisionRequestID string
	TaskID            string
	Tags              []string
	Note              string
	Status            RevisionStatus
	RequestedByID     string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

type RatingScores struct {
	Quality       int
	Timeliness    int
	Communication int
}

func (r RatingScores) Valid() bool {
	for _, score := range []int{r.Quality, r.Timeliness, r.Communication} {
		if score < MinRatingScore || score > MaxRatingScore {
			return false
		}
	}
	return true
}

type Rating struct {
	RatingID  string
	TaskID    string
	CreatorID string
	Scores    RatingScores
	RatedByID string
	CreatedAt time.Time
}

type Approval struct {
	ApprovalID   string
	TaskID       string
	ApprovedByID string
	Note         string
	CreatedAt    time.Time
}
