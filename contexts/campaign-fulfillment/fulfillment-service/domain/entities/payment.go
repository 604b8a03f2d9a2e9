package entities

import (
	"math"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Payment struct {
	PaymentID  string
	TaskID     string
	CreatorID  string
	CampaignID string
	Amount     float64
	Status     PaymentStatus
	InvoiceURL string
	BatchID    string
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BatchPayoutStatus string

const (
	BatchPayoutStatusPending  BatchPayoutStatus = "pending"
	BatchPayoutStatusExecuted BatchPayoutStatus = "executed"
	BatchPayoutStatusFailed   BatchPayoutStatus = "failed"
)

// BatchPayout keeps an immutable snapshot of the payments it settled.
type BatchPayout struct {
	BatchID     string
	PaymentIDs  []string
	TotalAmount float64
	Status      BatchPayoutStatus
	Notes       string
	CreatedByID string
	CreatedAt   time.Time
	ExecutedAt  *time.Time
}

// SumPayments totals amounts rounded to cents.
func SumPayments(payments []Payment) float64 {
	total := 0.0
	for _, payment := range payments {
		total += payment.Amount
	}
	return math.Round(total*100) / 100
}
