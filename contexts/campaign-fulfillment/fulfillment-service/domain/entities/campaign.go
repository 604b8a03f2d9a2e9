package entities

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign is owned by the campaign catalog; the orchestrator only reads it.
// ProductCount is resolved by the repository at load time.
type Campaign struct {
	CampaignID   string
	BrandID      string
	Title        string
	FixedPrice   *float64
	DeadlineAt   *time.Time
	Status       CampaignStatus
	ProductCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Campaign) HasProducts() bool {
	return c.ProductCount > 0
}

// ResolvePrice picks the custom price when supplied, otherwise the fixed price.
// A zero result means no usable price exists.
func (c Campaign) ResolvePrice(customPrice *float64) float64 {
	if customPrice != nil {
		if *customPrice > 0 {
			return *customPrice
		}
		return 0
	}
	if c.FixedPrice != nil && *c.FixedPrice > 0 {
		return *c.FixedPrice
	}
	return 0
}

type Product struct {
	ProductID  string
	CampaignID string
	Name       string
	CreatedAt  time.Time
}
