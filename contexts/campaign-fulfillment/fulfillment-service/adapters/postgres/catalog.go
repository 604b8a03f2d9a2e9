package postgresadapter

import (
	"context"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	domainerrors "creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/errors"

	"gorm.io/gorm/clause"
)

func (r *Repository) GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error) {
	db := r.conn(ctx)
	var row campaignModel
	if err := db.Where("campaign_id = ?", campaignID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, err
	}
	var products int64
	if err := db.Model(&productModel{}).Where("campaign_id = ?", campaignID).Count(&products).Error; err != nil {
		return entities.Campaign{}, err
	}
	return row.toEntity(int(products)), nil
}

// SaveCampaign upserts a campaign row. The catalog service owns campaigns; the
// orchestrator only writes them when seeding local environments.
func (r *Repository) SaveCampaign(ctx context.Context, campaign entities.Campaign) error {
	row := campaignModelFromEntity(campaign)
	return r.conn(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (r *Repository) AddProduct(ctx context.Context, product entities.Product) (bool, error) {
	db := r.conn(ctx)
	var campaigns int64
	if err := db.Model(&campaignModel{}).Where("campaign_id = ?", product.CampaignID).Count(&campaigns).Error; err != nil {
		return false, err
	}
	if campaigns == 0 {
		return false, domainerrors.ErrCampaignNotFound
	}

	row := productModel{
		ProductID:  product.ProductID,
		CampaignID: product.CampaignID,
		Name:       product.Name,
		CreatedAt:  product.CreatedAt.UTC(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var existing productModel
	if err := db.Where("product_id = ?", product.ProductID).First(&existing).Error; err != nil {
		return false, err
	}
	if existing.CampaignID != product.CampaignID {
		return false, domainerrors.ErrRepositoryInvariantBroke
	}
	return false, nil
}

func (r *Repository) SaveApplication(ctx context.Context, app entities.Application) error {
	row := applicationModelFromEntity(app)
	return r.conn(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (r *Repository) GetApplication(ctx context.Context, applicationID string) (entities.Application, error) {
	var row applicationModel
	if err := r.conn(ctx).Where("application_id = ?", applicationID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.Application{}, domainerrors.ErrApplicationNotFound
		}
		return entities.Application{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateApplication(ctx context.Context, app entities.Application) error {
	row := applicationModelFromEntity(app)
	result := r.conn(ctx).Model(&applicationModel{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(map[string]any{
			"status":                row.Status,
			"rejection_reason_code": row.RejectionReasonCode,
			"rejection_note":        row.RejectionNote,
			"decided_by_id":         row.DecidedByID,
			"decided_at":            row.DecidedAt,
			"updated_at":            row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrApplicationNotFound
	}
	return nil
}

func (r *Repository) ListApplicationsByCampaign(
	ctx context.Context,
	campaignID string,
	status entities.ApplicationStatus,
) ([]entities.Application, error) {
	query := r.conn(ctx).Where("campaign_id = ?", campaignID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []applicationModel
	if err := query.Order("application_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Application, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveAddress(ctx context.Context, address entities.Address) error {
	row := addressModel{
		AddressID:  address.AddressID,
		CreatorID:  address.CreatorID,
		Recipient:  address.Recipient,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
	return r.conn(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (r *Repository) GetAddress(ctx context.Context, addressID string) (entities.Address, error) {
	var row addressModel
	if err := r.conn(ctx).Where("address_id = ?", addressID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return entities.Address{}, domainerrors.ErrAddressNotFound
		}
		return entities.Address{}, err
	}
	return row.toEntity(), nil
}
