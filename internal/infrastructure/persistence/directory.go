package persistence

import (
	"context"
	"errors"

	apppurchasing "github.com/alanwarcs/BM-Backend/internal/application/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/alanwarcs/BM-Backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorDirectory reads vendor records for snapshotting onto orders
type GormVendorDirectory struct {
	db *gorm.DB
}

// NewGormVendorDirectory creates a new GormVendorDirectory
func NewGormVendorDirectory(db *gorm.DB) *GormVendorDirectory {
	return &GormVendorDirectory{db: db}
}

var _ apppurchasing.VendorDirectory = (*GormVendorDirectory)(nil)

// FindVendor loads a live vendor scoped to the business
func (d *GormVendorDirectory) FindVendor(ctx context.Context, businessID, vendorID uuid.UUID) (*apppurchasing.VendorInfo, error) {
	var model models.VendorModel
	if err := d.db.WithContext(ctx).
		Where("business_id = ? AND id = ? AND is_deleted = ?", businessID, vendorID, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &apppurchasing.VendorInfo{
		ID:        model.ID,
		Name:      model.Name,
		GSTIN:     model.GSTIN,
		GSTStatus: purchasing.GSTStatus(model.GSTStatus),
		State:     model.State,
		Address:   model.Address,
		Phone:     model.Phone,
	}, nil
}

// GormOrganizationDirectory reads the business profile
type GormOrganizationDirectory struct {
	db *gorm.DB
}

// NewGormOrganizationDirectory creates a new GormOrganizationDirectory
func NewGormOrganizationDirectory(db *gorm.DB) *GormOrganizationDirectory {
	return &GormOrganizationDirectory{db: db}
}

var _ apppurchasing.OrganizationDirectory = (*GormOrganizationDirectory)(nil)

// FindOrganization loads the business profile for a tenant
func (d *GormOrganizationDirectory) FindOrganization(ctx context.Context, businessID uuid.UUID) (*apppurchasing.OrganizationInfo, error) {
	var model models.OrganizationModel
	if err := d.db.WithContext(ctx).
		Where("id = ?", businessID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &apppurchasing.OrganizationInfo{
		ID:      model.ID,
		Name:    model.Name,
		GSTIN:   model.GSTIN,
		State:   model.State,
		Address: model.Address,
		Phone:   model.Phone,
		Email:   model.Email,
	}, nil
}

// GormProductCatalog checks product references against the items table
type GormProductCatalog struct {
	db *gorm.DB
}

// NewGormProductCatalog creates a new GormProductCatalog
func NewGormProductCatalog(db *gorm.DB) *GormProductCatalog {
	return &GormProductCatalog{db: db}
}

var _ apppurchasing.ProductCatalog = (*GormProductCatalog)(nil)

// MissingProducts returns the IDs that do not resolve to a live item owned
// by the business.
func (c *GormProductCatalog) MissingProducts(ctx context.Context, businessID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var found []uuid.UUID
	err := c.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Where("business_id = ? AND id IN ? AND is_deleted = ?", businessID, productIDs, false).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range productIDs {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
