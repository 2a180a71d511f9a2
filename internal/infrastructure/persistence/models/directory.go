package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorModel is the vendor directory row referenced by purchase orders.
// Vendor CRUD is owned elsewhere; this model only reads.
type VendorModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(200);not null"`
	GSTIN      string    `gorm:"type:varchar(20)"`
	GSTStatus  string    `gorm:"type:varchar(20)"`
	State      string    `gorm:"type:varchar(100)"`
	Address    string    `gorm:"type:text"`
	Phone      string    `gorm:"type:varchar(20)"`
	IsDeleted  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for VendorModel
func (VendorModel) TableName() string {
	return "vendors"
}

// OrganizationModel is the owning business profile
type OrganizationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	GSTIN     string    `gorm:"type:varchar(20)"`
	State     string    `gorm:"type:varchar(100)"`
	Address   string    `gorm:"type:text"`
	Phone     string    `gorm:"type:varchar(20)"`
	Email     string    `gorm:"type:varchar(200)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for OrganizationModel
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ItemModel is the product catalog row referenced by order lines
type ItemModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Unit       string    `gorm:"type:varchar(20)"`
	HSNOrSAC   string    `gorm:"type:varchar(20)"`
	IsDeleted  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for ItemModel
func (ItemModel) TableName() string {
	return "items"
}
