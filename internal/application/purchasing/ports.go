package purchasing

import (
	"context"
	"io"

	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/google/uuid"
)

// ObjectStorageService is the port for attachment blob storage. FilePath on
// an attachment is the storage key.
type ObjectStorageService interface {
	PutObject(ctx context.Context, storageKey, contentType string, body io.Reader) error
	GetObject(ctx context.Context, storageKey string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// VendorInfo is the live vendor record used to build the order's vendor
// snapshot at creation time.
type VendorInfo struct {
	ID        uuid.UUID
	Name      string
	GSTIN     string
	GSTStatus purchasing.GSTStatus
	State     string
	Address   string
	Phone     string
}

// VendorDirectory resolves vendors within a business. A vendor that does
// not exist, or belongs to another business, returns shared.ErrNotFound.
type VendorDirectory interface {
	FindVendor(ctx context.Context, businessID, vendorID uuid.UUID) (*VendorInfo, error)
}

// OrganizationInfo is the owning business profile captured into the order's
// business snapshot.
type OrganizationInfo struct {
	ID      uuid.UUID
	Name    string
	GSTIN   string
	State   string
	Address string
	Phone   string
	Email   string
}

// OrganizationDirectory resolves the business profile for a tenant
type OrganizationDirectory interface {
	FindOrganization(ctx context.Context, businessID uuid.UUID) (*OrganizationInfo, error)
}

// ProductCatalog checks product references within a business
type ProductCatalog interface {
	// MissingProducts returns the subset of IDs that do not exist (or are
	// not visible) for the business.
	MissingProducts(ctx context.Context, businessID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error)
}
