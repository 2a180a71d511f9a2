package purchasing

import (
	"context"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountRange is the min/max grand amount across a business's live orders,
// used by the UI to seed range filters.
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Repository is the persistence port for purchase orders. Every query is
// scoped to a business; an order belonging to another business behaves as
// if it does not exist.
type Repository interface {
	// Save persists a new purchase order. A duplicate (business, PO number)
	// pair returns shared.ErrAlreadyExists.
	Save(ctx context.Context, po *PurchaseOrder) error

	// Update persists changes with optimistic locking; a stale version
	// returns shared.ErrConcurrencyConflict.
	Update(ctx context.Context, po *PurchaseOrder) error

	// FindByID loads a live (non-deleted) order for the business
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll returns a filtered, paginated page of live orders
	FindAll(ctx context.Context, businessID uuid.UUID, filter ListFilter) ([]*PurchaseOrder, int64, error)

	// LastPONumber returns the most recently issued PO number for the
	// business, including numbers held by soft-deleted orders so a number
	// is never reissued. Empty string when no orders exist.
	LastPONumber(ctx context.Context, businessID uuid.UUID) (string, error)

	// GrandAmountRange returns min and max grand amounts over live orders
	GrandAmountRange(ctx context.Context, businessID uuid.UUID) (AmountRange, error)
}

// ListFilter narrows and pages the purchase order list
type ListFilter struct {
	shared.Filter
	Status        Status
	PaymentStatus PaymentStatus
	VendorID      uuid.UUID
	FromDate      string
	ToDate        string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

// DefaultListFilter returns a list filter with default pagination
func DefaultListFilter() ListFilter {
	return ListFilter{Filter: shared.DefaultFilter()}
}
