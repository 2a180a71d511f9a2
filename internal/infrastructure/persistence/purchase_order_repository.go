package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/alanwarcs/BM-Backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements purchasing.Repository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

var _ purchasing.Repository = (*GormPurchaseOrderRepository)(nil)

// Save persists a new purchase order. A unique violation on the
// (business_id, po_number) index surfaces as shared.ErrAlreadyExists so the
// service can retry number allocation.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *purchasing.PurchaseOrder) error {
	model, err := models.PurchaseOrderModelFromDomain(po)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes with optimistic locking. The aggregate's version
// was already incremented in memory; the row must still hold the previous
// version or the write is rejected.
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, po *purchasing.PurchaseOrder) error {
	model, err := models.PurchaseOrderModelFromDomain(po)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND business_id = ? AND version = ?", po.GetID(), po.BusinessID, po.GetVersion()-1).
		Select("*").
		Omit("id", "business_id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
	}
	return nil
}

// FindByID loads a live order scoped to the business. Soft-deleted orders
// and orders of other businesses behave identically: not found.
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, businessID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ? AND is_deleted = ?", businessID, id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns a filtered page of live orders plus the unpaged total
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, businessID uuid.UUID, filter purchasing.ListFilter) ([]*purchasing.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("business_id = ? AND is_deleted = ?", businessID, false)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySort(query, filter)
	offset := (filter.Page - 1) * filter.PageSize
	var orderModels []models.PurchaseOrderModel
	if err := query.Offset(offset).Limit(filter.PageSize).Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*purchasing.PurchaseOrder, 0, len(orderModels))
	for i := range orderModels {
		po, err := orderModels[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, po)
	}
	return orders, total, nil
}

// LastPONumber returns the highest-sequence PO number issued for the
// business. Soft-deleted orders are included so their numbers stay consumed.
func (r *GormPurchaseOrderRepository) LastPONumber(ctx context.Context, businessID uuid.UUID) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("business_id = ?", businessID).
		Order("length(po_number) DESC, po_number DESC").
		Limit(1).
		Pluck("po_number", &number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// GrandAmountRange returns the min and max grand amounts over live orders
func (r *GormPurchaseOrderRepository) GrandAmountRange(ctx context.Context, businessID uuid.UUID) (purchasing.AmountRange, error) {
	var row struct {
		Min decimal.NullDecimal
		Max decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("business_id = ? AND is_deleted = ?", businessID, false).
		Select("MIN(grand_amount) AS min, MAX(grand_amount) AS max").
		Scan(&row).Error
	if err != nil {
		return purchasing.AmountRange{}, err
	}

	var amountRange purchasing.AmountRange
	if row.Min.Valid {
		amountRange.Min = row.Min.Decimal
	}
	if row.Max.Valid {
		amountRange.Max = row.Max.Decimal
	}
	return amountRange, nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter purchasing.ListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("po_number LIKE ? OR reference_number LIKE ? OR vendor_name LIKE ?", pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.VendorID != uuid.Nil {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.FromDate != "" {
		query = query.Where("order_date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		query = query.Where("order_date <= ?", filter.ToDate)
	}
	if filter.MinAmount != nil {
		query = query.Where("grand_amount >= ?", filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("grand_amount <= ?", filter.MaxAmount)
	}
	return query
}

// sortableColumns whitelists user-selectable sort columns
var sortableColumns = map[string]string{
	"po_number":    "po_number",
	"order_date":   "order_date",
	"grand_amount": "grand_amount",
	"due_amount":   "due_amount",
	"status":       "status",
	"created_at":   "created_at",
}

func (r *GormPurchaseOrderRepository) applySort(query *gorm.DB, filter purchasing.ListFilter) *gorm.DB {
	column, ok := sortableColumns[filter.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		direction = "ASC"
	}
	return query.Order(column + " " + direction)
}

// isUniqueViolation detects a duplicate-key error from Postgres (SQLSTATE
// 23505) or from GORM's portable error for other drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (used in tests) reports constraint failures as plain strings
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
