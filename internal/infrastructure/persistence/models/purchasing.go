// Package models contains GORM persistence models and their domain mappings.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence shape of a purchase order. Line
// items, the EMI schedule and attachment metadata live in JSONB columns:
// they are document-shaped, always loaded with the order and never queried
// independently.
type PurchaseOrderModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index:idx_po_business;uniqueIndex:idx_po_business_number,priority:1"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
	UpdatedBy  *uuid.UUID `gorm:"type:uuid"`

	PONumber        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_po_business_number,priority:2"`
	ReferenceNumber string `gorm:"type:varchar(100)"`

	VendorID        uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorName      string    `gorm:"type:varchar(200);not null"`
	VendorGSTIN     string    `gorm:"type:varchar(20)"`
	VendorGSTStatus string    `gorm:"type:varchar(20)"`
	VendorState     string    `gorm:"type:varchar(100)"`
	VendorAddress   string    `gorm:"type:text"`
	VendorPhone     string    `gorm:"type:varchar(20)"`

	OrgName    string `gorm:"type:varchar(200)"`
	OrgGSTIN   string `gorm:"type:varchar(20)"`
	OrgState   string `gorm:"type:varchar(100)"`
	OrgAddress string `gorm:"type:text"`
	OrgPhone   string `gorm:"type:varchar(20)"`
	OrgEmail   string `gorm:"type:varchar(200)"`

	OrderDate       time.Time  `gorm:"not null;index"`
	DueDate         *time.Time `gorm:""`
	BillNumber      string     `gorm:"type:varchar(100)"`
	BillDate        *time.Time `gorm:""`
	IsBillGenerated bool       `gorm:"not null;default:false"`
	BillGeneratedAt *time.Time `gorm:""`

	Status        string `gorm:"type:varchar(20);not null;default:'Pending';index"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'UnPaid';index"`
	PaymentType   string `gorm:"type:varchar(30)"`
	Note          string `gorm:"type:text"`

	BillingAddress   string `gorm:"type:text"`
	ShippingAddress  string `gorm:"type:text"`
	SourceState      string `gorm:"type:varchar(100)"`
	DeliveryState    string `gorm:"type:varchar(100)"`
	DeliveryLocation string `gorm:"type:varchar(200)"`

	Products    []byte `gorm:"type:jsonb;not null"`
	EMIDetails  []byte `gorm:"type:jsonb"`
	Attachments []byte `gorm:"type:jsonb"`

	Discount              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType          string          `gorm:"type:varchar(10);not null;default:'Flat'"`
	DiscountValueType     string          `gorm:"type:varchar(10);not null;default:'Percent'"`
	TotalAmountOfDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Subtotal            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalBeforeDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RoundOff            bool            `gorm:"not null;default:false"`
	RoundOffAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;index"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DueAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	DeliveryTerms      string `gorm:"type:text"`
	TermsAndConditions string `gorm:"type:text"`

	IsDeleted bool `gorm:"not null;default:false;index"`

	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for PurchaseOrderModel
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderModelFromDomain converts a domain aggregate to its
// persistence model.
func PurchaseOrderModelFromDomain(po *purchasing.PurchaseOrder) (*PurchaseOrderModel, error) {
	products, err := json.Marshal(po.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	var emi []byte
	if po.EMIDetails != nil {
		emi, err = json.Marshal(po.EMIDetails)
		if err != nil {
			return nil, fmt.Errorf("failed to encode emi details: %w", err)
		}
	}
	attachments, err := json.Marshal(po.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	return &PurchaseOrderModel{
		ID:         po.GetID(),
		BusinessID: po.BusinessID,
		CreatedBy:  po.CreatedBy,
		UpdatedBy:  po.UpdatedBy,

		PONumber:        po.PONumber,
		ReferenceNumber: po.ReferenceNumber,

		VendorID:        po.VendorID,
		VendorName:      po.Vendor.Name,
		VendorGSTIN:     po.Vendor.GSTIN,
		VendorGSTStatus: string(po.Vendor.GSTStatus),
		VendorState:     po.Vendor.State,
		VendorAddress:   po.Vendor.Address,
		VendorPhone:     po.Vendor.Phone,

		OrgName:    po.Business.Name,
		OrgGSTIN:   po.Business.GSTIN,
		OrgState:   po.Business.State,
		OrgAddress: po.Business.Address,
		OrgPhone:   po.Business.Phone,
		OrgEmail:   po.Business.Email,

		OrderDate:       po.OrderDate,
		DueDate:         po.DueDate,
		BillNumber:      po.BillNumber,
		BillDate:        po.BillDate,
		IsBillGenerated: po.IsBillGenerated,
		BillGeneratedAt: po.BillGeneratedAt,

		Status:        string(po.Status),
		PaymentStatus: string(po.PaymentStatus),
		PaymentType:   string(po.PaymentType),
		Note:          po.Note,

		BillingAddress:   po.Address.Billing,
		ShippingAddress:  po.Address.Shipping,
		SourceState:      po.Address.SourceState,
		DeliveryState:    po.Address.DeliveryState,
		DeliveryLocation: po.Address.DeliveryLocation,

		Products:    products,
		EMIDetails:  emi,
		Attachments: attachments,

		Discount:              po.Discount,
		DiscountType:          string(po.DiscountType),
		DiscountValueType:     string(po.DiscountValueType),
		TotalAmountOfDiscount: po.TotalAmountOfDiscount,

		Subtotal:            po.Subtotal,
		TotalBeforeDiscount: po.TotalBeforeDiscount,
		TaxAmount:           po.TaxAmount,
		RoundOff:            po.RoundOff,
		RoundOffAmount:      po.RoundOffAmount,
		GrandAmount:         po.GrandAmount,
		PaidAmount:          po.PaidAmount,
		DueAmount:           po.DueAmount,

		DeliveryTerms:      po.DeliveryTerms,
		TermsAndConditions: po.TermsAndConditions,

		IsDeleted: po.IsDeleted,
		Version:   po.GetVersion(),
		CreatedAt: po.GetCreatedAt(),
		UpdatedAt: po.GetUpdatedAt(),
	}, nil
}

// ToDomain converts the persistence model back to the domain aggregate
func (m *PurchaseOrderModel) ToDomain() (*purchasing.PurchaseOrder, error) {
	var products []purchasing.LineItem
	if len(m.Products) > 0 {
		if err := json.Unmarshal(m.Products, &products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
	}
	var emi *purchasing.EMIDetails
	if len(m.EMIDetails) > 0 {
		emi = &purchasing.EMIDetails{}
		if err := json.Unmarshal(m.EMIDetails, emi); err != nil {
			return nil, fmt.Errorf("failed to decode emi details: %w", err)
		}
	}
	var attachments []purchasing.Attachment
	if len(m.Attachments) > 0 {
		if err := json.Unmarshal(m.Attachments, &attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}

	po := &purchasing.PurchaseOrder{
		PONumber:        m.PONumber,
		ReferenceNumber: m.ReferenceNumber,
		VendorID:        m.VendorID,
		Vendor: purchasing.VendorSnapshot{
			ID:        m.VendorID,
			Name:      m.VendorName,
			GSTIN:     m.VendorGSTIN,
			GSTStatus: purchasing.GSTStatus(m.VendorGSTStatus),
			State:     m.VendorState,
			Address:   m.VendorAddress,
			Phone:     m.VendorPhone,
		},
		Business: purchasing.BusinessSnapshot{
			ID:      m.BusinessID,
			Name:    m.OrgName,
			GSTIN:   m.OrgGSTIN,
			State:   m.OrgState,
			Address: m.OrgAddress,
			Phone:   m.OrgPhone,
			Email:   m.OrgEmail,
		},
		OrderDate:       m.OrderDate,
		DueDate:         m.DueDate,
		BillNumber:      m.BillNumber,
		BillDate:        m.BillDate,
		IsBillGenerated: m.IsBillGenerated,
		BillGeneratedAt: m.BillGeneratedAt,

		Status:        purchasing.Status(m.Status),
		PaymentStatus: purchasing.PaymentStatus(m.PaymentStatus),
		PaymentType:   purchasing.PaymentType(m.PaymentType),
		Note:          m.Note,

		Address: purchasing.AddressBlock{
			Billing:          m.BillingAddress,
			Shipping:         m.ShippingAddress,
			SourceState:      m.SourceState,
			DeliveryState:    m.DeliveryState,
			DeliveryLocation: m.DeliveryLocation,
		},
		Products: products,

		Discount:              m.Discount,
		DiscountType:          purchasing.DiscountType(m.DiscountType),
		DiscountValueType:     purchasing.DiscountValueType(m.DiscountValueType),
		TotalAmountOfDiscount: m.TotalAmountOfDiscount,

		Subtotal:            m.Subtotal,
		TotalBeforeDiscount: m.TotalBeforeDiscount,
		TaxAmount:           m.TaxAmount,
		RoundOff:            m.RoundOff,
		RoundOffAmount:      m.RoundOffAmount,
		GrandAmount:         m.GrandAmount,
		PaidAmount:          m.PaidAmount,
		DueAmount:           m.DueAmount,

		EMIDetails:  emi,
		Attachments: attachments,

		DeliveryTerms:      m.DeliveryTerms,
		TermsAndConditions: m.TermsAndConditions,
		IsDeleted:          m.IsDeleted,
	}

	po.BusinessAggregateRoot = shared.BusinessAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		BusinessID: m.BusinessID,
		CreatedBy:  m.CreatedBy,
		UpdatedBy:  m.UpdatedBy,
	}
	return po, nil
}
