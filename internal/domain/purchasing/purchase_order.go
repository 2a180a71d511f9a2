package purchasing

import (
	"fmt"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the document lifecycle state of a purchase order,
// independent of payment.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancel    Status = "Cancel"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancel:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Completed and Cancel are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusCompleted || target == StatusCancel
	case StatusCompleted, StatusCancel:
		return false
	}
	return false
}

// PaymentStatus is derived from paid amount vs grand amount; it is never set
// directly to a value inconsistent with those figures.
type PaymentStatus string

const (
	PaymentStatusUnPaid        PaymentStatus = "UnPaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnPaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

// DerivePaymentStatus computes the payment status from paid vs grand amounts
func DerivePaymentStatus(paidAmount, grandAmount decimal.Decimal) PaymentStatus {
	switch {
	case paidAmount.LessThanOrEqual(decimal.Zero):
		return PaymentStatusUnPaid
	case paidAmount.GreaterThanOrEqual(grandAmount):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// PaymentType describes how the order is to be settled
type PaymentType string

const (
	PaymentTypeFull            PaymentType = "Full Payment"
	PaymentTypeEMI             PaymentType = "EMI"
	PaymentTypeAdvance         PaymentType = "Advance"
	PaymentTypeFinalSettlement PaymentType = "Final Settlement"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeFull, PaymentTypeEMI, PaymentTypeAdvance, PaymentTypeFinalSettlement, "":
		return true
	}
	return false
}

// GSTStatus is the vendor's GST registration status
type GSTStatus string

const (
	GSTStatusRegistered   GSTStatus = "Registered"
	GSTStatusUnregistered GSTStatus = "Unregistered"
)

// VendorSnapshot captures the counterparty at creation time so the document
// stays historically accurate even when the live vendor record changes later.
// Only ID remains a live reference, used for authorization checks.
type VendorSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin"`
	GSTStatus GSTStatus `json:"gstStatus"`
	State     string    `json:"state"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
}

// BusinessSnapshot captures the owning organization at creation time
type BusinessSnapshot struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	GSTIN   string    `json:"gstin"`
	State   string    `json:"state"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`
}

// AddressBlock holds the billing/shipping addresses and the states that
// drive the intra-state vs inter-state tax split.
type AddressBlock struct {
	Billing          string `json:"billing"`
	Shipping         string `json:"shipping"`
	SourceState      string `json:"sourceState"`
	DeliveryState    string `json:"deliveryState"`
	DeliveryLocation string `json:"deliveryLocation,omitempty"`
}

// TaxContext returns the tax context derived from the address block
func (a AddressBlock) TaxContext() TaxContext {
	return TaxContext{SourceState: a.SourceState, DeliveryState: a.DeliveryState}
}

// Attachment is file metadata owned by exactly one purchase order; the file
// itself is an external blob referenced by FilePath.
type Attachment struct {
	ID         uuid.UUID  `json:"id"`
	FileName   string     `json:"fileName"`
	FilePath   string     `json:"filePath"`
	UploadedBy *uuid.UUID `json:"uploadedBy,omitempty"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

// NewAttachment creates attachment metadata for a stored file
func NewAttachment(fileName, filePath string, uploadedBy *uuid.UUID) Attachment {
	return Attachment{
		ID:         uuid.New(),
		FileName:   fileName,
		FilePath:   filePath,
		UploadedBy: uploadedBy,
		UploadedAt: time.Now(),
	}
}

// PurchaseOrder is the financial document aggregate root. All monetary
// fields are decimals; the closed arithmetic system between subtotal,
// discount, tax, round-off and grand total is enforced by Reconcile before
// every persisted write.
type PurchaseOrder struct {
	shared.BusinessAggregateRoot

	PONumber        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_po_business_number,priority:2"`
	ReferenceNumber string `gorm:"type:varchar(100)"`

	VendorID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Vendor   VendorSnapshot   `gorm:"embedded;embeddedPrefix:vendor_"`
	Business BusinessSnapshot `gorm:"embedded;embeddedPrefix:org_"`

	OrderDate       time.Time  `gorm:"not null"`
	DueDate         *time.Time `gorm:""`
	BillNumber      string     `gorm:"type:varchar(100)"`
	BillDate        *time.Time `gorm:""`
	IsBillGenerated bool       `gorm:"not null;default:false"`
	BillGeneratedAt *time.Time `gorm:""`

	Status        Status        `gorm:"type:varchar(20);not null;default:'Pending'"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'UnPaid'"`
	PaymentType   PaymentType   `gorm:"type:varchar(30)"`
	Note          string        `gorm:"type:text"`

	Address  AddressBlock `gorm:"embedded;embeddedPrefix:addr_"`
	Products []LineItem   `gorm:"-"`

	Discount              decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType          DiscountType      `gorm:"type:varchar(10);not null;default:'Flat'"`
	DiscountValueType     DiscountValueType `gorm:"type:varchar(10);not null;default:'Percent'"`
	TotalAmountOfDiscount decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`

	Subtotal            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalBeforeDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RoundOff            bool            `gorm:"not null;default:false"`
	RoundOffAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	EMIDetails  *EMIDetails  `gorm:"-"`
	Attachments []Attachment `gorm:"-"`

	DeliveryTerms      string `gorm:"type:text"`
	TermsAndConditions string `gorm:"type:text"`

	IsDeleted bool `gorm:"not null;default:false;index"`
}

// NewPurchaseOrder creates a new pending purchase order shell. Financial
// fields are filled by the pricing/reconciliation pipeline before persist.
func NewPurchaseOrder(businessID uuid.UUID, poNumber string, vendor VendorSnapshot, business BusinessSnapshot, orderDate time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if vendor.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if orderDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ORDER_DATE", "Order date is required")
	}

	return &PurchaseOrder{
		BusinessAggregateRoot: shared.NewBusinessAggregateRoot(businessID),
		PONumber:              poNumber,
		VendorID:              vendor.ID,
		Vendor:                vendor,
		Business:              business,
		OrderDate:             orderDate,
		Status:                StatusPending,
		PaymentStatus:         PaymentStatusUnPaid,
		Subtotal:              decimal.Zero,
		TotalBeforeDiscount:   decimal.Zero,
		TaxAmount:             decimal.Zero,
		GrandAmount:           decimal.Zero,
		PaidAmount:            decimal.Zero,
		DueAmount:             decimal.Zero,
		Discount:              decimal.Zero,
		DiscountType:          DiscountTypeFlat,
		DiscountValueType:     DiscountValueTypePercent,
		TotalAmountOfDiscount: decimal.Zero,
		RoundOffAmount:        decimal.Zero,
		Products:              make([]LineItem, 0),
		Attachments:           make([]Attachment, 0),
	}, nil
}

// MarkCompleted transitions the order to Completed. This is a business
// decision (dues settled and goods delivered), not auto-computed.
func (po *PurchaseOrder) MarkCompleted() error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	if !po.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", po.Status))
	}
	po.Status = StatusCompleted
	po.Touch()
	po.IncrementVersion()
	return nil
}

// MarkCancelled transitions the order to Cancel (terminal)
func (po *PurchaseOrder) MarkCancelled() error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	if !po.Status.CanTransitionTo(StatusCancel) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", po.Status))
	}
	po.Status = StatusCancel
	po.Touch()
	po.IncrementVersion()
	return nil
}

// ApplyPayment records an amount paid against the order, recomputing the due
// amount and deriving the payment status.
func (po *PurchaseOrder) ApplyPayment(amount decimal.Decimal) error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	newPaid := po.PaidAmount.Add(amount)
	if newPaid.GreaterThan(po.GrandAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds outstanding due amount")
	}
	po.PaidAmount = newPaid
	po.DueAmount = po.GrandAmount.Sub(po.PaidAmount)
	po.PaymentStatus = DerivePaymentStatus(po.PaidAmount, po.GrandAmount)
	po.Touch()
	po.IncrementVersion()
	return nil
}

// MarkBillGenerated records that a bill was generated for this order
func (po *PurchaseOrder) MarkBillGenerated(billNumber string, billDate time.Time) error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	if po.IsBillGenerated {
		return shared.NewDomainError("INVALID_STATE", "Bill already generated for this order")
	}
	now := time.Now()
	po.BillNumber = billNumber
	po.BillDate = &billDate
	po.IsBillGenerated = true
	po.BillGeneratedAt = &now
	po.Touch()
	po.IncrementVersion()
	return nil
}

// SoftDelete hides the order from every tenant-scoped query while keeping
// the record (and its PO number) for audit history. Deleted orders are
// immutable except for audit fields.
func (po *PurchaseOrder) SoftDelete(deletedBy uuid.UUID) error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	po.IsDeleted = true
	po.SetUpdatedBy(deletedBy)
	po.Touch()
	po.IncrementVersion()
	return nil
}

// RecordInstallmentPayment marks a single EMI installment as paid. This is
// deliberately separate from the generic update path so editing unrelated PO
// fields can never overwrite payment history.
func (po *PurchaseOrder) RecordInstallmentPayment(index int, method PaymentMethod, reference, note string, paidAt time.Time) error {
	if po.IsDeleted {
		return shared.ErrNotFound
	}
	if po.EMIDetails == nil {
		return shared.NewDomainError("NO_EMI", "Order has no EMI schedule")
	}
	if index < 0 || index >= len(po.EMIDetails.Installments) {
		return shared.NewDomainError("INVALID_INSTALLMENT", "Installment index out of range")
	}
	inst := &po.EMIDetails.Installments[index]
	if inst.Status == InstallmentStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Installment is already paid")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}

	inst.Status = InstallmentStatusPaid
	inst.PaymentDate = &paidAt
	inst.PaymentMethod = method
	inst.PaymentReference = reference
	inst.PaymentNote = note

	po.PaidAmount = po.PaidAmount.Add(inst.Amount)
	po.DueAmount = po.GrandAmount.Sub(po.PaidAmount)
	po.PaymentStatus = DerivePaymentStatus(po.PaidAmount, po.GrandAmount)
	po.Touch()
	po.IncrementVersion()
	return nil
}

// DiffAttachments splits the current attachment set against the set of IDs
// the caller wants to keep. Kept entries stay untouched; everything else is
// scheduled for best-effort file deletion by the caller.
func (po *PurchaseOrder) DiffAttachments(keepIDs []uuid.UUID) (kept, removed []Attachment) {
	keep := make(map[uuid.UUID]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	for _, att := range po.Attachments {
		if _, ok := keep[att.ID]; ok {
			kept = append(kept, att)
		} else {
			removed = append(removed, att)
		}
	}
	return kept, removed
}

// AddAttachment appends freshly uploaded file metadata
func (po *PurchaseOrder) AddAttachment(att Attachment) {
	po.Attachments = append(po.Attachments, att)
}

// FindAttachment returns the attachment with the given ID, or nil
func (po *PurchaseOrder) FindAttachment(attachmentID uuid.UUID) *Attachment {
	for i := range po.Attachments {
		if po.Attachments[i].ID == attachmentID {
			return &po.Attachments[i]
		}
	}
	return nil
}

// SumLineTaxes returns the sum of all per-line tax amounts
func (po *PurchaseOrder) SumLineTaxes() decimal.Decimal {
	total := decimal.Zero
	for i := range po.Products {
		total = total.Add(po.Products[i].TaxTotal())
	}
	return total
}

// SumLineTotals returns the sum of all line total prices
func (po *PurchaseOrder) SumLineTotals() decimal.Decimal {
	total := decimal.Zero
	for i := range po.Products {
		total = total.Add(po.Products[i].TotalPrice)
	}
	return total
}

// ComputeSubtotal returns the pre-tax pre-discount basis (Σ quantity × rate)
func (po *PurchaseOrder) ComputeSubtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range po.Products {
		total = total.Add(po.Products[i].Base())
	}
	return total
}
