package purchasing

import (
	"io"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// AddressInput carries the billing/shipping addresses and tax states
type AddressInput struct {
	Billing          string `json:"billing"`
	Shipping         string `json:"shipping"`
	SourceState      string `json:"sourceState" binding:"required"`
	DeliveryState    string `json:"deliveryState" binding:"required"`
	DeliveryLocation string `json:"deliveryLocation"`
}

// LineItemInput is one product row in a create/update request. TaxRates are
// nominal GST rates; the server decides the CGST/SGST vs IGST split.
type LineItemInput struct {
	ProductID                  uuid.UUID         `json:"productId" binding:"required"`
	ProductName                string            `json:"productName" binding:"required,min=1,max=200"`
	Quantity                   decimal.Decimal   `json:"quantity" binding:"required"`
	Unit                       string            `json:"unit"`
	HSNOrSACCode               string            `json:"hsnOrSacCode"`
	Rate                       decimal.Decimal   `json:"rate"`
	InProductDiscount          decimal.Decimal   `json:"inProductDiscount"`
	InProductDiscountValueType string            `json:"inProductDiscountValueType"`
	TaxRates                   []decimal.Decimal `json:"taxRates"`
}

// DiscountInput is the order-level discount block
type DiscountInput struct {
	Type      string          `json:"type" binding:"omitempty,oneof=Flat Product"`
	ValueType string          `json:"valueType" binding:"omitempty,oneof=Amount Percent"`
	Value     decimal.Decimal `json:"value"`
}

// InstallmentInput is one EMI schedule entry
type InstallmentInput struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	DueDate time.Time       `json:"dueDate" binding:"required"`
}

// EMIInput is the installment plan in a create/update request
type EMIInput struct {
	Frequency         string             `json:"frequency" binding:"required"`
	InterestRate      decimal.Decimal    `json:"interestRate"`
	TotalWithInterest decimal.Decimal    `json:"totalWithInterest"`
	AdvancePayment    decimal.Decimal    `json:"advancePayment"`
	Installments      []InstallmentInput `json:"installments" binding:"required,min=1"`
}

// AttachmentUpload is one incoming file from a multipart request
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID           uuid.UUID       `json:"vendorId" binding:"required"`
	ReferenceNumber    string          `json:"referenceNumber" binding:"max=100"`
	OrderDate          time.Time       `json:"orderDate" binding:"required"`
	DueDate            *time.Time      `json:"dueDate"`
	PaymentType        string          `json:"paymentType"`
	Note               string          `json:"note"`
	Address            AddressInput    `json:"address" binding:"required"`
	Products           []LineItemInput `json:"products" binding:"required,min=1,dive"`
	Discount           DiscountInput   `json:"discount"`
	RoundOff           bool            `json:"roundOff"`
	PaidAmount         decimal.Decimal `json:"paidAmount"`
	EMIDetails         *EMIInput       `json:"emiDetails"`
	DeliveryTerms      string          `json:"deliveryTerms"`
	TermsAndConditions string          `json:"termsAndConditions"`

	Attachments []AttachmentUpload `json:"-"`
	CreatedBy   *uuid.UUID         `json:"-"`
}

// UpdatePurchaseOrderRequest carries the full replacement state of an
// order. KeepAttachmentIDs lists existing attachments to retain; anything
// absent is removed and its file deleted best-effort after the write
// commits.
type UpdatePurchaseOrderRequest struct {
	ReferenceNumber    string          `json:"referenceNumber" binding:"max=100"`
	OrderDate          time.Time       `json:"orderDate" binding:"required"`
	DueDate            *time.Time      `json:"dueDate"`
	PaymentType        string          `json:"paymentType"`
	Note               string          `json:"note"`
	Address            AddressInput    `json:"address" binding:"required"`
	Products           []LineItemInput `json:"products" binding:"required,min=1,dive"`
	Discount           DiscountInput   `json:"discount"`
	RoundOff           bool            `json:"roundOff"`
	PaidAmount         decimal.Decimal `json:"paidAmount"`
	EMIDetails         *EMIInput       `json:"emiDetails"`
	DeliveryTerms      string          `json:"deliveryTerms"`
	TermsAndConditions string          `json:"termsAndConditions"`
	KeepAttachmentIDs  []uuid.UUID     `json:"keepAttachmentIds"`

	NewAttachments []AttachmentUpload `json:"-"`
	UpdatedBy      *uuid.UUID         `json:"-"`
}

// RecordPaymentRequest applies a payment against the order total
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// RecordInstallmentPaymentRequest marks one EMI installment as paid
type RecordInstallmentPaymentRequest struct {
	InstallmentIndex int        `json:"installmentIndex"`
	PaymentMethod    string     `json:"paymentMethod" binding:"required"`
	PaymentReference string     `json:"paymentReference"`
	PaymentNote      string     `json:"paymentNote"`
	PaymentDate      *time.Time `json:"paymentDate"`
}

// MarkBillGeneratedRequest records bill generation details
type MarkBillGeneratedRequest struct {
	BillNumber string    `json:"billNumber" binding:"required,max=100"`
	BillDate   time.Time `json:"billDate" binding:"required"`
}

// ListPurchaseOrdersQuery narrows and pages the order list
type ListPurchaseOrdersQuery struct {
	Page          int              `form:"page,default=1"`
	PageSize      int              `form:"page_size,default=20"`
	Search        string           `form:"search"`
	Status        string           `form:"status"`
	PaymentStatus string           `form:"payment_status"`
	VendorID      *uuid.UUID       `form:"vendor_id"`
	FromDate      string           `form:"from_date"`
	ToDate        string           `form:"to_date"`
	MinAmount     *decimal.Decimal `form:"min_amount"`
	MaxAmount     *decimal.Decimal `form:"max_amount"`
	OrderBy       string           `form:"order_by"`
	OrderDir      string           `form:"order_dir"`
}

// ToFilter converts the query into the repository filter
func (q ListPurchaseOrdersQuery) ToFilter() purchasing.ListFilter {
	filter := purchasing.DefaultListFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 && q.PageSize <= 100 {
		filter.PageSize = q.PageSize
	}
	filter.Search = q.Search
	filter.OrderBy = q.OrderBy
	filter.OrderDir = q.OrderDir
	filter.Status = purchasing.Status(q.Status)
	filter.PaymentStatus = purchasing.PaymentStatus(q.PaymentStatus)
	if q.VendorID != nil {
		filter.VendorID = *q.VendorID
	}
	filter.FromDate = q.FromDate
	filter.ToDate = q.ToDate
	filter.MinAmount = q.MinAmount
	filter.MaxAmount = q.MaxAmount
	return filter
}

// ==================== Responses ====================

// TaxLineResponse is one tax component on a line
type TaxLineResponse struct {
	Type    string          `json:"type"`
	SubType string          `json:"subType"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// LineItemResponse is one priced product row
type LineItemResponse struct {
	ProductID                  uuid.UUID         `json:"productId"`
	ProductName                string            `json:"productName"`
	Quantity                   decimal.Decimal   `json:"quantity"`
	Unit                       string            `json:"unit,omitempty"`
	HSNOrSACCode               string            `json:"hsnOrSacCode,omitempty"`
	Rate                       decimal.Decimal   `json:"rate"`
	InProductDiscount          decimal.Decimal   `json:"inProductDiscount"`
	InProductDiscountValueType string            `json:"inProductDiscountValueType"`
	Taxes                      []TaxLineResponse `json:"taxes"`
	TotalPrice                 decimal.Decimal   `json:"totalPrice"`
}

// InstallmentResponse is one EMI schedule entry with payment state
type InstallmentResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	DueDate          time.Time       `json:"dueDate"`
	Status           string          `json:"status"`
	PaymentDate      *time.Time      `json:"paymentDate,omitempty"`
	PaymentMethod    string          `json:"paymentMethod,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PaymentNote      string          `json:"paymentNote,omitempty"`
}

// EMIDetailsResponse is the installment plan
type EMIDetailsResponse struct {
	Frequency         string                `json:"frequency"`
	InterestRate      decimal.Decimal       `json:"interestRate"`
	TotalWithInterest decimal.Decimal       `json:"totalWithInterest"`
	AdvancePayment    decimal.Decimal       `json:"advancePayment"`
	Installments      []InstallmentResponse `json:"installments"`
}

// AttachmentResponse is attachment metadata
type AttachmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	FileName   string     `json:"fileName"`
	UploadedBy *uuid.UUID `json:"uploadedBy,omitempty"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

// VendorSnapshotResponse is the captured vendor details
type VendorSnapshotResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin,omitempty"`
	GSTStatus string    `json:"gstStatus"`
	State     string    `json:"state"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

// PurchaseOrderResponse is the full order representation
type PurchaseOrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	PONumber        string                 `json:"poNumber"`
	ReferenceNumber string                 `json:"referenceNumber,omitempty"`
	Vendor          VendorSnapshotResponse `json:"vendor"`
	OrderDate       time.Time              `json:"orderDate"`
	DueDate         *time.Time             `json:"dueDate,omitempty"`
	BillNumber      string                 `json:"billNumber,omitempty"`
	BillDate        *time.Time             `json:"billDate,omitempty"`
	IsBillGenerated bool                   `json:"isBillGenerated"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentType   string `json:"paymentType,omitempty"`
	Note          string `json:"note,omitempty"`

	Address  AddressInput       `json:"address"`
	Products []LineItemResponse `json:"products"`

	Discount              decimal.Decimal `json:"discount"`
	DiscountType          string          `json:"discountType"`
	DiscountValueType     string          `json:"discountValueType"`
	TotalAmountOfDiscount decimal.Decimal `json:"totalAmountOfDiscount"`

	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalBeforeDiscount decimal.Decimal `json:"totalBeforeDiscount"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	RoundOff            bool            `json:"roundOff"`
	RoundOffAmount      decimal.Decimal `json:"roundOffAmount"`
	GrandAmount         decimal.Decimal `json:"grandAmount"`
	PaidAmount          decimal.Decimal `json:"paidAmount"`
	DueAmount           decimal.Decimal `json:"dueAmount"`

	EMIDetails  *EMIDetailsResponse  `json:"emiDetails,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`

	DeliveryTerms      string `json:"deliveryTerms,omitempty"`
	TermsAndConditions string `json:"termsAndConditions,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrganizationResponse is the business header printed on the order document
type OrganizationResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	GSTIN   string    `json:"gstin,omitempty"`
	State   string    `json:"state"`
	Address string    `json:"address,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Email   string    `json:"email,omitempty"`
}

// ToOrganizationResponse maps the organization record to its API shape
func ToOrganizationResponse(o *OrganizationInfo) OrganizationResponse {
	return OrganizationResponse{
		ID:      o.ID,
		Name:    o.Name,
		GSTIN:   o.GSTIN,
		State:   o.State,
		Address: o.Address,
		Phone:   o.Phone,
		Email:   o.Email,
	}
}

// PreviewNumberResponse is the next PO number without reserving it, plus
// the business header the client renders on the draft document.
type PreviewNumberResponse struct {
	PONumber     string               `json:"poNumber"`
	Organization OrganizationResponse `json:"organization"`
}

// PaginationResponse describes a result page
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ListPurchaseOrdersResponse is a page of orders plus range hints for the
// amount filter UI.
type ListPurchaseOrdersResponse struct {
	Orders         []PurchaseOrderResponse `json:"orders"`
	Pagination     PaginationResponse      `json:"pagination"`
	MinGrandAmount decimal.Decimal         `json:"minGrandAmount"`
	MaxGrandAmount decimal.Decimal         `json:"maxGrandAmount"`
}

// ToPurchaseOrderResponse maps the aggregate to its API representation
func ToPurchaseOrderResponse(po *purchasing.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:              po.GetID(),
		PONumber:        po.PONumber,
		ReferenceNumber: po.ReferenceNumber,
		Vendor: VendorSnapshotResponse{
			ID:        po.Vendor.ID,
			Name:      po.Vendor.Name,
			GSTIN:     po.Vendor.GSTIN,
			GSTStatus: string(po.Vendor.GSTStatus),
			State:     po.Vendor.State,
			Address:   po.Vendor.Address,
			Phone:     po.Vendor.Phone,
		},
		OrderDate:       po.OrderDate,
		DueDate:         po.DueDate,
		BillNumber:      po.BillNumber,
		BillDate:        po.BillDate,
		IsBillGenerated: po.IsBillGenerated,
		Status:          string(po.Status),
		PaymentStatus:   string(po.PaymentStatus),
		PaymentType:     string(po.PaymentType),
		Note:            po.Note,
		Address: AddressInput{
			Billing:          po.Address.Billing,
			Shipping:         po.Address.Shipping,
			SourceState:      po.Address.SourceState,
			DeliveryState:    po.Address.DeliveryState,
			DeliveryLocation: po.Address.DeliveryLocation,
		},
		Discount:              po.Discount,
		DiscountType:          string(po.DiscountType),
		DiscountValueType:     string(po.DiscountValueType),
		TotalAmountOfDiscount: po.TotalAmountOfDiscount,
		Subtotal:              po.Subtotal,
		TotalBeforeDiscount:   po.TotalBeforeDiscount,
		TaxAmount:             po.TaxAmount,
		RoundOff:              po.RoundOff,
		RoundOffAmount:        po.RoundOffAmount,
		GrandAmount:           po.GrandAmount,
		PaidAmount:            po.PaidAmount,
		DueAmount:             po.DueAmount,
		DeliveryTerms:         po.DeliveryTerms,
		TermsAndConditions:    po.TermsAndConditions,
		Version:               po.GetVersion(),
		CreatedAt:             po.GetCreatedAt(),
		UpdatedAt:             po.GetUpdatedAt(),
		Products:              make([]LineItemResponse, 0, len(po.Products)),
		Attachments:           make([]AttachmentResponse, 0, len(po.Attachments)),
	}

	for _, li := range po.Products {
		item := LineItemResponse{
			ProductID:                  li.ProductID,
			ProductName:                li.ProductName,
			Quantity:                   li.Quantity,
			Unit:                       li.Unit,
			HSNOrSACCode:               li.HSNOrSAC,
			Rate:                       li.Rate,
			InProductDiscount:          li.InProductDiscount,
			InProductDiscountValueType: string(li.InProductDiscountValueType),
			TotalPrice:                 li.TotalPrice,
			Taxes:                      make([]TaxLineResponse, 0, len(li.Taxes)),
		}
		for _, tax := range li.Taxes {
			item.Taxes = append(item.Taxes, TaxLineResponse{
				Type:    tax.Type,
				SubType: tax.SubType,
				Rate:    tax.Rate,
				Amount:  tax.Amount,
			})
		}
		resp.Products = append(resp.Products, item)
	}

	for _, att := range po.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:         att.ID,
			FileName:   att.FileName,
			UploadedBy: att.UploadedBy,
			UploadedAt: att.UploadedAt,
		})
	}

	if po.EMIDetails != nil {
		emi := &EMIDetailsResponse{
			Frequency:         string(po.EMIDetails.Frequency),
			InterestRate:      po.EMIDetails.InterestRate,
			TotalWithInterest: po.EMIDetails.TotalWithInterest,
			AdvancePayment:    po.EMIDetails.AdvancePayment,
			Installments:      make([]InstallmentResponse, 0, len(po.EMIDetails.Installments)),
		}
		for _, inst := range po.EMIDetails.Installments {
			emi.Installments = append(emi.Installments, InstallmentResponse{
				Amount:           inst.Amount,
				DueDate:          inst.DueDate,
				Status:           string(inst.Status),
				PaymentDate:      inst.PaymentDate,
				PaymentMethod:    string(inst.PaymentMethod),
				PaymentReference: inst.PaymentReference,
				PaymentNote:      inst.PaymentNote,
			})
		}
		resp.EMIDetails = emi
	}

	return resp
}
