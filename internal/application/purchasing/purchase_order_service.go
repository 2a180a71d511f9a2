package purchasing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds the PO number allocation retry when two requests
// race for the same number.
const maxNumberAttempts = 2

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo purchasing.Repository
	vendors   VendorDirectory
	orgs      OrganizationDirectory
	catalog   ProductCatalog
	storage   ObjectStorageService
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo purchasing.Repository,
	vendors VendorDirectory,
	orgs OrganizationDirectory,
	catalog ProductCatalog,
	storage ObjectStorageService,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		vendors:   vendors,
		orgs:      orgs,
		catalog:   catalog,
		storage:   storage,
		logger:    logger,
	}
}

// PreviewNextNumber returns the next PO number without reserving it,
// together with the business header a client prints on the document. The
// number actually issued at creation may differ if another order lands
// in between.
func (s *PurchaseOrderService) PreviewNextNumber(ctx context.Context, businessID uuid.UUID) (*PreviewNumberResponse, error) {
	org, err := s.orgs.FindOrganization(ctx, businessID)
	if err != nil {
		return nil, err
	}
	last, err := s.orderRepo.LastPONumber(ctx, businessID)
	if err != nil {
		return nil, err
	}
	number, err := purchasing.NextPONumber(last)
	if err != nil {
		return nil, err
	}
	return &PreviewNumberResponse{
		PONumber:     number,
		Organization: ToOrganizationResponse(org),
	}, nil
}

// Create runs the full creation pipeline: reference checks, line pricing,
// totals reconciliation, PO number allocation and persist. Attachment files
// are uploaded before the write and removed again if the write fails.
func (s *PurchaseOrderService) Create(ctx context.Context, businessID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	vendor, err := s.vendors.FindVendor(ctx, businessID, req.VendorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("VENDOR_NOT_FOUND", "Vendor does not exist for this business")
		}
		return nil, err
	}
	org, err := s.orgs.FindOrganization(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.checkProducts(ctx, businessID, req.Products); err != nil {
		return nil, err
	}

	po, err := purchasing.NewPurchaseOrder(
		businessID,
		purchasing.FirstPONumber(), // placeholder until allocation below
		vendorSnapshot(vendor),
		businessSnapshot(org),
		req.OrderDate,
	)
	if err != nil {
		return nil, err
	}
	po.ReferenceNumber = req.ReferenceNumber
	po.DueDate = req.DueDate
	po.PaymentType = purchasing.PaymentType(req.PaymentType)
	po.Note = req.Note
	po.DeliveryTerms = req.DeliveryTerms
	po.TermsAndConditions = req.TermsAndConditions
	po.Address = toAddressBlock(req.Address)
	if req.CreatedBy != nil {
		po.SetCreatedBy(*req.CreatedBy)
	}
	if !po.PaymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type %q", req.PaymentType))
	}

	if err := s.applyFinancials(po, req.Products, req.Discount, req.RoundOff, req.PaidAmount, req.EMIDetails); err != nil {
		return nil, err
	}

	uploaded, err := s.uploadAttachments(ctx, businessID, req.Attachments, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	po.Attachments = uploaded

	if err := s.allocateAndSave(ctx, businessID, po); err != nil {
		s.releaseFiles(ctx, uploaded)
		return nil, err
	}

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// List returns a filtered page of orders plus the business-wide grand
// amount range for filter UIs.
func (s *PurchaseOrderService) List(ctx context.Context, businessID uuid.UUID, query ListPurchaseOrdersQuery) (*ListPurchaseOrdersResponse, error) {
	filter := query.ToFilter()
	orders, total, err := s.orderRepo.FindAll(ctx, businessID, filter)
	if err != nil {
		return nil, err
	}
	amountRange, err := s.orderRepo.GrandAmountRange(ctx, businessID)
	if err != nil {
		return nil, err
	}

	resp := &ListPurchaseOrdersResponse{
		Orders:         make([]PurchaseOrderResponse, 0, len(orders)),
		MinGrandAmount: amountRange.Min,
		MaxGrandAmount: amountRange.Max,
		Pagination: PaginationResponse{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			Total:      total,
			TotalPages: int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize)),
		},
	}
	for _, po := range orders {
		resp.Orders = append(resp.Orders, ToPurchaseOrderResponse(po))
	}
	return resp, nil
}

// Update replaces the order's editable state, re-runs pricing and
// reconciliation, and reconciles the attachment set. Files for removed
// attachments are deleted only after the write commits, best-effort.
func (s *PurchaseOrderService) Update(ctx context.Context, businessID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	// The snapshot stays as captured at creation, but the vendor must
	// still exist for the order to remain editable.
	if _, err := s.vendors.FindVendor(ctx, businessID, po.VendorID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("VENDOR_NOT_FOUND", "Vendor no longer exists for this business")
		}
		return nil, err
	}
	if err := s.checkProducts(ctx, businessID, req.Products); err != nil {
		return nil, err
	}

	po.ReferenceNumber = req.ReferenceNumber
	po.OrderDate = req.OrderDate
	po.DueDate = req.DueDate
	po.PaymentType = purchasing.PaymentType(req.PaymentType)
	po.Note = req.Note
	po.DeliveryTerms = req.DeliveryTerms
	po.TermsAndConditions = req.TermsAndConditions
	po.Address = toAddressBlock(req.Address)
	if !po.PaymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type %q", req.PaymentType))
	}
	if req.UpdatedBy != nil {
		po.SetUpdatedBy(*req.UpdatedBy)
	}

	previous := po.EMIDetails
	if err := s.applyFinancials(po, req.Products, req.Discount, req.RoundOff, req.PaidAmount, req.EMIDetails); err != nil {
		return nil, err
	}
	// Installment payment history survives a schedule edit; it is only
	// writable through RecordInstallmentPayment.
	carryInstallmentPayments(previous, po.EMIDetails)

	kept, removed := po.DiffAttachments(req.KeepAttachmentIDs)
	uploaded, err := s.uploadAttachments(ctx, businessID, req.NewAttachments, req.UpdatedBy)
	if err != nil {
		return nil, err
	}
	po.Attachments = append(kept, uploaded...)

	po.Touch()
	po.IncrementVersion()
	if err := s.orderRepo.Update(ctx, po); err != nil {
		s.releaseFiles(ctx, uploaded)
		return nil, err
	}
	s.releaseFiles(ctx, removed)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// Delete soft-deletes the order. The PO number stays consumed and the
// attachment files are released best-effort.
func (s *PurchaseOrderService) Delete(ctx context.Context, businessID, orderID uuid.UUID, deletedBy uuid.UUID) error {
	po, err := s.orderRepo.FindByID(ctx, businessID, orderID)
	if err != nil {
		return err
	}
	if err := po.SoftDelete(deletedBy); err != nil {
		return err
	}
	if err := s.orderRepo.Update(ctx, po); err != nil {
		return err
	}
	s.releaseFiles(ctx, po.Attachments)
	return nil
}

// Complete marks the order Completed
func (s *PurchaseOrderService) Complete(ctx context.Context, businessID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, businessID, orderID, func(po *purchasing.PurchaseOrder) error {
		return po.MarkCompleted()
	})
}

// Cancel marks the order Cancelled
func (s *PurchaseOrderService) Cancel(ctx context.Context, businessID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, businessID, orderID, func(po *purchasing.PurchaseOrder) error {
		return po.MarkCancelled()
	})
}

// RecordPayment applies a payment against the order total
func (s *PurchaseOrderService) RecordPayment(ctx context.Context, businessID, orderID uuid.UUID, req RecordPaymentRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, businessID, orderID, func(po *purchasing.PurchaseOrder) error {
		return po.ApplyPayment(req.Amount)
	})
}

// MarkBillGenerated records that a bill was generated for the order
func (s *PurchaseOrderService) MarkBillGenerated(ctx context.Context, businessID, orderID uuid.UUID, req MarkBillGeneratedRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, businessID, orderID, func(po *purchasing.PurchaseOrder) error {
		return po.MarkBillGenerated(req.BillNumber, req.BillDate)
	})
}

// RecordInstallmentPayment marks one EMI installment as paid
func (s *PurchaseOrderService) RecordInstallmentPayment(ctx context.Context, businessID, orderID uuid.UUID, req RecordInstallmentPaymentRequest) (*PurchaseOrderResponse, error) {
	paidAt := time.Now()
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}
	return s.mutate(ctx, businessID, orderID, func(po *purchasing.PurchaseOrder) error {
		return po.RecordInstallmentPayment(
			req.InstallmentIndex,
			purchasing.PaymentMethod(req.PaymentMethod),
			req.PaymentReference,
			req.PaymentNote,
			paidAt,
		)
	})
}

// AttachmentDownload is an open stream plus the metadata needed to serve it
type AttachmentDownload struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
}

// DownloadAttachment streams an attachment file. Only PDF and JPEG
// attachments are servable.
func (s *PurchaseOrderService) DownloadAttachment(ctx context.Context, businessID, orderID, attachmentID uuid.UUID) (*AttachmentDownload, error) {
	po, err := s.orderRepo.FindByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	att := po.FindAttachment(attachmentID)
	if att == nil {
		return nil, shared.ErrNotFound
	}
	contentType, err := ContentTypeForFile(att.FileName)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, att.FilePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	body, err := s.storage.GetObject(ctx, att.FilePath)
	if err != nil {
		return nil, err
	}
	return &AttachmentDownload{Body: body, FileName: att.FileName, ContentType: contentType}, nil
}

// ==================== internals ====================

func (s *PurchaseOrderService) mutate(ctx context.Context, businessID, orderID uuid.UUID, fn func(*purchasing.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(po); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, po); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// allocateAndSave assigns the next PO number and persists, retrying once if
// a concurrent request claimed the same number.
func (s *PurchaseOrderService) allocateAndSave(ctx context.Context, businessID uuid.UUID, po *purchasing.PurchaseOrder) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		last, err := s.orderRepo.LastPONumber(ctx, businessID)
		if err != nil {
			return err
		}
		number, err := purchasing.NextPONumber(last)
		if err != nil {
			return err
		}
		po.PONumber = number

		err = s.orderRepo.Save(ctx, po)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		s.logger.Warn("PO number collision, retrying allocation",
			zap.String("business_id", businessID.String()),
			zap.String("po_number", number))
	}
	return shared.NewDomainError("CONFLICT", "Could not allocate a unique PO number, please retry")
}

func (s *PurchaseOrderService) checkProducts(ctx context.Context, businessID uuid.UUID, products []LineItemInput) error {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	missing, err := s.catalog.MissingProducts(ctx, businessID, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, id := range missing {
			names = append(names, id.String())
		}
		return shared.NewDomainError("PRODUCT_NOT_FOUND",
			fmt.Sprintf("Products do not exist for this business: %s", strings.Join(names, ", ")))
	}
	return nil
}

// applyFinancials prices every line, derives the order totals and runs
// reconciliation, leaving the aggregate in a fully consistent state.
func (s *PurchaseOrderService) applyFinancials(po *purchasing.PurchaseOrder, products []LineItemInput, discount DiscountInput, roundOff bool, paid decimal.Decimal, emi *EMIInput) error {
	taxCtx := po.Address.TaxContext()

	lines := make([]purchasing.LineItem, 0, len(products))
	for _, p := range products {
		line, err := purchasing.PriceLine(purchasing.LineInput{
			ProductID:                  p.ProductID,
			ProductName:                p.ProductName,
			Quantity:                   p.Quantity,
			Unit:                       p.Unit,
			HSNOrSAC:                   p.HSNOrSACCode,
			Rate:                       p.Rate,
			InProductDiscount:          p.InProductDiscount,
			InProductDiscountValueType: purchasing.DiscountValueType(p.InProductDiscountValueType),
			TaxRates:                   p.TaxRates,
		}, taxCtx)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	po.Products = lines

	po.Subtotal = po.ComputeSubtotal()
	po.TaxAmount = po.SumLineTaxes()
	po.TotalBeforeDiscount = po.Subtotal.Add(po.TaxAmount)

	po.DiscountType = purchasing.DiscountType(discount.Type)
	if po.DiscountType == "" {
		po.DiscountType = purchasing.DiscountTypeFlat
	}
	po.DiscountValueType = purchasing.DiscountValueType(discount.ValueType)
	if po.DiscountValueType == "" {
		po.DiscountValueType = purchasing.DiscountValueTypePercent
	}
	po.Discount = discount.Value

	lineTotal := po.SumLineTotals()
	flatDiscount := decimal.Zero
	switch po.DiscountType {
	case purchasing.DiscountTypeProduct:
		lineDiscounts := decimal.Zero
		for i := range po.Products {
			lineDiscounts = lineDiscounts.Add(po.Products[i].DiscountAmount())
		}
		po.TotalAmountOfDiscount = lineDiscounts
	default:
		po.TotalAmountOfDiscount = purchasing.ResolveDiscount(po.DiscountValueType, po.Discount, po.TotalBeforeDiscount)
		flatDiscount = po.TotalAmountOfDiscount
	}

	preRound := lineTotal.Sub(flatDiscount)
	po.RoundOff = roundOff
	if roundOff {
		po.GrandAmount = valueobject.NewMoneyINR(preRound).Round(0).Amount()
		po.RoundOffAmount = po.GrandAmount.Sub(preRound)
	} else {
		po.GrandAmount = preRound
		po.RoundOffAmount = decimal.Zero
	}

	po.PaidAmount = paid
	po.DueAmount = po.GrandAmount.Sub(po.PaidAmount)
	po.PaymentStatus = purchasing.DerivePaymentStatus(po.PaidAmount, po.GrandAmount)

	po.EMIDetails = toEMIDetails(emi)

	if errs := purchasing.Reconcile(po); errs.HasErrors() {
		return errs
	}
	return nil
}

// allowedAttachmentTypes maps servable file extensions to content types
var allowedAttachmentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ContentTypeForFile resolves the content type for an attachment file name,
// rejecting extensions outside the supported set.
func ContentTypeForFile(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedAttachmentTypes[ext]
	if !ok {
		return "", shared.NewDomainError("UNSUPPORTED_FILE_TYPE", fmt.Sprintf("File type %q is not supported, use pdf or jpeg", ext))
	}
	return contentType, nil
}

func (s *PurchaseOrderService) uploadAttachments(ctx context.Context, businessID uuid.UUID, uploads []AttachmentUpload, uploadedBy *uuid.UUID) ([]purchasing.Attachment, error) {
	attachments := make([]purchasing.Attachment, 0, len(uploads))
	for _, upload := range uploads {
		contentType, err := ContentTypeForFile(upload.FileName)
		if err != nil {
			s.releaseFiles(ctx, attachments)
			return nil, err
		}
		key := fmt.Sprintf("%s/purchase-orders/%s%s", businessID, uuid.New(), strings.ToLower(filepath.Ext(upload.FileName)))
		if err := s.storage.PutObject(ctx, key, contentType, upload.Body); err != nil {
			s.releaseFiles(ctx, attachments)
			return nil, fmt.Errorf("failed to store attachment %s: %w", upload.FileName, err)
		}
		attachments = append(attachments, purchasing.NewAttachment(upload.FileName, key, uploadedBy))
	}
	return attachments, nil
}

// releaseFiles deletes attachment blobs best-effort; a failed delete is
// logged and never fails the calling operation.
func (s *PurchaseOrderService) releaseFiles(ctx context.Context, attachments []purchasing.Attachment) {
	for _, att := range attachments {
		if err := s.storage.DeleteObject(ctx, att.FilePath); err != nil {
			s.logger.Warn("Failed to delete attachment file",
				zap.String("file_path", att.FilePath),
				zap.Error(err))
		}
	}
}

func vendorSnapshot(v *VendorInfo) purchasing.VendorSnapshot {
	return purchasing.VendorSnapshot{
		ID:        v.ID,
		Name:      v.Name,
		GSTIN:     v.GSTIN,
		GSTStatus: v.GSTStatus,
		State:     v.State,
		Address:   v.Address,
		Phone:     v.Phone,
	}
}

func businessSnapshot(o *OrganizationInfo) purchasing.BusinessSnapshot {
	return purchasing.BusinessSnapshot{
		ID:      o.ID,
		Name:    o.Name,
		GSTIN:   o.GSTIN,
		State:   o.State,
		Address: o.Address,
		Phone:   o.Phone,
		Email:   o.Email,
	}
}

func toAddressBlock(in AddressInput) purchasing.AddressBlock {
	return purchasing.AddressBlock{
		Billing:          in.Billing,
		Shipping:         in.Shipping,
		SourceState:      in.SourceState,
		DeliveryState:    in.DeliveryState,
		DeliveryLocation: in.DeliveryLocation,
	}
}

func toEMIDetails(in *EMIInput) *purchasing.EMIDetails {
	if in == nil {
		return nil
	}
	emi := &purchasing.EMIDetails{
		Frequency:         purchasing.EMIFrequency(in.Frequency),
		InterestRate:      in.InterestRate,
		TotalWithInterest: in.TotalWithInterest,
		AdvancePayment:    in.AdvancePayment,
		Installments:      make([]purchasing.Installment, 0, len(in.Installments)),
	}
	for _, inst := range in.Installments {
		emi.Installments = append(emi.Installments, purchasing.Installment{
			Amount:  inst.Amount,
			DueDate: inst.DueDate,
			Status:  purchasing.InstallmentStatusUnpaid,
		})
	}
	return emi
}

// carryInstallmentPayments copies recorded payment state from the previous
// schedule onto the replacement, matched by position.
func carryInstallmentPayments(previous, next *purchasing.EMIDetails) {
	if previous == nil || next == nil {
		return
	}
	for i := range next.Installments {
		if i >= len(previous.Installments) {
			break
		}
		old := previous.Installments[i]
		if old.Status != purchasing.InstallmentStatusPaid {
			continue
		}
		next.Installments[i].Status = old.Status
		next.Installments[i].PaymentDate = old.PaymentDate
		next.Installments[i].PaymentMethod = old.PaymentMethod
		next.Installments[i].PaymentReference = old.PaymentReference
		next.Installments[i].PaymentNote = old.PaymentNote
	}
}
