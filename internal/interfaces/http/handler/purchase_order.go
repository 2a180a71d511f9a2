package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	purchasingapp "github.com/alanwarcs/BM-Backend/internal/application/purchasing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// errMissingDataField is returned when a multipart request omits the order document
var errMissingDataField = errors.New("multipart request must carry the order document in the \"data\" field")

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchasingapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *purchasingapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers purchase order routes on the API group
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.GET("/next-number", h.PreviewNextNumber)
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/payments", h.RecordPayment)
		orders.POST("/:id/bill", h.MarkBillGenerated)
		orders.POST("/:id/installment-payments", h.RecordInstallmentPayment)
		orders.GET("/:id/attachments/:attachmentId", h.DownloadAttachment)
	}
}

// PreviewNextNumber returns the next PO number without reserving it
func (h *PurchaseOrderHandler) PreviewNextNumber(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	preview, err := h.orderService.PreviewNextNumber(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Create creates a purchase order. Accepts plain JSON, or multipart
// form-data with the order document in the "data" field and files under
// "attachments".
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	var req purchasingapp.CreatePurchaseOrderRequest
	closeFiles, err := h.bindOrderPayload(c, &req, func(uploads []purchasingapp.AttachmentUpload) {
		req.Attachments = uploads
	})
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	defer closeFiles()

	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	order, err := h.orderService.Create(c.Request.Context(), businessID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID retrieves a purchase order by its ID
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), businessID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List returns a filtered, paginated page of purchase orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	var query purchasingapp.ListPurchaseOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.List(c.Request.Context(), businessID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, page)
}

// Update replaces the full order document
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req purchasingapp.UpdatePurchaseOrderRequest
	closeFiles, err := h.bindOrderPayload(c, &req, func(uploads []purchasingapp.AttachmentUpload) {
		req.NewAttachments = uploads
	})
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	defer closeFiles()

	if userID, err := getUserID(c); err == nil {
		req.UpdatedBy = &userID
	}

	order, err := h.orderService.Update(c.Request.Context(), businessID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete soft-deletes a purchase order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	userID, _ := getUserID(c)

	if err := h.orderService.Delete(c.Request.Context(), businessID, orderID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Complete marks a pending order as completed
func (h *PurchaseOrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Cancel marks a pending order as cancelled
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orderService.Cancel)
}

// RecordPayment applies a payment against the order
func (h *PurchaseOrderHandler) RecordPayment(c *gin.Context) {
	businessID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}

	var req purchasingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.RecordPayment(c.Request.Context(), businessID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// MarkBillGenerated records bill generation details
func (h *PurchaseOrderHandler) MarkBillGenerated(c *gin.Context) {
	businessID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}

	var req purchasingapp.MarkBillGeneratedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.MarkBillGenerated(c.Request.Context(), businessID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordInstallmentPayment marks one EMI installment as paid
func (h *PurchaseOrderHandler) RecordInstallmentPayment(c *gin.Context) {
	businessID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}

	var req purchasingapp.RecordInstallmentPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.RecordInstallmentPayment(c.Request.Context(), businessID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// DownloadAttachment streams an attachment back to the caller
func (h *PurchaseOrderHandler) DownloadAttachment(c *gin.Context) {
	businessID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID format")
		return
	}

	download, err := h.orderService.DownloadAttachment(c.Request.Context(), businessID, orderID, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer download.Body.Close()

	// download=false serves the file inline for in-browser viewing
	disposition := "attachment"
	if c.Query("download") == "false" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": download.FileName}))
	c.Header("Content-Type", download.ContentType)
	c.Status(200)
	_, _ = io.Copy(c.Writer, download.Body)
}

// transition runs a status change endpoint
func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, businessID, orderID uuid.UUID) (*purchasingapp.PurchaseOrderResponse, error)) {
	businessID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), businessID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// orderScope parses the tenant and order identity off the request
func (h *PurchaseOrderHandler) orderScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid business ID")
		return uuid.Nil, uuid.Nil, false
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return businessID, orderID, true
}

// bindOrderPayload binds a create/update request from either a JSON body or
// a multipart form carrying the JSON in "data" plus "attachments" files. The
// returned closer releases any opened files and is safe to defer.
func (h *PurchaseOrderHandler) bindOrderPayload(c *gin.Context, target any, setUploads func([]purchasingapp.AttachmentUpload)) (func(), error) {
	noop := func() {}

	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(target); err != nil {
			return noop, err
		}
		return noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return noop, err
	}

	payloads := form.Value["data"]
	if len(payloads) == 0 {
		return noop, errMissingDataField
	}
	if err := json.Unmarshal([]byte(payloads[0]), target); err != nil {
		return noop, err
	}

	files := form.File["attachments"]
	if len(files) == 0 {
		return noop, nil
	}

	opened := make([]multipart.File, 0, len(files))
	closer := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]purchasingapp.AttachmentUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closer()
			return noop, err
		}
		opened = append(opened, f)
		uploads = append(uploads, purchasingapp.AttachmentUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	setUploads(uploads)
	return closer, nil
}
