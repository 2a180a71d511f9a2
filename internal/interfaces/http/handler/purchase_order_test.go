package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	purchasingapp "github.com/alanwarcs/BM-Backend/internal/application/purchasing"
	"github.com/alanwarcs/BM-Backend/internal/infrastructure/persistence"
	"github.com/alanwarcs/BM-Backend/internal/infrastructure/persistence/models"
	"github.com/alanwarcs/BM-Backend/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerFixture struct {
	router     *gin.Engine
	db         *gorm.DB
	storage    *storage.StubObjectStorage
	businessID uuid.UUID
	userID     uuid.UUID
	vendorID   uuid.UUID
	productID  uuid.UUID
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.PurchaseOrderModel{},
		&models.VendorModel{},
		&models.OrganizationModel{},
		&models.ItemModel{},
	))

	f := &handlerFixture{
		db:         db,
		storage:    storage.NewStubObjectStorage(),
		businessID: uuid.New(),
		userID:     uuid.New(),
		vendorID:   uuid.New(),
		productID:  uuid.New(),
	}

	require.NoError(t, db.Create(&models.OrganizationModel{
		ID:    f.businessID,
		Name:  "Mehta Enterprises",
		GSTIN: "24AAACM1234A1Z5",
		State: "Gujarat",
	}).Error)
	require.NoError(t, db.Create(&models.VendorModel{
		ID:         f.vendorID,
		BusinessID: f.businessID,
		Name:       "Acme Traders",
		GSTStatus:  "Unregistered",
		State:      "Gujarat",
	}).Error)
	require.NoError(t, db.Create(&models.ItemModel{
		ID:         f.productID,
		BusinessID: f.businessID,
		Name:       "Steel Rod 12mm",
	}).Error)

	service := purchasingapp.NewPurchaseOrderService(
		persistence.NewGormPurchaseOrderRepository(db),
		persistence.NewGormVendorDirectory(db),
		persistence.NewGormOrganizationDirectory(db),
		persistence.NewGormProductCatalog(db),
		f.storage,
		nil,
	)

	f.router = gin.New()
	// auth is exercised in the middleware package; here the claims are injected directly
	f.router.Use(func(c *gin.Context) {
		c.Set("jwt_business_id", f.businessID.String())
		c.Set("jwt_user_id", f.userID.String())
		c.Next()
	})
	api := f.router.Group("/api/v1")
	NewPurchaseOrderHandler(service).RegisterRoutes(api)
	return f
}

func (f *handlerFixture) orderDocument() map[string]any {
	return map[string]any{
		"vendorId":  f.vendorID.String(),
		"orderDate": time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"address": map[string]any{
			"sourceState":   "Gujarat",
			"deliveryState": "Gujarat",
		},
		"products": []map[string]any{
			{
				"productId":   f.productID.String(),
				"productName": "Steel Rod 12mm",
				"quantity":    "10",
				"rate":        "100",
				"taxRates":    []string{"18"},
			},
		},
	}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "body: %s", w.Body.String())
	return envelope.Data
}

func TestCreatePurchaseOrder(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "PO-0001", data["poNumber"])
	assert.Equal(t, "1180", data["grandAmount"])
	assert.Equal(t, "UnPaid", data["paymentStatus"])

	products := data["products"].([]any)
	require.Len(t, products, 1)
	taxes := products[0].(map[string]any)["taxes"].([]any)
	assert.Len(t, taxes, 2, "intra-state order splits into CGST+SGST")
}

func TestCreatePurchaseOrder_ValidationFailureListsAllViolations(t *testing.T) {
	f := newHandlerFixture(t)

	doc := f.orderDocument()
	doc["paymentType"] = "EMI" // no emiDetails supplied
	doc["paidAmount"] = "-5"

	w := f.do(t, "POST", "/api/v1/purchase-orders", doc)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
				Code  string `json:"code"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.GreaterOrEqual(t, len(envelope.Error.Details), 2, "all violations reported at once")
}

func TestCreatePurchaseOrder_UnknownVendor(t *testing.T) {
	f := newHandlerFixture(t)

	doc := f.orderDocument()
	doc["vendorId"] = uuid.NewString()

	w := f.do(t, "POST", "/api/v1/purchase-orders", doc)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "VENDOR_NOT_FOUND")
}

func TestCreatePurchaseOrder_ZeroQuantity(t *testing.T) {
	f := newHandlerFixture(t)

	doc := f.orderDocument()
	doc["products"].([]map[string]any)[0]["quantity"] = "0"

	w := f.do(t, "POST", "/api/v1/purchase-orders", doc)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "INVALID_QUANTITY")
}

func TestCreatePurchaseOrder_UnknownProduct(t *testing.T) {
	f := newHandlerFixture(t)

	missing := uuid.NewString()
	doc := f.orderDocument()
	doc["products"].([]map[string]any)[0]["productId"] = missing

	w := f.do(t, "POST", "/api/v1/purchase-orders", doc)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "PRODUCT_NOT_FOUND")
	assert.Contains(t, w.Body.String(), missing)
}

func TestGetAndListPurchaseOrders(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	w := f.do(t, "GET", "/api/v1/purchase-orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PO-0001", decodeData(t, w)["poNumber"])

	w = f.do(t, "GET", "/api/v1/purchase-orders?status=Pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeData(t, w)
	orders := page["orders"].([]any)
	assert.Len(t, orders, 1)

	w = f.do(t, "GET", "/api/v1/purchase-orders?status=Completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decodeData(t, w)
	assert.Empty(t, page["orders"])
}

func TestPreviewNextNumber(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, "GET", "/api/v1/purchase-orders/next-number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "PO-0001", data["poNumber"])

	// the preview carries the business header for the draft document
	org := data["organization"].(map[string]any)
	assert.Equal(t, "Mehta Enterprises", org["name"])
	assert.Equal(t, "24AAACM1234A1Z5", org["gstin"])
	assert.Equal(t, "Gujarat", org["state"])

	f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument())

	w = f.do(t, "GET", "/api/v1/purchase-orders/next-number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PO-0002", decodeData(t, w)["poNumber"])
}

func TestCompleteAndCancelTransitions(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	w := f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Completed", decodeData(t, w)["status"])

	// completed orders are frozen
	w = f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestRecordPayment(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	w := f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/payments", map[string]any{"amount": "500"})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Partially Paid", data["paymentStatus"])
	assert.Equal(t, "680", data["dueAmount"])

	// overpayment is rejected
	w = f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/payments", map[string]any{"amount": "10000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkBillGenerated(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	body := map[string]any{"billNumber": "BILL-77", "billDate": "2026-03-05T00:00:00Z"}
	w := f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/bill", body)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["isBillGenerated"])
	assert.Equal(t, "BILL-77", data["billNumber"])

	// a bill is generated once
	w = f.do(t, "POST", "/api/v1/purchase-orders/"+orderID+"/bill", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeletePurchaseOrder(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	w := f.do(t, "DELETE", "/api/v1/purchase-orders/"+orderID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, "GET", "/api/v1/purchase-orders/"+orderID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the consumed number is never reissued
	w = f.do(t, "GET", "/api/v1/purchase-orders/next-number", nil)
	assert.Equal(t, "PO-0002", decodeData(t, w)["poNumber"])
}

func TestCreateWithMultipartAttachment(t *testing.T) {
	f := newHandlerFixture(t)

	doc, err := json.Marshal(f.orderDocument())
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", string(doc)))
	part, err := mw.CreateFormFile("attachments", "quote.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/purchase-orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeData(t, w)
	attachments := data["attachments"].([]any)
	require.Len(t, attachments, 1)
	assert.Equal(t, "quote.pdf", attachments[0].(map[string]any)["fileName"])
	assert.Equal(t, 1, f.storage.Len())

	// download it back
	orderID := data["id"].(string)
	attachmentID := attachments[0].(map[string]any)["id"].(string)
	w = f.do(t, "GET", fmt.Sprintf("/api/v1/purchase-orders/%s/attachments/%s", orderID, attachmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-1.4 fake", w.Body.String())

	// download=false serves the file inline for viewing
	w = f.do(t, "GET", fmt.Sprintf("/api/v1/purchase-orders/%s/attachments/%s?download=false", orderID, attachmentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
}

func TestCreateWithUnsupportedAttachmentType(t *testing.T) {
	f := newHandlerFixture(t)

	doc, err := json.Marshal(f.orderDocument())
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", string(doc)))
	part, err := mw.CreateFormFile("attachments", "virus.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/purchase-orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FILE_TYPE")
	assert.Zero(t, f.storage.Len(), "nothing persisted on rejection")
}

func TestUpdatePurchaseOrder_StaleVersionConflict(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeData(t, f.do(t, "POST", "/api/v1/purchase-orders", f.orderDocument()))
	orderID := created["id"].(string)

	update := f.orderDocument()
	delete(update, "vendorId")
	update["note"] = "first writer"

	w := f.do(t, "PUT", "/api/v1/purchase-orders/"+orderID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "first writer", decodeData(t, w)["note"])
}

func TestInvalidOrderID(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, "GET", "/api/v1/purchase-orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
