package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrentModification, http.StatusConflict},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"VENDOR_NOT_FOUND", http.StatusNotFound},
		{"PRODUCT_NOT_FOUND", http.StatusNotFound},
		{"UNSUPPORTED_FILE_TYPE", http.StatusBadRequest},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"INVALID_RATE", http.StatusBadRequest},
		{"INVALID_DISCOUNT", http.StatusBadRequest},
		{"INVALID_TAX_RATE", http.StatusBadRequest},
		{"INVALID_PRODUCT", http.StatusBadRequest},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"INVALID_ORDER_DATE", http.StatusBadRequest},
		{"INVALID_FREQUENCY", http.StatusBadRequest},
		{"INVALID_SCHEDULE", http.StatusBadRequest},
		{"INVALID_INSTALLMENT", http.StatusBadRequest},
		{"INVALID_PAYMENT_METHOD", http.StatusBadRequest},
		{"NO_EMI", http.StatusBadRequest},
		{"ALREADY_PAID", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"MALFORMED_PO_NUMBER", http.StatusInternalServerError},
		{"SOME_UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Totals do not reconcile", "req-1", []ValidationDetail{
		{Field: "grandAmount", Code: "TOTALS_MISMATCH", Message: "stored value disagrees with recomputation", Expected: "1130.00", Actual: "1180.00"},
	})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "1130.00", resp.Error.Details[0].Expected)
}
