package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes raised by
// the purchasing domain appear here verbatim so handlers never translate.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConflict:               http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	"CONCURRENCY_CONFLICT":        http.StatusConflict,

	// Purchasing domain codes
	"VENDOR_NOT_FOUND":       http.StatusNotFound,
	"PRODUCT_NOT_FOUND":      http.StatusNotFound,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_PAYMENT_TYPE":   http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_RATE":           http.StatusBadRequest,
	"INVALID_DISCOUNT":       http.StatusBadRequest,
	"INVALID_TAX_RATE":       http.StatusBadRequest,
	"INVALID_PRODUCT":        http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_VENDOR":         http.StatusBadRequest,
	"INVALID_ORDER_DATE":     http.StatusBadRequest,
	"INVALID_PO_NUMBER":      http.StatusBadRequest,
	"INVALID_FREQUENCY":      http.StatusBadRequest,
	"INVALID_SCHEDULE":       http.StatusBadRequest,
	"INVALID_INSTALLMENT":    http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"NO_EMI":                 http.StatusBadRequest,
	"ALREADY_PAID":           http.StatusBadRequest,
	"UNSUPPORTED_FILE_TYPE":  http.StatusBadRequest,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"MALFORMED_PO_NUMBER":    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
