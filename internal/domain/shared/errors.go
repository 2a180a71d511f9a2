package shared

import (
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConflict            = NewDomainError("CONFLICT", "Resource conflicts with existing state")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Violation is a single named validation failure. Field uses dotted paths
// into the document (e.g. "products[2].quantity", "emiDetails.installments").
type Violation struct {
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// ValidationErrors collects every violation found by a validation pass so a
// caller receives the complete list in one response instead of fixing and
// resubmitting one failure at a time.
type ValidationErrors []Violation

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(v))
	for i, viol := range v {
		msgs[i] = fmt.Sprintf("%s: %s", viol.Field, viol.Message)
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any violation was collected
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Add appends a violation
func (v *ValidationErrors) Add(field, code, message string) {
	*v = append(*v, Violation{Field: field, Code: code, Message: message})
}

// AddMismatch appends a violation carrying expected/actual values
func (v *ValidationErrors) AddMismatch(field, code, message, expected, actual string) {
	*v = append(*v, Violation{Field: field, Code: code, Message: message, Expected: expected, Actual: actual})
}

// Merge appends all violations from another collection
func (v *ValidationErrors) Merge(other ValidationErrors) {
	*v = append(*v, other...)
}

// OrNil returns the collection as an error, or nil when empty
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
