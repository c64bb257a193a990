package shared

import "errors"

// Error codes shared by every bounded context.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAccessDenied           = "ACCESS_DENIED"
	CodeQuantityBelowMinimum   = "QUANTITY_BELOW_MINIMUM"
	CodeTotalMismatch          = "TOTAL_MISMATCH"
	CodeStockError             = "STOCK_ERROR"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeDuplicateRequest       = "DUPLICATE_REQUEST"
	CodeInternalError          = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches any not-found error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying the given context values.
func (e *DomainError) WithDetails(kv map[string]any) *DomainError {
	details := make(map[string]any, len(e.Details)+len(kv))
	for k, v := range e.Details {
		details[k] = v
	}
	for k, v := range kv {
		details[k] = v
	}
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError unwraps err into a *DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrAccessDenied           = NewDomainError(CodeAccessDenied, "Access to this resource is denied")
	ErrInvalidInput           = NewDomainError(CodeValidationFailed, "Invalid input provided")
	ErrConcurrentModification = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrDuplicateRequest       = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key was already submitted")
	ErrInsufficientStock      = NewDomainError(CodeStockError, "Insufficient stock available")
	ErrInternal               = NewDomainError(CodeInternalError, "Internal error")
)
