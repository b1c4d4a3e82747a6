package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for routing and response mapping.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindGateway        Kind = "gateway"
	KindAuthenticity   Kind = "authenticity"
	KindMissingOrderID Kind = "missing_order_id"
	KindUnknownOrder   Kind = "unknown_order"
	KindStorage        Kind = "storage"
)

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation marks a malformed, user-correctable request.
func Validation(message string, err error) *Error {
	return New(KindValidation, http.StatusBadRequest, message, err)
}

// Gateway marks a provider rejection or an unreachable provider.
func Gateway(message string, err error) *Error {
	return New(KindGateway, http.StatusBadRequest, message, err)
}

// Authenticity marks a notification whose signature failed verification.
// It must be raised before any state write.
func Authenticity(message string, err error) *Error {
	return New(KindAuthenticity, http.StatusUnauthorized, message, err)
}

// MissingOrderID marks a notification with no recognizable order id field.
func MissingOrderID(message string) *Error {
	return New(KindMissingOrderID, http.StatusBadRequest, message, nil)
}

// UnknownOrder marks a notification referencing a nonexistent order.
func UnknownOrder(orderID string) *Error {
	return New(KindUnknownOrder, http.StatusBadRequest, "unknown order "+orderID, nil)
}

// Storage marks a persistence layer failure.
func Storage(message string, err error) *Error {
	return New(KindStorage, http.StatusInternalServerError, message, err)
}

// KindOf extracts the Kind of an error, or "" for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps an error to a response status code. Foreign errors are
// treated as internal failures.
func HTTPStatus(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
