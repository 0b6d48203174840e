package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput            = "INVALID_INPUT"
	CodeNotFound                = "NOT_FOUND"
	CodeBookingNotFound         = "BOOKING_NOT_FOUND"
	CodeSlotNoLongerAvailable   = "SLOT_NO_LONGER_AVAILABLE"
	CodeOverpaymentRejected     = "OVERPAYMENT_REJECTED"
	CodeAlreadySettled          = "ALREADY_SETTLED"
	CodeUnknownAddon            = "UNKNOWN_ADDON"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeInvalidState            = "INVALID_STATE"
	CodePaymentDeclined         = "PAYMENT_DECLINED"
	CodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	CodeInternal                = "INTERNAL_ERROR"
)

// AppError is the error kind surfaced past a service boundary. Details carries
// field-level messages for INVALID_INPUT.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func InvalidInput(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message, HTTPStatus: http.StatusBadRequest}
}

// InvalidField reports a single field failure.
func InvalidField(field, message string) *AppError {
	return InvalidFields(map[string]string{field: message})
}

func InvalidFields(fields map[string]string) *AppError {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    "validation failed",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"resource": resource, "id": id},
	}
}

func BookingNotFound(id string) *AppError {
	return &AppError{
		Code:       CodeBookingNotFound,
		Message:    "booking not found",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"id": id},
	}
}

func SlotNoLongerAvailable(message string) *AppError {
	return &AppError{Code: CodeSlotNoLongerAvailable, Message: message, HTTPStatus: http.StatusConflict}
}

func OverpaymentRejected(remaining int64) *AppError {
	return &AppError{
		Code:       CodeOverpaymentRejected,
		Message:    "payment exceeds the remaining balance",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"remaining_amount": remaining},
	}
}

func AlreadySettled(bookingID string) *AppError {
	return &AppError{
		Code:       CodeAlreadySettled,
		Message:    "booking is already fully paid",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"booking_id": bookingID},
	}
}

func UnknownAddon(id string) *AppError {
	return &AppError{
		Code:       CodeUnknownAddon,
		Message:    fmt.Sprintf("unknown add-on %q", id),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"addon_id": id},
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot move from %s to %s", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
	}
}

func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, HTTPStatus: http.StatusConflict}
}

func PaymentDeclined(reason string) *AppError {
	return &AppError{Code: CodePaymentDeclined, Message: reason, HTTPStatus: http.StatusPaymentRequired}
}

func Unavailable(collaborator string, err error) *AppError {
	return &AppError{
		Code:       CodeCollaboratorUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", collaborator),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal for anything else.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
