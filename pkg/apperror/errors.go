package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Payment Business Logic (PAY) ----

// ErrInvalidOperation covers bad or mismatched input: non-positive amounts,
// callers who are not the rental's tenant, rentals in a non-payable state,
// payment amounts that do not match the rental price.
func ErrInvalidOperation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}

// ErrInsufficientBalance signals the payer cannot cover the amount.
func ErrInsufficientBalance(required, available string) *AppError {
	return New("PAY_002",
		fmt.Sprintf("Insufficient balance for payment. Required: %s, Available: %s", required, available),
		http.StatusConflict)
}

// ErrNotFound signals a missing entity (rental, transaction).
func ErrNotFound(entity string) *AppError {
	return New("PAY_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrPaymentProcessing wraps unexpected internal or dependency failures.
// The client-facing message stays generic; the cause is kept for logs.
func ErrPaymentProcessing(err error) *AppError {
	return Wrap("PAY_004", "Payment processing failed due to an internal error", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error.
func Validation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}
