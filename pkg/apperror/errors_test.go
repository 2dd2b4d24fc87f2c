package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("PAY_001", "Bad input", http.StatusBadRequest)
	assert.Equal(t, "[PAY_001] Bad input", e.Error())

	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, errors.New("db down"))
	assert.Equal(t, "[SYS_001] Internal server error: db down", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := ErrPaymentProcessing(fmt.Errorf("fetch rental: %w", cause))

	assert.True(t, errors.Is(e, cause))

	var appErr *AppError
	require.True(t, errors.As(error(e), &appErr))
	assert.Equal(t, "PAY_004", appErr.Code)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"invalid operation", ErrInvalidOperation("Top-up amount must be positive"), "PAY_001", http.StatusBadRequest},
		{"insufficient balance", ErrInsufficientBalance("500.00", "100.00"), "PAY_002", http.StatusConflict},
		{"not found", ErrNotFound("Rental"), "PAY_003", http.StatusNotFound},
		{"processing", ErrPaymentProcessing(errors.New("boom")), "PAY_004", http.StatusInternalServerError},
		{"invalid token", ErrInvalidToken(), "AUTH_001", http.StatusUnauthorized},
		{"rate limit", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"internal", InternalError(errors.New("boom")), "SYS_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrInsufficientBalance_Message(t *testing.T) {
	e := ErrInsufficientBalance("500.00", "100.00")
	assert.Contains(t, e.Message, "500.00")
	assert.Contains(t, e.Message, "100.00")
}

func TestErrPaymentProcessing_GenericMessage(t *testing.T) {
	// Internal detail must not leak into the client-facing message.
	e := ErrPaymentProcessing(errors.New("pq: relation balances does not exist"))
	assert.NotContains(t, e.Message, "pq:")
	assert.Contains(t, e.Error(), "pq:")
}
