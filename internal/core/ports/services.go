package ports

import (
	"context"
	"time"

	"rental-payment-service/internal/core/domain"

	"github.com/google/uuid"
)

// RentalClient looks up rental details from the rental service.
// A nil result with a nil error means the rental does not exist.
type RentalClient interface {
	GetRentalDetails(ctx context.Context, rentalID uuid.UUID) (*domain.RentalDetails, error)
}

// PaymentService is the transfer engine: top-ups, rental payments, balance
// and history reads.
type PaymentService interface {
	TopUp(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Transaction, error)
	PayForRental(ctx context.Context, tenantUserID, rentalID uuid.UUID, amount int64) (*domain.Transaction, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Balance, error)
	GetHistory(ctx context.Context, req HistoryRequest) ([]domain.Transaction, int64, error)
}

// HistoryRequest holds the caller-facing history filters. StartDate and
// EndDate are calendar days; the service widens EndDate to the start of the
// following day so the whole end day is included.
type HistoryRequest struct {
	UserID    uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Type      *domain.TransactionType
	Page      int
	PageSize  int
}

// History paging bounds, shared by the service and the API layer so the
// echoed paging always matches what was actually queried.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizedPaging returns the effective page and page size after applying
// the default and the maximum page size cap.
func (r HistoryRequest) NormalizedPaging() (page, pageSize int) {
	page = r.Page
	if page < 1 {
		page = 1
	}
	pageSize = r.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// TokenVerifier validates a bearer token and yields the caller's user ID.
// Token issuance belongs to the external identity service.
type TokenVerifier interface {
	Verify(tokenString string) (uuid.UUID, error)
}

// EventDeduplicator guards the event consumer against redelivery.
type EventDeduplicator interface {
	// CheckAndSet atomically records key and reports true when it is new.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Clear forgets key so a redelivered copy is treated as new again.
	Clear(ctx context.Context, key string) error
}
