package ports

import (
	"context"
	"time"

	"rental-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepository defines persistence operations for user balances.
// Methods accepting pgx.Tx run inside a unit of work and hold the per-user
// row lock until the transaction commits or rolls back.
type BalanceRepository interface {
	// Get is a non-locking read; returns nil when no row exists.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Balance, error)
	// GetForUpdate returns the user's balance locked for the duration of tx,
	// creating a zero row first if none exists. The caller always observes a
	// consistent, exclusively held row.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error)
	// UpdateAmount persists a new amount; valid only under the lock taken by
	// GetForUpdate in the same tx.
	UpdateAmount(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error
}

// TransactionRepository is the append-only transaction ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
// From is inclusive, To exclusive; nil filters are skipped. With no filters
// set the repository takes the plain by-user indexed path.
type TransactionListParams struct {
	UserID   uuid.UUID
	From     *time.Time
	To       *time.Time
	Type     *domain.TransactionType
	Page     int
	PageSize int
}

// HasFilters reports whether any optional filter is set.
func (p TransactionListParams) HasFilters() bool {
	return p.From != nil || p.To != nil || p.Type != nil
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
