package postgres

import (
	"context"
	"errors"
	"fmt"

	"rental-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Get fetches a user's balance without locking. Returns nil when the user
// has never been referenced.
func (r *BalanceRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	query := `SELECT user_id, amount, updated_at FROM balances WHERE user_id = $1`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate fetches a user's balance with pessimistic locking, creating
// a zero row first if none exists. The insert and the locked select run in
// the caller's transaction, so the creator gets the row back already held
// exclusively — there is no unlocked window between creation and lock.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error) {
	insert := `INSERT INTO balances (user_id, amount, updated_at) VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	query := `SELECT user_id, amount, updated_at FROM balances WHERE user_id = $1 FOR UPDATE`

	b := &domain.Balance{}
	err := tx.QueryRow(ctx, query, userID).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	return b, nil
}

// UpdateAmount persists a balance amount within a transaction; the row must
// be locked by a prior GetForUpdate in the same transaction.
func (r *BalanceRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	query := `UPDATE balances SET amount = $1, updated_at = NOW() WHERE user_id = $2`

	tag, err := tx.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance not found: %s", userID)
	}
	return nil
}
