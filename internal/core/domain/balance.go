package domain

import (
	"time"

	"github.com/google/uuid"
)

// Balance is a user's current monetary balance in minor units.
// Rows are created lazily at zero on first reference, never deleted, and
// mutated only while holding the per-user row lock.
type Balance struct {
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"` // Minor units (cents), always >= 0
	UpdatedAt time.Time `json:"updated_at"`
}

// CanCover reports whether the balance can pay the given amount.
func (b *Balance) CanCover(amount int64) bool {
	return b.Amount >= amount
}
