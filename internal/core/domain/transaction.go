package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeTopUp      TransactionType = "TOPUP"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeRefund     TransactionType = "REFUND"
)

// ParseTransactionType converts a string into a known TransactionType.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(s) {
	case TransactionTypeTopUp, TransactionTypePayment, TransactionTypeWithdrawal, TransactionTypeRefund:
		return TransactionType(s), true
	}
	return "", false
}

// TransactionStatus represents the lifecycle state of a transaction.
// The single-phase design creates rows already COMPLETED; PENDING and
// CANCELLED exist for the ledger data contract and a possible two-phase
// top-up confirmation flow.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is an immutable ledger entry. A top-up produces one row; a
// rental payment produces exactly two rows sharing the same rental, payer,
// payee and amount, one keyed to each party.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"` // Whose history this row belongs to
	Type            TransactionType   `json:"type"`
	Amount          int64             `json:"amount"` // Minor units, always > 0
	Status          TransactionStatus `json:"status"`
	RelatedRentalID *uuid.UUID        `json:"related_rental_id,omitempty"`
	PayerUserID     *uuid.UUID        `json:"payer_user_id,omitempty"`
	PayeeUserID     *uuid.UUID        `json:"payee_user_id,omitempty"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusCancelled
}
