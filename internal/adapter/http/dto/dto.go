package dto

// TopUpRequest is the request body for a balance top-up. Amount is a
// decimal string, e.g. "500.00".
type TopUpRequest struct {
	Amount string `json:"amount" binding:"required,decimal_amount"`
}

// PaymentRequest is the request body for a rental payment.
type PaymentRequest struct {
	RentalID string `json:"rental_id" binding:"required,uuid"`
	Amount   string `json:"amount" binding:"required,decimal_amount"`
}

// TransactionResponse is the response body for a ledger transaction.
// Amounts are decimal strings.
type TransactionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Status      string  `json:"status"`
	RentalID    *string `json:"rental_id,omitempty"`
	PayerUserID *string `json:"payer_user_id,omitempty"`
	PayeeUserID *string `json:"payee_user_id,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	UpdatedAt string `json:"updated_at"`
}

// TransactionListResponse wraps a paginated transaction history.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}
