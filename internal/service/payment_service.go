package service

import (
	"context"
	"fmt"
	"time"

	"rental-payment-service/internal/core/domain"
	"rental-payment-service/internal/core/ports"
	"rental-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	balanceRepo  ports.BalanceRepository
	txRepo       ports.TransactionRepository
	rentalClient ports.RentalClient
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	balanceRepo ports.BalanceRepository,
	txRepo ports.TransactionRepository,
	rentalClient ports.RentalClient,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		balanceRepo:  balanceRepo,
		txRepo:       txRepo,
		rentalClient: rentalClient,
		transactor:   transactor,
		log:          log,
	}
}

// TopUp credits the user's balance and records a completed TOPUP transaction.
func (s *PaymentServiceImpl) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidOperation("Top-up amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get balance (created at zero on first use)
	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("lock balance: %w", err))
	}

	newAmount := balance.Amount + amount
	if err := s.balanceRepo.UpdateAmount(ctx, dbTx, userID, newAmount); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("update balance: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      domain.TransactionTypeTopUp,
		Amount:    amount,
		Status:    domain.TransactionStatusCompleted,
		Notes:     "Balance top-up",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Msg("top-up processed successfully")

	return txn, nil
}

// PayForRental transfers the rental's monthly price from the tenant to the
// owner. The caller must be the rental's tenant, the rental must be in a
// payable state, and the amount must match the rental price exactly.
func (s *PaymentServiceImpl) PayForRental(ctx context.Context, tenantUserID, rentalID uuid.UUID, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidOperation("Payment amount must be positive")
	}

	rental, err := s.rentalClient.GetRentalDetails(ctx, rentalID)
	if err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("fetch rental %s: %w", rentalID, err))
	}
	if rental == nil {
		return nil, apperror.ErrNotFound("Rental")
	}

	if rental.TenantUserID != tenantUserID {
		return nil, apperror.ErrInvalidOperation("Only the rental's tenant can pay for it")
	}
	if !rental.IsPayable() {
		return nil, apperror.ErrInvalidOperation(
			fmt.Sprintf("Rental is not in a payable state (status: %s)", rental.Status))
	}
	if amount != rental.MonthlyPrice {
		return nil, apperror.ErrInvalidOperation(fmt.Sprintf(
			"Payment amount %s does not match the rental price %s",
			domain.FormatAmount(amount), domain.FormatAmount(rental.MonthlyPrice)))
	}
	if rental.OwnerUserID == tenantUserID {
		return nil, apperror.ErrInvalidOperation("Payer and payee cannot be the same user")
	}

	txn, err := s.performTransfer(ctx, tenantUserID, rental.OwnerUserID, rentalID, amount)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("rental_id", rentalID.String()).
		Str("tenant_id", tenantUserID.String()).
		Str("owner_id", rental.OwnerUserID.String()).
		Int64("amount", amount).
		Msg("rental payment processed successfully")

	return txn, nil
}

// performTransfer moves amount from payer to payee atomically and records a
// paired PAYMENT transaction for each party. Both balance rows are locked in
// ascending UUID order so concurrent opposite-direction transfers cannot
// deadlock.
func (s *PaymentServiceImpl) performTransfer(ctx context.Context, payerID, payeeID, rentalID uuid.UUID, amount int64) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	first, second := payerID, payeeID
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*domain.Balance, 2)
	for _, id := range []uuid.UUID{first, second} {
		b, err := s.balanceRepo.GetForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.ErrPaymentProcessing(fmt.Errorf("lock balance %s: %w", id, err))
		}
		locked[id] = b
	}
	payerBalance := locked[payerID]
	payeeBalance := locked[payeeID]

	if !payerBalance.CanCover(amount) {
		return nil, apperror.ErrInsufficientBalance(
			domain.FormatAmount(amount), domain.FormatAmount(payerBalance.Amount))
	}

	if err := s.balanceRepo.UpdateAmount(ctx, dbTx, payerID, payerBalance.Amount-amount); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("debit payer: %w", err))
	}
	if err := s.balanceRepo.UpdateAmount(ctx, dbTx, payeeID, payeeBalance.Amount+amount); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("credit payee: %w", err))
	}

	now := time.Now().UTC()
	payerTxn := &domain.Transaction{
		ID:              uuid.New(),
		UserID:          payerID,
		Type:            domain.TransactionTypePayment,
		Amount:          amount,
		Status:          domain.TransactionStatusCompleted,
		RelatedRentalID: &rentalID,
		PayerUserID:     &payerID,
		PayeeUserID:     &payeeID,
		Notes:           fmt.Sprintf("Payment sent for rental %s", rentalID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	payeeTxn := &domain.Transaction{
		ID:              uuid.New(),
		UserID:          payeeID,
		Type:            domain.TransactionTypePayment,
		Amount:          amount,
		Status:          domain.TransactionStatusCompleted,
		RelatedRentalID: &rentalID,
		PayerUserID:     &payerID,
		PayeeUserID:     &payeeID,
		Notes:           fmt.Sprintf("Payment received for rental %s", rentalID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.txRepo.Create(ctx, dbTx, payerTxn); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("create payer transaction: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, payeeTxn); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("create payee transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("commit tx: %w", err))
	}

	return payerTxn, nil
}

// GetBalance returns the user's current balance. Users who have never
// transacted read as zero without a row being written.
func (s *PaymentServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	balance, err := s.balanceRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.ErrPaymentProcessing(fmt.Errorf("get balance: %w", err))
	}
	if balance == nil {
		return &domain.Balance{
			UserID:    userID,
			Amount:    0,
			UpdatedAt: time.Now().UTC(),
		}, nil
	}
	return balance, nil
}

// GetHistory lists the user's transactions newest first with optional date
// and type filters. EndDate is widened to the start of the following day so
// the whole end day is included.
func (s *PaymentServiceImpl) GetHistory(ctx context.Context, req ports.HistoryRequest) ([]domain.Transaction, int64, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, 0, apperror.ErrInvalidOperation("End date must not be before start date")
	}

	page, pageSize := req.NormalizedPaging()

	params := ports.TransactionListParams{
		UserID:   req.UserID,
		Type:     req.Type,
		Page:     page,
		PageSize: pageSize,
	}
	if req.StartDate != nil {
		from := startOfDay(*req.StartDate)
		params.From = &from
	}
	if req.EndDate != nil {
		to := startOfDay(*req.EndDate).AddDate(0, 0, 1)
		params.To = &to
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrPaymentProcessing(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
