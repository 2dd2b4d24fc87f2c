package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rental-payment-service/internal/core/domain"
	"rental-payment-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Balance Repo ---

type inMemoryBalanceRepo struct {
	mu       sync.RWMutex
	balances map[uuid.UUID]*domain.Balance
}

func newInMemoryBalanceRepo() *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{balances: make(map[uuid.UUID]*domain.Balance)}
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *inMemoryBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		b = &domain.Balance{UserID: userID, Amount: 0, UpdatedAt: time.Now().UTC()}
		r.balances[userID] = b
	}
	copied := *b
	return &copied, nil
}

func (r *inMemoryBalanceRepo) UpdateAmount(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return fmt.Errorf("balance not found")
	}
	b.Amount = amount
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// lockOrderBalanceRepo records the order in which GetForUpdate takes row
// locks so tests can assert the canonical locking order.
type lockOrderBalanceRepo struct {
	*inMemoryBalanceRepo
	orderMu sync.Mutex
	order   []uuid.UUID
}

func newLockOrderBalanceRepo() *lockOrderBalanceRepo {
	return &lockOrderBalanceRepo{inMemoryBalanceRepo: newInMemoryBalanceRepo()}
}

func (r *lockOrderBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error) {
	r.orderMu.Lock()
	r.order = append(r.order, userID)
	r.orderMu.Unlock()
	return r.inMemoryBalanceRepo.GetForUpdate(ctx, tx, userID)
}

func (r *lockOrderBalanceRepo) resetOrder() {
	r.orderMu.Lock()
	defer r.orderMu.Unlock()
	r.order = nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.transactions {
		if r.transactions[i].ID == id {
			copied := r.transactions[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.From != nil && t.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && !t.CreatedAt.Before(*params.To) {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes units of work with a single mutex, standing
// in for the row locks the real store takes.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &t.mu}, nil
}

// lockedTx is a pgx.Tx implementation that holds the transactor's lock until
// Commit or Rollback.
type lockedTx struct {
	release *sync.Mutex
	done    bool
}

func (t *lockedTx) finish() {
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.finish(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.finish(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }

// --- Fake Rental Client ---

type fakeRentalClient struct {
	mu      sync.RWMutex
	rentals map[uuid.UUID]domain.RentalDetails
	err     error
}

func newFakeRentalClient() *fakeRentalClient {
	return &fakeRentalClient{rentals: make(map[uuid.UUID]domain.RentalDetails)}
}

func (c *fakeRentalClient) seed(r domain.RentalDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rentals[r.RentalID] = r
}

func (c *fakeRentalClient) GetRentalDetails(ctx context.Context, rentalID uuid.UUID) (*domain.RentalDetails, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	r, ok := c.rentals[rentalID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}
