package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceColumns() []string {
	return []string{"user_id", "amount", "updated_at"}
}

func balanceRow(userID uuid.UUID, amount int64) *pgxmock.Rows {
	return pgxmock.NewRows(balanceColumns()).
		AddRow(userID, amount, time.Now().UTC().Truncate(time.Microsecond))
}

func TestBalanceRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT user_id, amount, updated_at FROM balances WHERE user_id").
		WithArgs(userID).
		WillReturnRows(balanceRow(userID, 50000))

	result, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, int64(50000), result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Get_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT user_id, amount, updated_at FROM balances WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(balanceColumns()))

	result, err := repo.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate_ExistingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT user_id, amount, updated_at FROM balances WHERE user_id .+ FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(balanceRow(userID, 12300))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(12300), result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate_CreatesZeroRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT user_id, amount, updated_at FROM balances WHERE user_id .+ FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(balanceRow(userID, 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Zero(t, result.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_UpdateAmount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount").
		WithArgs(int64(75000), userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateAmount(context.Background(), tx, userID, 75000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_UpdateAmount_MissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount").
		WithArgs(int64(100), userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateAmount(context.Background(), tx, userID, 100)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
