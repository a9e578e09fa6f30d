package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:         uuid.New(),
		NGOID:      uuid.New(),
		UserID:     uuid.New(),
		Kind:       transaction.KindDonation,
		Amount:     25000,
		LedgerHash: "0xabc123",
		Status:     transaction.StatusCompleted,
		CreatedAt:  time.Now().UTC(),
	}
}

var transactionRowColumns = []string{
	"id", "ngo_id", "user_id", "kind", "amount", "ledger_hash", "proof_url", "description",
	"gateway_order_id", "gateway_payment_id", "gateway_signature", "status", "created_at",
}

func transactionRow(tx *transaction.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(transactionRowColumns).
		AddRow(tx.ID, tx.NGOID, tx.UserID, tx.Kind, tx.Amount, tx.LedgerHash, tx.ProofURL, tx.Description,
			tx.GatewayOrderID, tx.GatewayPaymentID, tx.GatewaySignature, tx.Status, tx.CreatedAt)
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	query := `INSERT INTO transactions`

	t.Run("success", func(t *testing.T) {
		tx := testTransaction()
		mock.ExpectExec(query).
			WithArgs(tx.ID, tx.NGOID, tx.UserID, tx.Kind, tx.Amount, tx.LedgerHash, tx.ProofURL, tx.Description,
				tx.GatewayOrderID, tx.GatewayPaymentID, tx.GatewaySignature, tx.Status, tx.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, tx)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty ledger hash rejected before any SQL", func(t *testing.T) {
		tx := testTransaction()
		tx.LedgerHash = ""

		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, transaction.ErrMissingLedgerHash)
		assert.NoError(t, mock.ExpectationsWereMet(), "no database call should be made")
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		tx := testTransaction()
		tx.Amount = 0

		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate ledger hash", func(t *testing.T) {
		tx := testTransaction()
		mock.ExpectExec(query).
			WithArgs(tx.ID, tx.NGOID, tx.UserID, tx.Kind, tx.Amount, tx.LedgerHash, tx.ProofURL, tx.Description,
				tx.GatewayOrderID, tx.GatewayPaymentID, tx.GatewaySignature, tx.Status, tx.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.Create(ctx, tx)
		var dupErr transaction.ErrDuplicateHash
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, tx.LedgerHash, dupErr.LedgerHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		tx := testTransaction()
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(tx.ID, tx.NGOID, tx.UserID, tx.Kind, tx.Amount, tx.LedgerHash, tx.ProofURL, tx.Description,
				tx.GatewayOrderID, tx.GatewayPaymentID, tx.GatewaySignature, tx.Status, tx.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, tx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	expected := testTransaction()

	query := `SELECT (.+) FROM transactions\s+WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(transactionRow(expected))

		tx, err := repo.GetByID(ctx, expected.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected, tx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(pgx.ErrNoRows)

		tx, err := repo.GetByID(ctx, expected.ID)
		assert.Error(t, err)
		assert.Nil(t, tx)
		var notFoundErr transaction.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, expected.ID, notFoundErr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_List(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}

	t.Run("no filters defaults to newest first", func(t *testing.T) {
		expected := testTransaction()
		mock.ExpectQuery(`SELECT (.+) FROM transactions\s+WHERE 1=1 ORDER BY created_at DESC`).
			WillReturnRows(transactionRow(expected))

		txs, err := repo.List(ctx, transaction.ListFilter{})
		assert.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, expected, txs[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all filters applied in order", func(t *testing.T) {
		expected := testTransaction()
		userID := expected.UserID
		minAmount := int64(10000)
		maxAmount := int64(50000)

		mock.ExpectQuery(`WHERE 1=1 AND user_id = \$1 AND amount >= \$2 AND amount <= \$3 ORDER BY created_at ASC`).
			WithArgs(userID, minAmount, maxAmount).
			WillReturnRows(transactionRow(expected))

		txs, err := repo.List(ctx, transaction.ListFilter{
			UserID:    &userID,
			MinAmount: &minAmount,
			MaxAmount: &maxAmount,
			SortOrder: transaction.SortAsc,
		})
		assert.NoError(t, err)
		require.Len(t, txs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is empty slice", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM transactions`).
			WillReturnRows(pgxmock.NewRows(transactionRowColumns))

		txs, err := repo.List(ctx, transaction.ListFilter{})
		assert.NoError(t, err)
		assert.Empty(t, txs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("list db error")
		mock.ExpectQuery(`SELECT (.+) FROM transactions`).WillReturnError(dbErr)

		txs, err := repo.List(ctx, transaction.ListFilter{})
		assert.Error(t, err)
		assert.Nil(t, txs)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_FilterByNGOAndKind(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: logger}
	expected := testTransaction()

	query := `SELECT (.+) FROM transactions\s+WHERE ngo_id = \$1 AND kind = \$2\s+ORDER BY created_at DESC`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.NGOID, transaction.KindDonation).
			WillReturnRows(transactionRow(expected))

		txs, err := repo.FilterByNGOAndKind(ctx, expected.NGOID, transaction.KindDonation)
		assert.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, expected, txs[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("filter db error")
		mock.ExpectQuery(query).
			WithArgs(expected.NGOID, transaction.KindExpense).
			WillReturnError(dbErr)

		txs, err := repo.FilterByNGOAndKind(ctx, expected.NGOID, transaction.KindExpense)
		assert.Error(t, err)
		assert.Nil(t, txs)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_WithTx(t *testing.T) {
	logger := newTestLogger()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &TransactionRepository{querier: mockPool, logger: logger}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.NotNil(t, txRepo)
	assert.Equal(t, pgxTx, txRepo.(*TransactionRepository).querier, "querier in new repo should be the transaction")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
