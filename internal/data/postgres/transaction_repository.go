// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the donation platform.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/opengive/donation-ledger/internal/platform/persistence"
)

const uniqueViolation = "23505"

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// NewTransactionRepositoryWithQuerier builds a repository over an explicit
// querier; used by tests that substitute a mock pool.
func NewTransactionRepositoryWithQuerier(logger *slog.Logger, querier persistence.Querier) transaction.Repository {
	return &TransactionRepository{
		querier: querier,
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the record insert can
// share an atomic boundary with the outbox write.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const transactionColumns = `id, ngo_id, user_id, kind, amount, ledger_hash, proof_url, description,
		gateway_order_id, gateway_payment_id, gateway_signature, status, created_at`

// Create stores a new transaction record. The completed-implies-hash
/// invariant is enforced here as well as in the constructor: a record with an
// empty ledger hash never reaches the database.
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	if tx.LedgerHash == "" {
		return transaction.ErrMissingLedgerHash
	}
	if tx.Amount <= 0 {
		return transaction.ErrInvalidAmount
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		tx.ID,
		tx.NGOID,
		tx.UserID,
		tx.Kind,
		tx.Amount,
		tx.LedgerHash,
		tx.ProofURL,
		tx.Description,
		tx.GatewayOrderID,
		tx.GatewayPaymentID,
		tx.GatewaySignature,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return transaction.ErrDuplicateHash{LedgerHash: tx.LedgerHash}
		}
		r.logger.Error("Failed to create transaction", "id", tx.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction record by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	tx, err := r.scanRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// List retrieves transaction records matching the filter, ordered by
// creation time
func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE 1=1`

	var args []interface{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.MinAmount != nil {
		args = append(args, *filter.MinAmount)
		query += fmt.Sprintf(" AND amount >= $%d", len(args))
	}
	if filter.MaxAmount != nil {
		args = append(args, *filter.MaxAmount)
		query += fmt.Sprintf(" AND amount <= $%d", len(args))
	}

	if filter.SortOrder == transaction.SortAsc {
		query += " ORDER BY created_at ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// FilterByNGOAndKind retrieves an NGO's donations or expenses, newest first
func (r *TransactionRepository) FilterByNGOAndKind(ctx context.Context, ngoID uuid.UUID, kind transaction.Kind) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ngo_id = $1 AND kind = $2
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, ngoID, kind)
	if err != nil {
		r.logger.Error("Failed to filter transactions", "ngo_id", ngoID.String(), "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to filter transactions: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *TransactionRepository) scanRow(row pgx.Row) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.NGOID,
		&tx.UserID,
		&tx.Kind,
		&tx.Amount,
		&tx.LedgerHash,
		&tx.ProofURL,
		&tx.Description,
		&tx.GatewayOrderID,
		&tx.GatewayPaymentID,
		&tx.GatewaySignature,
		&tx.Status,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var transactions []*transaction.Transaction
	for rows.Next() {
		tx, err := r.scanRow(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction row", "error", err)
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transaction rows", "error", err)
		return nil, fmt.Errorf("error iterating over transaction rows: %w", err)
	}

	return transactions, nil
}
