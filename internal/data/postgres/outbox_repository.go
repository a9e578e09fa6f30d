package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opengive/donation-ledger/internal/domain/outbox"
	"github.com/opengive/donation-ledger/internal/platform/persistence"
)

// OutboxRepository implements the outbox.Repository interface for PostgreSQL
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOutboxRepository creates a new PostgreSQL outbox repository
func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction; the coordinator uses this
// so the outbox row commits atomically with the transaction record.
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new outbox message
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	query := `
		INSERT INTO transaction_outbox (transaction_id, ngo_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.TransactionID,
		message.NGOID,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return outbox.ErrDuplicateMessage{TransactionID: message.TransactionID}
		}
		r.logger.Error("Failed to create outbox message", "transaction_id", message.TransactionID.String(), "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	return nil
}

// GetPending retrieves up to limit pending messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	query := `
		SELECT id, transaction_id, ngo_id, payload, status, attempts, created_at, last_attempt_at
		FROM transaction_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, outbox.StatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var m outbox.Message
		err := rows.Scan(&m.ID, &m.TransactionID, &m.NGOID, &m.Payload, &m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt)
		if err != nil {
			r.logger.Error("Failed to scan outbox row", "error", err)
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over outbox rows", "error", err)
		return nil, fmt.Errorf("error iterating over outbox rows: %w", err)
	}

	return messages, nil
}

// UpdateStatus sets a message's status and stamps the attempt time
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	query := `
		UPDATE transaction_outbox
		SET status = $2, last_attempt_at = $3
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to update outbox status", "id", id, "error", err)
		return fmt.Errorf("failed to update outbox status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}

	return nil
}

// IncrementAttempts bumps the attempt counter for a message
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `
		UPDATE transaction_outbox
		SET attempts = attempts + 1, last_attempt_at = $2
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to increment outbox attempts", "id", id, "error", err)
		return fmt.Errorf("failed to increment outbox attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}

	return nil
}

// Delete removes a message
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM transaction_outbox WHERE id = $1`

	tag, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete outbox message", "id", id, "error", err)
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}

	return nil
}

// GetByTransactionID retrieves the outbox message for a transaction
func (r *OutboxRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	query := `
		SELECT id, transaction_id, ngo_id, payload, status, attempts, created_at, last_attempt_at
		FROM transaction_outbox
		WHERE transaction_id = $1
	`

	var m outbox.Message
	err := r.querier.QueryRow(ctx, query, transactionID).
		Scan(&m.ID, &m.TransactionID, &m.NGOID, &m.Payload, &m.Status, &m.Attempts, &m.CreatedAt, &m.LastAttemptAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outbox.ErrMessageNotFound{}
		}
		r.logger.Error("Failed to get outbox message", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get outbox message: %w", err)
	}

	return &m, nil
}
