package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores a completed transaction event for reliable publishing.
// The row is written in the same database transaction as the transaction
// record itself, so the event stream can never reference a record that
// was not durably committed.
type Message struct {
	ID            int64           `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	NGOID         uuid.UUID       `json:"ngo_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

func NewMessage(tx *transaction.Transaction) (*Message, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: tx.ID,
		NGOID:         tx.NGOID,
		Payload:       payload,
		Status:        StatusPending,
		Attempts:      0,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now().UTC()
	m.LastAttemptAt = &now
}

// GetTransaction extracts the transaction record from the payload
func (m *Message) GetTransaction() (*transaction.Transaction, error) {
	var tx transaction.Transaction
	if err := json.Unmarshal(m.Payload, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
