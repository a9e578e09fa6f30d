package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a divergence between the external money systems and the
// relational store
type Kind string

const (
	// KindPaymentCapturedUnrecorded marks a gateway capture with no
	// corresponding durable transaction record.
	KindPaymentCapturedUnrecorded Kind = "payment_captured_unrecorded"
	// KindLedgerReceiptUnrecorded marks an accepted ledger broadcast whose
	// transaction record failed to persist.
	KindLedgerReceiptUnrecorded Kind = "ledger_receipt_unrecorded"
)

// Event is a durable trail entry for manual reconciliation. Events are
// written to a store independent of the relational database so a
// relational outage cannot swallow the evidence.
type Event struct {
	ID               uuid.UUID `json:"id" bson:"id"`
	Kind             Kind      `json:"kind" bson:"kind"`
	NGOID            uuid.UUID `json:"ngo_id" bson:"ngo_id"`
	UserID           uuid.UUID `json:"user_id" bson:"user_id"`
	Amount           int64     `json:"amount" bson:"amount"` // Minor units
	LedgerHash       string    `json:"ledger_hash,omitempty" bson:"ledger_hash,omitempty"`
	GatewayOrderID   string    `json:"gateway_order_id,omitempty" bson:"gateway_order_id,omitempty"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty" bson:"gateway_payment_id,omitempty"`
	Detail           string    `json:"detail" bson:"detail"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// NewEvent stamps identity and creation time onto a divergence report
func NewEvent(kind Kind, e Event) *Event {
	e.ID = uuid.New()
	e.Kind = kind
	e.CreatedAt = time.Now().UTC()
	return &e
}

// Repository records divergence events for manual follow-up
type Repository interface {
	Record(ctx context.Context, event *Event) error
}
