package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrMissingLedgerHash = errors.New("ledger hash is required")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrMissingNGO        = errors.New("ngo reference is required")
	ErrMissingUser       = errors.New("user reference is required")
	ErrProofOnDonation   = errors.New("proof url is only valid for expenses")
)

// Kind defines the direction of a financial event
type Kind string

const (
	KindDonation Kind = "donation"
	KindExpense  Kind = "expense"
)

// Valid reports whether the kind is one of the known values
func (k Kind) Valid() bool {
	return k == KindDonation || k == KindExpense
}

// Status defines how far the reconciliation protocol progressed for a record
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transaction is the atomic record of one financial event. Amounts are
// stored in minor units (paise/cents). Every field except Status is
// write-once; a completed transaction always carries a ledger hash.
type Transaction struct {
	ID               uuid.UUID `json:"id"`
	NGOID            uuid.UUID `json:"ngo_id"`
	UserID           uuid.UUID `json:"user_id"`
	Kind             Kind      `json:"transaction_type"`
	Amount           int64     `json:"amount"` // Stored in minor units
	LedgerHash       string    `json:"blockchain_hash"`
	ProofURL         string    `json:"proof_url,omitempty"`
	Description      string    `json:"description,omitempty"`
	GatewayOrderID   string    `json:"razorpay_order_id,omitempty"`
	GatewayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	GatewaySignature string    `json:"razorpay_signature,omitempty"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"timestamp"`
}

// Params carries the write-once fields for a new transaction record
type Params struct {
	NGOID            uuid.UUID
	UserID           uuid.UUID
	Kind             Kind
	Amount           int64
	LedgerHash       string
	ProofURL         string
	Description      string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// New builds a completed transaction record. A record only comes into
// existence after the ledger write succeeded, so the ledger hash is a
// hard precondition here, not just a storage constraint.
func New(p Params) (*Transaction, error) {
	if p.NGOID == uuid.Nil {
		return nil, ErrMissingNGO
	}
	if p.UserID == uuid.Nil {
		return nil, ErrMissingUser
	}
	if !p.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.LedgerHash == "" {
		return nil, ErrMissingLedgerHash
	}
	if p.ProofURL != "" && p.Kind != KindExpense {
		return nil, ErrProofOnDonation
	}

	return &Transaction{
		ID:               uuid.New(),
		NGOID:            p.NGOID,
		UserID:           p.UserID,
		Kind:             p.Kind,
		Amount:           p.Amount,
		LedgerHash:       p.LedgerHash,
		ProofURL:         p.ProofURL,
		Description:      p.Description,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		GatewaySignature: p.GatewaySignature,
		Status:           StatusCompleted,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
