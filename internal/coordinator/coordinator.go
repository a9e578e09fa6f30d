// Package coordinator drives the reconciliation protocol between the three
// money systems: the blockchain ledger, the payment gateway, and the
// relational store. The ordering rule is fixed: external side effects first,
// ledger receipt second, durable record last. A transaction row only exists
// once it carries a ledger hash.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opengive/donation-ledger/internal/domain/audit"
	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/domain/outbox"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/opengive/donation-ledger/internal/gateway"
)

// ErrPersistence indicates the record failed to commit after the ledger
// write already succeeded. The receipt is preserved in the audit trail for
// manual reconciliation.
var ErrPersistence = errors.New("failed to persist transaction record")

// ErrPaymentNotCaptured indicates the gateway reports the payment in a
// state other than captured
var ErrPaymentNotCaptured = errors.New("payment not captured by gateway")

// ErrPaymentUnattributed indicates a captured payment whose order notes do
// not identify an NGO and user
var ErrPaymentUnattributed = errors.New("payment carries no ngo and user attribution")

// LedgerRecorder stamps a financial event onto the blockchain and returns
// the receipt hash
type LedgerRecorder interface {
	Record(ctx context.Context, amount int64, kind transaction.Kind, ngoID uuid.UUID) (string, error)
}

// PaymentGateway is the coordinator's view of the payment gateway
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, ngoID, userID uuid.UUID) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	FetchPayment(ctx context.Context, paymentID string) (*gateway.Payment, error)
	KeyID() string
}

// TxRunner provides the atomic persistence boundary
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Coordinator implements the direct and gateway-mediated recording flows
type Coordinator struct {
	logger     *slog.Logger
	ledger     LedgerRecorder
	gateway    PaymentGateway
	db         TxRunner
	txRepo     transaction.Repository
	outboxRepo outbox.Repository
	ngoRepo    ngo.Repository
	auditRepo  audit.Repository
}

// NewCoordinator wires the reconciliation protocol dependencies
func NewCoordinator(
	logger *slog.Logger,
	ledger LedgerRecorder,
	gw PaymentGateway,
	db TxRunner,
	txRepo transaction.Repository,
	outboxRepo outbox.Repository,
	ngoRepo ngo.Repository,
	auditRepo audit.Repository,
) *Coordinator {
	return &Coordinator{
		logger:     logger,
		ledger:     ledger,
		gateway:    gw,
		db:         db,
		txRepo:     txRepo,
		outboxRepo: outboxRepo,
		ngoRepo:    ngoRepo,
		auditRepo:  auditRepo,
	}
}

// DirectParams carries a direct-flow submission: money already moved
// outside the platform, the caller vouches for the amount.
type DirectParams struct {
	NGOID       uuid.UUID
	UserID      uuid.UUID
	Kind        transaction.Kind
	Amount      int64 // Minor units
	ProofURL    string
	Description string
}

// SubmitDirect records a direct donation or expense. The ledger receipt
// gates row creation: if the ledger write fails, no record is created and
// the submission fails whole.
func (c *Coordinator) SubmitDirect(ctx context.Context, p DirectParams) (*transaction.Transaction, error) {
	if !p.Kind.Valid() {
		return nil, transaction.ErrInvalidKind
	}
	if p.Amount <= 0 {
		return nil, transaction.ErrInvalidAmount
	}

	if _, err := c.ngoRepo.GetByID(ctx, p.NGOID); err != nil {
		return nil, err
	}

	hash, err := c.ledger.Record(ctx, p.Amount, p.Kind, p.NGOID)
	if err != nil {
		c.logger.Error("Ledger recording failed, submission aborted",
			"ngo_id", p.NGOID.String(),
			"kind", string(p.Kind),
			"error", err)
		return nil, fmt.Errorf("ledger recording failed: %w", err)
	}

	rec, err := transaction.New(transaction.Params{
		NGOID:       p.NGOID,
		UserID:      p.UserID,
		Kind:        p.Kind,
		Amount:      p.Amount,
		LedgerHash:  hash,
		ProofURL:    p.ProofURL,
		Description: p.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := c.persist(ctx, rec); err != nil {
		c.reportDivergence(ctx, audit.KindLedgerReceiptUnrecorded, audit.Event{
			NGOID:      p.NGOID,
			UserID:     p.UserID,
			Amount:     p.Amount,
			LedgerHash: hash,
			Detail:     err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return rec, nil
}

// CreateOrder opens a gateway order for a pending donation. Nothing touches
// the ledger or the store here; the order only pins the amount and the
// NGO/user attribution for the later confirmation.
func (c *Coordinator) CreateOrder(ctx context.Context, ngoID, userID uuid.UUID, amount int64) (*gateway.Order, error) {
	if amount <= 0 {
		return nil, transaction.ErrInvalidAmount
	}
	if _, err := c.ngoRepo.GetByID(ctx, ngoID); err != nil {
		return nil, err
	}

	return c.gateway.CreateOrder(ctx, amount, ngoID, userID)
}

// GatewayKeyID exposes the public gateway key for browser checkout
func (c *Coordinator) GatewayKeyID() string {
	return c.gateway.KeyID()
}

// ConfirmParams carries the checkout callback fields
type ConfirmParams struct {
	OrderID   string
	PaymentID string
	Signature string
}

// ConfirmPayment completes the gateway-mediated flow. The signature gates
// everything; the fetched payment is the sole authority on amount and
// attribution; the ledger receipt gates the durable record. A captured
// payment that cannot be recorded leaves an audit event instead of a row.
func (c *Coordinator) ConfirmPayment(ctx context.Context, p ConfirmParams) (*transaction.Transaction, error) {
	if err := c.gateway.VerifySignature(p.OrderID, p.PaymentID, p.Signature); err != nil {
		return nil, err
	}

	payment, err := c.gateway.FetchPayment(ctx, p.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != "captured" {
		return nil, fmt.Errorf("%w: status %q", ErrPaymentNotCaptured, payment.Status)
	}
	if payment.NGOID == uuid.Nil || payment.UserID == uuid.Nil {
		return nil, ErrPaymentUnattributed
	}

	hash, err := c.ledger.Record(ctx, payment.Amount, transaction.KindDonation, payment.NGOID)
	if err != nil {
		// Money moved at the gateway but no receipt exists. This is the
		// worst divergence the protocol can produce, so it gets a durable
		// trail entry before the error surfaces.
		c.reportDivergence(ctx, audit.KindPaymentCapturedUnrecorded, audit.Event{
			NGOID:            payment.NGOID,
			UserID:           payment.UserID,
			Amount:           payment.Amount,
			GatewayOrderID:   payment.OrderID,
			GatewayPaymentID: payment.ID,
			Detail:           err.Error(),
		})
		return nil, fmt.Errorf("ledger recording failed: %w", err)
	}

	rec, err := transaction.New(transaction.Params{
		NGOID:            payment.NGOID,
		UserID:           payment.UserID,
		Kind:             transaction.KindDonation,
		Amount:           payment.Amount,
		LedgerHash:       hash,
		GatewayOrderID:   payment.OrderID,
		GatewayPaymentID: payment.ID,
		GatewaySignature: p.Signature,
	})
	if err != nil {
		return nil, err
	}

	if err := c.persist(ctx, rec); err != nil {
		c.reportDivergence(ctx, audit.KindLedgerReceiptUnrecorded, audit.Event{
			NGOID:            payment.NGOID,
			UserID:           payment.UserID,
			Amount:           payment.Amount,
			LedgerHash:       hash,
			GatewayOrderID:   payment.OrderID,
			GatewayPaymentID: payment.ID,
			Detail:           err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return rec, nil
}

// persist commits the transaction record and its outbox event atomically
func (c *Coordinator) persist(ctx context.Context, rec *transaction.Transaction) error {
	return c.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := c.txRepo.WithTx(tx).Create(ctx, rec); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(rec)
		if err != nil {
			return err
		}
		return c.outboxRepo.WithTx(tx).Create(ctx, msg)
	})
}

// reportDivergence writes an audit event; a failure here can only be logged
func (c *Coordinator) reportDivergence(ctx context.Context, kind audit.Kind, e audit.Event) {
	event := audit.NewEvent(kind, e)
	if err := c.auditRepo.Record(ctx, event); err != nil {
		c.logger.Error("Failed to record divergence event",
			"kind", string(kind),
			"ngo_id", e.NGOID.String(),
			"ledger_hash", e.LedgerHash,
			"gateway_payment_id", e.GatewayPaymentID,
			"error", err)
		return
	}

	c.logger.Error("Recorded divergence event for manual reconciliation",
		"kind", string(kind),
		"event_id", event.ID.String(),
		"ngo_id", e.NGOID.String())
}
