package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/opengive/donation-ledger/internal/gateway"
)

// DonationCoordinator is the write-path surface the handlers drive.
// *coordinator.Coordinator satisfies it.
type DonationCoordinator interface {
	SubmitDirect(ctx context.Context, p coordinator.DirectParams) (*transaction.Transaction, error)
	CreateOrder(ctx context.Context, ngoID, userID uuid.UUID, amount int64) (*gateway.Order, error)
	ConfirmPayment(ctx context.Context, p coordinator.ConfirmParams) (*transaction.Transaction, error)
	GatewayKeyID() string
}

var _ DonationCoordinator = (*coordinator.Coordinator)(nil)
