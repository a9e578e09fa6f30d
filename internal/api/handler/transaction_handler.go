package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opengive/donation-ledger/internal/api/middleware"
	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
)

// TransactionHandler serves the gateway-mediated donation flow and the
// transaction listings
type TransactionHandler struct {
	logger *slog.Logger
	coord  DonationCoordinator
	txRepo transaction.Repository
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, coord DonationCoordinator, txRepo transaction.Repository) *TransactionHandler {
	return &TransactionHandler{
		logger: logger,
		coord:  coord,
		txRepo: txRepo,
	}
}

// CreateOrder handles POST /api/transactions/create-order/:ngo_id/
func (h *TransactionHandler) CreateOrder(c *gin.Context) {
	ngoID, err := uuid.Parse(c.Param("ngo_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid ngo id")
		return
	}

	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.coord.CreateOrder(c.Request.Context(), ngoID, claims.UserID, toMinorUnits(req.Amount))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"amount":   toMajorUnits(order.Amount),
		"currency": order.Currency,
		"key":      h.coord.GatewayKeyID(),
	})
}

// VerifyPayment handles POST /api/transactions/payment/verify/ — the
// checkout callback that completes the gateway-mediated flow
func (h *TransactionHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.coord.ConfirmPayment(c.Request.Context(), coordinator.ConfirmParams{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          string(rec.Status),
		"transaction_id":  rec.ID.String(),
		"blockchain_hash": rec.LedgerHash,
	})
}

// List handles GET /api/transactions/list/ with optional user and amount
// filters; the response is a bare array.
func (h *TransactionHandler) List(c *gin.Context) {
	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	filter := transaction.ListFilter{SortOrder: transaction.SortOrder(q.SortOrder)}
	if q.UserID != "" {
		userID, err := uuid.Parse(q.UserID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid user id")
			return
		}
		filter.UserID = &userID
	}
	if q.MinAmount != nil {
		minAmount := toMinorUnits(*q.MinAmount)
		filter.MinAmount = &minAmount
	}
	if q.MaxAmount != nil {
		maxAmount := toMinorUnits(*q.MaxAmount)
		filter.MaxAmount = &maxAmount
	}

	txs, err := h.txRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionListResponse(txs))
}

// GetByID handles GET /api/transactions/:id/
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.txRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(tx))
}
