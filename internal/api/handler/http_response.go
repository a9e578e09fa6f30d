package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
	"github.com/opengive/donation-ledger/internal/domain/user"
	"github.com/opengive/donation-ledger/internal/gateway"
)

// respondError sends the platform's flat error payload
func respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// respondDomainError maps domain errors onto HTTP statuses in one place:
// validation and signature failures are 400, missing resources 404,
// uniqueness conflicts 409, everything else (ledger, persistence) 500.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ngo.ErrNotFound{}),
		errors.Is(err, transaction.ErrNotFound{}),
		errors.Is(err, user.ErrNotFound{}):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidKind),
		errors.Is(err, transaction.ErrProofOnDonation),
		errors.Is(err, ngo.ErrEmptyName),
		errors.Is(err, user.ErrEmptyUsername),
		errors.Is(err, gateway.ErrInvalidSignature),
		errors.Is(err, coordinator.ErrPaymentNotCaptured),
		errors.Is(err, coordinator.ErrPaymentUnattributed):
		respondError(c, http.StatusBadRequest, err.Error())

	default:
		var dupUser user.ErrDuplicateUsername
		if errors.As(err, &dupUser) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
