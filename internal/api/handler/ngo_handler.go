package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opengive/donation-ledger/internal/api/middleware"
	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
)

// NGOHandler serves NGO profiles, their financials, and the direct
// donation/spending flows
type NGOHandler struct {
	logger  *slog.Logger
	coord   DonationCoordinator
	ngoRepo ngo.Repository
	txRepo  transaction.Repository
}

// NewNGOHandler creates a new NGO handler
func NewNGOHandler(logger *slog.Logger, coord DonationCoordinator, ngoRepo ngo.Repository, txRepo transaction.Repository) *NGOHandler {
	return &NGOHandler{
		logger:  logger,
		coord:   coord,
		ngoRepo: ngoRepo,
		txRepo:  txRepo,
	}
}

// List handles GET /api/ngos/
func (h *NGOHandler) List(c *gin.Context) {
	ngos, err := h.ngoRepo.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	out := make([]NGOResponse, 0, len(ngos))
	for _, n := range ngos {
		out = append(out, newNGOResponse(n))
	}
	c.JSON(http.StatusOK, out)
}

// GetByID handles GET /api/ngos/:ngo_id/ with the financial summary
func (h *NGOHandler) GetByID(c *gin.Context) {
	ngoID, err := uuid.Parse(c.Param("ngo_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid ngo id")
		return
	}

	ctx := c.Request.Context()
	n, err := h.ngoRepo.GetByID(ctx, ngoID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	donations, err := h.txRepo.FilterByNGOAndKind(ctx, ngoID, transaction.KindDonation)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	expenses, err := h.txRepo.FilterByNGOAndKind(ctx, ngoID, transaction.KindExpense)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	var received, spent int64
	for _, tx := range donations {
		received += tx.Amount
	}
	for _, tx := range expenses {
		spent += tx.Amount
	}

	c.JSON(http.StatusOK, NGODetailResponse{
		NGOResponse:   newNGOResponse(n),
		TotalReceived: toMajorUnits(received),
		TotalSpent:    toMajorUnits(spent),
		Balance:       toMajorUnits(received - spent),
	})
}

// Incoming handles GET /api/ngos/:ngo_id/incoming/
func (h *NGOHandler) Incoming(c *gin.Context) {
	h.listByKind(c, transaction.KindDonation)
}

// Outgoing handles GET /api/ngos/:ngo_id/outgoing/
func (h *NGOHandler) Outgoing(c *gin.Context) {
	h.listByKind(c, transaction.KindExpense)
}

func (h *NGOHandler) listByKind(c *gin.Context, kind transaction.Kind) {
	ngoID, err := uuid.Parse(c.Param("ngo_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid ngo id")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.ngoRepo.GetByID(ctx, ngoID); err != nil {
		respondDomainError(c, err)
		return
	}

	txs, err := h.txRepo.FilterByNGOAndKind(ctx, ngoID, kind)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionListResponse(txs))
}

// Donate handles POST /api/ngos/:ngo_id/donate/ — the direct flow: the
// donor vouches for money already moved outside the platform.
func (h *NGOHandler) Donate(c *gin.Context) {
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

	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.coord.SubmitDirect(c.Request.Context(), coordinator.DirectParams{
		NGOID:       ngoID,
		UserID:      claims.UserID,
		Kind:        transaction.KindDonation,
		Amount:      toMinorUnits(req.Amount),
		Description: req.Description,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction_hash": rec.LedgerHash})
}

// SubmitExpense handles POST /api/ngos/:ngo_id/outgoing/ — only the NGO's
// admin may record spending, and every expense needs a proof document.
func (h *NGOHandler) SubmitExpense(c *gin.Context) {
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

	ctx := c.Request.Context()
	n, err := h.ngoRepo.GetByID(ctx, ngoID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if n.AdminID != claims.UserID {
		respondError(c, http.StatusForbidden, "only the ngo admin can record spending")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.coord.SubmitDirect(ctx, coordinator.DirectParams{
		NGOID:       ngoID,
		UserID:      claims.UserID,
		Kind:        transaction.KindExpense,
		Amount:      toMinorUnits(req.Amount),
		ProofURL:    req.ProofURL,
		Description: req.Description,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction_hash": rec.LedgerHash})
}

// Create handles POST /api/ngos/admin/ — the caller becomes the NGO admin
func (h *NGOHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing credentials")
		return
	}

	var req CreateNGORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	n, err := ngo.New(req.Name, req.LogoURL, req.CertificateURL, claims.UserID, req.Description, req.WorkImages)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.ngoRepo.Create(c.Request.Context(), n); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newNGOResponse(n))
}

// Update handles PUT /api/ngos/admin/:ngo_id/
func (h *NGOHandler) Update(c *gin.Context) {
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

	ctx := c.Request.Context()
	n, err := h.ngoRepo.GetByID(ctx, ngoID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if n.AdminID != claims.UserID {
		respondError(c, http.StatusForbidden, "only the ngo admin can update the profile")
		return
	}

	var req UpdateNGORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		n.Name = req.Name
	}
	if req.LogoURL != "" {
		n.LogoURL = req.LogoURL
	}
	if req.CertificateURL != "" {
		n.CertificateURL = req.CertificateURL
	}
	if req.Description != "" {
		n.Description = req.Description
	}
	if req.WorkImages != nil {
		n.WorkImages = req.WorkImages
	}
	n.UpdatedAt = time.Now().UTC()

	if err := h.ngoRepo.Update(ctx, n); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newNGOResponse(n))
}
