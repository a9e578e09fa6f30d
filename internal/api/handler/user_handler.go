package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opengive/donation-ledger/internal/auth"
	"github.com/opengive/donation-ledger/internal/domain/user"
)

// UserHandler serves account registration and login
type UserHandler struct {
	logger   *slog.Logger
	userRepo user.Repository
	issuer   *auth.TokenIssuer
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userRepo user.Repository, issuer *auth.TokenIssuer) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userRepo: userRepo,
		issuer:   issuer,
	}
}

// Register handles POST /api/users/register/
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	u, err := user.New(req.Username, hash)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.userRepo.Create(c.Request.Context(), u); err != nil {
		respondDomainError(c, err)
		return
	}

	token, err := h.issuer.Issue(u)
	if err != nil {
		h.logger.Error("Failed to issue token", "username", u.Username, "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       u.ID.String(),
		"username": u.Username,
		"token":    token,
	})
}

// Login handles POST /api/users/login/
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.userRepo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		// A missing account and a wrong password answer identically
		if errors.Is(err, user.ErrNotFound{}) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(c, err)
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issuer.Issue(u)
	if err != nil {
		h.logger.Error("Failed to issue token", "username", u.Username, "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       u.ID.String(),
		"username": u.Username,
		"token":    token,
	})
}
