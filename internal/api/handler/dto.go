package handler

import (
	"math"
	"time"

	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
)

// Amounts cross the API boundary in major currency units (rupees/dollars)
// and are stored in minor units internally.

func toMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

func toMajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// DonateRequest is a direct donation submission
type DonateRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description,omitempty"`
}

// ExpenseRequest is an NGO spending submission; the proof URL is mandatory
type ExpenseRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	ProofURL    string  `json:"proof_url" binding:"required,url"`
	Description string  `json:"description,omitempty"`
}

// CreateOrderRequest opens a gateway order for checkout
type CreateOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// VerifyPaymentRequest is the checkout callback
type VerifyPaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// CreateNGORequest registers an NGO administered by the caller
type CreateNGORequest struct {
	Name           string   `json:"name" binding:"required"`
	LogoURL        string   `json:"logo_url,omitempty"`
	CertificateURL string   `json:"certificate_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	WorkImages     []string `json:"work_images,omitempty"`
}

// UpdateNGORequest updates the caller's NGO profile
type UpdateNGORequest struct {
	Name           string   `json:"name,omitempty"`
	LogoURL        string   `json:"logo_url,omitempty"`
	CertificateURL string   `json:"certificate_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	WorkImages     []string `json:"work_images,omitempty"`
}

// RegisterRequest creates a platform account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest authenticates a platform account
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ListTransactionsQuery narrows the transaction listing; amounts are major
// units, bounds inclusive
type ListTransactionsQuery struct {
	UserID    string   `form:"user_id" binding:"omitempty,uuid"`
	MinAmount *float64 `form:"min_amount"`
	MaxAmount *float64 `form:"max_amount"`
	SortOrder string   `form:"sort_order,default=desc" binding:"omitempty,oneof=asc desc"`
}

// TransactionResponse mirrors the stored record with major-unit amounts
type TransactionResponse struct {
	ID                string  `json:"id"`
	NGOID             string  `json:"ngo_id"`
	UserID            string  `json:"user_id"`
	Type              string  `json:"transaction_type"`
	Amount            float64 `json:"amount"`
	BlockchainHash    string  `json:"blockchain_hash"`
	ProofURL          string  `json:"proof_url,omitempty"`
	Description       string  `json:"description,omitempty"`
	RazorpayOrderID   string  `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string  `json:"razorpay_payment_id,omitempty"`
	Status            string  `json:"status"`
	Timestamp         string  `json:"timestamp"`
}

func newTransactionResponse(tx *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                tx.ID.String(),
		NGOID:             tx.NGOID.String(),
		UserID:            tx.UserID.String(),
		Type:              string(tx.Kind),
		Amount:            toMajorUnits(tx.Amount),
		BlockchainHash:    tx.LedgerHash,
		ProofURL:          tx.ProofURL,
		Description:       tx.Description,
		RazorpayOrderID:   tx.GatewayOrderID,
		RazorpayPaymentID: tx.GatewayPaymentID,
		Status:            string(tx.Status),
		Timestamp:         tx.CreatedAt.Format(time.RFC3339),
	}
}

func newTransactionListResponse(txs []*transaction.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	return out
}

// NGOResponse is the public NGO profile
type NGOResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	LogoURL        string   `json:"logo_url,omitempty"`
	CertificateURL string   `json:"certificate_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	WorkImages     []string `json:"work_images,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func newNGOResponse(n *ngo.NGO) NGOResponse {
	return NGOResponse{
		ID:             n.ID.String(),
		Name:           n.Name,
		LogoURL:        n.LogoURL,
		CertificateURL: n.CertificateURL,
		Description:    n.Description,
		WorkImages:     n.WorkImages,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}

// NGODetailResponse adds the financial summary derived from the
// transaction store
type NGODetailResponse struct {
	NGOResponse
	TotalReceived float64 `json:"total_received"`
	TotalSpent    float64 `json:"total_spent"`
	Balance       float64 `json:"balance"`
}
