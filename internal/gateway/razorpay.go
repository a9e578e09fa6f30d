// Package gateway integrates the Razorpay payment gateway for the
// gateway-mediated donation flow: order creation before checkout, signature
// verification and payment fetch after it.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/opengive/donation-ledger/internal/config"
)

// ErrInvalidSignature indicates a checkout callback whose signature does not
// match the key secret. Treated as a hostile request, never retried.
var ErrInvalidSignature = errors.New("gateway signature verification failed")

// Order is a gateway order awaiting checkout
type Order struct {
	ID       string
	Amount   int64 // Minor units
	Currency string
}

// Payment is the gateway's authoritative record of a captured payment. The
// notes carry the NGO and user identity attached at order creation, so the
// confirmation step never trusts client-supplied identities or amounts.
type Payment struct {
	ID      string
	OrderID string
	Amount  int64 // Minor units
	Status  string
	NGOID   uuid.UUID
	UserID  uuid.UUID
}

// orderAPI and paymentAPI mirror the razorpay-go resource clients; tests
// substitute stubs.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK with context support and response parsing
type Client struct {
	orders      orderAPI
	payments    paymentAPI
	keyID       string
	keySecret   string
	currency    string
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewClient creates a gateway client from the configured credentials
func NewClient(logger *slog.Logger, cfg *config.GatewayConfig) *Client {
	sdk := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{
		orders:      sdk.Order,
		payments:    sdk.Payment,
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		currency:    cfg.Currency,
		callTimeout: cfg.CallTimeout,
		logger:      logger,
	}
}

// KeyID returns the public key identifier the browser checkout needs
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers a pending order with the gateway. The NGO and user
// identities ride along as order notes and come back on the captured
// payment, making the gateway the source of truth at confirmation time.
func (c *Client) CreateOrder(ctx context.Context, amount int64, ngoID, userID uuid.UUID) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": c.currency,
		"notes": map[string]interface{}{
			"ngo_id":  ngoID.String(),
			"user_id": userID.String(),
		},
	}

	resp, err := c.do(ctx, func() (map[string]interface{}, error) {
		return c.orders.Create(data, nil)
	})
	if err != nil {
		c.logger.Error("Failed to create gateway order", "ngo_id", ngoID.String(), "error", err)
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("gateway order response missing id: %v", resp)
	}
	respAmount, err := asInt64(resp["amount"])
	if err != nil {
		return nil, fmt.Errorf("gateway order response malformed amount: %w", err)
	}
	currency, _ := resp["currency"].(string)
	if currency == "" {
		currency = c.currency
	}

	c.logger.Info("Created gateway order", "order_id", id, "amount", respAmount, "ngo_id", ngoID.String())

	return &Order{
		ID:       id,
		Amount:   respAmount,
		Currency: currency,
	}, nil
}

// VerifySignature checks the checkout callback signature:
// HMAC-SHA256(order_id + "|" + payment_id) keyed with the secret. Comparison
// is constant-time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// FetchPayment retrieves the authoritative payment record from the gateway
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	resp, err := c.do(ctx, func() (map[string]interface{}, error) {
		return c.payments.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		c.logger.Error("Failed to fetch gateway payment", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to fetch gateway payment: %w", err)
	}

	amount, err := asInt64(resp["amount"])
	if err != nil {
		return nil, fmt.Errorf("gateway payment response malformed amount: %w", err)
	}
	orderID, _ := resp["order_id"].(string)
	status, _ := resp["status"].(string)

	payment := &Payment{
		ID:      paymentID,
		OrderID: orderID,
		Amount:  amount,
		Status:  status,
	}

	if notes, ok := resp["notes"].(map[string]interface{}); ok {
		if s, ok := notes["ngo_id"].(string); ok {
			payment.NGOID, _ = uuid.Parse(s)
		}
		if s, ok := notes["user_id"].(string); ok {
			payment.UserID, _ = uuid.Parse(s)
		}
	}

	return payment, nil
}

// do runs an SDK call in a goroutine so callers keep context cancellation;
// the SDK itself has no context support.
func (c *Client) do(ctx context.Context, call func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	type result struct {
		data map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := call()
		ch <- result{data, err}
	}()

	select {
	case <-callCtx.Done():
		return nil, callCtx.Err()
	case r := <-ch:
		return r.data, r.err
	}
}

// asInt64 normalizes the number types the JSON decoding of gateway
// responses can produce
func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected number type %T", v)
	}
}
