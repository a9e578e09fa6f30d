// Package ledger stamps donation receipts onto an Ethereum-compatible
// blockchain. Each receipt is a minimal self-transfer from the platform
// account; the resulting transaction hash is the tamper-evident proof that
// a financial event was recorded.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"

	"github.com/opengive/donation-ledger/internal/config"
	"github.com/opengive/donation-ledger/internal/domain/transaction"
)

const (
	// stampValueWei is the self-transfer amount per receipt: 0.001 ether.
	stampValueWei = 1_000_000_000_000_000
	// gasLimit covers a plain value transfer with no data payload.
	gasLimit = 21000
	// gasPriceWei is a fixed 1 gwei; receipt stamping never competes for
	// block space on the private chain this targets.
	gasPriceWei = 1_000_000_000
)

// NodeClient is the narrow surface of the blockchain node the ledger uses.
// *ethclient.Client satisfies it; tests substitute a stub.
type NodeClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

var _ NodeClient = (*ethclient.Client)(nil)

// Client signs and broadcasts receipt-stamping transactions. The mutex
// serializes the nonce-read/sign/broadcast sequence: two concurrent
// recordings must never observe the same pending nonce.
type Client struct {
	node        NodeClient
	account     common.Address
	key         *ecdsa.PrivateKey
	chainID     *big.Int
	callTimeout time.Duration
	logger      *slog.Logger

	mu sync.Mutex
}

// Dial connects to the blockchain node and verifies it is reachable before
// the service starts accepting traffic. The probe retries with a fixed
// backoff; exhausting it is fatal to the caller because every recording
// operation would fail anyway.
func Dial(ctx context.Context, logger *slog.Logger, cfg *config.LedgerConfig) (*Client, error) {
	node, err := ethclient.DialContext(ctx, cfg.NodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger node: %w", err)
	}

	return NewClient(ctx, logger, cfg, node)
}

// NewClient builds a ledger client over an already-constructed node
// connection. Exposed separately so tests can inject a stub node.
func NewClient(ctx context.Context, logger *slog.Logger, cfg *config.LedgerConfig, node NodeClient) (*Client, error) {
	if !common.IsHexAddress(cfg.AccountAddress) {
		return nil, fmt.Errorf("invalid ledger account address: %s", cfg.AccountAddress)
	}
	account := common.HexToAddress(cfg.AccountAddress)

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid ledger private key: %w", err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != account {
		return nil, fmt.Errorf("ledger private key does not match account %s", cfg.AccountAddress)
	}

	chainID, err := probeChainID(ctx, logger, cfg, node)
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to ledger node", "chain_id", chainID.String(), "account", account.Hex())

	return &Client{
		node:        node,
		account:     account,
		key:         key,
		chainID:     chainID,
		callTimeout: cfg.CallTimeout,
		logger:      logger,
	}, nil
}

func probeChainID(ctx context.Context, logger *slog.Logger, cfg *config.LedgerConfig, node NodeClient) (*big.Int, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.ProbeAttempts; attempt++ {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
		chainID, err := node.ChainID(probeCtx)
		cancel()
		if err == nil {
			return chainID, nil
		}

		lastErr = err
		logger.Warn("Ledger node probe failed",
			"attempt", attempt,
			"max_attempts", cfg.ProbeAttempts,
			"error", err)

		if attempt < cfg.ProbeAttempts {
			select {
			case <-time.After(cfg.ProbeBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("ledger node unreachable after %d attempts: %w", cfg.ProbeAttempts, lastErr)
}

// Record stamps a financial event onto the ledger and returns the receipt
// hash. The kind and NGO identify the event in logs only; the on-chain
// transaction is a plain value transfer and carries no data payload.
//
// The whole balance-check/nonce-read/sign/broadcast sequence holds the
// client mutex, so concurrent recordings serialize and each one consumes a
// distinct nonce.
func (c *Client) Record(ctx context.Context, amount int64, kind transaction.Kind, ngoID uuid.UUID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	balance, err := c.node.BalanceAt(callCtx, c.account, nil)
	if err != nil {
		return "", &Error{Op: "balance", Err: err}
	}

	required := new(big.Int).Add(
		big.NewInt(stampValueWei),
		new(big.Int).Mul(big.NewInt(gasLimit), big.NewInt(gasPriceWei)),
	)
	if balance.Cmp(required) < 0 {
		return "", &Error{Op: "balance", Err: ErrInsufficientFunds}
	}

	nonce, err := c.node.PendingNonceAt(callCtx, c.account)
	if err != nil {
		return "", &Error{Op: "nonce", Err: err}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.account,
		Value:    big.NewInt(stampValueWei),
		Gas:      gasLimit,
		GasPrice: big.NewInt(gasPriceWei),
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", &Error{Op: "sign", Err: err}
	}

	if err := c.node.SendTransaction(callCtx, signed); err != nil {
		return "", &Error{Op: "broadcast", Err: err}
	}

	hash := signed.Hash().Hex()
	c.logger.Info("Recorded ledger receipt",
		"hash", hash,
		"nonce", nonce,
		"kind", string(kind),
		"ngo_id", ngoID.String(),
		"amount", amount)

	return hash, nil
}

// Account returns the platform signing address
func (c *Client) Account() common.Address {
	return c.account
}
