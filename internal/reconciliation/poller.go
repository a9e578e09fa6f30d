// Package reconciliation drains the transactional outbox: completed
// transaction records committed by the coordinator are published to the
// event stream here, decoupled from the request path. A record whose event
// was not yet published is still authoritative; the poller only affects
// when downstream consumers learn about it.
package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/opengive/donation-ledger/internal/config"
	"github.com/opengive/donation-ledger/internal/domain/outbox"
	"github.com/opengive/donation-ledger/internal/platform/messaging/producers"
)

// Poller publishes pending outbox messages through a bounded worker pool
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        producers.MessagePublisher
	pool             *ants.Pool
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

// NewPoller creates an outbox poller with its worker pool
func NewPoller(
	logger *slog.Logger,
	cfg *config.OutboxConfig,
	poolCfg *config.WorkerPoolConfig,
	outboxRepo outbox.Repository,
	publisher producers.MessagePublisher,
) (*Poller, error) {
	pool, err := ants.NewPool(poolCfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher worker pool: %w", err)
	}

	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		pool:             pool,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}, nil
}

// Start polls until the context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
		"workers", p.pool.Cap(),
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping due to context cancellation")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

// Shutdown releases the worker pool
func (p *Poller) Shutdown() {
	p.logger.Info("Shutting down outbox publisher pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	var wg sync.WaitGroup
	for _, msg := range messages {
		msg := msg
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			p.publishMessage(ctx, msg)
		}); err != nil {
			wg.Done()
			p.logger.Error("Failed to submit outbox message to worker pool", "outbox_id", msg.ID, "error", err)
		}
	}
	wg.Wait()

	return nil
}

func (p *Poller) publishMessage(ctx context.Context, msg *outbox.Message) {
	err := p.publisher.Publish(ctx, msg.TransactionID.String(), msg.Payload)
	if err != nil {
		p.logger.Error("Failed to publish outbox message",
			"outbox_id", msg.ID,
			"transaction_id", msg.TransactionID.String(),
			"current_attempts", msg.Attempts,
			"error", err,
		)

		if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
			p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
			return
		}

		if msg.Attempts+1 >= p.maxRetryAttempts {
			p.logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
				"outbox_id", msg.ID,
				"transaction_id", msg.TransactionID.String(),
				"attempts_made", msg.Attempts+1,
			)
			if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); errUpdate != nil {
				p.logger.Error("Failed to mark outbox message as FAILED_TO_PUBLISH", "outbox_id", msg.ID, "error", errUpdate)
			}
		}
		return
	}

	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusProcessed); err != nil {
		// The event went out but the bookkeeping failed; the next tick will
		// publish a duplicate, which consumers dedupe by transaction ID.
		p.logger.Error("Failed to mark outbox message as PROCESSED", "outbox_id", msg.ID, "error", err)
		return
	}

	p.logger.Info("Published outbox message",
		"outbox_id", msg.ID,
		"transaction_id", msg.TransactionID.String(),
	)
}
