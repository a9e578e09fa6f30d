// Package mongo provides MongoDB implementations of the audit repositories.
// Divergence events are stored outside PostgreSQL so that a relational outage
// cannot erase the record of an external side effect.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opengive/donation-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit event collection in MongoDB
	AuditCollectionName = "audit_events"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Record stores a divergence event for manual reconciliation
func (r *AuditRepository) Record(ctx context.Context, event *audit.Event) error {
	collection := r.db.Collection(AuditCollectionName)

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("Failed to record audit event",
			"kind", string(event.Kind),
			"ngo_id", event.NGOID.String(),
			"error", err)
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}
