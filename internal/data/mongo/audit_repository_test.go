package mongo

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewAuditRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewAuditRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &AuditRepository{}, repo)
}
