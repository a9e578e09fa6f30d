package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SortOrder controls timestamp ordering for listings
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter narrows a listing. Amount bounds are in minor units and
// inclusive; nil means unbounded.
type ListFilter struct {
	UserID    *uuid.UUID
	MinAmount *int64
	MaxAmount *int64
	SortOrder SortOrder
}

// Repository defines transaction persistence operations
type Repository interface {
	// Create stores a new record; rejects records violating the
	// completed-implies-hash invariant before touching the database.
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	FilterByNGOAndKind(ctx context.Context, ngoID uuid.UUID, kind Kind) ([]*Transaction, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrNotFound indicates a missing transaction record
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is matches any ErrNotFound when the target carries the nil UUID
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrDuplicateHash indicates a ledger hash uniqueness violation. One nonce
// slot yields one receipt, so this always means a protocol bug upstream.
type ErrDuplicateHash struct {
	LedgerHash string
}

func (e ErrDuplicateHash) Error() string {
	return "duplicate ledger hash: " + e.LedgerHash
}
