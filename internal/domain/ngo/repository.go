package ngo

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines NGO persistence operations
type Repository interface {
	Create(ctx context.Context, n *NGO) error
	GetByID(ctx context.Context, id uuid.UUID) (*NGO, error)
	GetByAdminID(ctx context.Context, adminID uuid.UUID) (*NGO, error)
	List(ctx context.Context) ([]*NGO, error)
	Update(ctx context.Context, n *NGO) error
}

// ErrNotFound indicates a missing NGO
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "ngo not found: " + e.ID.String()
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
