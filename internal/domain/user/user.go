package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyUsername = errors.New("username cannot be empty")

// User is a platform account: a donor or an NGO admin
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// New creates a user with an already-hashed password
func New(username, passwordHash string) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// ErrNotFound indicates a missing user
type ErrNotFound struct {
	Username string
}

func (e ErrNotFound) Error() string {
	return "user not found: " + e.Username
}

// Is matches any ErrNotFound when the target carries an empty username
func (e ErrNotFound) Is(target error) bool {
	t, ok := target.(ErrNotFound)
	if !ok {
		return false
	}
	return t.Username == "" || e.Username == t.Username
}

// ErrDuplicateUsername indicates username uniqueness violation
type ErrDuplicateUsername struct {
	Username string
}

func (e ErrDuplicateUsername) Error() string {
	return "username already taken: " + e.Username
}
