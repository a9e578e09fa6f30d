// Package auth provides the JWT token boundary and password hashing for
// platform accounts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opengive/donation-ledger/internal/config"
	"github.com/opengive/donation-ledger/internal/domain/user"
)

// ErrInvalidToken indicates a token that is malformed, expired, or signed
// with the wrong key
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity carried by a token
type Claims struct {
	UserID   uuid.UUID
	Username string
}

// TokenIssuer signs and verifies HS256 access tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer from the configured secret
func NewTokenIssuer(cfg *config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}
}

// Issue signs a token for the given user
func (t *TokenIssuer) Issue(u *user.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.ID.String(),
		"username": u.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	return &Claims{
		UserID:   userID,
		Username: username,
	}, nil
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
