package ngo

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName    = errors.New("ngo name cannot be empty")
	ErrMissingAdmin = errors.New("ngo requires exactly one admin user")
)

// NGO represents a registered organization. Exactly one platform user
// administers it; work images keep their insertion order.
type NGO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	LogoURL        string    `json:"logo_url"`
	CertificateURL string    `json:"certificate_url"`
	AdminID        uuid.UUID `json:"admin_id"`
	Description    string    `json:"description,omitempty"`
	WorkImages     []string  `json:"work_images,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// New creates an NGO owned by the given admin user
func New(name, logoURL, certificateURL string, adminID uuid.UUID, description string, workImages []string) (*NGO, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if adminID == uuid.Nil {
		return nil, ErrMissingAdmin
	}

	now := time.Now().UTC()
	return &NGO{
		ID:             uuid.New(),
		Name:           name,
		LogoURL:        logoURL,
		CertificateURL: certificateURL,
		AdminID:        adminID,
		Description:    description,
		WorkImages:     workImages,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
