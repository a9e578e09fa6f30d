package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opengive/donation-ledger/internal/domain/ngo"
	"github.com/opengive/donation-ledger/internal/platform/persistence"
)

// NGORepository implements the ngo.Repository interface for PostgreSQL
type NGORepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewNGORepository creates a new PostgreSQL NGO repository
func NewNGORepository(logger *slog.Logger, db *persistence.PostgresDB) ngo.Repository {
	return &NGORepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const ngoColumns = `id, name, logo_url, certificate_url, admin_id, description, work_images, created_at, updated_at`

// Create stores a new NGO
func (r *NGORepository) Create(ctx context.Context, n *ngo.NGO) error {
	query := `
		INSERT INTO ngos (` + ngoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		n.ID,
		n.Name,
		n.LogoURL,
		n.CertificateURL,
		n.AdminID,
		n.Description,
		n.WorkImages,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create NGO", "id", n.ID.String(), "error", err)
		return fmt.Errorf("failed to create ngo: %w", err)
	}

	return nil
}

// GetByID retrieves an NGO by its ID
func (r *NGORepository) GetByID(ctx context.Context, id uuid.UUID) (*ngo.NGO, error) {
	query := `
		SELECT ` + ngoColumns + `
		FROM ngos
		WHERE id = $1
	`

	n, err := r.scanRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ngo.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to get NGO", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ngo: %w", err)
	}

	return n, nil
}

// GetByAdminID retrieves the NGO administered by the given user
func (r *NGORepository) GetByAdminID(ctx context.Context, adminID uuid.UUID) (*ngo.NGO, error) {
	query := `
		SELECT ` + ngoColumns + `
		FROM ngos
		WHERE admin_id = $1
	`

	n, err := r.scanRow(r.querier.QueryRow(ctx, query, adminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ngo.ErrNotFound{}
		}
		r.logger.Error("Failed to get NGO by admin", "admin_id", adminID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ngo by admin: %w", err)
	}

	return n, nil
}

// List retrieves all NGOs ordered by name
func (r *NGORepository) List(ctx context.Context) ([]*ngo.NGO, error) {
	query := `
		SELECT ` + ngoColumns + `
		FROM ngos
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list NGOs", "error", err)
		return nil, fmt.Errorf("failed to list ngos: %w", err)
	}
	defer rows.Close()

	var ngos []*ngo.NGO
	for rows.Next() {
		n, err := r.scanRow(rows)
		if err != nil {
			r.logger.Error("Failed to scan NGO row", "error", err)
			return nil, fmt.Errorf("failed to scan ngo row: %w", err)
		}
		ngos = append(ngos, n)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over NGO rows", "error", err)
		return nil, fmt.Errorf("error iterating over ngo rows: %w", err)
	}

	return ngos, nil
}

// Update persists changes to an existing NGO
func (r *NGORepository) Update(ctx context.Context, n *ngo.NGO) error {
	query := `
		UPDATE ngos
		SET name = $2, logo_url = $3, certificate_url = $4, description = $5,
			work_images = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.querier.Exec(ctx, query,
		n.ID,
		n.Name,
		n.LogoURL,
		n.CertificateURL,
		n.Description,
		n.WorkImages,
		n.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update NGO", "id", n.ID.String(), "error", err)
		return fmt.Errorf("failed to update ngo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ngo.ErrNotFound{ID: n.ID}
	}

	return nil
}

func (r *NGORepository) scanRow(row pgx.Row) (*ngo.NGO, error) {
	var n ngo.NGO
	err := row.Scan(
		&n.ID,
		&n.Name,
		&n.LogoURL,
		&n.CertificateURL,
		&n.AdminID,
		&n.Description,
		&n.WorkImages,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
