package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/pkg/database"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
)

const supplierColumns = `id, name, contact_person, email, phone, address, is_active, created_at, updated_at`

// SupplierRepository implements repository.SupplierRepository using PostgreSQL.
type SupplierRepository struct {
	pool database.DBTX
}

// NewSupplierRepository creates a new PostgreSQL-backed supplier repository.
func NewSupplierRepository(pool database.DBTX) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

// Create inserts a new supplier.
func (r *SupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.ContactPerson,
		s.Email,
		s.Phone,
		s.Address,
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("supplier", "name", s.Name)
		}
		return fmt.Errorf("insert supplier: %w", err)
	}

	return nil
}

// GetByID retrieves a supplier by its ID.
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	var s domain.Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.ContactPerson,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	return &s, nil
}

// List returns suppliers ordered by name with the total count.
func (r *SupplierRepository) List(ctx context.Context, page, perPage int) ([]*domain.Supplier, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := `
		SELECT ` + supplierColumns + `,
			   count(*) OVER() AS total_count
		FROM suppliers
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var (
		suppliers  []*domain.Supplier
		totalCount int
	)

	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.ContactPerson,
			&s.Email,
			&s.Phone,
			&s.Address,
			&s.IsActive,
			&s.CreatedAt,
			&s.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan supplier row: %w", err)
		}
		suppliers = append(suppliers, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate supplier rows: %w", err)
	}

	if suppliers == nil {
		suppliers = []*domain.Supplier{}
	}

	return suppliers, totalCount, nil
}

// Update persists all mutable supplier fields.
func (r *SupplierRepository) Update(ctx context.Context, s *domain.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2,
			contact_person = $3,
			email = $4,
			phone = $5,
			address = $6,
			is_active = $7,
			updated_at = $8
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.ContactPerson,
		s.Email,
		s.Phone,
		s.Address,
		s.IsActive,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("supplier", "name", s.Name)
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a supplier row.
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
