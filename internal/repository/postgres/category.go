package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	"github.com/emreakay/inventory-api/pkg/database"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
)

const categoryColumns = `id, name, slug, description, path, level, sort_order, is_active, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.Path,
		c.Level,
		c.SortOrder,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return categoryConflict(err, c)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// categoryConflict maps a unique violation to the constrained column. Both
// name and slug carry unique indexes.
func categoryConflict(err error, c *domain.Category) error {
	if strings.Contains(err.Error(), "idx_categories_name") {
		return apperrors.AlreadyExists("category", "name", c.Name)
	}
	return apperrors.AlreadyExists("category", "slug", c.Slug)
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return r.scanCategory(ctx, query, id)
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return r.scanCategory(ctx, query, slug)
}

// Update persists name, slug, description, sort order, and active flag.
// Structural fields (path, level) change only through UpdatePathLevel.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2,
			slug = $3,
			description = $4,
			sort_order = $5,
			is_active = $6,
			updated_at = $7
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
		c.SortOrder,
		c.IsActive,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return categoryConflict(err, c)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a single category row.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListRoots returns all top-level categories in display order.
func (r *CategoryRepository) ListRoots(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE path = '' ORDER BY sort_order, name`
	return r.listCategories(ctx, query)
}

// ListChildren returns the direct children of parent in display order.
func (r *CategoryRepository) ListChildren(ctx context.Context, parent *domain.Category) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE path = $1 ORDER BY sort_order, name`
	return r.listCategories(ctx, query, parent.SubtreePrefix())
}

// ListByPathPrefix returns every descendant under the given subtree prefix,
// ordered shallowest first.
func (r *CategoryRepository) ListByPathPrefix(ctx context.Context, prefix string) ([]*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE path = $1 OR path LIKE $2
		ORDER BY level, sort_order, name`

	return r.listCategories(ctx, query, prefix, prefix+"/%")
}

// ListByIDs returns the categories with the given IDs, in path order.
func (r *CategoryRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return []*domain.Category{}, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1) ORDER BY level, sort_order, name`
	return r.listCategories(ctx, query, ids)
}

// ListAll returns the whole tree flattened, ordered shallowest first.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY level, sort_order, name`
	return r.listCategories(ctx, query)
}

// UpdatePathLevel rewrites the structural position of one category.
func (r *CategoryRepository) UpdatePathLevel(ctx context.Context, id, path string, level int) error {
	query := `UPDATE categories SET path = $2, level = $3, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, path, level)
	if err != nil {
		return fmt.Errorf("update category path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSortOrder changes only the display position of one category.
func (r *CategoryRepository) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	query := `UPDATE categories SET sort_order = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, sortOrder)
	if err != nil {
		return fmt.Errorf("update category sort order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// TreeStats folds one grouped scan over the whole forest into per-status,
// per-level, root, and depth aggregates.
func (r *CategoryRepository) TreeStats(ctx context.Context) (*repository.CategoryTreeStats, error) {
	query := `
		SELECT level, is_active, count(*)
		FROM categories
		GROUP BY level, is_active
		ORDER BY level`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate category tree stats: %w", err)
	}
	defer rows.Close()

	stats := &repository.CategoryTreeStats{ByLevel: []repository.LevelCount{}}
	for rows.Next() {
		var (
			level  int
			active bool
			count  int
		)
		if err := rows.Scan(&level, &active, &count); err != nil {
			return nil, fmt.Errorf("scan tree stats row: %w", err)
		}

		stats.Total += count
		if active {
			stats.Active += count
		} else {
			stats.Inactive += count
		}
		if level == 0 {
			stats.Roots += count
		}
		if level > stats.MaxLevel {
			stats.MaxLevel = level
		}
		if n := len(stats.ByLevel); n > 0 && stats.ByLevel[n-1].Level == level {
			stats.ByLevel[n-1].Count += count
		} else {
			stats.ByLevel = append(stats.ByLevel, repository.LevelCount{Level: level, Count: count})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tree stats rows: %w", err)
	}

	return stats, nil
}

func (r *CategoryRepository) scanCategory(ctx context.Context, query string, arg any) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.Path,
		&c.Level,
		&c.SortOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) listCategories(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Description,
			&c.Path,
			&c.Level,
			&c.SortOrder,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []*domain.Category{}
	}

	return categories, nil
}
