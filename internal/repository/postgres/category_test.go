package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreakay/inventory-api/internal/domain"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
)

var categoryCols = []string{
	"id", "name", "slug", "description", "path", "level",
	"sort_order", "is_active", "created_at", "updated_at",
}

func sampleCategory() domain.Category {
	return domain.Category{
		ID:        "cat-1",
		Name:      "Electronics",
		Slug:      "electronics",
		Path:      "",
		Level:     0,
		SortOrder: 0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func categoryRow(c domain.Category) []any {
	return []any{
		c.ID, c.Name, c.Slug, c.Description, c.Path, c.Level,
		c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt,
	}
}

func TestCategoryRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(
			c.ID, c.Name, c.Slug, c.Description, c.Path, c.Level,
			c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Create_DuplicateSlug(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(
			c.ID, c.Name, c.Slug, c.Description, c.Path, c.Level,
			c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Create_DuplicateName(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(
			c.ID, c.Name, c.Slug, c.Description, c.Path, c.Level,
			c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_categories_name" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), &c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "name")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetBySlug(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectQuery("SELECT .+ FROM categories WHERE slug").
		WithArgs(c.Slug).
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(categoryRow(c)...))

	result, err := repo.GetBySlug(context.Background(), c.Slug)
	require.NoError(t, err)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ListChildren(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	parent := sampleCategory()
	child := domain.Category{
		ID: "cat-2", Name: "Phones", Slug: "phones",
		Path: "cat-1", Level: 1, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT .+ FROM categories WHERE path").
		WithArgs("cat-1").
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(categoryRow(child)...))

	children, err := repo.ListChildren(context.Background(), &parent)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "cat-2", children[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ListByPathPrefix(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	child := domain.Category{
		ID: "cat-2", Name: "Phones", Slug: "phones",
		Path: "cat-1", Level: 1, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	grandchild := domain.Category{
		ID: "cat-3", Name: "Cases", Slug: "cases",
		Path: "cat-1/cat-2", Level: 2, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT .+ FROM categories").
		WithArgs("cat-1", "cat-1/%").
		WillReturnRows(pgxmock.NewRows(categoryCols).
			AddRow(categoryRow(child)...).
			AddRow(categoryRow(grandchild)...))

	descendants, err := repo.ListByPathPrefix(context.Background(), "cat-1")
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	assert.Equal(t, "cat-2", descendants[0].ID)
	assert.Equal(t, "cat-3", descendants[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_UpdatePathLevel(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("UPDATE categories SET path").
		WithArgs("cat-3", "cat-9/cat-2", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePathLevel(context.Background(), "cat-3", "cat-9/cat-2", 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_TreeStats(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT level, is_active").
		WillReturnRows(pgxmock.NewRows([]string{"level", "is_active", "count"}).
			AddRow(0, true, 2).
			AddRow(1, true, 2).
			AddRow(1, false, 1).
			AddRow(2, true, 1))

	stats, err := repo.TreeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 2, stats.Roots)
	assert.Equal(t, 2, stats.MaxLevel)
	require.Len(t, stats.ByLevel, 3)
	assert.Equal(t, 3, stats.ByLevel[1].Count, "active and inactive rows at the same level fold together")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
