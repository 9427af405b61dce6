package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/emreakay/inventory-api/internal/cache"
	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
)

// --- Mock ProductRepository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) UpdateStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) CountBySupplier(ctx context.Context, supplierID string) (int, error) {
	args := m.Called(ctx, supplierID)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) ReassignCategory(ctx context.Context, fromCategoryID string, toCategoryID *string) error {
	args := m.Called(ctx, fromCategoryID, toCategoryID)
	return args.Error(0)
}

// --- Mock CategoryRepository ---

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryRepository) ListRoots(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListChildren(ctx context.Context, parent *domain.Category) ([]*domain.Category, error) {
	args := m.Called(ctx, parent)
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListByPathPrefix(ctx context.Context, prefix string) ([]*domain.Category, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) UpdatePathLevel(ctx context.Context, id, path string, level int) error {
	args := m.Called(ctx, id, path, level)
	return args.Error(0)
}

func (m *mockCategoryRepository) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	args := m.Called(ctx, id, sortOrder)
	return args.Error(0)
}

func (m *mockCategoryRepository) TreeStats(ctx context.Context) (*repository.CategoryTreeStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CategoryTreeStats), args.Error(1)
}

// --- Mock TransactionRepository ---

type mockTransactionRepository struct {
	mock.Mock
}

func (m *mockTransactionRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockTransactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Transaction), args.Int(1), args.Error(2)
}

func (m *mockTransactionRepository) Movements(ctx context.Context, productID string, from, to time.Time) (*repository.MovementReport, error) {
	args := m.Called(ctx, productID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MovementReport), args.Error(1)
}

func (m *mockTransactionRepository) Stats(ctx context.Context, productID string) (*repository.TransactionStats, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TransactionStats), args.Error(1)
}

func (m *mockTransactionRepository) StatsByDateRange(ctx context.Context, from, to time.Time) (*repository.LedgerStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.LedgerStats), args.Error(1)
}

func (m *mockTransactionRepository) OutboundSince(ctx context.Context, since time.Time) ([]repository.OutboundActivity, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]repository.OutboundActivity), args.Error(1)
}

// --- Mock SupplierRepository ---

type mockSupplierRepository struct {
	mock.Mock
}

func (m *mockSupplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSupplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Supplier), args.Error(1)
}

func (m *mockSupplierRepository) List(ctx context.Context, page, perPage int) ([]*domain.Supplier, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]*domain.Supplier), args.Int(1), args.Error(2)
}

func (m *mockSupplierRepository) Update(ctx context.Context, s *domain.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSupplierRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock DashboardRepository ---

type mockDashboardRepository struct {
	mock.Mock
}

func (m *mockDashboardRepository) Summary(ctx context.Context) (*repository.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DashboardSummary), args.Error(1)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// noCache is a disabled cache; reads miss and writes are no-ops.
func noCache() *cache.Cache {
	return cache.New(nil, time.Minute, time.Minute)
}

var testCtx = context.Background()

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
