package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
)

func newProductService(
	repo *mockProductRepository,
	categoryRepo *mockCategoryRepository,
	supplierRepo *mockSupplierRepository,
	txRepo *mockTransactionRepository,
) *ProductService {
	inventory := NewInventoryService(txRepo, repo, newTestLogger())
	return NewProductService(repo, categoryRepo, supplierRepo, inventory, newTestLogger())
}

func TestProductCreate_WithInitialStock(t *testing.T) {
	repo := new(mockProductRepository)
	txRepo := new(mockTransactionRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), txRepo)

	repo.On("Create", testCtx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.SKU == "WID-001" && p.Quantity == 0 && p.Status == domain.ProductStatusActive
	})).Return(nil)

	// Initial quantity arrives as the product's first ledger entry.
	txRepo.On("Record", testCtx, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.Type == domain.TransactionStockIn && tx.Quantity == 25 && tx.Reason == "initial stock"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Transaction).QuantityAfter = 25
	}).Return(nil)

	product, err := svc.Create(testCtx, CreateProductInput{
		SKU:             "WID-001",
		Name:            "Widget",
		PriceCents:      1999,
		InitialQuantity: 25,
		PerformedBy:     "clerk-7",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, product.Quantity)
	repo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestProductCreate_ZeroInitialSkipsLedger(t *testing.T) {
	repo := new(mockProductRepository)
	txRepo := new(mockTransactionRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), txRepo)

	repo.On("Create", testCtx, mock.Anything).Return(nil)

	product, err := svc.Create(testCtx, CreateProductInput{SKU: "WID-002", Name: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, 0, product.Quantity)
	assert.Equal(t, domain.DefaultLowStockThreshold, product.LowStockThreshold)
	txRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestProductCreate_UnknownCategory(t *testing.T) {
	repo := new(mockProductRepository)
	categoryRepo := new(mockCategoryRepository)
	svc := newProductService(repo, categoryRepo, new(mockSupplierRepository), new(mockTransactionRepository))

	categoryRepo.On("GetByID", testCtx, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Create(testCtx, CreateProductInput{SKU: "WID-003", Name: "Widget", CategoryID: strPtr("ghost")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductCreate_DuplicateSKU(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	repo.On("Create", testCtx, mock.Anything).Return(apperrors.AlreadyExists("product", "sku", "WID-001"))

	_, err := svc.Create(testCtx, CreateProductInput{SKU: "WID-001", Name: "Widget"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestProductCreate_NegativeInitialRejected(t *testing.T) {
	svc := newProductService(new(mockProductRepository), new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	_, err := svc.Create(testCtx, CreateProductInput{SKU: "WID-001", Name: "Widget", InitialQuantity: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProductUpdate_PartialFields(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	existing := &domain.Product{ID: "prod-1", SKU: "WID-001", Name: "Widget", PriceCents: 1999, Quantity: 10}
	repo.On("GetByID", testCtx, "prod-1").Return(existing, nil)
	repo.On("Update", testCtx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Deluxe Widget" && p.PriceCents == 2499 && p.SKU == "WID-001" && p.Quantity == 10
	})).Return(nil)

	var price int64 = 2499
	product, err := svc.Update(testCtx, "prod-1", UpdateProductInput{
		Name:       strPtr("Deluxe Widget"),
		PriceCents: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Deluxe Widget", product.Name)
	repo.AssertExpectations(t)
}

func TestProductUpdate_InvalidStatus(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	repo.On("GetByID", testCtx, "prod-1").Return(&domain.Product{ID: "prod-1"}, nil)

	_, err := svc.Update(testCtx, "prod-1", UpdateProductInput{Status: strPtr("archived")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProductDelete_Discontinues(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	repo.On("UpdateStatus", testCtx, "prod-1", domain.ProductStatusDiscontinued).Return(nil)

	err := svc.Delete(testCtx, "prod-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProductList_InvalidStatusFilter(t *testing.T) {
	svc := newProductService(new(mockProductRepository), new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	_, err := svc.List(testCtx, repository.ProductFilter{Status: strPtr("archived")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProductList_Paginates(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newProductService(repo, new(mockCategoryRepository), new(mockSupplierRepository), new(mockTransactionRepository))

	repo.On("List", testCtx, mock.Anything).Return([]*domain.Product{{ID: "prod-1"}}, 41, nil)

	result, err := svc.List(testCtx, repository.ProductFilter{Page: 2, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 41, result.TotalCount)
	assert.Equal(t, 2, result.Page)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
}
