package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
	"github.com/emreakay/inventory-api/pkg/pagination"
)

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	SKU               string
	Name              string
	Description       string
	CategoryID        *string
	SupplierID        *string
	PriceCents        int64
	CostCents         int64
	InitialQuantity   int
	LowStockThreshold int
	PerformedBy       string
}

// UpdateProductInput carries the mutable fields of a product. Nil pointers
// leave the current value unchanged. Quantity is deliberately absent; stock
// changes go through the inventory service.
type UpdateProductInput struct {
	SKU               *string
	Name              *string
	Description       *string
	CategoryID        *string
	SupplierID        *string
	PriceCents        *int64
	CostCents         *int64
	LowStockThreshold *int
	Status            *string
}

// ProductService owns the product catalog. Stock quantities are read here
// but only ever written through the inventory ledger.
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	inventory    *InventoryService
	logger       *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	inventory *InventoryService,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		inventory:    inventory,
		logger:       logger,
	}
}

// Create adds a product. A non-zero initial quantity is recorded as the
// product's first ledger entry so the history starts at zero and accounts
// for every unit.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.SKU == "" {
		return nil, apperrors.Validation("sku is required")
	}
	if input.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if input.PriceCents < 0 || input.CostCents < 0 {
		return nil, apperrors.Validation("price and cost must be non-negative")
	}
	if input.InitialQuantity < 0 {
		return nil, apperrors.Validation("initial quantity must be non-negative")
	}

	if err := s.checkReferences(ctx, input.CategoryID, input.SupplierID); err != nil {
		return nil, err
	}

	threshold := input.LowStockThreshold
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:                uuid.New().String(),
		SKU:               input.SKU,
		Name:              input.Name,
		Description:       input.Description,
		CategoryID:        input.CategoryID,
		SupplierID:        input.SupplierID,
		PriceCents:        input.PriceCents,
		CostCents:         input.CostCents,
		Quantity:          0,
		LowStockThreshold: threshold,
		Status:            domain.ProductStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if input.InitialQuantity > 0 {
		performedBy := input.PerformedBy
		if performedBy == "" {
			performedBy = "system"
		}
		tx, err := s.inventory.RecordTransaction(ctx, RecordTransactionInput{
			ProductID:   product.ID,
			Type:        string(domain.TransactionStockIn),
			Quantity:    input.InitialQuantity,
			Reason:      "initial stock",
			PerformedBy: performedBy,
		})
		if err != nil {
			return nil, fmt.Errorf("record initial stock: %w", err)
		}
		product.Quantity = tx.QuantityAfter
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("sku", product.SKU),
		slog.Int("quantity", product.Quantity),
	)

	return product, nil
}

// Get retrieves one product by ID.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetBySKU retrieves one product by SKU.
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := s.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return product, nil
}

// List returns products matching the filter.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (*pagination.Result[*domain.Product], error) {
	if filter.Status != nil && !domain.ValidProductStatus(*filter.Status) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown product status %q", *filter.Status))
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = pagination.DefaultPerPage
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}

// Update changes catalog fields of a product.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if input.SKU != nil {
		if *input.SKU == "" {
			return nil, apperrors.Validation("sku must not be empty")
		}
		product.SKU = *input.SKU
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, apperrors.Validation("price must be non-negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.CostCents != nil {
		if *input.CostCents < 0 {
			return nil, apperrors.Validation("cost must be non-negative")
		}
		product.CostCents = *input.CostCents
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, apperrors.Validation("low stock threshold must be non-negative")
		}
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.Status != nil {
		if !domain.ValidProductStatus(*input.Status) {
			return nil, apperrors.Validation(fmt.Sprintf("unknown product status %q", *input.Status))
		}
		product.Status = domain.ProductStatus(*input.Status)
	}

	if err := s.checkReferences(ctx, input.CategoryID, input.SupplierID); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// Delete retires a product. The ledger is immutable, so products are never
// hard-deleted; they become discontinued and drop out of stock reports.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.UpdateStatus(ctx, id, domain.ProductStatusDiscontinued); err != nil {
		return fmt.Errorf("discontinue product: %w", err)
	}

	s.logger.InfoContext(ctx, "product discontinued", slog.String("product_id", id))
	return nil
}

// checkReferences verifies that the referenced category and supplier exist.
func (s *ProductService) checkReferences(ctx context.Context, categoryID, supplierID *string) error {
	if categoryID != nil && *categoryID != "" {
		if _, err := s.categoryRepo.GetByID(ctx, *categoryID); err != nil {
			return fmt.Errorf("resolve category: %w", err)
		}
	}
	if supplierID != nil && *supplierID != "" {
		if _, err := s.supplierRepo.GetByID(ctx, *supplierID); err != nil {
			return fmt.Errorf("resolve supplier: %w", err)
		}
	}
	return nil
}
