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

// CreateSupplierInput carries the fields accepted when creating a supplier.
type CreateSupplierInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// UpdateSupplierInput carries the mutable fields of a supplier. Nil pointers
// leave the current value unchanged.
type UpdateSupplierInput struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	IsActive      *bool
}

// SupplierService owns supplier records.
type SupplierService struct {
	repo        repository.SupplierRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewSupplierService creates a new supplier service.
func NewSupplierService(
	repo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *SupplierService {
	return &SupplierService{
		repo:        repo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create adds a supplier.
func (s *SupplierService) Create(ctx context.Context, input CreateSupplierInput) (*domain.Supplier, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	now := time.Now().UTC()
	supplier := &domain.Supplier{
		ID:            uuid.New().String(),
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier created", slog.String("supplier_id", supplier.ID))
	return supplier, nil
}

// Get retrieves one supplier by ID.
func (s *SupplierService) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return supplier, nil
}

// List returns suppliers ordered by name.
func (s *SupplierService) List(ctx context.Context, params pagination.Params) (*pagination.Result[*domain.Supplier], error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = pagination.DefaultPerPage
	}

	suppliers, total, err := s.repo.List(ctx, params.Page, params.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	result := pagination.NewResult(suppliers, total, params)
	return &result, nil
}

// Update changes supplier fields.
func (s *SupplierService) Update(ctx context.Context, id string, input UpdateSupplierInput) (*domain.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		supplier.Name = *input.Name
	}
	if input.ContactPerson != nil {
		supplier.ContactPerson = *input.ContactPerson
	}
	if input.Email != nil {
		supplier.Email = *input.Email
	}
	if input.Phone != nil {
		supplier.Phone = *input.Phone
	}
	if input.Address != nil {
		supplier.Address = *input.Address
	}
	if input.IsActive != nil {
		supplier.IsActive = *input.IsActive
	}
	supplier.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}

	return supplier, nil
}

// Delete removes a supplier. A supplier still referenced by products cannot
// be deleted.
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	count, err := s.productRepo.CountBySupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("count supplier products: %w", err)
	}
	if count > 0 {
		return apperrors.InvalidOperation(fmt.Sprintf("supplier is referenced by %d products", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}

	s.logger.InfoContext(ctx, "supplier deleted", slog.String("supplier_id", id))
	return nil
}
