package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
	"github.com/emreakay/inventory-api/pkg/pagination"
)

// RecordTransactionInput carries the fields of one stock movement request.
type RecordTransactionInput struct {
	ProductID     string
	Type          string
	Quantity      int
	UnitCostCents *int64
	Reason        string
	Reference     string
	PerformedBy   string
}

// SetQuantityInput carries an absolute stock correction request. The service
// translates it into a signed adjustment.
type SetQuantityInput struct {
	ProductID   string
	NewQuantity int
	Reason      string
	PerformedBy string
}

// depletionSentinelDays stands in for days-until-empty when there is no
// measurable outbound rate, ordering those alerts last.
const depletionSentinelDays = 9999

// depletionHorizonDays flags products above their threshold whose outbound
// rate would empty them this soon.
const depletionHorizonDays = 7

// LowStockAlert flags one at-risk product: at or below its threshold, or
// projected to deplete within the horizon at the recent outbound rate.
type LowStockAlert struct {
	Product        *domain.Product `json:"product"`
	Threshold      int             `json:"threshold"`
	DailyOutbound  float64         `json:"daily_outbound"`
	DaysUntilEmpty int             `json:"days_until_empty"`
}

// InventoryService owns the stock ledger. Every quantity change flows
// through RecordTransaction, which normalizes the sign per movement type
// and delegates the atomic apply-and-append to the repository.
type InventoryService struct {
	repo        repository.TransactionRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(
	repo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		repo:        repo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// RecordTransaction validates a movement, normalizes its sign, and applies
// it. The returned transaction carries the resulting on-hand quantity.
func (s *InventoryService) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	if input.ProductID == "" {
		return nil, apperrors.Validation("product_id is required")
	}
	if !domain.ValidTransactionType(input.Type) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown transaction type %q", input.Type))
	}
	if input.Reason == "" {
		return nil, apperrors.Validation("reason is required")
	}
	if input.PerformedBy == "" {
		return nil, apperrors.Validation("performed_by is required")
	}
	if input.UnitCostCents != nil && *input.UnitCostCents < 0 {
		return nil, apperrors.Validation("unit cost must be non-negative")
	}

	txType := domain.TransactionType(input.Type)
	effective, err := domain.EffectiveQuantity(txType, input.Quantity)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	tx := &domain.Transaction{
		ID:            uuid.New().String(),
		ProductID:     input.ProductID,
		Type:          txType,
		Quantity:      effective,
		UnitCostCents: input.UnitCostCents,
		Reason:        input.Reason,
		Reference:     input.Reference,
		PerformedBy:   input.PerformedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if input.UnitCostCents != nil {
		magnitude := int64(effective)
		if magnitude < 0 {
			magnitude = -magnitude
		}
		total := magnitude * *input.UnitCostCents
		tx.TotalCostCents = &total
	}

	if err := s.repo.Record(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		slog.String("transaction_id", tx.ID),
		slog.String("product_id", tx.ProductID),
		slog.String("type", string(tx.Type)),
		slog.Int("quantity", tx.Quantity),
		slog.Int("quantity_after", tx.QuantityAfter),
	)

	return tx, nil
}

// BulkRecordTransactions applies movements independently. One bad movement
// does not stop the rest; the result lists both outcomes.
func (s *InventoryService) BulkRecordTransactions(ctx context.Context, inputs []RecordTransactionInput) ([]*domain.Transaction, *BatchResult, error) {
	if len(inputs) == 0 {
		return nil, nil, apperrors.Validation("at least one transaction is required")
	}

	result := &BatchResult{Succeeded: []string{}, Failed: []BatchFailure{}}
	var recorded []*domain.Transaction

	for _, input := range inputs {
		tx, err := s.RecordTransaction(ctx, input)
		if err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: input.ProductID, Error: err.Error()})
			continue
		}
		recorded = append(recorded, tx)
		result.Succeeded = append(result.Succeeded, tx.ID)
	}

	if recorded == nil {
		recorded = []*domain.Transaction{}
	}
	return recorded, result, nil
}

// SetQuantity records the adjustment that brings a product's stock to an
// absolute value. Setting the current value is rejected as a no-op.
func (s *InventoryService) SetQuantity(ctx context.Context, input SetQuantityInput) (*domain.Transaction, error) {
	if input.ProductID == "" {
		return nil, apperrors.Validation("product_id is required")
	}
	if input.NewQuantity < 0 {
		return nil, apperrors.Validation("quantity must be non-negative")
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	delta := input.NewQuantity - product.Quantity
	if delta == 0 {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("quantity is already %d", input.NewQuantity))
	}

	reason := input.Reason
	if reason == "" {
		reason = fmt.Sprintf("set quantity to %d", input.NewQuantity)
	}

	return s.RecordTransaction(ctx, RecordTransactionInput{
		ProductID:   input.ProductID,
		Type:        string(domain.TransactionAdjustment),
		Quantity:    delta,
		Reason:      reason,
		PerformedBy: input.PerformedBy,
	})
}

// BulkSetQuantities applies absolute corrections independently.
func (s *InventoryService) BulkSetQuantities(ctx context.Context, inputs []SetQuantityInput) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("at least one item is required")
	}

	result := &BatchResult{Succeeded: []string{}, Failed: []BatchFailure{}}
	for _, input := range inputs {
		if _, err := s.SetQuantity(ctx, input); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: input.ProductID, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, input.ProductID)
	}
	return result, nil
}

// List returns ledger entries matching the filter, newest first.
func (s *InventoryService) List(ctx context.Context, filter repository.TransactionFilter) (*pagination.Result[*domain.Transaction], error) {
	if filter.Type != nil && !domain.ValidTransactionType(*filter.Type) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown transaction type %q", *filter.Type))
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = pagination.DefaultPerPage
	}

	transactions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	result := pagination.NewResult(transactions, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}

// Movements summarizes one product's ledger over the trailing number of
// days: per-type aggregates with in/out/net totals, plus daily buckets.
func (s *InventoryService) Movements(ctx context.Context, productID string, days int) (*repository.MovementReport, error) {
	if days <= 0 {
		days = 30
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	report, err := s.repo.Movements(ctx, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate movements: %w", err)
	}
	return report, nil
}

// Stats aggregates the full ledger for one product.
func (s *InventoryService) Stats(ctx context.Context, productID string) (*repository.TransactionStats, error) {
	stats, err := s.repo.Stats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return stats, nil
}

// StatsByDateRange aggregates the whole ledger over [from, to] into type,
// day, and actor breakdowns plus an overall summary.
func (s *InventoryService) StatsByDateRange(ctx context.Context, from, to time.Time) (*repository.LedgerStats, error) {
	if to.Before(from) {
		return nil, apperrors.Validation("to must not be before from")
	}

	stats, err := s.repo.StatsByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	return stats, nil
}

// LowStockAlerts returns every at-risk, non-discontinued product: those at
// or below their threshold, plus those above it whose recent outbound rate
// would deplete them within the horizon. Alerts come back ordered by
// ascending days until empty; products with no outbound rate carry the
// sentinel and sort last.
func (s *InventoryService) LowStockAlerts(ctx context.Context, windowDays int) ([]LowStockAlert, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	products, _, err := s.productRepo.List(ctx, repository.ProductFilter{
		LowStockOnly: true,
		Page:         1,
		PerPage:      pagination.MaxPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}

	activity, err := s.repo.OutboundSince(ctx, time.Now().UTC().AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("outbound activity: %w", err)
	}

	outByProduct := make(map[string]int, len(activity))
	for _, a := range activity {
		outByProduct[a.ProductID] = a.TotalOut
	}

	alerts := []LowStockAlert{}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.Status == domain.ProductStatusDiscontinued {
			continue
		}
		seen[p.ID] = true
		alerts = append(alerts, newLowStockAlert(p, outByProduct[p.ID], windowDays))
	}

	// Products above their threshold are still at risk when the recent
	// outbound rate would empty them within the horizon.
	for _, a := range activity {
		if seen[a.ProductID] || a.TotalOut <= 0 {
			continue
		}
		p, err := s.productRepo.GetByID(ctx, a.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get product: %w", err)
		}
		if p.Status == domain.ProductStatusDiscontinued {
			continue
		}
		if alert := newLowStockAlert(p, a.TotalOut, windowDays); alert.DaysUntilEmpty <= depletionHorizonDays {
			alerts = append(alerts, alert)
		}
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilEmpty < alerts[j].DaysUntilEmpty
	})

	return alerts, nil
}

func newLowStockAlert(p *domain.Product, totalOut, windowDays int) LowStockAlert {
	alert := LowStockAlert{Product: p, Threshold: p.Threshold(), DaysUntilEmpty: depletionSentinelDays}
	if totalOut > 0 {
		alert.DailyOutbound = float64(totalOut) / float64(windowDays)
		if days := int(float64(p.Quantity) / alert.DailyOutbound); days < depletionSentinelDays {
			alert.DaysUntilEmpty = days
		}
	}
	return alert
}
