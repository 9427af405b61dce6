// Package repository defines the persistence interfaces the service layer
// depends on. The postgres subpackage provides the production implementation.
package repository

import (
	"context"
	"time"

	"github.com/emreakay/inventory-api/internal/domain"
)

// ProductFilter narrows and paginates product listings. Nil pointer fields
// are ignored.
type ProductFilter struct {
	Search       *string // matches name or SKU, case-insensitive
	CategoryID   *string
	SupplierID   *string
	Status       *string
	LowStockOnly bool
	Page         int
	PerPage      int
}

// TransactionFilter narrows and paginates ledger listings.
type TransactionFilter struct {
	ProductID   *string
	Type        *string
	PerformedBy *string
	From        *time.Time
	To          *time.Time
	Page        int
	PerPage     int
}

// TransactionStats aggregates the ledger for one product.
type TransactionStats struct {
	ProductID    string `json:"product_id"`
	TotalIn      int    `json:"total_in"`
	TotalOut     int    `json:"total_out"`
	Count        int    `json:"transaction_count"`
	NetChange    int    `json:"net_change"`
	CurrentStock int    `json:"current_stock"`
}

// Movement is one bucket of a per-day movement aggregation.
type Movement struct {
	Date     time.Time `json:"date"`
	Inbound  int       `json:"inbound"`
	Outbound int       `json:"outbound"`
}

// TypeMovement aggregates the ledger entries of one transaction type:
// entry count, signed quantity sum, and cost totals.
type TypeMovement struct {
	Type           domain.TransactionType `json:"type"`
	Count          int                    `json:"count"`
	TotalQuantity  int                    `json:"total_quantity"`
	TotalCostCents int64                  `json:"total_cost_cents"`
	AvgCostCents   float64                `json:"avg_cost_cents"`
}

// MovementReport summarizes one product's ledger over a period: per-type
// aggregates with derived in/out/net totals, plus daily buckets.
type MovementReport struct {
	ProductID   string         `json:"product_id"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	ByType      []TypeMovement `json:"by_type"`
	Daily       []Movement     `json:"daily"`
	TotalIn     int            `json:"total_in"`
	TotalOut    int            `json:"total_out"`
	NetMovement int            `json:"net_movement"`
}

// DayBreakdown buckets ledger activity by calendar day.
type DayBreakdown struct {
	Date        time.Time `json:"date"`
	Count       int       `json:"count"`
	QuantityIn  int       `json:"quantity_in"`
	QuantityOut int       `json:"quantity_out"`
}

// UserBreakdown aggregates ledger activity per performing actor.
type UserBreakdown struct {
	PerformedBy   string `json:"performed_by"`
	Count         int    `json:"count"`
	TotalQuantity int    `json:"total_quantity"`
}

// LedgerStats is the date-ranged multi-facet ledger aggregate: breakdowns
// by type, calendar day, and actor, plus an overall summary.
type LedgerStats struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	ByType            []TypeMovement  `json:"by_type"`
	ByDay             []DayBreakdown  `json:"by_day"`
	ByUser            []UserBreakdown `json:"by_user"`
	TotalTransactions int             `json:"total_transactions"`
	QuantityIn        int             `json:"quantity_in"`
	QuantityOut       int             `json:"quantity_out"`
	NetQuantity       int             `json:"net_quantity"`
	TotalCostCents    int64           `json:"total_cost_cents"`
	DistinctProducts  int             `json:"distinct_products"`
}

// LevelCount pairs a tree depth with the number of categories at it.
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// CategoryTreeStats is a one-pass aggregate over the whole category forest.
type CategoryTreeStats struct {
	Total    int          `json:"total"`
	Active   int          `json:"active"`
	Inactive int          `json:"inactive"`
	Roots    int          `json:"roots"`
	MaxLevel int          `json:"max_level"`
	ByLevel  []LevelCount `json:"by_level"`
}

// OutboundActivity summarizes recent outbound volume for one product, used
// to project when stock runs out.
type OutboundActivity struct {
	ProductID  string `json:"product_id"`
	TotalOut   int    `json:"total_out"`
	WindowDays int    `json:"window_days"`
}

// DashboardSummary is the aggregate snapshot served by the dashboard.
type DashboardSummary struct {
	TotalProducts       int   `json:"total_products"`
	ActiveProducts      int   `json:"active_products"`
	TotalCategories     int   `json:"total_categories"`
	TotalSuppliers      int   `json:"total_suppliers"`
	LowStockProducts    int   `json:"low_stock_products"`
	OutOfStockProducts  int   `json:"out_of_stock_products"`
	InventoryValueCents int64 `json:"inventory_value_cents"`
	TransactionsToday   int   `json:"transactions_today"`
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	Update(ctx context.Context, p *domain.Product) error
	UpdateStatus(ctx context.Context, id string, status domain.ProductStatus) error
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	CountBySupplier(ctx context.Context, supplierID string) (int, error)
	ReassignCategory(ctx context.Context, fromCategoryID string, toCategoryID *string) error
}

// CategoryRepository persists the category tree.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	ListRoots(ctx context.Context) ([]*domain.Category, error)
	ListChildren(ctx context.Context, parent *domain.Category) ([]*domain.Category, error)
	ListByPathPrefix(ctx context.Context, prefix string) ([]*domain.Category, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Category, error)
	ListAll(ctx context.Context) ([]*domain.Category, error)
	UpdatePathLevel(ctx context.Context, id, path string, level int) error
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
	TreeStats(ctx context.Context) (*CategoryTreeStats, error)
}

// TransactionRepository persists the append-only stock ledger. Record applies
// the signed delta to the product row and appends the ledger entry in one
// database transaction.
type TransactionRepository interface {
	Record(ctx context.Context, tx *domain.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, int, error)
	Movements(ctx context.Context, productID string, from, to time.Time) (*MovementReport, error)
	Stats(ctx context.Context, productID string) (*TransactionStats, error)
	StatsByDateRange(ctx context.Context, from, to time.Time) (*LedgerStats, error)
	OutboundSince(ctx context.Context, since time.Time) ([]OutboundActivity, error)
}

// SupplierRepository persists suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *domain.Supplier) error
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context, page, perPage int) ([]*domain.Supplier, int, error)
	Update(ctx context.Context, s *domain.Supplier) error
	Delete(ctx context.Context, id string) error
}

// DashboardRepository serves aggregate snapshots.
type DashboardRepository interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}
