package postgres

import (
	"context"
	"fmt"

	"github.com/emreakay/inventory-api/internal/repository"
	"github.com/emreakay/inventory-api/pkg/database"
)

// DashboardRepository implements repository.DashboardRepository using
// PostgreSQL.
type DashboardRepository struct {
	pool database.DBTX
}

// NewDashboardRepository creates a new PostgreSQL-backed dashboard repository.
func NewDashboardRepository(pool database.DBTX) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// Summary computes the aggregate snapshot in a single query. Inventory value
// is priced at cost; discontinued products are excluded from stock counts.
func (r *DashboardRepository) Summary(ctx context.Context) (summary *repository.DashboardSummary, err error) {
	ctx, end := database.TraceQuery(ctx, "DashboardSummary", "SELECT aggregate counts")
	defer func() { end(err) }()

	query := `
		SELECT
			(SELECT count(*) FROM products) AS total_products,
			(SELECT count(*) FROM products WHERE status = 'active') AS active_products,
			(SELECT count(*) FROM categories) AS total_categories,
			(SELECT count(*) FROM suppliers) AS total_suppliers,
			(SELECT count(*) FROM products WHERE status <> 'discontinued' AND quantity <= low_stock_threshold) AS low_stock_products,
			(SELECT count(*) FROM products WHERE status <> 'discontinued' AND quantity = 0) AS out_of_stock_products,
			(SELECT coalesce(sum(quantity::bigint * cost_cents), 0) FROM products) AS inventory_value_cents,
			(SELECT count(*) FROM inventory_transactions WHERE created_at >= date_trunc('day', now())) AS transactions_today`

	var s repository.DashboardSummary
	err = r.pool.QueryRow(ctx, query).Scan(
		&s.TotalProducts,
		&s.ActiveProducts,
		&s.TotalCategories,
		&s.TotalSuppliers,
		&s.LowStockProducts,
		&s.OutOfStockProducts,
		&s.InventoryValueCents,
		&s.TransactionsToday,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	return &s, nil
}
