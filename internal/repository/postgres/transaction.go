package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	"github.com/emreakay/inventory-api/pkg/database"
	apperrors "github.com/emreakay/inventory-api/pkg/errors"
)

const transactionColumns = `id, product_id, type, quantity, previous_quantity, quantity_after, unit_cost_cents, total_cost_cents, reason, reference, performed_by, created_at`

// TransactionRepository implements repository.TransactionRepository using
// PostgreSQL.
type TransactionRepository struct {
	pool database.DBTX
}

// NewTransactionRepository creates a new PostgreSQL-backed ledger repository.
func NewTransactionRepository(pool database.DBTX) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Record applies tx.Quantity to the product's on-hand count and appends the
// ledger entry, all inside one database transaction. The product row is
// locked with FOR UPDATE so concurrent movements on the same product
// serialize; movements that would drive the quantity below zero are rejected
// without modifying anything. On success tx.PreviousQuantity and
// tx.QuantityAfter carry the on-hand count before and after the movement.
func (r *TransactionRepository) Record(ctx context.Context, tx *domain.Transaction) (err error) {
	ctx, end := database.TraceQuery(ctx, "RecordTransaction", "UPDATE products / INSERT inventory_transactions")
	defer func() { end(err) }()

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()

	var quantity int
	err = dbTx.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, tx.ProductID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", tx.ProductID)
		}
		return fmt.Errorf("lock product row: %w", err)
	}

	newQuantity := quantity + tx.Quantity
	if newQuantity < 0 {
		return apperrors.InvalidOperation(fmt.Sprintf(
			"insufficient stock: have %d, movement of %d would leave %d", quantity, tx.Quantity, newQuantity))
	}

	_, err = dbTx.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, tx.ProductID, newQuantity)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}

	_, err = dbTx.Exec(ctx, `
		INSERT INTO inventory_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tx.ID,
		tx.ProductID,
		tx.Type,
		tx.Quantity,
		quantity,
		newQuantity,
		tx.UnitCostCents,
		tx.TotalCostCents,
		tx.Reason,
		tx.Reference,
		tx.PerformedBy,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	tx.PreviousQuantity = quantity
	tx.QuantityAfter = newQuantity
	return nil
}

// List returns ledger entries matching the filter, newest first, with the
// total count.
func (r *TransactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argIndex))
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.PerformedBy != nil {
		conditions = append(conditions, fmt.Sprintf("performed_by = $%d", argIndex))
		args = append(args, *filter.PerformedBy)
		argIndex++
	}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`,
			   count(*) OVER() AS total_count
		FROM inventory_transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var (
		transactions []*domain.Transaction
		totalCount   int
	)

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.ProductID,
			&t.Type,
			&t.Quantity,
			&t.PreviousQuantity,
			&t.QuantityAfter,
			&t.UnitCostCents,
			&t.TotalCostCents,
			&t.Reason,
			&t.Reference,
			&t.PerformedBy,
			&t.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	return transactions, totalCount, nil
}

// Movements summarizes one product's ledger over [from, to]: per-type
// aggregates with derived in/out/net totals, plus daily buckets.
func (r *TransactionRepository) Movements(ctx context.Context, productID string, from, to time.Time) (*repository.MovementReport, error) {
	byType, err := r.aggregateByType(ctx, productID, from, to)
	if err != nil {
		return nil, err
	}

	daily, err := r.dailyBuckets(ctx, productID, from, to)
	if err != nil {
		return nil, err
	}

	report := &repository.MovementReport{
		ProductID: productID,
		From:      from,
		To:        to,
		ByType:    byType,
		Daily:     daily,
	}
	for _, m := range byType {
		if m.TotalQuantity >= 0 {
			report.TotalIn += m.TotalQuantity
		} else {
			report.TotalOut -= m.TotalQuantity
		}
	}
	report.NetMovement = report.TotalIn - report.TotalOut

	return report, nil
}

// aggregateByType groups ledger entries by transaction type over [from, to].
// An empty productID aggregates across all products.
func (r *TransactionRepository) aggregateByType(ctx context.Context, productID string, from, to time.Time) ([]repository.TypeMovement, error) {
	query := `
		SELECT type,
			   count(*) AS entries,
			   sum(quantity) AS total_quantity,
			   coalesce(sum(total_cost_cents), 0) AS total_cost,
			   coalesce(avg(unit_cost_cents), 0) AS avg_cost
		FROM inventory_transactions
		WHERE created_at >= $1 AND created_at <= $2`
	args := []any{from, to}
	if productID != "" {
		query += ` AND product_id = $3`
		args = append(args, productID)
	}
	query += `
		GROUP BY type
		ORDER BY type`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate ledger by type: %w", err)
	}
	defer rows.Close()

	movements := []repository.TypeMovement{}
	for rows.Next() {
		var m repository.TypeMovement
		if err := rows.Scan(&m.Type, &m.Count, &m.TotalQuantity, &m.TotalCostCents, &m.AvgCostCents); err != nil {
			return nil, fmt.Errorf("scan type aggregate row: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type aggregate rows: %w", err)
	}

	return movements, nil
}

// dailyBuckets groups one product's ledger into per-day inbound and outbound
// totals over [from, to].
func (r *TransactionRepository) dailyBuckets(ctx context.Context, productID string, from, to time.Time) ([]repository.Movement, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day,
			   coalesce(sum(quantity) FILTER (WHERE quantity > 0), 0) AS inbound,
			   coalesce(-sum(quantity) FILTER (WHERE quantity < 0), 0) AS outbound
		FROM inventory_transactions
		WHERE product_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY day
		ORDER BY day`

	rows, err := r.pool.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate movements: %w", err)
	}
	defer rows.Close()

	movements := []repository.Movement{}
	for rows.Next() {
		var m repository.Movement
		if err := rows.Scan(&m.Date, &m.Inbound, &m.Outbound); err != nil {
			return nil, fmt.Errorf("scan movement row: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movement rows: %w", err)
	}

	return movements, nil
}

// Stats aggregates the full ledger for one product.
func (r *TransactionRepository) Stats(ctx context.Context, productID string) (*repository.TransactionStats, error) {
	query := `
		SELECT coalesce(sum(t.quantity) FILTER (WHERE t.quantity > 0), 0) AS total_in,
			   coalesce(-sum(t.quantity) FILTER (WHERE t.quantity < 0), 0) AS total_out,
			   count(t.id) AS transaction_count,
			   p.quantity AS current_stock
		FROM products p
		LEFT JOIN inventory_transactions t ON t.product_id = p.id
		WHERE p.id = $1
		GROUP BY p.quantity`

	var s repository.TransactionStats
	err := r.pool.QueryRow(ctx, query, productID).Scan(&s.TotalIn, &s.TotalOut, &s.Count, &s.CurrentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("aggregate transaction stats: %w", err)
	}

	s.ProductID = productID
	s.NetChange = s.TotalIn - s.TotalOut
	return &s, nil
}

// StatsByDateRange aggregates the whole ledger over [from, to] into type,
// day, and actor breakdowns plus an overall summary.
func (r *TransactionRepository) StatsByDateRange(ctx context.Context, from, to time.Time) (*repository.LedgerStats, error) {
	byType, err := r.aggregateByType(ctx, "", from, to)
	if err != nil {
		return nil, err
	}

	stats := &repository.LedgerStats{
		From:   from,
		To:     to,
		ByType: byType,
		ByDay:  []repository.DayBreakdown{},
		ByUser: []repository.UserBreakdown{},
	}

	dayQuery := `
		SELECT date_trunc('day', created_at) AS day,
			   count(*) AS entries,
			   coalesce(sum(quantity) FILTER (WHERE quantity > 0), 0) AS quantity_in,
			   coalesce(-sum(quantity) FILTER (WHERE quantity < 0), 0) AS quantity_out
		FROM inventory_transactions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day`

	dayRows, err := r.pool.Query(ctx, dayQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate ledger by day: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var d repository.DayBreakdown
		if err := dayRows.Scan(&d.Date, &d.Count, &d.QuantityIn, &d.QuantityOut); err != nil {
			return nil, fmt.Errorf("scan day aggregate row: %w", err)
		}
		stats.ByDay = append(stats.ByDay, d)
	}
	if err := dayRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day aggregate rows: %w", err)
	}

	userQuery := `
		SELECT performed_by,
			   count(*) AS entries,
			   sum(quantity) AS total_quantity
		FROM inventory_transactions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY performed_by
		ORDER BY entries DESC, performed_by`

	userRows, err := r.pool.Query(ctx, userQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate ledger by actor: %w", err)
	}
	defer userRows.Close()

	for userRows.Next() {
		var u repository.UserBreakdown
		if err := userRows.Scan(&u.PerformedBy, &u.Count, &u.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan actor aggregate row: %w", err)
		}
		stats.ByUser = append(stats.ByUser, u)
	}
	if err := userRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actor aggregate rows: %w", err)
	}

	summaryQuery := `
		SELECT count(*) AS entries,
			   coalesce(sum(quantity) FILTER (WHERE quantity > 0), 0) AS quantity_in,
			   coalesce(-sum(quantity) FILTER (WHERE quantity < 0), 0) AS quantity_out,
			   coalesce(sum(total_cost_cents), 0) AS total_cost,
			   count(DISTINCT product_id) AS distinct_products
		FROM inventory_transactions
		WHERE created_at >= $1 AND created_at <= $2`

	err = r.pool.QueryRow(ctx, summaryQuery, from, to).Scan(
		&stats.TotalTransactions,
		&stats.QuantityIn,
		&stats.QuantityOut,
		&stats.TotalCostCents,
		&stats.DistinctProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate ledger summary: %w", err)
	}
	stats.NetQuantity = stats.QuantityIn - stats.QuantityOut

	return stats, nil
}

// OutboundSince sums outbound ledger volume per product from the given
// instant to now. Products with no outbound entries in the window are
// omitted.
func (r *TransactionRepository) OutboundSince(ctx context.Context, since time.Time) ([]repository.OutboundActivity, error) {
	query := `
		SELECT product_id, -sum(quantity) AS total_out
		FROM inventory_transactions
		WHERE quantity < 0 AND created_at >= $1
		GROUP BY product_id`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("aggregate outbound activity: %w", err)
	}
	defer rows.Close()

	windowDays := int(time.Since(since).Hours()/24 + 0.5)

	var activity []repository.OutboundActivity
	for rows.Next() {
		var a repository.OutboundActivity
		if err := rows.Scan(&a.ProductID, &a.TotalOut); err != nil {
			return nil, fmt.Errorf("scan outbound activity row: %w", err)
		}
		a.WindowDays = windowDays
		activity = append(activity, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbound activity rows: %w", err)
	}

	if activity == nil {
		activity = []repository.OutboundActivity{}
	}

	return activity, nil
}
