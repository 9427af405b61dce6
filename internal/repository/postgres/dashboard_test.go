package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardRepository_Summary(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewDashboardRepository(mock)

	cols := []string{
		"total_products", "active_products", "total_categories", "total_suppliers",
		"low_stock_products", "out_of_stock_products", "inventory_value_cents", "transactions_today",
	}
	mock.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(120, 100, 14, 8, 6, 2, int64(4250000), 17))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, summary.TotalProducts)
	assert.Equal(t, 100, summary.ActiveProducts)
	assert.Equal(t, 6, summary.LowStockProducts)
	assert.Equal(t, int64(4250000), summary.InventoryValueCents)
	assert.Equal(t, 17, summary.TransactionsToday)
	assert.NoError(t, mock.ExpectationsWereMet())
}
