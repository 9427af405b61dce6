package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/emreakay/inventory-api/internal/repository"
	"github.com/emreakay/inventory-api/internal/service"
	"github.com/emreakay/inventory-api/pkg/health"
	"github.com/emreakay/inventory-api/pkg/middleware"
)

// fullRouter wires the complete production router on top of mock repositories.
func fullRouter(dashRepo *mockDashboardRepository) http.Handler {
	logger := testLogger()
	productRepo := new(mockProductRepository)
	categoryRepo := new(mockCategoryRepository)
	supplierRepo := new(mockSupplierRepository)
	txRepo := new(mockTransactionRepository)

	inventoryService := service.NewInventoryService(txRepo, productRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, supplierRepo, inventoryService, logger)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, noCache(), logger)
	supplierService := service.NewSupplierService(supplierRepo, productRepo, logger)
	dashboardService := service.NewDashboardService(dashRepo, noCache(), logger)

	return NewRouter(
		productService,
		categoryService,
		supplierService,
		inventoryService,
		dashboardService,
		health.NewHandler(),
		RouterConfig{CORS: middleware.DefaultCORSConfig()},
		logger,
	)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := fullRouter(new(mockDashboardRepository))

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := fullRouter(new(mockDashboardRepository))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_DashboardSummary(t *testing.T) {
	dashRepo := new(mockDashboardRepository)
	router := fullRouter(dashRepo)

	dashRepo.On("Summary", mock.Anything).Return(&repository.DashboardSummary{
		TotalProducts:       12,
		LowStockProducts:    2,
		InventoryValueCents: 450000,
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/summary", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)
}

func TestRouter_CorrelationIDPropagated(t *testing.T) {
	router := fullRouter(new(mockDashboardRepository))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get("X-Correlation-ID"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := fullRouter(new(mockDashboardRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/widgets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
