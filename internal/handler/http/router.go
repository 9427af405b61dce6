package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emreakay/inventory-api/internal/service"
	"github.com/emreakay/inventory-api/pkg/health"
	"github.com/emreakay/inventory-api/pkg/middleware"
)

const tracerName = "github.com/emreakay/inventory-api/internal/handler/http"

// RouterConfig carries the transport-level knobs the router needs.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	TracingEnabled bool
	PprofCIDRs     []string
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	productService *service.ProductService,
	categoryService *service.CategoryService,
	supplierService *service.SupplierService,
	inventoryService *service.InventoryService,
	dashboardService *service.DashboardService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware. Recovery sits outermost so panics anywhere in the
	// chain still produce a JSON 500.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(tracerName))
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics())

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	productHandler := NewProductHandler(productService, logger)
	categoryHandler := NewCategoryHandler(categoryService, logger)
	supplierHandler := NewSupplierHandler(supplierService, logger)
	inventoryHandler := NewInventoryHandler(inventoryService, logger)
	dashboardHandler := NewDashboardHandler(dashboardService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.CreateProduct)
			r.Get("/", productHandler.ListProducts)
			r.Get("/sku/{sku}", productHandler.GetProductBySKU)
			r.Get("/{id}", productHandler.GetProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/roots", categoryHandler.ListRootCategories)
			r.Get("/tree", categoryHandler.GetCategoryTree)
			r.Get("/stats", categoryHandler.GetTreeStats)
			r.Put("/reorder", categoryHandler.ReorderCategories)
			r.Get("/slug/{slug}", categoryHandler.GetCategoryBySlug)
			r.Get("/{id}", categoryHandler.GetCategory)
			r.Put("/{id}", categoryHandler.UpdateCategory)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
			r.Get("/{id}/children", categoryHandler.ListChildren)
			r.Get("/{id}/descendants", categoryHandler.ListDescendants)
			r.Get("/{id}/ancestors", categoryHandler.ListAncestors)
			r.Get("/{id}/stats", categoryHandler.GetCategoryStats)
			r.Put("/{id}/move", categoryHandler.MoveCategory)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", supplierHandler.CreateSupplier)
			r.Get("/", supplierHandler.ListSuppliers)
			r.Get("/{id}", supplierHandler.GetSupplier)
			r.Put("/{id}", supplierHandler.UpdateSupplier)
			r.Delete("/{id}", supplierHandler.DeleteSupplier)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/transactions", inventoryHandler.RecordTransaction)
			r.Post("/transactions/bulk", inventoryHandler.BulkRecordTransactions)
			r.Get("/transactions", inventoryHandler.ListTransactions)
			r.Put("/quantities", inventoryHandler.BulkSetQuantities)
			r.Put("/products/{productId}/quantity", inventoryHandler.SetQuantity)
			r.Get("/products/{productId}/movements", inventoryHandler.GetMovements)
			r.Get("/products/{productId}/stats", inventoryHandler.GetTransactionStats)
			r.Get("/stats", inventoryHandler.GetLedgerStats)
			r.Get("/low-stock-alerts", inventoryHandler.ListLowStockAlerts)
		})

		r.Get("/dashboard/summary", dashboardHandler.GetSummary)
	})

	return r
}
