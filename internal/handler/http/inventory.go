package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
	"github.com/emreakay/inventory-api/internal/service"
	"github.com/emreakay/inventory-api/pkg/httputil"
	"github.com/emreakay/inventory-api/pkg/validator"
)

// InventoryHandler handles HTTP requests for the stock ledger endpoints.
type InventoryHandler struct {
	service *service.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory HTTP handler.
func NewInventoryHandler(svc *service.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// RecordTransactionRequest is the JSON request body for one stock movement.
// The sign of quantity is normalized per movement type; senders may submit
// magnitudes for everything except adjustment and transfer.
type RecordTransactionRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	Type          string `json:"type" validate:"required,oneof=stock_in stock_out adjustment transfer damaged expired returned"`
	Quantity      int    `json:"quantity" validate:"required"`
	UnitCostCents *int64 `json:"unit_cost_cents" validate:"omitempty,gte=0"`
	Reason        string `json:"reason" validate:"required,max=500"`
	Reference     string `json:"reference" validate:"omitempty,max=255"`
	PerformedBy   string `json:"performed_by" validate:"omitempty,max=128"`
}

// BulkRecordTransactionsRequest is the JSON request body for a batch of
// stock movements.
type BulkRecordTransactionsRequest struct {
	Transactions []RecordTransactionRequest `json:"transactions" validate:"required,min=1,max=100,dive"`
}

// SetQuantityRequest is the JSON request body for an absolute stock
// correction.
type SetQuantityRequest struct {
	NewQuantity int    `json:"new_quantity" validate:"gte=0"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
	PerformedBy string `json:"performed_by" validate:"omitempty,max=128"`
}

// BulkSetQuantitiesRequest is the JSON request body for batch absolute stock
// corrections.
type BulkSetQuantitiesRequest struct {
	Items []BulkSetQuantityItem `json:"items" validate:"required,min=1,max=100,dive"`
}

// BulkSetQuantityItem is one absolute correction within a batch.
type BulkSetQuantityItem struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	NewQuantity int    `json:"new_quantity" validate:"gte=0"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
	PerformedBy string `json:"performed_by" validate:"omitempty,max=128"`
}

// --- Handlers ---

// RecordTransaction handles POST /api/v1/inventory/transactions
func (h *InventoryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), service.RecordTransactionInput{
		ProductID:     req.ProductID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		UnitCostCents: req.UnitCostCents,
		Reason:        req.Reason,
		Reference:     req.Reference,
		PerformedBy:   actorFrom(r, req.PerformedBy),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: tx})
}

// BulkRecordTransactions handles POST /api/v1/inventory/transactions/bulk
//
// Entries are applied independently; the response reports per-item outcomes.
func (h *InventoryHandler) BulkRecordTransactions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BulkRecordTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.RecordTransactionInput, 0, len(req.Transactions))
	for _, item := range req.Transactions {
		inputs = append(inputs, service.RecordTransactionInput{
			ProductID:     item.ProductID,
			Type:          item.Type,
			Quantity:      item.Quantity,
			UnitCostCents: item.UnitCostCents,
			Reason:        item.Reason,
			Reference:     item.Reference,
			PerformedBy:   actorFrom(r, item.PerformedBy),
		})
	}

	transactions, result, err := h.service.BulkRecordTransactions(r.Context(), inputs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: map[string]any{
		"transactions": transactions,
		"succeeded":    result.Succeeded,
		"failed":       result.Failed,
	}})
}

// ListTransactions handles GET /api/v1/inventory/transactions
func (h *InventoryHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// SetQuantity handles PUT /api/v1/inventory/products/{productId}/quantity
//
// The absolute target is translated into a signed adjustment so the ledger
// records the delta, not the target.
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tx, err := h.service.SetQuantity(r.Context(), service.SetQuantityInput{
		ProductID:   productID,
		NewQuantity: req.NewQuantity,
		Reason:      req.Reason,
		PerformedBy: actorFrom(r, req.PerformedBy),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tx})
}

// BulkSetQuantities handles PUT /api/v1/inventory/quantities
func (h *InventoryHandler) BulkSetQuantities(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BulkSetQuantitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	inputs := make([]service.SetQuantityInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, service.SetQuantityInput{
			ProductID:   item.ProductID,
			NewQuantity: item.NewQuantity,
			Reason:      item.Reason,
			PerformedBy: actorFrom(r, item.PerformedBy),
		})
	}

	result, err := h.service.BulkSetQuantities(r.Context(), inputs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: result})
}

// GetMovements handles GET /api/v1/inventory/products/{productId}/movements
func (h *InventoryHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	days, ok := h.parseDays(w, r, 30)
	if !ok {
		return
	}

	movements, err := h.service.Movements(r.Context(), productID, days)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: movements})
}

// GetTransactionStats handles GET /api/v1/inventory/products/{productId}/stats
func (h *InventoryHandler) GetTransactionStats(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// GetLedgerStats handles GET /api/v1/inventory/stats?from=...&to=...
//
// The range defaults to the trailing 30 days.
func (h *InventoryHandler) GetLedgerStats(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "from must be an RFC3339 timestamp"},
			})
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "to must be an RFC3339 timestamp"},
			})
			return
		}
		to = parsed
	}

	stats, err := h.service.StatsByDateRange(r.Context(), from, to)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

// ListLowStockAlerts handles GET /api/v1/inventory/low-stock-alerts
func (h *InventoryHandler) ListLowStockAlerts(w http.ResponseWriter, r *http.Request) {
	days, ok := h.parseDays(w, r, 30)
	if !ok {
		return
	}

	alerts, err := h.service.LowStockAlerts(r.Context(), days)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: alerts})
}

// parseDays reads the days query parameter, falling back to def.
func (h *InventoryHandler) parseDays(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return def, true
	}
	days, err := strconv.Atoi(v)
	if err != nil || days < 1 || days > 365 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "days must be a valid integer between 1 and 365"},
		})
		return 0, false
	}
	return days, true
}

// parseFilter builds a TransactionFilter from the query string.
func (h *InventoryHandler) parseFilter(w http.ResponseWriter, r *http.Request) (repository.TransactionFilter, bool) {
	filter := repository.TransactionFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return filter, false
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return filter, false
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("product_id"); v != "" {
		filter.ProductID = &v
	}
	if v := r.URL.Query().Get("type"); v != "" {
		if !domain.ValidTransactionType(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "unknown transaction type: " + v},
			})
			return filter, false
		}
		filter.Type = &v
	}
	if v := r.URL.Query().Get("performed_by"); v != "" {
		filter.PerformedBy = &v
	}
	if v := r.URL.Query().Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "from must be an RFC3339 timestamp"},
			})
			return filter, false
		}
		filter.From = &from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "to must be an RFC3339 timestamp"},
			})
			return filter, false
		}
		filter.To = &to
	}

	return filter, true
}
