package domain

import "time"

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// DefaultLowStockThreshold applies when a product does not set its own.
const DefaultLowStockThreshold = 5

// ValidProductStatus reports whether s is a known product status.
func ValidProductStatus(s string) bool {
	switch ProductStatus(s) {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product is a stocked item. PriceCents and CostCents are money in minor
// units. Quantity is the on-hand count and never goes below zero.
type Product struct {
	ID                string        `json:"id"`
	SKU               string        `json:"sku"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	CategoryID        *string       `json:"category_id,omitempty"`
	SupplierID        *string       `json:"supplier_id,omitempty"`
	PriceCents        int64         `json:"price_cents"`
	CostCents         int64         `json:"cost_cents"`
	Quantity          int           `json:"quantity"`
	LowStockThreshold int           `json:"low_stock_threshold"`
	Status            ProductStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Threshold returns the product's low stock threshold, falling back to the
// default when unset.
func (p *Product) Threshold() int {
	if p.LowStockThreshold > 0 {
		return p.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// IsLowStock reports whether the on-hand quantity is at or below the
// threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.Threshold()
}
