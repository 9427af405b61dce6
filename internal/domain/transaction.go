package domain

import (
	"fmt"
	"time"
)

// TransactionType classifies an inventory movement.
type TransactionType string

const (
	TransactionStockIn    TransactionType = "stock_in"
	TransactionStockOut   TransactionType = "stock_out"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionTransfer   TransactionType = "transfer"
	TransactionDamaged    TransactionType = "damaged"
	TransactionExpired    TransactionType = "expired"
	TransactionReturned   TransactionType = "returned"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{
	TransactionStockIn,
	TransactionStockOut,
	TransactionAdjustment,
	TransactionTransfer,
	TransactionDamaged,
	TransactionExpired,
	TransactionReturned,
}

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t string) bool {
	for _, known := range TransactionTypes {
		if TransactionType(t) == known {
			return true
		}
	}
	return false
}

// IsOutbound reports whether the type always removes stock.
func (t TransactionType) IsOutbound() bool {
	switch t {
	case TransactionStockOut, TransactionDamaged, TransactionExpired, TransactionReturned:
		return true
	}
	return false
}

// EffectiveQuantity normalizes a caller-supplied quantity into the signed
// delta applied to a product's stock. Inbound types always add, outbound
// types always remove, regardless of the sign the caller sent. Adjustments
// and transfers keep the caller's sign because they express a correction or
// a directed move. A zero quantity is never a movement.
func EffectiveQuantity(t TransactionType, quantity int) (int, error) {
	if quantity == 0 {
		return 0, fmt.Errorf("quantity must not be zero")
	}

	abs := quantity
	if abs < 0 {
		abs = -abs
	}

	switch t {
	case TransactionStockIn:
		return abs, nil
	case TransactionStockOut, TransactionDamaged, TransactionExpired, TransactionReturned:
		return -abs, nil
	case TransactionAdjustment, TransactionTransfer:
		return quantity, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", t)
}

// Transaction is one immutable entry in the stock ledger. Quantity is the
// signed delta actually applied; PreviousQuantity and QuantityAfter snapshot
// the product's on-hand count on either side of the entry, so
// QuantityAfter - PreviousQuantity always equals Quantity. When a unit cost
// is supplied, TotalCostCents holds |Quantity| * UnitCostCents.
type Transaction struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Type             TransactionType `json:"type"`
	Quantity         int             `json:"quantity"`
	PreviousQuantity int             `json:"previous_quantity"`
	QuantityAfter    int             `json:"quantity_after"`
	UnitCostCents    *int64          `json:"unit_cost_cents,omitempty"`
	TotalCostCents   *int64          `json:"total_cost_cents,omitempty"`
	Reason           string          `json:"reason"`
	Reference        string          `json:"reference,omitempty"`
	PerformedBy      string          `json:"performed_by"`
	CreatedAt        time.Time       `json:"created_at"`
}
