package enums

import "fmt"

// StockKind distinguishes the two ledgers stored in stock_records.
type StockKind string

const (
	StockKindInventory StockKind = "inventory"
	StockKindMaterial  StockKind = "material"
)

var validStockKinds = []StockKind{
	StockKindInventory,
	StockKindMaterial,
}

// String implements fmt.Stringer.
func (k StockKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known stock kind.
func (k StockKind) IsValid() bool {
	for _, candidate := range validStockKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseStockKind converts raw input into StockKind.
func ParseStockKind(value string) (StockKind, error) {
	for _, candidate := range validStockKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock kind %q", value)
}

// StockKinds returns every stock kind in display order.
func StockKinds() []StockKind {
	return append([]StockKind(nil), validStockKinds...)
}
