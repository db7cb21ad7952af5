package enums

import "fmt"

// SupplyCategory groups order line items on a requisition sheet.
type SupplyCategory string

const (
	SupplyCategoryWet        SupplyCategory = "wet"
	SupplyCategorySauce      SupplyCategory = "sauce"
	SupplyCategoryIceCream   SupplyCategory = "ice_cream"
	SupplyCategoryShakes     SupplyCategory = "shakes"
	SupplyCategoryVegetables SupplyCategory = "vegetables"
	SupplyCategoryPackaging  SupplyCategory = "packaging"
	SupplyCategoryGroceries  SupplyCategory = "groceries"
	SupplyCategoryManual     SupplyCategory = "manual"
)

// validSupplyCategories is also the print order of an order sheet.
var validSupplyCategories = []SupplyCategory{
	SupplyCategoryWet,
	SupplyCategorySauce,
	SupplyCategoryIceCream,
	SupplyCategoryShakes,
	SupplyCategoryVegetables,
	SupplyCategoryPackaging,
	SupplyCategoryGroceries,
	SupplyCategoryManual,
}

var supplyCategoryLabels = map[SupplyCategory]string{
	SupplyCategoryWet:        "Wet Items",
	SupplyCategorySauce:      "Sauces",
	SupplyCategoryIceCream:   "Ice Cream",
	SupplyCategoryShakes:     "Shakes",
	SupplyCategoryVegetables: "Vegetables",
	SupplyCategoryPackaging:  "Packaging",
	SupplyCategoryGroceries:  "Groceries",
	SupplyCategoryManual:     "Manual Items",
}

// String implements fmt.Stringer.
func (c SupplyCategory) String() string {
	return string(c)
}

// Label is the section heading printed on exports.
func (c SupplyCategory) Label() string {
	if label, ok := supplyCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsValid reports whether the value is one of the fixed categories.
func (c SupplyCategory) IsValid() bool {
	for _, candidate := range validSupplyCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseSupplyCategory converts raw input into SupplyCategory.
func ParseSupplyCategory(value string) (SupplyCategory, error) {
	for _, candidate := range validSupplyCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supply category %q", value)
}

// SupplyCategories returns the categories in print order.
func SupplyCategories() []SupplyCategory {
	return append([]SupplyCategory(nil), validSupplyCategories...)
}
