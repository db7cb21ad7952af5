package orders

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/commissary-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
)

// Form field suffixes of a category section, in column order.
const (
	suffixItem     = "_item[]"
	suffixUOI      = "_item_uoi[]"
	suffixQuantity = "_item_qty[]"
	suffixPrepared = "_item_prepared[]"
	suffixReceived = "_item_received[]"
)

type categoryError struct {
	category enums.SupplyCategory
	lengths  []int
}

func (e *categoryError) Error() string {
	return fmt.Sprintf("%s: column lengths differ %v", e.category, e.lengths)
}

// ParseForm reads an order sheet submitted as parallel per-category lists.
// Any category whose five columns have different lengths is rejected; every
// offending category is reported in the error details.
func ParseForm(values url.Values) (OrderInput, error) {
	input := OrderInput{
		OrderNumber: formValue(values, "order_id", "order_number"),
		PreparedBy:  formValue(values, "prepared_by"),
		CheckedBy:   formValue(values, "checked_by"),
		Date:        formValue(values, "date"),
		Time:        formValue(values, "time"),
		StoreBranch: formValue(values, "store_branch"),
		Status:      formValue(values, "status"),
		Items:       make(map[enums.SupplyCategory][]LineItem),
	}

	var errs error
	for _, category := range enums.SupplyCategories() {
		prefix := category.String()
		columns := [][]string{
			values[prefix+suffixItem],
			values[prefix+suffixUOI],
			values[prefix+suffixQuantity],
			values[prefix+suffixPrepared],
			values[prefix+suffixReceived],
		}
		lengths := make([]int, len(columns))
		aligned := true
		for i, column := range columns {
			lengths[i] = len(column)
			if lengths[i] != lengths[0] {
				aligned = false
			}
		}
		if !aligned {
			errs = multierr.Append(errs, &categoryError{category: category, lengths: lengths})
			continue
		}

		for row := 0; row < lengths[0]; row++ {
			item := LineItem{
				Item:     strings.TrimSpace(columns[0][row]),
				UOI:      strings.TrimSpace(columns[1][row]),
				Quantity: strings.TrimSpace(columns[2][row]),
				Prepared: strings.TrimSpace(columns[3][row]),
				Received: strings.TrimSpace(columns[4][row]),
			}
			if item == (LineItem{}) {
				continue
			}
			input.Items[category] = append(input.Items[category], item)
		}
	}

	if errs != nil {
		details := make(map[string]string)
		for _, err := range multierr.Errors(errs) {
			if ce, ok := err.(*categoryError); ok {
				details[ce.category.String()] = fmt.Sprintf("item columns have mismatched lengths %v", ce.lengths)
			}
		}
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "order sheet columns are misaligned").WithDetails(details)
	}
	return input, nil
}

func formValue(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}
