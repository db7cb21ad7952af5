package purchases

import (
	"io"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Purchase is the API view of a purchase record.
type Purchase struct {
	ID          uint            `json:"id"`
	Item        string          `json:"item"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ReceiptURL  *string         `json:"receipt_url"`
	Date        types.Date      `json:"date"`
	DateDisplay string          `json:"date_display"`
}

// PurchaseInput holds the editable fields. A zero Date means today.
type PurchaseInput struct {
	Item      string          `json:"item" validate:"required,max=255"`
	Quantity  int             `json:"quantity" validate:"min=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Date      types.Date      `json:"date"`
}

// Receipt is an optional uploaded receipt image or PDF.
type Receipt struct {
	Filename string
	Content  io.Reader
}

// DailyTotal is the derived expense total for one calendar day.
type DailyTotal struct {
	Date        types.Date      `json:"date"`
	DateDisplay string          `json:"date_display"`
	Total       decimal.Decimal `json:"total_amount"`
}

// ListResult is returned by List.
type ListResult struct {
	Purchases  []Purchase `json:"purchases"`
	TodayTotal DailyTotal `json:"today_total"`
}

func toPurchase(m models.PurchaseRecord) Purchase {
	return Purchase{
		ID:          m.ID,
		Item:        m.Item,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
		ReceiptURL:  m.ReceiptURL,
		Date:        m.PurchaseDate,
		DateDisplay: m.PurchaseDate.Display(),
	}
}

func newDailyTotal(day types.Date, total decimal.Decimal) DailyTotal {
	return DailyTotal{Date: day, DateDisplay: day.Display(), Total: total}
}

// ComputeTotal returns quantity * unitPrice.
func ComputeTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
