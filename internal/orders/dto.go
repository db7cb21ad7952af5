package orders

import (
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
)

// LineItem is one requested supply. Quantities are free text as written on the sheet.
type LineItem struct {
	Item     string `json:"item" validate:"required,max=255"`
	UOI      string `json:"uoi" validate:"max=64"`
	Quantity string `json:"quantity" validate:"max=64"`
	Prepared string `json:"prepared_quantity" validate:"max=64"`
	Received string `json:"received_quantity" validate:"max=64"`
}

// OrderInput is a requisition submission. Items is keyed by category.
type OrderInput struct {
	OrderNumber string                              `json:"order_number" validate:"required,max=64"`
	PreparedBy  string                              `json:"prepared_by" validate:"max=255"`
	CheckedBy   string                              `json:"checked_by" validate:"max=255"`
	Date        string                              `json:"date" validate:"max=32"`
	Time        string                              `json:"time" validate:"max=32"`
	StoreBranch string                              `json:"store_branch" validate:"max=255"`
	Status      string                              `json:"status" validate:"max=64"`
	Items       map[enums.SupplyCategory][]LineItem `json:"items" validate:"dive,dive"`
}

// Section groups the line items of one category.
type Section struct {
	Category enums.SupplyCategory `json:"category"`
	Label    string               `json:"label"`
	Items    []LineItem           `json:"items"`
}

// Summary is a row of the order report.
type Summary struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"order_number"`
	PreparedBy  string    `json:"prepared_by"`
	CheckedBy   string    `json:"checked_by"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	StoreBranch string    `json:"store_branch"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order is a full requisition with its non-empty sections in print order.
type Order struct {
	Summary
	Sections []Section `json:"sections"`
}

// ListResult is returned by List.
type ListResult struct {
	Orders           []Summary `json:"orders"`
	Search           string    `json:"search"`
	DateToday        string    `json:"date_today"`
	DateTodayDisplay string    `json:"date_today_display"`
}

// Workbook is a rendered export ready to stream.
type Workbook struct {
	Filename    string
	ContentType string
	Data        []byte
}

func toSummary(m models.OrderDocument) Summary {
	return Summary{
		ID:          m.ID,
		OrderNumber: m.OrderNumber,
		PreparedBy:  m.PreparedBy,
		CheckedBy:   m.CheckedBy,
		Date:        m.OrderDate,
		Time:        m.OrderTime,
		StoreBranch: m.StoreBranch,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}

func toOrder(m models.OrderDocument) Order {
	byCategory := make(map[enums.SupplyCategory][]LineItem)
	for _, line := range m.Items {
		byCategory[line.Category] = append(byCategory[line.Category], LineItem{
			Item:     line.Item,
			UOI:      line.UOI,
			Quantity: line.Quantity,
			Prepared: line.PreparedQuantity,
			Received: line.ReceivedQuantity,
		})
	}
	sections := make([]Section, 0, len(byCategory))
	for _, category := range enums.SupplyCategories() {
		items := byCategory[category]
		if len(items) == 0 {
			continue
		}
		sections = append(sections, Section{Category: category, Label: category.Label(), Items: items})
	}
	return Order{Summary: toSummary(m), Sections: sections}
}

// toModel flattens the input into a document whose line positions follow print order.
func toModel(input OrderInput) *models.OrderDocument {
	doc := &models.OrderDocument{
		OrderNumber: input.OrderNumber,
		PreparedBy:  input.PreparedBy,
		CheckedBy:   input.CheckedBy,
		OrderDate:   input.Date,
		OrderTime:   input.Time,
		StoreBranch: input.StoreBranch,
		Status:      input.Status,
	}
	position := 0
	for _, category := range enums.SupplyCategories() {
		for _, item := range input.Items[category] {
			doc.Items = append(doc.Items, models.OrderLineItem{
				Category:         category,
				Position:         position,
				Item:             item.Item,
				UOI:              item.UOI,
				Quantity:         item.Quantity,
				PreparedQuantity: item.Prepared,
				ReceivedQuantity: item.Received,
			})
			position++
		}
	}
	return doc
}
