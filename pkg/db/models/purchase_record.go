package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/commissary-backend/pkg/types"
)

// PurchaseRecord is a single procurement line. TotalPrice is always Quantity * UnitPrice.
type PurchaseRecord struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Item         string          `gorm:"column:item;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;type:numeric(14,4);not null"`
	ReceiptURL   *string         `gorm:"column:receipt_url"`
	PurchaseDate types.Date      `gorm:"column:purchase_date;type:date;not null;index"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_records"
}
