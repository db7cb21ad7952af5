package models

import (
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/enums"
)

// OrderDocument is a submitted supply requisition. OrderNumber is caller supplied
// and not unique.
type OrderDocument struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNumber string          `gorm:"column:order_number;not null;index"`
	PreparedBy  string          `gorm:"column:prepared_by;not null;default:''"`
	CheckedBy   string          `gorm:"column:checked_by;not null;default:''"`
	OrderDate   string          `gorm:"column:order_date;not null;default:''"`
	OrderTime   string          `gorm:"column:order_time;not null;default:''"`
	StoreBranch string          `gorm:"column:store_branch;not null;default:''"`
	Status      string          `gorm:"column:status;not null;default:''"`
	Items       []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderDocument) TableName() string {
	return "order_documents"
}

// OrderLineItem is one row of a category section. Quantities are kept as submitted.
type OrderLineItem struct {
	ID               uint                 `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID          uint                 `gorm:"column:order_id;not null;index"`
	Category         enums.SupplyCategory `gorm:"column:category;not null"`
	Position         int                  `gorm:"column:position;not null"`
	Item             string               `gorm:"column:item;not null"`
	UOI              string               `gorm:"column:uoi;not null;default:''"`
	Quantity         string               `gorm:"column:quantity;not null;default:''"`
	PreparedQuantity string               `gorm:"column:prepared_quantity;not null;default:''"`
	ReceivedQuantity string               `gorm:"column:received_quantity;not null;default:''"`
}

func (OrderLineItem) TableName() string {
	return "order_line_items"
}
