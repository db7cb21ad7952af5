package models

import (
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

// StockRecord is one day's movement for an item on the inventory or material ledger.
type StockRecord struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Kind       enums.StockKind `gorm:"column:kind;not null;index:idx_stock_records_kind_date"`
	Item       string          `gorm:"column:item;not null"`
	UOI        string          `gorm:"column:uoi;not null"`
	Beginning  int             `gorm:"column:beginning;not null"`
	Incoming   int             `gorm:"column:incoming;not null"`
	Outgoing   int             `gorm:"column:outgoing;not null"`
	Waste      int             `gorm:"column:waste;not null"`
	Ending     int             `gorm:"column:ending;not null"`
	RecordDate types.Date      `gorm:"column:record_date;type:date;not null;index:idx_stock_records_kind_date"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (StockRecord) TableName() string {
	return "stock_records"
}
