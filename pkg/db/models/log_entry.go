package models

import (
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

// LogEntry records a waste or material-usage event. Quantity is kept as entered.
type LogEntry struct {
	ID          uint          `gorm:"column:id;primaryKey;autoIncrement"`
	Kind        enums.LogKind `gorm:"column:kind;not null;index:idx_log_entries_kind_date"`
	Item        string        `gorm:"column:item;not null"`
	UOI         string        `gorm:"column:uoi;not null"`
	Quantity    string        `gorm:"column:quantity;not null"`
	Description string        `gorm:"column:description;not null;default:''"`
	ImageURL    *string       `gorm:"column:image_url"`
	EntryDate   types.Date    `gorm:"column:entry_date;type:date;not null;index:idx_log_entries_kind_date"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (LogEntry) TableName() string {
	return "log_entries"
}
