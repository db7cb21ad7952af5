package eventlog

import (
	"io"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

// Entry is the API view of a log entry.
type Entry struct {
	ID          uint          `json:"id"`
	Kind        enums.LogKind `json:"kind"`
	Item        string        `json:"item"`
	UOI         string        `json:"uoi"`
	Quantity    string        `json:"quantity"`
	Description string        `json:"description"`
	ImageURL    *string       `json:"image_url"`
	Date        types.Date    `json:"date"`
	DateDisplay string        `json:"date_display"`
}

// EntryInput holds the text fields of a log entry. Quantity is stored as given.
type EntryInput struct {
	Item        string `json:"item" validate:"required,max=255"`
	UOI         string `json:"uoi" validate:"required,max=64"`
	Quantity    string `json:"quantity" validate:"required,max=64"`
	Description string `json:"description" validate:"max=2000"`
}

// Attachment is an optional uploaded image.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// ListResult is returned by List.
type ListResult struct {
	Entries          []Entry    `json:"entries"`
	DateToday        types.Date `json:"date_today"`
	DateTodayDisplay string     `json:"date_today_display"`
}

// DateResult is returned by ListByDate.
type DateResult struct {
	Entries     []Entry    `json:"entries"`
	Date        types.Date `json:"date"`
	DateDisplay string     `json:"date_display"`
}

func toEntry(m models.LogEntry) Entry {
	return Entry{
		ID:          m.ID,
		Kind:        m.Kind,
		Item:        m.Item,
		UOI:         m.UOI,
		Quantity:    m.Quantity,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		Date:        m.EntryDate,
		DateDisplay: m.EntryDate.Display(),
	}
}

func toEntries(rows []models.LogEntry) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toEntry(row))
	}
	return out
}
