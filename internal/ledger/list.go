package ledger

import (
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

// Record is the API view of a stock record.
type Record struct {
	ID   uint            `json:"id"`
	Kind enums.StockKind `json:"kind"`
	Item string          `json:"item"`
	UOI  string          `json:"uoi"`
	Movement
	Ending      int        `json:"ending"`
	Date        types.Date `json:"date"`
	DateDisplay string     `json:"date_display"`
}

// ListResult is returned by List.
type ListResult struct {
	Records          []Record   `json:"records"`
	Alerts           []Alert    `json:"alerts"`
	DateToday        types.Date `json:"date_today"`
	DateTodayDisplay string     `json:"date_today_display"`
}

// DateResult is returned by ListByDate.
type DateResult struct {
	Records     []Record   `json:"records"`
	Date        types.Date `json:"date"`
	DateDisplay string     `json:"date_display"`
}

func toRecord(m models.StockRecord) Record {
	return Record{
		ID:   m.ID,
		Kind: m.Kind,
		Item: m.Item,
		UOI:  m.UOI,
		Movement: Movement{
			Beginning: m.Beginning,
			Incoming:  m.Incoming,
			Outgoing:  m.Outgoing,
			Waste:     m.Waste,
		},
		Ending:      m.Ending,
		Date:        m.RecordDate,
		DateDisplay: m.RecordDate.Display(),
	}
}

func toRecords(rows []models.StockRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out
}
