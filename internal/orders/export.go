package orders

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

const (
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	requisitionSheet    = "Requisition"
)

var lineHeaders = []string{"Item", "UOI", "Qty", "Prepared", "Received"}

// RenderWorkbook lays out a printable requisition: a header block followed by
// one titled table per non-empty category.
func RenderWorkbook(order *Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", requisitionSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, sheet: requisitionSheet, row: 1}
	w.set(1, "Commissary Requisition")
	w.style(1, 1, title)
	w.next()

	header := [][2]string{
		{"Order No.", order.OrderNumber},
		{"Prepared By", order.PreparedBy},
		{"Checked By", order.CheckedBy},
		{"Date", order.Date},
		{"Time", order.Time},
		{"Store Branch", order.StoreBranch},
		{"Status", order.Status},
	}
	for _, pair := range header {
		w.set(1, pair[0])
		w.set(2, pair[1])
		w.style(1, 1, bold)
		w.next()
	}

	for _, section := range order.Sections {
		w.next()
		w.set(1, section.Label)
		w.style(1, 1, title)
		w.next()
		for i, h := range lineHeaders {
			w.set(i+1, h)
		}
		w.style(1, len(lineHeaders), bold)
		w.next()
		for _, line := range section.Items {
			w.set(1, line.Item)
			w.set(2, line.UOI)
			w.set(3, line.Quantity)
			w.set(4, line.Prepared)
			w.set(5, line.Received)
			w.next()
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	if err := f.SetColWidth(requisitionSheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(requisitionSheet, "B", "E", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) next() {
	w.row++
}

func (w *sheetWriter) set(col int, value string) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStr(w.sheet, cell, value)
}

func (w *sheetWriter) style(fromCol, toCol, styleID int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, w.row)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, w.row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
}

func exportFilename(orderNumber string) string {
	return fmt.Sprintf("order-%s.xlsx", storage.SanitizeFilename(orderNumber))
}
