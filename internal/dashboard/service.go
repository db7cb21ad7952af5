package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/internal/purchases"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

type lowStockScanner interface {
	LowStock(ctx context.Context, kind enums.StockKind) (ledger.ScanResult, error)
}

type expenseReader interface {
	DailyTotal(ctx context.Context, rawDate string) (*purchases.DailyTotal, error)
}

type logCounter interface {
	CountToday(ctx context.Context, kind enums.LogKind) (int64, error)
}

type orderCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Summary is the landing page overview.
type Summary struct {
	DateToday         string          `json:"date_today"`
	DateTodayDisplay  string          `json:"date_today_display"`
	InventoryAlerts   []ledger.Alert  `json:"inventory_alerts"`
	MaterialAlerts    []ledger.Alert  `json:"material_alerts"`
	ExpensesToday     decimal.Decimal `json:"expenses_today"`
	WasteLogsToday    int64           `json:"waste_logs_today"`
	MaterialLogsToday int64           `json:"material_logs_today"`
	OrderCount        int64           `json:"order_count"`
}

// Service builds the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	stock    lowStockScanner
	expenses expenseReader
	logs     logCounter
	orders   orderCounter
	loc      *time.Location
	now      func() time.Time
}

func NewService(stock lowStockScanner, expenses expenseReader, logs logCounter, orders orderCounter, loc *time.Location, now func() time.Time) (Service, error) {
	if stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if expenses == nil {
		return nil, fmt.Errorf("expense service required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &service{stock: stock, expenses: expenses, logs: logs, orders: orders, loc: loc, now: now}, nil
}

// Summary fails if any section fails; section errors are combined.
func (s *service) Summary(ctx context.Context) (*Summary, error) {
	today := types.NewDate(s.now().In(s.loc))
	out := &Summary{
		DateToday:        today.String(),
		DateTodayDisplay: today.Display(),
		InventoryAlerts:  []ledger.Alert{},
		MaterialAlerts:   []ledger.Alert{},
		ExpensesToday:    decimal.Zero,
	}

	var errs error
	if scan, err := s.stock.LowStock(ctx, enums.StockKindInventory); err != nil {
		errs = multierr.Append(errs, err)
	} else if scan.Alerts != nil {
		out.InventoryAlerts = scan.Alerts
	}
	if scan, err := s.stock.LowStock(ctx, enums.StockKindMaterial); err != nil {
		errs = multierr.Append(errs, err)
	} else if scan.Alerts != nil {
		out.MaterialAlerts = scan.Alerts
	}
	if total, err := s.expenses.DailyTotal(ctx, today.String()); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		out.ExpensesToday = total.Total
	}
	if n, err := s.logs.CountToday(ctx, enums.LogKindWaste); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		out.WasteLogsToday = n
	}
	if n, err := s.logs.CountToday(ctx, enums.LogKindMaterial); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		out.MaterialLogsToday = n
	}
	if n, err := s.orders.Count(ctx); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		out.OrderCount = n
	}

	if errs != nil {
		return nil, errs
	}
	return out, nil
}
