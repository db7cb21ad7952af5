package cron

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/metrics"
)

// LowStockDigestJobName is the registry and metrics label of the digest job.
const LowStockDigestJobName = "low-stock-digest"

// maxDigestItems caps how many item names a digest log line carries.
const maxDigestItems = 20

type lowStockScanner interface {
	LowStock(ctx context.Context, kind enums.StockKind) (ledger.ScanResult, error)
}

// LowStockDigestJobParams configures the digest job.
type LowStockDigestJobParams struct {
	Logger  *logger.Logger
	Stock   lowStockScanner
	Metrics *metrics.StockMetrics
}

type lowStockDigestJob struct {
	logg    *logger.Logger
	stock   lowStockScanner
	metrics *metrics.StockMetrics
}

// NewLowStockDigestJob scans both ledgers and reports low-stock counts per kind.
func NewLowStockDigestJob(params LowStockDigestJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	return &lowStockDigestJob{logg: params.Logger, stock: params.Stock, metrics: params.Metrics}, nil
}

func (j *lowStockDigestJob) Name() string { return LowStockDigestJobName }

func (j *lowStockDigestJob) Run(ctx context.Context) error {
	var errs error
	for _, kind := range enums.StockKinds() {
		if err := j.digest(ctx, kind); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errs
}

func (j *lowStockDigestJob) digest(ctx context.Context, kind enums.StockKind) error {
	result, err := j.stock.LowStock(ctx, kind)
	if err != nil {
		return err
	}
	if j.metrics != nil {
		j.metrics.SetLowStock(kind.String(), len(result.Alerts))
		j.metrics.AddSkipped(kind.String(), result.Skipped)
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"kind":      kind.String(),
		"low_stock": len(result.Alerts),
		"skipped":   result.Skipped,
	})
	if len(result.Alerts) == 0 {
		j.logg.Info(ctx, "no low stock items")
		return nil
	}
	j.logg.Warn(j.logg.WithField(ctx, "items", digestItems(result.Alerts)), "low stock items found")
	return nil
}

func digestItems(alerts []ledger.Alert) string {
	names := make([]string, 0, len(alerts))
	for i, alert := range alerts {
		if i == maxDigestItems {
			names = append(names, fmt.Sprintf("+%d more", len(alerts)-maxDigestItems))
			break
		}
		names = append(names, fmt.Sprintf("%s (%d)", alert.Item, alert.Ending))
	}
	return strings.Join(names, ", ")
}
