package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockMetrics exposes the latest low-stock scan results per ledger.
type StockMetrics struct {
	lowStock *prometheus.GaugeVec
	skipped  *prometheus.CounterVec
}

func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	lowStock := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stock",
		Name:      "low_stock_items",
		Help:      "Items at or below the low-stock threshold in the last scan.",
	}, []string{"kind"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stock",
		Name:      "scan_skipped_total",
		Help:      "Records skipped by the low-stock scan because their ending was invalid.",
	}, []string{"kind"})
	reg.MustRegister(lowStock, skipped)
	return &StockMetrics{lowStock: lowStock, skipped: skipped}
}

// SetLowStock records how many items of kind are low.
func (s *StockMetrics) SetLowStock(kind string, count int) {
	if s == nil || s.lowStock == nil {
		return
	}
	s.lowStock.WithLabelValues(normalizeLabel(kind)).Set(float64(count))
}

// AddSkipped counts records the scan could not evaluate.
func (s *StockMetrics) AddSkipped(kind string, count int) {
	if s == nil || s.skipped == nil || count <= 0 {
		return
	}
	s.skipped.WithLabelValues(normalizeLabel(kind)).Add(float64(count))
}
