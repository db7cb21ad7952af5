package ledger

import (
	"context"

	"github.com/angelmondragon/commissary-backend/pkg/logger"
)

// DefaultLowStockThreshold applies when no threshold is configured.
const DefaultLowStockThreshold = 10

// Movement is the quantity tuple a stock record is derived from.
type Movement struct {
	Beginning int `json:"beginning"`
	Incoming  int `json:"incoming"`
	Outgoing  int `json:"outgoing"`
	Waste     int `json:"waste"`
}

// ComputeEnding returns beginning + incoming - outgoing - waste. Negative results are kept.
func ComputeEnding(m Movement) int {
	return m.Beginning + m.Incoming - m.Outgoing - m.Waste
}

// Alert flags an item at or below the threshold.
type Alert struct {
	Item   string `json:"item"`
	Ending int    `json:"ending"`
}

// ScanResult is the outcome of a low-stock scan.
type ScanResult struct {
	Alerts  []Alert
	Skipped int
}

// ScanLowStock returns the records whose ending is <= threshold, in input order.
// A record whose stored ending disagrees with its own movement is skipped and
// logged rather than reported.
func ScanLowStock(ctx context.Context, records []Record, threshold int, logg *logger.Logger) ScanResult {
	result := ScanResult{Alerts: []Alert{}}
	for _, rec := range records {
		if expected := ComputeEnding(rec.Movement); expected != rec.Ending {
			result.Skipped++
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"record_id":       rec.ID,
					"item":            rec.Item,
					"ending":          rec.Ending,
					"expected_ending": expected,
				}), "low-stock scan skipped record with invalid ending")
			}
			continue
		}
		if rec.Ending <= threshold {
			result.Alerts = append(result.Alerts, Alert{Item: rec.Item, Ending: rec.Ending})
		}
	}
	return result
}
