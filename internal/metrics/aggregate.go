package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/petroldesk/pumplog/internal/entity"
)

// ReceiptSource is the slice of the repository the aggregator needs.
type ReceiptSource interface {
	FindByOwner(ctx context.Context, ownerID string) ([]*entity.Receipt, error)
}

// ChartPoint is one month's bucket in a time series. Name is the display
// label ("Apr 2025"); points are ordered chronologically.
// Zero is a legitimate bucket value (a month of all-zero registers), so the
// fields always serialize.
type ChartPoint struct {
	Name   string  `json:"name"`
	Total  int64   `json:"total"`
	Volume float64 `json:"volume"`
}

// FuelSlice is one fuel type's share of dispensed volume.
type FuelSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Dashboard is the per-owner rollup.
type Dashboard struct {
	TotalSales      int64        `json:"totalSales"`
	VolumeSold      float64      `json:"volumeSold"`
	AverageDensity  float64      `json:"averageDensity"`
	Transactions    int          `json:"transactions"`
	SalesChartData  []ChartPoint `json:"salesChartData"`
	VolumeChartData []ChartPoint `json:"volumeChartData"`
	FuelTypeData    []FuelSlice  `json:"fuelTypeData"`
}

// Aggregator builds dashboard rollups from persisted receipts.
type Aggregator struct {
	receipts ReceiptSource
	logger   *slog.Logger
}

func NewAggregator(receipts ReceiptSource, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{receipts: receipts, logger: logger}
}

// Rollup aggregates every receipt owned by ownerID. Aggregation itself is
// order-independent; monthly buckets come back chronologically and months
// with no receipts are omitted.
func (a *Aggregator) Rollup(ctx context.Context, ownerID string) (*Dashboard, error) {
	recs, err := a.receipts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load receipts for rollup: %w", err)
	}

	d := &Dashboard{Transactions: len(recs)}

	salesByMonth := make(map[string]int64)
	volumeByMonth := make(map[string]float64)
	var totalVolume float64

	for _, r := range recs {
		d.TotalSales += r.TotalSales()
		totalVolume += r.TotalVolume()

		month := bucketMonth(r)
		key := month.Format("2006-01")
		salesByMonth[key] += r.TotalSales()
		volumeByMonth[key] += r.TotalVolume()
	}

	d.VolumeSold = entity.RoundVolume(totalVolume)

	// The persisted schema carries no density observations, so the rollup
	// reports the neutral value rather than failing.
	d.AverageDensity = 0

	keys := make([]string, 0, len(salesByMonth))
	for k := range salesByMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d.SalesChartData = make([]ChartPoint, 0, len(keys))
	d.VolumeChartData = make([]ChartPoint, 0, len(keys))
	for _, k := range keys {
		m, _ := time.Parse("2006-01", k)
		label := m.Format("Jan 2006")
		d.SalesChartData = append(d.SalesChartData, ChartPoint{Name: label, Total: salesByMonth[k]})
		d.VolumeChartData = append(d.VolumeChartData, ChartPoint{Name: label, Volume: entity.RoundVolume(volumeByMonth[k])})
	}

	// Nozzles carry no fuel-type tag, so the distribution degrades to a
	// single bucket instead of guessing from nozzle position.
	if len(recs) > 0 {
		d.FuelTypeData = []FuelSlice{{Name: "Unknown", Value: d.VolumeSold}}
	}

	return d, nil
}

// bucketMonth picks the calendar month a receipt belongs to: the printed
// date when it parses, otherwise the ingestion timestamp.
func bucketMonth(r *entity.Receipt) time.Time {
	if t, ok := parsePrintDate(r.PrintDate); ok {
		return t
	}
	return r.ProcessedAt.UTC()
}

// parsePrintDate handles the date formats pumps actually print. The
// recognizer guarantees no uniform format, so this stays best-effort.
func parsePrintDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	// pump-printed form like "21-APR-2025"
	if t, err := time.Parse("02-Jan-2006", normalizeMonthToken(s)); err == nil {
		return t, true
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func normalizeMonthToken(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[1]) != 3 {
		return s
	}
	parts[1] = strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
	return strings.Join(parts, "-")
}
