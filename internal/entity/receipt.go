package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// NozzleReading is one dispensing channel's registers on one receipt.
// Period sales are delta-computed upstream by the pump and taken as given.
type NozzleReading struct {
	NozzleID              string  `json:"nozzle_id"`
	CumulativeAmountMinor int64   `json:"cumulative_amount_minor"`
	CumulativeVolume      float64 `json:"cumulative_volume"`
	PeriodSalesMinor      int64   `json:"period_sales_minor"`
}

// Receipt is one processed scan. Immutable after creation except deletion;
// there is no update path.
type Receipt struct {
	ID                 uuid.UUID       `json:"id"`
	OwnerID            string          `json:"owner_id"`
	BlobRef            string          `json:"blob_ref"`
	PrintDate          string          `json:"print_date"`
	PumpSerial         string          `json:"pump_serial"`
	Nozzles            []NozzleReading `json:"nozzles"`
	ExtractionDegraded bool            `json:"extraction_degraded"`
	ProcessedAt        time.Time       `json:"processed_at"`
}

// TotalSales sums period sales across nozzles.
func (r *Receipt) TotalSales() int64 {
	var total int64
	for _, n := range r.Nozzles {
		total += n.PeriodSalesMinor
	}
	return total
}

// TotalVolume sums cumulative volume registers across nozzles, at full
// precision. Round only at reporting edges.
func (r *Receipt) TotalVolume() float64 {
	var total float64
	for _, n := range r.Nozzles {
		total += n.CumulativeVolume
	}
	return total
}

// RoundVolume rounds a volume figure to two decimal places for display.
func RoundVolume(v float64) float64 {
	return math.Round(v*100) / 100
}
