package normalize

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/petroldesk/pumplog/constants"
	"github.com/petroldesk/pumplog/internal/entity"
	"github.com/petroldesk/pumplog/internal/recognize"
)

// Normalizer converts raw recognition output into canonical receipts. It is
// deliberately lenient: an unparsable register coerces to zero, never
// rejecting the receipt. It is the only component allowed to default missing
// raw fields.
type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize builds a canonical receipt from raw recognition output. The
// returned receipt has no ID; the repository assigns one on insert.
func (n *Normalizer) Normalize(raw recognize.RawReceipt, ownerID, blobRef string, processedAt time.Time) entity.Receipt {
	rec := entity.Receipt{
		OwnerID:            ownerID,
		BlobRef:            blobRef,
		PrintDate:          strings.TrimSpace(raw.PrintDate),
		PumpSerial:         strings.TrimSpace(raw.PumpSerialNumber),
		Nozzles:            make([]entity.NozzleReading, 0, len(raw.Nozzles)),
		ExtractionDegraded: raw.Degraded,
		ProcessedAt:        processedAt,
	}

	if rec.PrintDate == "" {
		rec.PrintDate = processedAt.UTC().Format("2006-01-02")
	}
	if rec.PumpSerial == "" {
		rec.PumpSerial = constants.UnknownPumpSerial
	}

	for _, rn := range raw.Nozzles {
		rec.Nozzles = append(rec.Nozzles, entity.NozzleReading{
			NozzleID:              strings.TrimSpace(rn.Nozzle),
			CumulativeAmountMinor: n.parseInt("a", rn.Amount),
			CumulativeVolume:      n.parseFloat("v", rn.Volume),
			PeriodSalesMinor:      n.parseInt("totSales", rn.TotSales),
		})
	}

	return rec
}

// parseInt reads an integer register. Values printed with a fractional part
// ("71064.000") still count; anything else coerces to zero.
func (n *Normalizer) parseInt(field, s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound must be
	// strict; NaN fails both comparisons and coerces to zero.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	n.logger.Debug("unparsable integer register, coerced to zero", "field", field, "value", s)
	return 0
}

func (n *Normalizer) parseFloat(field, s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		n.logger.Debug("unparsable decimal register, coerced to zero", "field", field, "value", s)
		return 0
	}
	return v
}
