package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroldesk/pumplog/internal/entity"
	"github.com/petroldesk/pumplog/internal/recognize"
)

var processedAt = time.Date(2025, 4, 21, 9, 30, 0, 0, time.UTC)

func TestNormalizeGenuineReceipt(t *testing.T) {
	raw := recognize.RawReceipt{
		PumpSerialNumber: " 583227 ",
		PrintDate:        "21-APR-2025",
		Nozzles: []recognize.RawNozzle{
			{Nozzle: "1", Amount: "7709841.690", Volume: "398656.800", TotSales: "71064"},
			{Nozzle: "2", Amount: "146242531.230", Volume: "1747632.850", TotSales: "133555"},
		},
	}

	rec := NewNormalizer(nil).Normalize(raw, "owner-1", "blob-1", processedAt)

	assert.Equal(t, "owner-1", rec.OwnerID)
	assert.Equal(t, "blob-1", rec.BlobRef)
	assert.Equal(t, "583227", rec.PumpSerial)
	assert.Equal(t, "21-APR-2025", rec.PrintDate)
	assert.False(t, rec.ExtractionDegraded)
	require.Len(t, rec.Nozzles, 2)
	assert.Equal(t, entity.NozzleReading{
		NozzleID:              "1",
		CumulativeAmountMinor: 7709841,
		CumulativeVolume:      398656.800,
		PeriodSalesMinor:      71064,
	}, rec.Nozzles[0])
	assert.Equal(t, int64(71064+133555), rec.TotalSales())
	assert.InDelta(t, 398656.800+1747632.850, rec.TotalVolume(), 1e-9)
}

func TestNormalizeCoercesUnparsableFieldsToZero(t *testing.T) {
	raw := recognize.RawReceipt{
		Nozzles: []recognize.RawNozzle{
			{Nozzle: "1", Amount: "not-a-number", Volume: "", TotSales: "12,500"},
			{Nozzle: "2", Amount: "", Volume: "x.y", TotSales: ""},
		},
	}

	rec := NewNormalizer(nil).Normalize(raw, "owner-1", "blob-1", processedAt)

	require.Len(t, rec.Nozzles, 2)
	for _, n := range rec.Nozzles {
		assert.Zero(t, n.CumulativeAmountMinor)
		assert.Zero(t, n.CumulativeVolume)
		assert.Zero(t, n.PeriodSalesMinor)
	}
	assert.Zero(t, rec.TotalSales())
	assert.Zero(t, rec.TotalVolume())
}

func TestNormalizeCoercesOutOfRangeIntegersToZero(t *testing.T) {
	raw := recognize.RawReceipt{
		Nozzles: []recognize.RawNozzle{
			{Nozzle: "1", Amount: "1e30", TotSales: "9223372036854775808"},
			{Nozzle: "2", Amount: "-1e30", TotSales: "NaN"},
		},
	}

	rec := NewNormalizer(nil).Normalize(raw, "owner-1", "blob-1", processedAt)

	require.Len(t, rec.Nozzles, 2)
	for _, n := range rec.Nozzles {
		assert.Zero(t, n.CumulativeAmountMinor)
		assert.Zero(t, n.PeriodSalesMinor)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rec := NewNormalizer(nil).Normalize(recognize.RawReceipt{}, "owner-1", "blob-1", processedAt)

	assert.Equal(t, "Unknown", rec.PumpSerial)
	assert.Equal(t, "2025-04-21", rec.PrintDate)
	assert.Empty(t, rec.Nozzles)
	assert.Zero(t, rec.TotalSales())
	assert.Zero(t, rec.TotalVolume())
}

func TestNormalizeKeepsDegradedFlag(t *testing.T) {
	rec := NewNormalizer(nil).Normalize(recognize.FallbackReceipt(), "owner-1", "blob-1", processedAt)

	assert.True(t, rec.ExtractionDegraded)
	require.Len(t, rec.Nozzles, 4)
	assert.InDelta(t, 398656.800, rec.Nozzles[0].CumulativeVolume, 1e-9)
	assert.Equal(t, int64(71064), rec.Nozzles[0].PeriodSalesMinor)
	assert.Equal(t, int64(71064+133555+145571+47422), rec.TotalSales())
}
