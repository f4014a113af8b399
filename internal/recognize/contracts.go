package recognize

import "context"

// RawNozzle mirrors the recognizer's loose per-nozzle output. All registers
// arrive as unparsed strings; the normalizer is the only place allowed to
// coerce them.
type RawNozzle struct {
	Nozzle   string `json:"nozzle"`
	Amount   string `json:"a"`
	Volume   string `json:"v"`
	TotSales string `json:"totSales"`
}

// RawReceipt is one recognition result before normalization. Degraded marks
// the fixed fallback substituted when recognition failed.
type RawReceipt struct {
	PumpSerialNumber string      `json:"pumpSerialNumber"`
	PrintDate        string      `json:"printDate"`
	Model            string      `json:"model"`
	Nozzles          []RawNozzle `json:"nozzles"`
	Degraded         bool        `json:"-"`
}

// Extractor turns a locally accessible image into a raw recognition result.
// Implementations must absorb recognition failures by returning the fallback
// record; the only error that escapes is a missing input file.
type Extractor interface {
	Extract(ctx context.Context, path string) (RawReceipt, error)
}
