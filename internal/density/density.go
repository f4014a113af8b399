package density

import (
	"math"
	"sort"

	"github.com/petroldesk/pumplog/internal/common"
)

// ReferenceTemperatureC is the standard temperature fuel densities are
// normalized to.
const ReferenceTemperatureC = 15.0

const (
	minTemperatureC = -50.0
	maxTemperatureC = 100.0
)

// DefaultCoefficients maps a fuel-type tag to its linear thermal-expansion
// coefficient (fractional change per °C).
func DefaultCoefficients() map[string]float64 {
	return map[string]float64{
		"petrol":  0.001,
		"diesel":  0.0007,
		"premium": 0.00095,
	}
}

// Converter performs temperature-compensated density conversion. The
// coefficient table is fixed at construction and never mutated.
type Converter struct {
	coefficients map[string]float64
}

func NewConverter(coefficients map[string]float64) *Converter {
	if coefficients == nil {
		coefficients = DefaultCoefficients()
	}
	return &Converter{coefficients: coefficients}
}

// FuelTypes lists the known fuel-type tags, sorted for stable presentation.
func (c *Converter) FuelTypes() []string {
	out := make([]string, 0, len(c.coefficients))
	for ft := range c.coefficients {
		out = append(out, ft)
	}
	sort.Strings(out)
	return out
}

// Standardize converts a density observed at an arbitrary temperature into
// the density at the 15 °C reference, rounded to five fractional digits.
// Unlike the receipt normalizer this is a direct user-entry calculation, so
// bad input is rejected, never coerced.
func (c *Converter) Standardize(observedDensity, observedTemperatureC float64, fuelType string) (float64, error) {
	if observedDensity <= 0 {
		return 0, common.Validationf("density", "must be greater than zero")
	}
	if observedTemperatureC < minTemperatureC || observedTemperatureC > maxTemperatureC {
		return 0, common.Validationf("temperature", "must be between %.0f°C and %.0f°C", minTemperatureC, maxTemperatureC)
	}
	coefficient, ok := c.coefficients[fuelType]
	if !ok {
		return 0, common.Validationf("fuelType", "unknown fuel type %q", fuelType)
	}

	standard := observedDensity / (1 + coefficient*(observedTemperatureC-ReferenceTemperatureC))
	return round5(standard), nil
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
