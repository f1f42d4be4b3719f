package shipping

import (
	"math"

	"github.com/buyonegram/backend-bog/internal/money"
)

// DefaultMarkupPercent is the strike-through markup applied on top of the
// configured courier base charges.
const DefaultMarkupPercent = 30.0

// Hardcoded display fallbacks when no chart is configured.
const (
	fallbackRajasthanCharge   = 36.0
	fallbackOtherStatesCharge = 68.0
)

// DisplayMetrics feeds the cart strike-through UI. Every value here is
// cosmetic: nothing in this struct may reach a payable field.
type DisplayMetrics struct {
	MarkupPercent            float64 `json:"markupPercent"`
	RajasthanBaseCharge      float64 `json:"rajasthanBaseCharge"`
	OtherStatesBaseCharge    float64 `json:"otherStatesBaseCharge"`
	RajasthanDisplayCharge   float64 `json:"rajasthanDisplayCharge"`
	OtherStatesDisplayCharge float64 `json:"otherStatesDisplayCharge"`
}

func positive(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return value
}

func withMarkup(base, markupPercent float64) float64 {
	return money.Round2(base * (1 + markupPercent/100))
}

// DisplayCharge returns the cosmetic shipping figure for the region.
// Priority: configured display charge, then base charge with markup, then
// the hardcoded fallback. The result never feeds payable totals.
func DisplayCharge(isRajasthan bool, metrics DisplayMetrics) float64 {
	markup := positive(metrics.MarkupPercent)
	if markup == 0 {
		markup = DefaultMarkupPercent
	}

	var charge float64
	if isRajasthan {
		charge = positive(metrics.RajasthanDisplayCharge)
		if charge == 0 {
			charge = withMarkup(positive(metrics.RajasthanBaseCharge), markup)
		}
		if charge == 0 {
			charge = fallbackRajasthanCharge
		}
	} else {
		charge = positive(metrics.OtherStatesDisplayCharge)
		if charge == 0 {
			charge = withMarkup(positive(metrics.OtherStatesBaseCharge), markup)
		}
		if charge == 0 {
			charge = fallbackOtherStatesCharge
		}
	}
	return money.Clamp2(charge)
}

// MetricsFromChart derives display metrics from a configured rate chart:
// the maximum configured charge for the local keys and for the whole chart,
// each with the markup applied.
func MetricsFromChart(chart map[string]any, markupPercent float64) DisplayMetrics {
	markup := positive(markupPercent)
	if markup == 0 {
		markup = DefaultMarkupPercent
	}

	var localBase float64
	for _, candidate := range localChartCandidates(chart) {
		if v := maxConfiguredCharge(candidate); v > localBase {
			localBase = v
		}
	}
	indiaBase := maxConfiguredCharge(chart)

	return DisplayMetrics{
		MarkupPercent:            markup,
		RajasthanBaseCharge:      money.Round2(localBase),
		OtherStatesBaseCharge:    money.Round2(indiaBase),
		RajasthanDisplayCharge:   withMarkup(localBase, markup),
		OtherStatesDisplayCharge: withMarkup(indiaBase, markup),
	}
}
