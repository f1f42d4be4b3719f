package shipping

import (
	"regexp"
	"strings"

	"github.com/buyonegram/backend-bog/internal/money"
)

// Zone is a coarse distance band derived from the destination pincode.
type Zone string

// Zones: A is local (Jaipur), C is the far belt (north-east, Kerala,
// J&K), B is everything else.
const (
	ZoneA Zone = "A"
	ZoneB Zone = "B"
	ZoneC Zone = "C"
)

var (
	zoneAPrefixes = []string{"302"}
	zoneCPrefixes = []string{"19", "18", "79", "78", "77", "68", "67", "74", "93"}

	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// ZoneRate is the per-slab pricing for one zone: the first 500g and each
// additional 500g.
type ZoneRate struct {
	Base500 float64 `json:"base500"`
	Add500  float64 `json:"add500"`
}

// RateChart maps zone keys to slab pricing.
type RateChart map[string]ZoneRate

// DefaultRateChart is used when no chart is configured in settings.
func DefaultRateChart() RateChart {
	return RateChart{
		"A": {Base500: 24, Add500: 14},
		"B": {Base500: 42, Add500: 26},
		"C": {Base500: 50, Add500: 30},
	}
}

// ValidatePincode reports whether the value is a six-digit Indian pincode.
func ValidatePincode(pincode string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(pincode))
}

// DetectZone classifies a destination pincode by prefix.
func DetectZone(pincode string) Zone {
	pin := strings.TrimSpace(pincode)
	for _, prefix := range zoneAPrefixes {
		if strings.HasPrefix(pin, prefix) {
			return ZoneA
		}
	}
	for _, prefix := range zoneCPrefixes {
		if strings.HasPrefix(pin, prefix) {
			return ZoneC
		}
	}
	return ZoneB
}

// WeightSlab rounds a gram weight up to the next 500g slab, minimum one
// slab.
func WeightSlab(totalWeightGrams float64) int64 {
	weight := totalWeightGrams
	if weight < 1 {
		weight = 1
	}
	slabs := int64(weight) / 500
	if int64(weight)%500 != 0 {
		slabs++
	}
	if slabs < 1 {
		slabs = 1
	}
	return slabs * 500
}

// Quote is the shipping estimate for a destination.
type Quote struct {
	Zone        Zone    `json:"zone"`
	WeightGrams int64   `json:"weight"`
	Charge      float64 `json:"charge"`
	Amount      float64 `json:"amount"`
}

// QuoteFor computes the zone and weight slab for a destination. Every order
// ships free, so the charge is always zero; the zone and slab still feed
// courier booking.
func QuoteFor(destinationPincode string, subtotal float64) Quote {
	estimatedWeight := 500.0
	if subtotal > 500 {
		estimatedWeight = float64(WeightSlab(subtotal))
	}
	return Quote{
		Zone:        DetectZone(destinationPincode),
		WeightGrams: WeightSlab(estimatedWeight),
		Charge:      0,
		Amount:      0,
	}
}

// maxConfiguredCharge walks an arbitrary settings value (nested maps,
// slices, numbers) and returns the largest non-negative numeric charge.
func maxConfiguredCharge(value any) float64 {
	var max float64
	var walk func(v any)
	walk = func(v any) {
		switch tv := v.(type) {
		case map[string]any:
			for _, item := range tv {
				walk(item)
			}
		case []any:
			for _, item := range tv {
				walk(item)
			}
		case float64:
			if r := money.Round2(tv); r >= 0 && r > max {
				max = r
			}
		case int:
			walk(float64(tv))
		case ZoneRate:
			walk(tv.Base500)
			walk(tv.Add500)
		}
	}
	walk(value)
	return max
}

// localChartCandidates picks the chart entries that describe local
// (Rajasthan / intra-state) shipping, falling back to Zone A.
func localChartCandidates(chart map[string]any) []any {
	var preferred []any
	for key, value := range chart {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if strings.Contains(normalized, "rajasthan") ||
			strings.Contains(normalized, "local") ||
			strings.Contains(normalized, "intra") {
			preferred = append(preferred, value)
		}
	}
	if len(preferred) > 0 {
		return preferred
	}
	if v, ok := chart["A"]; ok {
		return []any{v}
	}
	if v, ok := chart["a"]; ok {
		return []any{v}
	}
	return nil
}
