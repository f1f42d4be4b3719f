// Package money provides paise-exact currency arithmetic. All internal
// calculations happen on integer paise; rupee floats only appear at the
// API boundary and are rounded through a single conversion path.
package money

import "math"

// Paise is a monetary value in minor units (1/100 rupee).
type Paise = int64

// epsilon counters binary floating-point representation error when scaling
// rupee values to paise (e.g. 1.005*100 == 100.49999...).
const epsilon = 2.220446049250313e-16

// ToPaise converts a rupee amount to integer paise. Non-finite inputs
// coerce to zero.
func ToPaise(rupees float64) Paise {
	if math.IsNaN(rupees) || math.IsInf(rupees, 0) {
		return 0
	}
	return Paise(math.Round((rupees + epsilon) * 100))
}

// FromPaise converts integer paise back to a rupee amount.
func FromPaise(p Paise) float64 {
	return float64(p) / 100
}

// Round2 rounds a rupee amount to two decimals via the paise conversion,
// keeping a single source of rounding truth. It is idempotent.
func Round2(rupees float64) float64 {
	return FromPaise(ToPaise(rupees))
}

// ClampPaise restricts p to the inclusive [min, max] range.
func ClampPaise(p, min, max Paise) Paise {
	if p < min {
		return min
	}
	if p > max {
		return max
	}
	return p
}

// NonNegativePaise clamps p to zero when negative. Amounts are always
// non-negative in money contexts.
func NonNegativePaise(p Paise) Paise {
	if p < 0 {
		return 0
	}
	return p
}

// Clamp2 rounds a rupee amount to two decimals and clamps it to zero when
// negative.
func Clamp2(rupees float64) float64 {
	v := Round2(rupees)
	if v < 0 {
		return 0
	}
	return v
}
