// Package gst implements Indian GST arithmetic on paise-exact amounts.
// Product prices are GST-inclusive at input; the splitter extracts the
// taxable base and assigns the rounding remainder to the GST part so the
// two always sum exactly to the gross.
package gst

import (
	"math"

	"github.com/buyonegram/backend-bog/internal/money"
)

// DefaultRatePercent applies when no valid rate is configured.
const DefaultRatePercent = 5.0

// Breakdown is the result of splitting a GST-inclusive amount.
type Breakdown struct {
	RatePercent   float64 `json:"ratePercent"`
	GrossAmount   float64 `json:"grossAmount"`
	TaxableAmount float64 `json:"taxableAmount"`
	GstAmount     float64 `json:"gstAmount"`
}

// TaxSettings carries the admin-managed tax configuration.
type TaxSettings struct {
	TaxRate float64 `json:"taxRate"`
}

// NormalizeRatePercent returns rate when it is finite and non-negative,
// otherwise fallback.
func NormalizeRatePercent(rate, fallback float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fallback
	}
	return rate
}

// RatePercentFromSettings extracts a positive tax rate from settings,
// defaulting to DefaultRatePercent.
func RatePercentFromSettings(settings *TaxSettings) float64 {
	if settings == nil {
		return DefaultRatePercent
	}
	rate := settings.TaxRate
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return DefaultRatePercent
	}
	return rate
}

// SplitInclusivePaise extracts the GST-exclusive base from a GST-inclusive
// paise amount. The remainder goes to GST so base + gst == gross exactly.
func SplitInclusivePaise(grossPaise money.Paise, ratePercent float64) (basePaise, gstPaise money.Paise) {
	rate := NormalizeRatePercent(ratePercent, DefaultRatePercent)
	gross := money.NonNegativePaise(grossPaise)
	if rate <= 0 {
		return gross, 0
	}
	divisor := 1 + rate/100
	base := money.Paise(math.Round(float64(gross) / divisor))
	return base, gross - base
}

// SplitInclusive splits a GST-inclusive rupee amount into taxable and GST
// parts. TaxableAmount + GstAmount always equals GrossAmount.
func SplitInclusive(inclusiveAmount, ratePercent float64) Breakdown {
	rate := NormalizeRatePercent(ratePercent, DefaultRatePercent)
	grossPaise := money.NonNegativePaise(money.ToPaise(inclusiveAmount))
	basePaise, gstPaise := SplitInclusivePaise(grossPaise, rate)
	return Breakdown{
		RatePercent:   rate,
		GrossAmount:   money.FromPaise(grossPaise),
		TaxableAmount: money.FromPaise(basePaise),
		GstAmount:     money.FromPaise(gstPaise),
	}
}

// FromExclusive calculates GST to add on top of a GST-exclusive (base)
// rupee amount.
func FromExclusive(taxableAmount, ratePercent float64) float64 {
	rate := NormalizeRatePercent(ratePercent, DefaultRatePercent)
	if rate <= 0 {
		return 0
	}
	basePaise := money.NonNegativePaise(money.ToPaise(taxableAmount))
	gstPaise := money.Paise(math.Round(float64(basePaise) * rate / 100))
	return money.FromPaise(gstPaise)
}

// PercentageDiscount calculates a percent discount on a rupee amount using
// paise rounding. Non-positive or invalid percentages yield zero.
func PercentageDiscount(amount, percent float64) float64 {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 {
		return 0
	}
	amountPaise := money.NonNegativePaise(money.ToPaise(amount))
	discountPaise := money.Paise(math.Round(float64(amountPaise) * percent / 100))
	return money.FromPaise(discountPaise)
}

// TaxBreakup is a display-only decomposition of the total tax for invoice
// and checkout summary labels. The payable tax value is unchanged.
type TaxBreakup struct {
	IGST float64 `json:"igst"`
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
}

// DisplayTaxBreakup splits the total tax into IGST (inter-state) or
// CGST+SGST (intra-state). The intra-state halves carry the rounding
// remainder on SGST so the parts always sum exactly to the total.
func DisplayTaxBreakup(taxAmount float64, isRajasthan bool) TaxBreakup {
	total := money.Clamp2(taxAmount)
	if !isRajasthan {
		return TaxBreakup{IGST: total}
	}
	cgst := money.Round2(total / 2)
	sgst := money.Clamp2(total - cgst)
	return TaxBreakup{CGST: cgst, SGST: sgst}
}
