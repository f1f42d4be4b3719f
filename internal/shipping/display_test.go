package shipping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayChargeUsesConfiguredValues(t *testing.T) {
	metrics := DisplayMetrics{
		MarkupPercent:            30,
		RajasthanDisplayCharge:   31.2,
		OtherStatesDisplayCharge: 65,
	}
	require.Equal(t, 31.2, DisplayCharge(true, metrics))
	require.Equal(t, 65.0, DisplayCharge(false, metrics))
}

func TestDisplayChargeAppliesMarkupToBase(t *testing.T) {
	metrics := DisplayMetrics{MarkupPercent: 30, RajasthanBaseCharge: 24, OtherStatesBaseCharge: 50}
	require.Equal(t, 31.2, DisplayCharge(true, metrics))
	require.Equal(t, 65.0, DisplayCharge(false, metrics))
}

func TestDisplayChargeFallsBackToHardcodedDefaults(t *testing.T) {
	require.Equal(t, 36.0, DisplayCharge(true, DisplayMetrics{}))
	require.Equal(t, 68.0, DisplayCharge(false, DisplayMetrics{}))
}

func TestMetricsFromChart(t *testing.T) {
	chart := map[string]any{
		"A":         map[string]any{"base500": 24.0, "add500": 14.0},
		"B":         map[string]any{"base500": 42.0, "add500": 26.0},
		"rajasthan": map[string]any{"base500": 20.0, "add500": 12.0},
	}
	m := MetricsFromChart(chart, 0)
	require.Equal(t, DefaultMarkupPercent, m.MarkupPercent)
	require.Equal(t, 20.0, m.RajasthanBaseCharge)
	require.Equal(t, 42.0, m.OtherStatesBaseCharge)
	require.Equal(t, 26.0, m.RajasthanDisplayCharge)
	require.Equal(t, 54.6, m.OtherStatesDisplayCharge)
}

func TestMetricsFromChartFallsBackToZoneA(t *testing.T) {
	chart := map[string]any{
		"A": map[string]any{"base500": 24.0, "add500": 14.0},
		"B": map[string]any{"base500": 42.0, "add500": 26.0},
	}
	m := MetricsFromChart(chart, 30)
	require.Equal(t, 24.0, m.RajasthanBaseCharge)
	require.Equal(t, 31.2, m.RajasthanDisplayCharge)
}
