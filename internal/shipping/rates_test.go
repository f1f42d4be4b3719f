package shipping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePincode(t *testing.T) {
	require.True(t, ValidatePincode("302017"))
	require.True(t, ValidatePincode(" 190001 "))
	require.False(t, ValidatePincode("30201"))
	require.False(t, ValidatePincode("3020170"))
	require.False(t, ValidatePincode("3020a7"))
	require.False(t, ValidatePincode(""))
}

func TestDetectZone(t *testing.T) {
	require.Equal(t, ZoneA, DetectZone("302017"))
	require.Equal(t, ZoneC, DetectZone("190001")) // J&K
	require.Equal(t, ZoneC, DetectZone("682001")) // Kerala
	require.Equal(t, ZoneC, DetectZone("793001")) // Meghalaya
	require.Equal(t, ZoneB, DetectZone("110001")) // Delhi
	require.Equal(t, ZoneB, DetectZone("400001")) // Mumbai
}

func TestWeightSlab(t *testing.T) {
	require.Equal(t, int64(500), WeightSlab(0))
	require.Equal(t, int64(500), WeightSlab(1))
	require.Equal(t, int64(500), WeightSlab(500))
	require.Equal(t, int64(1000), WeightSlab(501))
	require.Equal(t, int64(1500), WeightSlab(1400))
}

func TestQuoteForIsAlwaysFree(t *testing.T) {
	q := QuoteFor("302017", 1200)
	require.Equal(t, ZoneA, q.Zone)
	require.Equal(t, int64(1500), q.WeightGrams)
	require.Zero(t, q.Charge)
	require.Zero(t, q.Amount)

	q = QuoteFor("110001", 300)
	require.Equal(t, ZoneB, q.Zone)
	require.Equal(t, int64(500), q.WeightGrams)
	require.Zero(t, q.Charge)
}

func TestMaxConfiguredCharge(t *testing.T) {
	chart := map[string]any{
		"A": map[string]any{"base500": 24.0, "add500": 14.0},
		"B": map[string]any{"base500": 42.0, "add500": 26.0},
		"C": []any{50.0, 30.0},
	}
	require.Equal(t, 50.0, maxConfiguredCharge(chart))
	require.Zero(t, maxConfiguredCharge(map[string]any{}))
}
