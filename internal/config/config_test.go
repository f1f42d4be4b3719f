package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "postgres://localhost/bog",
		"REDIS_URL":        "redis://localhost:6379",
		"ADMIN_JWT_SECRET": "test-secret",
	})
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 5.0, cfg.GSTRatePercent)
	require.Equal(t, 30.0, cfg.DisplayMarkupPercent)
	require.Equal(t, 5*time.Minute, cfg.DisplayMetricsTTL)
	require.Equal(t, 24*time.Hour, cfg.WebhookReplayTTL)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":                    "postgres://localhost/bog",
		"REDIS_URL":                       "redis://localhost:6379",
		"ADMIN_JWT_SECRET":                "test-secret",
		"PORT":                            "9000",
		"GST_RATE_PERCENT":                "12",
		"SHIPPING_DISPLAY_METRICS_TTL":    "90s",
		"SHIPPING_DISPLAY_MARKUP_PERCENT": "25",
	})
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddr())
	require.Equal(t, 12.0, cfg.GSTRatePercent)
	require.Equal(t, 25.0, cfg.DisplayMarkupPercent)
	require.Equal(t, 90*time.Second, cfg.DisplayMetricsTTL)
}

func TestLoadRequiredFields(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":     "",
		"REDIS_URL":        "redis://localhost:6379",
		"ADMIN_JWT_SECRET": "secret",
	})
	require.Error(t, err)
}
