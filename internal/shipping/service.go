package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/buyonegram/backend-bog/internal/settings"
)

const displayMetricsCacheKey = "shipping:display_metrics"

// DefaultMetricsTTL is how long derived display metrics stay cached.
const DefaultMetricsTTL = 5 * time.Minute

// shippingSettings is the shape of the admin-managed shipping document.
// Several historical chart keys are accepted; the first present wins.
type shippingSettings struct {
	MarkupPercent     float64        `json:"markupPercent"`
	DistanceRateChart map[string]any `json:"distanceRateChart"`
	DistanceCharges   map[string]any `json:"distanceCharges"`
	ShippingRateChart map[string]any `json:"shippingRateChart"`
	ZoneRates         map[string]any `json:"zoneRates"`
	Rates             map[string]any `json:"rates"`
}

func (s shippingSettings) chart() map[string]any {
	for _, candidate := range []map[string]any{
		s.DistanceRateChart, s.DistanceCharges, s.ShippingRateChart, s.ZoneRates, s.Rates,
	} {
		if len(candidate) > 0 {
			return candidate
		}
	}
	return nil
}

// Service derives display metrics from the configured rate chart, caching
// the result in redis.
type Service struct {
	Settings settings.Store
	Cache    *redis.Client
	TTL      time.Duration
	// Markup is the deployment-level markup fallback used when the settings
	// document carries none. Zero falls through to DefaultMarkupPercent.
	Markup float64
	Log    zerolog.Logger
}

// NewService constructs a Service with the default metrics TTL.
func NewService(store settings.Store, cache *redis.Client, log zerolog.Logger) *Service {
	return &Service{Settings: store, Cache: cache, TTL: DefaultMetricsTTL, Log: log}
}

// DisplayMetrics returns the current display metrics, served from cache
// when fresh. Settings failures degrade to the default chart; the metrics
// endpoint never errors for a cosmetic value.
func (s *Service) DisplayMetrics(ctx context.Context) DisplayMetrics {
	if cached, ok := s.cachedMetrics(ctx); ok {
		return cached
	}

	cfg := s.loadSettings(ctx)
	chart := cfg.chart()
	if chart == nil {
		chart = chartToAny(DefaultRateChart())
	}
	markup := cfg.MarkupPercent
	if markup <= 0 {
		markup = s.Markup
	}
	metrics := MetricsFromChart(chart, markup)

	s.storeMetrics(ctx, metrics)
	return metrics
}

func (s *Service) loadSettings(ctx context.Context) shippingSettings {
	var cfg shippingSettings
	if s.Settings == nil {
		return cfg
	}
	if err := settings.Decode(ctx, s.Settings, settings.KeyShippingSettings, &cfg); err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			s.Log.Warn().Err(err).Msg("shipping settings unavailable, using default rate chart")
		}
		return shippingSettings{}
	}
	return cfg
}

func (s *Service) cachedMetrics(ctx context.Context) (DisplayMetrics, bool) {
	if s.Cache == nil {
		return DisplayMetrics{}, false
	}
	data, err := s.Cache.Get(ctx, displayMetricsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.Log.Debug().Err(err).Msg("display metrics cache read failed")
		}
		return DisplayMetrics{}, false
	}
	var metrics DisplayMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return DisplayMetrics{}, false
	}
	return metrics, true
}

func (s *Service) storeMetrics(ctx context.Context, metrics DisplayMetrics) {
	if s.Cache == nil {
		return
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultMetricsTTL
	}
	data, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, displayMetricsCacheKey, data, ttl).Err(); err != nil {
		s.Log.Debug().Err(err).Msg("display metrics cache write failed")
	}
}

func chartToAny(chart RateChart) map[string]any {
	out := make(map[string]any, len(chart))
	for zone, rate := range chart {
		out[zone] = map[string]any{"base500": rate.Base500, "add500": rate.Add500}
	}
	return out
}
