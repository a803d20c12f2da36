package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the forecasting engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ForecastsGenerated *prometheus.CounterVec
	ProductsSkipped    *prometheus.CounterVec
	ForecastFailures   *prometheus.CounterVec
	RestockPoints      *prometheus.CounterVec
	ForecastDuration   *prometheus.HistogramVec
}

// New creates all metrics and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ForecastsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_products_forecast_total",
				Help: "Number of product forecasts produced",
			},
			[]string{"period_type"},
		),
		ProductsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_products_skipped_total",
				Help: "Number of products skipped for insufficient history",
			},
			[]string{"period_type"},
		),
		ForecastFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_failures_total",
				Help: "Number of forecast runs that returned an error",
			},
			[]string{"reason"},
		),
		RestockPoints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_restock_points_total",
				Help: "Number of restock points recommended",
			},
			[]string{"urgency"},
		),
		ForecastDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_run_duration_seconds",
				Help:    "Duration of forecast runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"operation"},
		),
	}
}

// ObserveForecast records a completed forecast run
func (m *Metrics) ObserveForecast(periodType string, forecasted, skipped int) {
	if m == nil {
		return
	}
	m.ForecastsGenerated.WithLabelValues(periodType).Add(float64(forecasted))
	m.ProductsSkipped.WithLabelValues(periodType).Add(float64(skipped))
}

// ObserveFailure records a failed forecast run
func (m *Metrics) ObserveFailure(reason string) {
	if m == nil {
		return
	}
	m.ForecastFailures.WithLabelValues(reason).Inc()
}

// ObserveRestockPoint records one recommended restock point
func (m *Metrics) ObserveRestockPoint(urgency string) {
	if m == nil {
		return
	}
	m.RestockPoints.WithLabelValues(urgency).Inc()
}

// ObserveDuration records how long an operation took since start
func (m *Metrics) ObserveDuration(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.ForecastDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
