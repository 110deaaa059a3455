package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes forecast engine counters. A nil *Recorder is a no-op so
// tests can skip metrics entirely.
type Recorder struct {
	providerCalls  *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	historyAppends *prometheus.CounterVec
	alerts         *prometheus.CounterVec
	priceFetches   *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		providerCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpulse_provider_calls_total",
				Help: "Forecast provider calls by asset and result",
			},
			[]string{"symbol", "result"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpulse_forecast_cache_lookups_total",
				Help: "Forecast cache lookups by asset and outcome",
			},
			[]string{"symbol", "outcome"},
		),
		historyAppends: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpulse_history_appends_total",
				Help: "History append attempts by asset and outcome",
			},
			[]string{"symbol", "outcome"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpulse_alerts_total",
				Help: "Alert dispatches by asset and result",
			},
			[]string{"symbol", "result"},
		),
		priceFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldpulse_price_fetches_total",
				Help: "Reference price fetches by source and result",
			},
			[]string{"source", "result"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goldpulse_last_price",
				Help: "Last reference price observed for an asset",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goldpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordProviderCall(symbol, result string) {
	if r == nil {
		return
	}
	r.providerCalls.WithLabelValues(symbol, result).Inc()
}

func (r *Recorder) RecordCacheLookup(symbol string, hit bool) {
	if r == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordHistoryAppend(symbol string, accepted bool) {
	if r == nil {
		return
	}
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.historyAppends.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordAlert(symbol, result string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(symbol, result).Inc()
}

func (r *Recorder) RecordPriceFetch(source, result string) {
	if r == nil {
		return
	}
	r.priceFetches.WithLabelValues(source, result).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(op).Observe(seconds)
}
