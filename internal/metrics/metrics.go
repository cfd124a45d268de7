package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityweather_upstream_requests_total",
		Help: "Outbound requests by endpoint",
	}, []string{"endpoint"})
	UpstreamFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityweather_upstream_fail_total",
		Help: "Outbound request failures by endpoint",
	}, []string{"endpoint"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cityweather_upstream_duration_ms",
		Help:    "Outbound request duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2500, 5000},
	}, []string{"endpoint"})
	SearchCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityweather_search_cache_hits_total",
		Help: "City searches answered from the in-process result cache",
	})
	StaleResponsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityweather_stale_responses_total",
		Help: "Responses dropped because a newer request superseded them",
	}, []string{"kind"})
	LastCityLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityweather_last_city_loads_total",
		Help: "Last-city cache reads by outcome (hit, miss, expired, invalid)",
	}, []string{"outcome"})
	LastCityWriteFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityweather_last_city_write_fail_total",
		Help: "Failed last-city cache writes",
	})
)

func init() {
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamFailTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(SearchCacheHitsTotal)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(LastCityLoadsTotal)
	prometheus.MustRegister(LastCityWriteFailTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
