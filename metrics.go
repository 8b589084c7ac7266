package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry  *prometheus.Registry
	workflows *prometheus.CounterVec
	cleanups  *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "workflow_results_total",
			Help:      "Admin workflow invocations by operation and outcome.",
		}, []string{"op", "outcome"}),
		cleanups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "media_cleanup_total",
			Help:      "Background asset removals by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Name:      "read_cache_total",
			Help:      "Public read cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.workflows, m.cleanups, m.cacheHits)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
