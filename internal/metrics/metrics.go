// Package metrics exposes Prometheus counters for authentication outcomes.
// Rejections are labelled with their internal reason here and in logs only;
// HTTP clients always see the same 401.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth groups the authentication counters.
type Auth struct {
	registry *prometheus.Registry

	Registrations *prometheus.CounterVec // result
	Logins        *prometheus.CounterVec // result
	Rejections    *prometheus.CounterVec // reason
}

// NewAuth registers the counters (plus Go and process collectors) on a
// fresh registry.
func NewAuth() *Auth {
	reg := prometheus.NewRegistry()
	m := &Auth{
		registry: reg,
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wilddict",
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wilddict",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wilddict",
			Subsystem: "auth",
			Name:      "token_rejections_total",
			Help:      "Bearer tokens rejected by the identity resolver, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.Registrations, m.Logins, m.Rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Auth) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
