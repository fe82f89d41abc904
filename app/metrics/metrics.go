// Package metrics exposes prometheus counters for the authentication flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webauth"

// Outcome labels.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultCreated            = "created"
	ResultDuplicate          = "duplicate"
	ResultIssued             = "issued"
	ResultUnknownEmail       = "unknown_email"
	ResultConflict           = "conflict"
	ResultCompleted          = "completed"
	ResultInvalidToken       = "invalid_token"
	ResultSent               = "sent"
	ResultFailed             = "failed"
)

// Metrics holds the counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	logins        *prometheus.CounterVec
	signups       *prometheus.CounterVec
	resetRequests *prometheus.CounterVec
	resets        *prometheus.CounterVec
	mails         *prometheus.CounterVec
}

// New registers the counters (plus Go and process collectors) on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		signups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by result.",
		}, []string{"result"}),
		resetRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_requests_total",
			Help:      "Password reset requests by result.",
		}, []string{"result"}),
		resets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Password reset confirmations by result.",
		}, []string{"result"}),
		mails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_deliveries_total",
			Help:      "Outbound transactional emails by kind and result.",
		}, []string{"kind", "result"}),
	}
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Signup(result string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(result).Inc()
}

func (m *Metrics) ResetRequest(result string) {
	if m == nil {
		return
	}
	m.resetRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) Reset(result string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(result).Inc()
}

func (m *Metrics) Mail(kind, result string) {
	if m == nil {
		return
	}
	m.mails.WithLabelValues(kind, result).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
