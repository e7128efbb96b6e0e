// Package metrics exposes the portal's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// registrations counts registration attempts by outcome.
	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_registrations_total",
		Help: "Total number of registration attempts",
	}, []string{"outcome"})

	// logins counts login attempts by outcome.
	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_logins_total",
		Help: "Total number of login attempts",
	}, []string{"outcome"})

	// passwordResets counts password reset steps by stage and outcome.
	passwordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_password_resets_total",
		Help: "Total number of password reset steps",
	}, []string{"stage", "outcome"})

	// accountCount tracks the number of registered accounts; set from the
	// store at startup, incremented on successful registrations.
	accountCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_accounts",
		Help: "Number of registered accounts",
	})
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

func RecordRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

func RecordLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

func RecordPasswordReset(stage string, outcome string) {
	passwordResets.WithLabelValues(stage, outcome).Inc()
}

func SetAccountCount(count int64) {
	accountCount.Set(float64(count))
}

func IncAccountCount() {
	accountCount.Inc()
}
