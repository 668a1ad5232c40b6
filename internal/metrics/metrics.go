// Package metrics exposes Prometheus instruments for the parking session lifecycle.
// Instruments are nil until Init runs, and every Observe helper is a no-op
// before that, so services and tests never need a registry.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pkordes/parking-meter/internal/domain"
)

const metricPrefix = "parking_"

// Result label values.
const (
	ResultSuccess      = "success"
	ResultConflict     = "conflict"
	ResultNotFound     = "not_found"
	ResultInvalidState = "invalid_state"
	ResultInvalidInput = "invalid_input"
	ResultError        = "error"
)

var (
	registerOnce sync.Once

	sessionsStarted *prometheus.CounterVec
	sessionsStopped *prometheus.CounterVec
	chargeTotal     prometheus.Counter
	sessionMinutes  prometheus.Histogram
)

// Init creates the instruments and registers them with reg.
// Only the first call has any effect.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		sessionsStarted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_started_total",
				Help: "Parking session start attempts by result",
			},
			[]string{"result"},
		)
		sessionsStopped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sessions_stopped_total",
				Help: "Parking session stop attempts by result",
			},
			[]string{"result"},
		)
		chargeTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "session_charge_total",
				Help: "Sum of settled session prices in the smallest currency unit",
			},
		)
		sessionMinutes = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "session_duration_minutes",
				Help:    "Billed minutes of settled sessions",
				Buckets: []float64{5, 15, 30, 60, 120, 240, 480, 1440},
			},
		)

		reg.MustRegister(sessionsStarted, sessionsStopped, chargeTotal, sessionMinutes)
	})
}

// Result maps an operation error to its label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, domain.ErrConflict):
		return ResultConflict
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return ResultInvalidState
	case errors.Is(err, domain.ErrValidation):
		return ResultInvalidInput
	default:
		return ResultError
	}
}

// ObserveStart counts one StartSession attempt.
func ObserveStart(err error) {
	if sessionsStarted != nil {
		sessionsStarted.WithLabelValues(Result(err)).Inc()
	}
}

// ObserveStop counts one StopSession attempt.
func ObserveStop(err error) {
	if sessionsStopped != nil {
		sessionsStopped.WithLabelValues(Result(err)).Inc()
	}
}

// ObserveSettlement records the billed minutes and price of a settled session.
func ObserveSettlement(minutes, price int64) {
	if chargeTotal != nil {
		chargeTotal.Add(float64(price))
	}
	if sessionMinutes != nil {
		sessionMinutes.Observe(float64(minutes))
	}
}
