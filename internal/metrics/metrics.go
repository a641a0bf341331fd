// Package metrics exposes prometheus collectors for the wheel and the wizard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "spinwheel"

	labelCode = "code"
	labelFrom = "from"
	labelTo   = "to"
	labelStep = "step"
)

var (
	spins            = newCounter("spins_total", "Spins started")
	awardFailures    = newCounter("award_record_failures_total", "Awards that could not be written to the ledger")
	prizesAwarded    = newCounterVec("prizes_awarded_total", "Settled spins per prize code", labelCode)
	phaseTransitions = newCounterVec("phase_transitions_total", "Wheel phase transitions", labelFrom, labelTo)
	stepsReached     = newCounterVec("wizard_steps_total", "Wizard steps entered", labelStep)
	activeSessions   = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Wizard sessions currently held in memory",
	})
)

func newCounter(name, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

// ObserveTransition counts a wheel phase change; a move to "anticipating" is a new spin.
func ObserveTransition(from, to string) {
	phaseTransitions.With(prometheus.Labels{labelFrom: from, labelTo: to}).Inc()
	if to == "anticipating" {
		spins.Inc()
	}
}

// ObserveAward counts a revealed prize.
func ObserveAward(code string) {
	prizesAwarded.With(prometheus.Labels{labelCode: code}).Inc()
}

// AwardRecordFailed counts a ledger write failure.
func AwardRecordFailed() {
	awardFailures.Inc()
}

// StepReached counts a wizard step entry.
func StepReached(step string) {
	stepsReached.With(prometheus.Labels{labelStep: step}).Inc()
}

// SessionOpened and SessionClosed track live wizard sessions.
func SessionOpened() { activeSessions.Inc() }

func SessionClosed() { activeSessions.Dec() }
