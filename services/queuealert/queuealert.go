// Package queuealert decides when an operator should be alerted about queue
// backlog: it compares the live queue depth of a server against its active
// source population and produces a tiered verdict.
//
// Evaluation is stateless by design: no debouncing, no hysteresis, no
// suppression window. Consecutive calls are independent and may flip tiers.
package queuealert

import (
	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
)

// Severity tier of a queue backlog alert, only meaningful when HasAlert is
// set.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityNone     Severity = ""
)

// State is the verdict of one evaluation for one server. It is recomputed on
// every call and never persisted; no history is retained across calls.
type State struct {
	QueuedCount       int      `json:"queuedCount"`
	ActiveSourceCount int      `json:"activeSourceCount"`
	Ratio             float64  `json:"ratio"`
	HasAlert          bool     `json:"hasAlert"`
	Severity          Severity `json:"severity,omitempty"`
}

// FailureLevel grades the failed-job count of a recent window.
type FailureLevel string

const (
	FailureOK      FailureLevel = "OK"
	FailureWarning FailureLevel = "WARNING"
	FailureAlert   FailureLevel = "ALERT"
)

// Evaluator evaluates alert conditions with configurable thresholds. The
// zero-value thresholds of New match the documented contract.
type Evaluator struct {
	log logger.Logger

	criticalRatio float64
	highRatio     float64
	mediumRatio   float64

	failureWarnCount  int
	failureAlertCount int
}

// New creates an evaluator, reading threshold overrides from config.
func New(conf *config.Config, log logger.Logger) *Evaluator {
	return &Evaluator{
		log:               log.Child("queuealert"),
		criticalRatio:     conf.GetFloat64("QueueAlert.criticalRatio", 3.0),
		highRatio:         conf.GetFloat64("QueueAlert.highRatio", 2.0),
		mediumRatio:       conf.GetFloat64("QueueAlert.mediumRatio", 1.5),
		failureWarnCount:  conf.GetInt("QueueAlert.failureWarnCount", 1),
		failureAlertCount: conf.GetInt("QueueAlert.failureAlertCount", 3),
	}
}

// Evaluate compares queue depth to the active source population. An alert
// fires only when the queue outnumbers a non-empty source population: with
// zero known active sources the ratio is meaningless and the alert is
// suppressed. The ratio itself is always computed for display.
func (e *Evaluator) Evaluate(queuedCount, activeSourceCount int) State {
	state := State{
		QueuedCount:       queuedCount,
		ActiveSourceCount: activeSourceCount,
		Ratio:             float64(queuedCount) / float64(max(activeSourceCount, 1)),
		HasAlert:          queuedCount > activeSourceCount && activeSourceCount > 0,
	}
	if !state.HasAlert {
		return state
	}

	// Highest tier first; lower bounds are inclusive so exactly one applies.
	switch {
	case state.Ratio >= e.criticalRatio:
		state.Severity = SeverityCritical
	case state.Ratio >= e.highRatio:
		state.Severity = SeverityHigh
	case state.Ratio >= e.mediumRatio:
		state.Severity = SeverityMedium
	default:
		state.Severity = SeverityLow
	}
	if state.Severity == SeverityCritical {
		e.log.Warnf("queue depth %d outnumbers %d active sources (ratio %.2f)",
			queuedCount, activeSourceCount, state.Ratio)
	}
	return state
}

// EvaluateFailures grades a window's failed-job count.
func (e *Evaluator) EvaluateFailures(failedCount int) FailureLevel {
	switch {
	case failedCount >= e.failureAlertCount:
		return FailureAlert
	case failedCount >= e.failureWarnCount:
		return FailureWarning
	default:
		return FailureOK
	}
}

// Evaluate is the package-level evaluation with the contract thresholds.
func Evaluate(queuedCount, activeSourceCount int) State {
	return defaultEvaluator.Evaluate(queuedCount, activeSourceCount)
}

var defaultEvaluator = &Evaluator{
	log:               logger.NOP,
	criticalRatio:     3.0,
	highRatio:         2.0,
	mediumRatio:       1.5,
	failureWarnCount:  1,
	failureAlertCount: 3,
}
