// Package metrics provides Prometheus metrics for playback sessions.
// Labels stay low-cardinality: no URIs or session ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Session creation failure reasons.
const (
	ReasonSource  = "source"
	ReasonEngine  = "engine"
	ReasonSurface = "surface"
	ReasonPrepare = "prepare"
)

var (
	// EventsEmitted counts normalized events by kind.
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidctl_events_emitted_total",
		Help: "Total number of normalized playback events, by event kind.",
	}, []string{"event"})

	// SessionsCreated counts sessions that reached prepare, by source type.
	SessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidctl_sessions_created_total",
		Help: "Total number of playback sessions created, by source type.",
	}, []string{"source_type"})

	// SessionCreateFailures counts sessions that failed to start, by reason.
	SessionCreateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidctl_session_create_failures_total",
		Help: "Total number of failed session creations, by reason.",
	}, []string{"reason"})

	EngineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidctl_engine_errors_total",
		Help: "Total number of errors reported by playback engines.",
	})

	// ActiveSessions tracks sessions created and not yet disposed.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidctl_active_sessions",
		Help: "Current number of playback sessions.",
	})
)

// GetActiveSessions returns the current value of the gauge.
func GetActiveSessions() float64 {
	var m dto.Metric
	if err := ActiveSessions.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
