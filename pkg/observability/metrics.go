package observability

import (
	"context"

	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultViewLabel is the view label used for default view renders.
const DefaultViewLabel = "<default>"

// Metrics holds the Prometheus collectors fed by dispatch hooks.
type Metrics struct {
	Processes *prometheus.CounterVec
	Renders   *prometheus.CounterVec
	Forwards  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Processes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humdrum_process_calls_total",
				Help: "Process invocations by controller and outcome.",
			},
			[]string{"controller", "outcome"},
		),
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humdrum_renders_total",
				Help: "View renders by controller and view.",
			},
			[]string{"controller", "view", "status"},
		),
		Forwards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "humdrum_forwards_total",
				Help: "Forwards between controllers.",
			},
			[]string{"from", "to"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "humdrum_render_duration_seconds",
				Help:    "Duration of view renders.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"controller"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Processes, m.Renders, m.Forwards, m.Duration)
	}
	return m
}

// Hooks returns the hooks recording into m.
func (m *Metrics) Hooks() mvc.Hooks {
	return mvc.Hooks{
		OnProcess: func(ctx context.Context, e *mvc.ProcessEvent) {
			outcome := "continue"
			switch {
			case e.Err != nil:
				outcome = "error"
			case e.Matched:
				outcome = "matched"
			}
			m.Processes.WithLabelValues(e.Controller, outcome).Inc()
		},
		OnRender: func(ctx context.Context, e *mvc.RenderEvent) {
			view := e.View
			if e.Default {
				view = DefaultViewLabel
			}
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.Renders.WithLabelValues(e.Controller, view, status).Inc()
			m.Duration.WithLabelValues(e.Controller).Observe(e.Duration.Seconds())
		},
		OnForward: func(ctx context.Context, e *mvc.ForwardEvent) {
			m.Forwards.WithLabelValues(e.From, e.To).Inc()
		},
	}
}
