package engine

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/observability"
)

const metricsNamespace = "goap"

// Plan outcomes used as the "outcome" label of PlansTotal.
const (
	OutcomeFound     = "found"
	OutcomeEmpty     = "empty"
	OutcomeTruncated = "truncated"
	OutcomeCanceled  = "canceled"
)

// Metrics is an observer that turns plan.complete events into Prometheus
// series. Other events are ignored.
type Metrics struct {
	// PlansTotal counts finished searches by outcome.
	PlansTotal *prometheus.CounterVec

	// Nodes is the search tree size per plan.
	Nodes prometheus.Histogram

	// DurationSeconds is the wall time per plan.
	DurationSeconds prometheus.Histogram

	// Length is the number of actions in each returned plan.
	Length prometheus.Histogram
}

// NewMetrics registers the planner metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PlansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "plans_total",
			Help:      "Planning runs by outcome (found, empty, truncated, canceled)",
		}, []string{"outcome"}),
		Nodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "plan_nodes",
			Help:      "Search tree nodes created per planning run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12), // 1 to ~4M
		}),
		DurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "plan_duration_seconds",
			Help:      "Planning run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 12), // 10us to ~40s
		}),
		Length: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "plan_length",
			Help:      "Actions in each returned plan",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

func (m *Metrics) OnEvent(_ context.Context, event observability.Event) {
	if event.Type != goap.EventPlanComplete {
		return
	}

	m.PlansTotal.WithLabelValues(outcomeOf(event)).Inc()

	if n, ok := event.Int("nodes"); ok {
		m.Nodes.Observe(float64(n))
	}
	if d, ok := event.Duration("duration"); ok {
		m.DurationSeconds.Observe(d.Seconds())
	}
	if n, ok := event.Int("length"); ok {
		m.Length.Observe(float64(n))
	}
}

func outcomeOf(event observability.Event) string {
	switch {
	case event.Text("stopped") == "canceled":
		return OutcomeCanceled
	case event.Bool("truncated"):
		return OutcomeTruncated
	case event.Bool("found"):
		return OutcomeFound
	default:
		return OutcomeEmpty
	}
}
