package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xdsai/persephone/pkg/domain"
)

// Metrics counts narrative events.
type Metrics struct {
	nodeVisits  *prometheus.CounterVec
	choices     *prometheus.CounterVec
	endings     *prometheus.CounterVec
	lockIns     *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "persephone_node_visits_total",
			Help: "Total number of node entries.",
		}, []string{"node_id", "via"}),
		choices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "persephone_choices_total",
			Help: "Total number of choices taken.",
		}, []string{"node_id"}),
		endings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "persephone_endings_total",
			Help: "Total number of runs reaching an ending node.",
		}, []string{"node_id"}),
		lockIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "persephone_lock_ins_total",
			Help: "Total number of runs passing a point of no return.",
		}, []string{"node_id"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "persephone_diagnostics_total",
			Help: "Total number of non-fatal diagnostics by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []**prometheus.CounterVec{&m.nodeVisits, &m.choices, &m.endings, &m.lockIns, &m.diagnostics} {
		if err := reg.Register(*c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.NodeID, e.Via).Inc()
			if e.Ending {
				m.endings.WithLabelValues(e.NodeID).Inc()
			}
		},
		OnChoice: func(e *domain.ChoiceEvent) {
			m.choices.WithLabelValues(e.NodeID).Inc()
		},
		OnLockIn: func(e *domain.LockEvent) {
			m.lockIns.WithLabelValues(e.NodeID).Inc()
		},
		OnDiagnostic: func(d *domain.Diagnostic) {
			m.diagnostics.WithLabelValues(string(d.Kind)).Inc()
		},
	}
}

// Handler exposes the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
