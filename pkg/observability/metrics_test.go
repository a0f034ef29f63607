package observability_test

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/observability"
)

// counterValue sums the samples of a counter family whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics_CountsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(metrics.Hooks()))
	require.True(t, e.Choose(0))  // hub
	require.True(t, e.Choose(1))  // tower, locks
	require.True(t, e.Choose(0))  // burnout ending
	require.False(t, e.Choose(0)) // endings have no choices

	assert.Equal(t, 3.0, counterValue(t, reg, "persephone_choices_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "persephone_node_visits_total", map[string]string{"node_id": "hub", "via": "choice"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "persephone_lock_ins_total", map[string]string{"node_id": "tower"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "persephone_endings_total", map[string]string{"node_id": "burnout"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "persephone_diagnostics_total", map[string]string{"kind": "invalid_choice"}))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	first.Hooks().OnChoice(&domain.ChoiceEvent{NodeID: "hub"})
	second.Hooks().OnChoice(&domain.ChoiceEvent{NodeID: "hub"})

	assert.Equal(t, 2.0, counterValue(t, reg, "persephone_choices_total", nil))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(metrics.Hooks())).Choose(0)

	rec := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `persephone_choices_total{node_id="intro"} 1`)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LoggingHooks(logging.NewWithWriter(&buf, slog.LevelInfo))

	e := runtime.NewEngine(testutils.NeonFixture(t), runtime.WithLifecycleHooks(hooks))
	require.True(t, e.Choose(0))

	assert.Contains(t, buf.String(), "msg=choice")
	assert.Contains(t, buf.String(), "msg=node_enter node_id=hub from=intro via=choice")
}
