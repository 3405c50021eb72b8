package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("classify", 15*time.Millisecond)
	pr.IncStageResult("classify", ResultSuccess)
	pr.ObserveRunDuration(2 * time.Second)
	pr.IncRunOutcome(RunOutcomeSuccess)
	pr.ObserveTargetDuration("Core", time.Second, true)
	pr.IncClassifiedTarget("sourceLanguage")
	pr.IncClassifiedTarget("sourceLanguage")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				names[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.Equal(t, 2.0, names["pkgdocs_classified_targets_total"])
	require.Equal(t, 1.0, names["pkgdocs_run_outcomes_total"])
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("x", time.Second)
	pr.IncRunOutcome(RunOutcomeFailed)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome(RunOutcomeSkipped)

	path := filepath.Join(t.TempDir(), "pkgdocs.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `pkgdocs_run_outcomes_total{outcome="skipped"} 1`)
}
