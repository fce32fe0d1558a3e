package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MovementRecorded("entry")
	m.MovementRecorded("entry")
	m.MovementRejected("exit", "insufficient_stock")
	m.ObserveRequest("GET", 0, 20*time.Millisecond)
	m.BackupFinished(nil)
	m.BackupFinished(errors.New("disk full"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "almox_stock_movements_total", map[string]string{"kind": "entry"})
	require.NoError(t, err)
	require.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "almox_stock_movement_rejections_total", map[string]string{"kind": "exit", "reason": "insufficient_stock"})
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "almox_http_requests_total", map[string]string{"method": "GET", "status": "200"})
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "almox_backups_total", map[string]string{"outcome": "failure"})
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.MovementRecorded("entry")
	m.MovementRejected("exit", "")
	m.ObserveRequest("GET", 500, time.Second)
	m.BackupFinished(nil)

	empty := New(nil)
	empty.MovementRecorded("entry")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q has no series %v", name, labels)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if pair.GetValue() != want {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}
