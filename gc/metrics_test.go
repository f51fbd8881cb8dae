package gc

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))

	m.Observe(&ReapStats{FilesRemoved: 3, DirsRemoved: 1}, 0.5, nil)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestMetricsObserveCountsScanError(t *testing.T) {
	m := NewMetrics()
	m.Observe(nil, 0, assertError{})

	var metric dto.Metric
	require.NoError(t, m.ScanErrorsTotal.Write(&metric))
	assert.Equal(t, float64(1), metric.GetCounter().GetValue())
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
