package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordEvaluation("bullish", "moderate")
	r.RecordEvaluation("bullish", "moderate")
	r.RecordStyleSignal("value", "bearish")
	r.RecordFetchError("news")
	r.RecordLatency("evaluate", 0.12)
	r.RecordHTTPRequest("/api/evaluate/{code}", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.evaluations.WithLabelValues("bullish", "moderate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.styleSignals.WithLabelValues("value", "bearish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("news")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/evaluate/{code}", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNewWithRegistry_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegistry(prometheus.NewRegistry())
		NewWithRegistry(prometheus.NewRegistry())
	})
}
