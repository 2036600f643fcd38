package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDropped("note")
		m.RecordFetchFailure("notes")
		m.RecordStatusUpdate(nil)
	})
}

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordDropped("note")
	m.RecordDropped("note")
	m.RecordFetchFailure("tasks")
	m.RecordStatusUpdate(nil)
	m.RecordStatusUpdate(errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RecordsDropped.WithLabelValues("note")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchFailures.WithLabelValues("tasks")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StatusUpdates.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StatusUpdates.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordDropped("task")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dayboard_records_dropped_total{kind="task"} 1`)
}
