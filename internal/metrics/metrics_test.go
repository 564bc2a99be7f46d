package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestObserveFetch(t *testing.T) {
	m := New()
	before := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("merchants_test", OutcomeFailure))

	m.ObserveFetch("merchants_test", errors.New("boom"), 10*time.Millisecond)
	m.ObserveFetch("merchants_test", nil, 10*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("merchants_test", OutcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetchesTotal.WithLabelValues("merchants_test", OutcomeSuccess)))
}

func TestObserveWorkflow(t *testing.T) {
	m := New()

	m.ObserveWorkflow("upload_test", nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.WorkflowsTotal.WithLabelValues("upload_test", OutcomeSuccess)))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	New().ObserveWorkflow("reset_test", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dashboard_workflows_total")
}
