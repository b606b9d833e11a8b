package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRunning(t *testing.T) {
	SetRunning("database", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(ServiceRunning.WithLabelValues("database")))

	SetRunning("database", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(ServiceRunning.WithLabelValues("database")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "healthy", Outcome(true, "healthy", "unhealthy"))
	assert.Equal(t, "unhealthy", Outcome(false, "healthy", "unhealthy"))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	SignInsTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `molard_signins_total{outcome="success"}`)
}
