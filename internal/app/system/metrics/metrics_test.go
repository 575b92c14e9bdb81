package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.CapacityDecision("home_sliders", "accepted")
	m.CapacityActive("home_sliders", 3)
	m.TxnFallback()
	m.Upload("local", nil)
	m.MailSent(errors.New("boom"))
}

func TestHandlerExposesCapacityMetrics(t *testing.T) {
	m := metrics.New()
	m.CapacityDecision("daily_dakwah", "capacity_exceeded")
	m.CapacityDecision("daily_dakwah", "capacity_exceeded")
	m.CapacityActive("home_sliders", 4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `mttdash_capacity_decisions_total{outcome="capacity_exceeded",policy="daily_dakwah"} 2`), text)
	assert.True(t, strings.Contains(text, `mttdash_capacity_active{policy="home_sliders"} 4`), text)
}

func TestUploadOutcomeLabels(t *testing.T) {
	m := metrics.New()
	m.Upload("s3", nil)
	m.Upload("s3", errors.New("denied"))
	m.Upload("s3", errors.New("denied"))

	n, err := testutil.GatherAndCount(m.Registry, "mttdash_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
