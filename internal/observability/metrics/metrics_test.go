package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/minboot/ats-web/internal/errors"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveBackendRequest("jobs.open", http.MethodGet, 200, 20*time.Millisecond, nil)
	c.ObserveBackendRequest("auth.login", http.MethodPost, 401, time.Millisecond, apperrors.Unauthorized("no"))
	c.RecordGuardDecision("deny")
	c.RecordLogin(ResultFailure)
	c.SetVisitors(3)
	c.RecordStaleDiscarded()

	assert.InDelta(t, 1, testutil.ToFloat64(c.backendRequests.WithLabelValues("auth.login", "POST", "401", "unauthorized")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.guardDecisions.WithLabelValues("deny")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.visitors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.staleDiscarded), 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "atsweb_logins_total"))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveBackendRequest("x", "GET", 0, 0, errors.New("x"))
		c.RecordGuardDecision("render")
		c.RecordLogin(ResultSuccess)
		c.SetVisitors(1)
		c.RecordStaleDiscarded()
	})
}
