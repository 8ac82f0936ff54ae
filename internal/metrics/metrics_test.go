package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(InstrumentHandler)
	r.HandleFunc("/plans/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/plans/{id}", "418"))
	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/plans/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(admissionRejections.WithLabelValues("project"))
	RecordAdmissionRejection("project")
	assert.Equal(t, 1.0, testutil.ToFloat64(admissionRejections.WithLabelValues("project"))-before)

	before = testutil.ToFloat64(reconcileRepairs.WithLabelValues("planners"))
	RecordReconcileRepairs("planners", 3)
	RecordReconcileRepairs("planners", 0)
	assert.Equal(t, 3.0, testutil.ToFloat64(reconcileRepairs.WithLabelValues("planners"))-before)

	before = testutil.ToFloat64(jobRuns.WithLabelValues("unknown", "false"))
	RecordJobRun("", 0, false)
	assert.Equal(t, 1.0, testutil.ToFloat64(jobRuns.WithLabelValues("unknown", "false"))-before)
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordLedgerClamp("planner_completed")
	RecordJobRun("reconcile", 20*time.Millisecond, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "study_planner_ledger_clamped_adjustments_total"))
	assert.True(t, strings.Contains(body, `study_planner_scheduler_job_runs_total{job="reconcile",success="true"}`))
}
