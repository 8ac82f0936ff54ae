package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-planner/internal/repository"
	"study-planner/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    service.Code    `json:"code"`
}

func newTestServer(t *testing.T, limiter *RateLimiter) http.Handler {
	t.Helper()
	log := zap.NewNop()
	dsn := filepath.Join(t.TempDir(), "api.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := repository.NewDB(dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	srv := NewServer(Services{
		Users:    service.NewUserService(store, log),
		Plans:    service.NewPlanService(store, log),
		Planners: service.NewPlannerService(store, log),
		Projects: service.NewProjectService(store, log),
		Studies:  service.NewStudyService(store, log),
		Posts:    service.NewPostService(store, log),
	}, limiter, log)
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, path string, userID uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.Header.Set(headerUserID, fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createUser(t *testing.T, h http.Handler, name string) uint {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/users", 0, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user userResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user.ID
}

func createPlan(t *testing.T, h http.Handler, userID uint, name, date string) planResponse {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/plans", userID, map[string]any{"name": name, "date": date})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan planResponse
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	return plan
}

func TestPlanRoundTrip(t *testing.T) {
	h := newTestServer(t, nil)
	userID := createUser(t, h, "ann")

	created := createPlan(t, h, userID, "Read", "2024-03-10")
	assert.Equal(t, "2024-03-10", created.Date)
	assert.Equal(t, userID, created.UserID)
	assert.False(t, created.IsComplete)

	rec, env := do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/plans/%d", created.ID), 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	var got planResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created, got)

	rec, env = do(t, h, http.MethodGet, "/api/v1/plans?date=2024-03-10", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []planResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	rec, env = do(t, h, http.MethodGet, "/api/v1/calendars/2024/3", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cal calendarResponse
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	require.Len(t, cal.Planners, 1)
	assert.Equal(t, "2024-03-10", cal.Planners[0].Date)
}

func TestPlannerRoutes(t *testing.T) {
	h := newTestServer(t, nil)
	userID := createUser(t, h, "ann")

	rec, env := do(t, h, http.MethodGet, "/api/v1/planners/2024-03-10", userID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/planners/2024-03-10", userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var first plannerResponse
	require.NoError(t, json.Unmarshal(env.Data, &first))

	rec, env = do(t, h, http.MethodPut, "/api/v1/planners/2024-03-10/memo", userID, map[string]string{"memo": "exam week"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated plannerResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "exam week", updated.Memo)

	rec, env = do(t, h, http.MethodPut, "/api/v1/planners/2024-03-10/dday", userID, map[string]string{"dday": "2024-03-20"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "2024-03-20", updated.DDay)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/planners/10-03-2024", userID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceCodesMapToStatuses(t *testing.T) {
	h := newTestServer(t, nil)
	userID := createUser(t, h, "ann")
	other := createUser(t, h, "bob")
	plan := createPlan(t, h, userID, "Read", "2024-03-10")
	path := fmt.Sprintf("/api/v1/plans/%d/complete", plan.ID)

	rec, env := do(t, h, http.MethodPut, path, userID, map[string]bool{"isComplete": false})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, service.CodeRedundant, env.Code)
	assert.False(t, env.Success)

	rec, env = do(t, h, http.MethodPut, path, other, map[string]bool{"isComplete": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, service.CodeUnauthorized, env.Code)

	rec, _ = do(t, h, http.MethodPut, path, 0, map[string]bool{"isComplete": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = do(t, h, http.MethodPut, path, userID, map[string]string{"isComplete": "yes"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidRequest, env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/plans", userID, map[string]any{"name": "x", "date": "2024-03-10", "isStudy": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidRequest, env.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/plans/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, env.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/nowhere", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, env.Code)
}

func TestVisibilityCapReturns422(t *testing.T) {
	h := newTestServer(t, nil)
	userID := createUser(t, h, "ann")

	rec, env := do(t, h, http.MethodPost, "/api/v1/projects", userID, map[string]string{"name": "thesis", "start": "2024-03-09", "end": "2024-03-11"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var project projectResponse
	require.NoError(t, json.Unmarshal(env.Data, &project))
	rec, _ = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/projects/%d/visible", project.ID), userID, map[string]bool{"isVisible": true})
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 4; i++ {
		p := createPlan(t, h, userID, "p", "2024-03-10")
		rec, _ := do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/plans/%d/visible", p.ID), userID, map[string]bool{"isVisible": true})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	p := createPlan(t, h, userID, "sixth", "2024-03-10")
	rec, env = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/plans/%d/visible", p.ID), userID, map[string]bool{"isVisible": true})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, service.CodeCapacityExceeded, env.Code)
	assert.Contains(t, env.Error, "2024-03-10")
}

func TestStudyAndPostRoutes(t *testing.T) {
	h := newTestServer(t, nil)
	leader := createUser(t, h, "leader")
	member := createUser(t, h, "member")

	rec, env := do(t, h, http.MethodPost, "/api/v1/studies", leader, map[string]string{"name": "go"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var study studyResponse
	require.NoError(t, json.Unmarshal(env.Data, &study))

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/studies/%d/members", study.ID), member, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/studies/%d/posts", study.ID), member, map[string]any{"title": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/studies/%d/members/%d/rank", study.ID, member), leader, map[string]int{"rank": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/studies/%d/posts", study.ID), member, map[string]any{"title": "Weekly Go meetup"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/posts/promotions?q=MEETUP", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []postResponse
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, member, posts[0].WriterID)
}

func TestRequestIDMiddleware(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(headerRequestID), 36)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	h := newTestServer(t, NewRateLimiter(1, 1, zap.NewNop()))

	rec, _ := do(t, h, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := do(t, h, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)

	// a different caller has its own bucket
	rec, _ = do(t, h, http.MethodGet, "/healthz", 8, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5, zap.NewNop())
	rl.now = func() time.Time { return now }

	rl.getLimiter("old")
	now = now.Add(10 * time.Minute)
	rl.getLimiter("fresh")

	assert.Equal(t, 1, rl.Cleanup(5*time.Minute))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "fresh")
}

func TestPathIDWithURLVars(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/plans/12", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "12"})
	id, err := pathID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	req = mux.SetURLVars(req, map[string]string{"id": "x"})
	_, err = pathID(req, "id")
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(service.CodeNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.CodeInvalidRequest))
	assert.Equal(t, http.StatusForbidden, statusFor(service.CodeUnauthorized))
	assert.Equal(t, http.StatusConflict, statusFor(service.CodeRedundant))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(service.CodeCapacityExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(service.CodeInternal))
}

func TestUnboundedInputsAreRejected(t *testing.T) {
	h := newTestServer(t, nil)
	userID := createUser(t, h, "ann")
	plan := createPlan(t, h, userID, "Read", "2024-03-10")

	rec, env := do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/plans/%d/study-time", plan.ID), userID,
		map[string]int64{"minutes": math.MaxInt64})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidRequest, env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/plans", userID,
		map[string]any{"name": "x", "date": "2024-03-10", "studyTime": int64(math.MaxInt64)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidRequest, env.Code)

	rec, env = do(t, h, http.MethodPost, "/api/v1/projects", userID,
		map[string]string{"name": "forever", "start": "2024-01-01", "end": "2999-12-31"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidRequest, env.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/plans/"+fmt.Sprint(plan.ID), 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/api/v1/plans/"+fmt.Sprint(plan.ID), userID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
