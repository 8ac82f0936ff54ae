// Package httpapi serves the planner over a JSON REST API.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"study-planner/internal/metrics"
	"study-planner/internal/model"
	"study-planner/internal/service"
)

// Services are the domain services the API exposes.
type Services struct {
	Users    *service.UserService
	Plans    *service.PlanService
	Planners *service.PlannerService
	Projects *service.ProjectService
	Studies  *service.StudyService
	Posts    *service.PostService
}

// Server holds the handlers of the REST API.
type Server struct {
	svc     Services
	log     *zap.Logger
	limiter *RateLimiter
}

func NewServer(svc Services, limiter *RateLimiter, log *zap.Logger) *Server {
	return &Server{svc: svc, log: log, limiter: limiter}
}

// Router builds the mux router with every route and middleware installed.
// Acting users identify themselves with the X-User-ID header.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessLog(s.log), metrics.InstrumentHandler)
	if s.limiter != nil {
		r.Use(s.limiter.Handler)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)

	api.HandleFunc("/plans", s.handleCreatePlan).Methods(http.MethodPost)
	api.HandleFunc("/plans", s.handleListPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id:[0-9]+}", s.handleGetPlan).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id:[0-9]+}", s.handleDeletePlan).Methods(http.MethodDelete)
	api.HandleFunc("/plans/{id:[0-9]+}/name", s.handleRenamePlan).Methods(http.MethodPatch)
	api.HandleFunc("/plans/{id:[0-9]+}/complete", s.handleCompletePlan).Methods(http.MethodPut)
	api.HandleFunc("/plans/{id:[0-9]+}/visible", s.handleShowPlan).Methods(http.MethodPut)
	api.HandleFunc("/plans/{id:[0-9]+}/study-time", s.handleRecordStudyTime).Methods(http.MethodPost)

	api.HandleFunc("/planners/{date}", s.handleGetPlanner).Methods(http.MethodGet)
	api.HandleFunc("/planners/{date}", s.handleEnsurePlanner).Methods(http.MethodPost)
	api.HandleFunc("/planners/{date}/memo", s.handleUpdateMemo).Methods(http.MethodPut)
	api.HandleFunc("/planners/{date}/dday", s.handleSetDDay).Methods(http.MethodPut)
	api.HandleFunc("/calendars/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.handleGetCalendar).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}", s.handleGetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}", s.handleDeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id:[0-9]+}/name", s.handleRenameProject).Methods(http.MethodPatch)
	api.HandleFunc("/projects/{id:[0-9]+}/span", s.handleRescheduleProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}/complete", s.handleCompleteProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id:[0-9]+}/visible", s.handleShowProject).Methods(http.MethodPut)

	api.HandleFunc("/studies", s.handleCreateStudy).Methods(http.MethodPost)
	api.HandleFunc("/studies/{id:[0-9]+}", s.handleGetStudy).Methods(http.MethodGet)
	api.HandleFunc("/studies/{id:[0-9]+}/members", s.handleJoinStudy).Methods(http.MethodPost)
	api.HandleFunc("/studies/{id:[0-9]+}/members/{userId:[0-9]+}/rank", s.handleSetRank).Methods(http.MethodPut)
	api.HandleFunc("/studies/{id:[0-9]+}/posts", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/studies/{id:[0-9]+}/notices", s.handleListNotices).Methods(http.MethodGet)

	api.HandleFunc("/posts/promotions", s.handleListPromotions).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleGetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleUpdatePost).Methods(http.MethodPatch)
	api.HandleFunc("/posts/{id:[0-9]+}", s.handleDeletePost).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: "route not found", Code: service.CodeNotFound})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorID reads the acting user from the X-User-ID header.
func actorID(r *http.Request) (uint, error) {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		return 0, &service.Error{Code: service.CodeUnauthorized, Message: headerUserID + " header is required"}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &service.Error{Code: service.CodeUnauthorized, Message: "invalid " + headerUserID + " header"}
	}
	return uint(id), nil
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s", name)
	}
	return uint(id), nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, badRequest("%s is required", field)
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, badRequest("%s must be YYYY-MM-DD", field)
	}
	return d, nil
}
