package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"study-planner/internal/service"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createPlanRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	plan, err := s.svc.Plans.CreatePlan(r.Context(), userID, service.PlanInput{
		Name:        req.Name,
		Date:        date,
		IsStudy:     req.IsStudy,
		UserStudyID: req.UserStudyID,
		StudyTime:   req.StudyTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toPlanDetail(plan))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := s.svc.Plans.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanDetail(plan))
}

// handleListPlans serves GET /plans?date=YYYY-MM-DD[&isStudy=true|false] for the acting user.
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	var isStudy *bool
	if raw := r.URL.Query().Get("isStudy"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, badRequest("isStudy must be a boolean"))
			return
		}
		isStudy = &v
	}

	plans, err := s.svc.Plans.ListPlans(r.Context(), userID, date, isStudy)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp := toPlan(p)
		resp.UserID = userID
		resp.Date = formatDate(date)
		out = append(out, resp)
	}
	writeSuccess(w, http.StatusOK, out)
}

func (s *Server) handleRenamePlan(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	s.mutatePlan(w, r, &req, func(userID, planID uint) (*service.PlanDetail, error) {
		return s.svc.Plans.RenamePlan(r.Context(), userID, planID, req.Name)
	})
}

func (s *Server) handleCompletePlan(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	s.mutatePlan(w, r, &req, func(userID, planID uint) (*service.PlanDetail, error) {
		if req.IsComplete == nil {
			return nil, badRequest("isComplete is required")
		}
		return s.svc.Plans.SetPlanComplete(r.Context(), userID, planID, *req.IsComplete)
	})
}

func (s *Server) handleShowPlan(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	s.mutatePlan(w, r, &req, func(userID, planID uint) (*service.PlanDetail, error) {
		if req.IsVisible == nil {
			return nil, badRequest("isVisible is required")
		}
		return s.svc.Plans.SetPlanVisible(r.Context(), userID, planID, *req.IsVisible)
	})
}

func (s *Server) handleRecordStudyTime(w http.ResponseWriter, r *http.Request) {
	var req studyTimeRequest
	s.mutatePlan(w, r, &req, func(userID, planID uint) (*service.PlanDetail, error) {
		return s.svc.Plans.RecordStudyTime(r.Context(), userID, planID, req.Minutes)
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	s.mutatePlan(w, r, nil, func(userID, planID uint) (*service.PlanDetail, error) {
		return s.svc.Plans.DeletePlan(r.Context(), userID, planID)
	})
}

// mutatePlan resolves the actor and plan id, decodes body into req when given and runs fn.
func (s *Server) mutatePlan(w http.ResponseWriter, r *http.Request, req any, fn func(userID, planID uint) (*service.PlanDetail, error)) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	planID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if req != nil {
		if err := readJSON(r, req); err != nil {
			writeError(w, err)
			return
		}
	}
	plan, err := fn(userID, planID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanDetail(plan))
}

func (s *Server) handleGetPlanner(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	planner, err := s.svc.Planners.GetPlanner(r.Context(), userID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanner(planner))
}

// handleEnsurePlanner provisions the planner for the date. Repeated calls return the same planner.
func (s *Server) handleEnsurePlanner(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	planner, err := s.svc.Planners.EnsurePlanner(r.Context(), userID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanner(planner))
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	var req memoRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	planner, err := s.svc.Planners.UpdateMemo(r.Context(), userID, date, req.Memo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanner(planner))
}

func (s *Server) handleSetDDay(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate("date", mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err)
		return
	}
	var req ddayRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var dday *time.Time
	if req.DDay != nil {
		d, err := parseDate("dday", *req.DDay)
		if err != nil {
			writeError(w, err)
			return
		}
		dday = &d
	}
	planner, err := s.svc.Planners.SetDDay(r.Context(), userID, date, dday)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPlanner(planner))
}

func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])

	calendar, err := s.svc.Planners.GetCalendar(r.Context(), userID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toCalendar(calendar))
}
