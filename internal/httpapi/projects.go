package httpapi

import (
	"net/http"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	start, err := parseDate("start", req.Start)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate("end", req.End)
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := s.svc.Projects.CreateProject(r.Context(), userID, service.ProjectInput{Name: req.Name, Start: start, End: end})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toProject(project))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	projects, err := s.svc.Projects.ListProjects(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProject(&projects[i]))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	project, err := s.svc.Projects.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toProject(project))
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	s.mutateProject(w, r, &req, func(userID, projectID uint) (*model.Project, error) {
		return s.svc.Projects.RenameProject(r.Context(), userID, projectID, req.Name)
	})
}

func (s *Server) handleRescheduleProject(w http.ResponseWriter, r *http.Request) {
	var req spanRequest
	s.mutateProject(w, r, &req, func(userID, projectID uint) (*model.Project, error) {
		start, err := parseDate("start", req.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate("end", req.End)
		if err != nil {
			return nil, err
		}
		return s.svc.Projects.RescheduleProject(r.Context(), userID, projectID, start, end)
	})
}

func (s *Server) handleCompleteProject(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	s.mutateProject(w, r, &req, func(userID, projectID uint) (*model.Project, error) {
		if req.IsComplete == nil {
			return nil, badRequest("isComplete is required")
		}
		return s.svc.Projects.SetProjectComplete(r.Context(), userID, projectID, *req.IsComplete)
	})
}

func (s *Server) handleShowProject(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	s.mutateProject(w, r, &req, func(userID, projectID uint) (*model.Project, error) {
		if req.IsVisible == nil {
			return nil, badRequest("isVisible is required")
		}
		return s.svc.Projects.SetProjectVisible(r.Context(), userID, projectID, *req.IsVisible)
	})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.mutateProject(w, r, nil, func(userID, projectID uint) (*model.Project, error) {
		return s.svc.Projects.DeleteProject(r.Context(), userID, projectID)
	})
}

func (s *Server) mutateProject(w http.ResponseWriter, r *http.Request, req any, fn func(userID, projectID uint) (*model.Project, error)) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "id")
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
	project, err := fn(userID, projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toProject(project))
}
