package httpapi

import (
	"net/http"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.svc.Users.CreateUser(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toUser(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := s.svc.Users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toUser(user))
}

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createStudyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	study, err := s.svc.Studies.CreateStudy(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toStudy(study))
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	study, err := s.svc.Studies.GetStudy(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toStudy(study))
}

func (s *Server) handleJoinStudy(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	studyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	membership, err := s.svc.Studies.JoinStudy(r.Context(), userID, studyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toMember(membership))
}

func (s *Server) handleSetRank(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	studyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req rankRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	membership, err := s.svc.Studies.SetMemberStatus(r.Context(), actor, studyID, target, req.Rank)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toMember(membership))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	studyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createPostRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	post, err := s.svc.Posts.CreatePost(r.Context(), userID, studyID, service.PostInput{
		Title:    req.Title,
		Contents: req.Contents,
		Image:    req.Image,
		IsNotice: req.IsNotice,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toPost(post))
}

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	studyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	posts, err := s.svc.Posts.ListNotices(r.Context(), studyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPosts(posts))
}

// handleListPromotions lists promotion posts, filtered by ?q= when given.
func (s *Server) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	var (
		posts []model.Post
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		posts, err = s.svc.Posts.SearchPromotions(r.Context(), q)
	} else {
		posts, err = s.svc.Posts.ListPromotions(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPosts(posts))
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := s.svc.Posts.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPost(post))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updatePostRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	post, err := s.svc.Posts.UpdatePost(r.Context(), userID, postID, service.PostUpdate{
		Title:    req.Title,
		Contents: req.Contents,
		Image:    req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPost(post))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := s.svc.Posts.DeletePost(r.Context(), userID, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toPost(post))
}
