package api

import (
	"fmt"
	"net/http"
	"strconv"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/validation"
	"edpsych-connect/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.deps.Content.ListDrafts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, drafts)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.deps.Content.GetDraft(r.Context(), r.PathValue("filename"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req models.ApproveDraftRequest
	if err := decodeBody(r, validation.ApproveDraftSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.deps.Content.Approve(r.Context(), req.Filename, actor(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models.MessageResponse{
		Message: fmt.Sprintf("Successfully approved and moved %s to approved posts.", req.Filename),
	})
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Content.ListApproved(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.deps.Content.GetPost(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, errors.NewValidationError("limit must be a positive integer", "limit: "+raw))
			return
		}
		limit = min(n, maxSearchLimit)
	}

	hits, err := s.deps.Content.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hits)
}
