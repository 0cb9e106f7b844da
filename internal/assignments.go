package internal

import (
	"net/http"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	a, err := s.Store.CreateAssignment(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	f := store.AssignmentFilter{
		DeviceID: queryInt64(r, "device_id"),
		UserID:   queryInt64(r, "user_id"),
		Skip:     params.skip,
		Limit:    params.limit,
	}
	if active := queryBool(r, "active_only"); active != nil {
		f.ActiveOnly = *active
	}

	assignments, err := s.Store.ListAssignments(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, assignments)
}

func (s *Server) getAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid assignment id")
		return
	}

	detail, err := s.Store.GetAssignmentDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) returnAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid assignment id")
		return
	}

	var req models.ReturnRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	a, err := s.Store.ReturnAssignment(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}
