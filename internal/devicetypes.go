package internal

import (
	"net/http"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Server) createDeviceType(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeviceTypeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	dt, err := s.Store.CreateDeviceType(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dt)
}

func (s *Server) listDeviceTypes(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	types, err := s.Store.ListDeviceTypes(r.Context(), store.DeviceTypeFilter{
		Search: params.search,
		Skip:   params.skip,
		Limit:  params.limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, types)
}

func (s *Server) getDeviceType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid device type id")
		return
	}

	dt, err := s.Store.GetDeviceType(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dt)
}

func (s *Server) updateDeviceType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid device type id")
		return
	}

	var req models.UpdateDeviceTypeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	dt, err := s.Store.UpdateDeviceType(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dt)
}
