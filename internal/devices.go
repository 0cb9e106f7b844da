package internal

import (
	"net/http"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// listDevices handles device listing with filters and pagination.
func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	filter := store.DeviceFilter{
		DeviceTypeID: queryInt64(r, "device_type_id"),
		IsCheckedOut: queryBool(r, "is_checked_out"),
		IsRetired:    queryBool(r, "is_retired"),
		Search:       params.search,
		Skip:         params.skip,
		Limit:        params.limit,
	}

	devices, err := s.Store.ListDevices(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

// getDevice returns the detail view: device plus type, purchase, and open
// assignment projections.
func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid device id")
		return
	}

	detail, err := s.Store.GetDeviceDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) createDevice(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDeviceRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	device, err := s.Store.CreateDevice(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, device)
}

func (s *Server) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid device id")
		return
	}

	var req models.UpdateDeviceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	device, err := s.Store.UpdateDevice(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, device)
}

// retireDevice moves a device into the terminal retired state.
func (s *Server) retireDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid device id")
		return
	}

	device, err := s.Store.RetireDevice(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, device)
}
