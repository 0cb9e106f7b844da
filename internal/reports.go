package internal

import "net/http"

func (s *Server) devicesByTypeReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.DevicesByTypeReport(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) deviceStatusReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.DeviceStatusReport(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) userAssignmentsReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.UserAssignmentsReport(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) expiringWarrantiesReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.ExpiringWarrantiesReport(r.Context(), queryInt(r, "days", 90))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}
