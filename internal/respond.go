package internal

import (
	"encoding/json"
	"net/http"

	"asset-tracker-api/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// errorBody mirrors the wire format the frontend expects: a single message
// string under "detail".
type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error("encode response", zap.Error(err))
	}
}

// writeError maps domain errors onto transport codes: missing entities are
// 404, uniqueness violations and illegal transitions are 400, anything else
// is a 500 with the cause kept out of the response body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		s.writeJSON(w, http.StatusNotFound, errorBody{Detail: err.Error()})
	case store.IsConflict(err):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: err.Error()})
	default:
		s.Log.Error("internal error", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
	}
}

func (s *Server) writeInvalid(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: msg})
}

// decodeAndValidate decodes the request body into req and runs struct
// validation. It writes the error response itself and reports success.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.writeInvalid(w, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			s.writeInvalid(w, "validation failed on field "+verrs[0].Field())
			return false
		}
		s.writeInvalid(w, "validation failed")
		return false
	}
	return true
}

// decodeBody decodes without struct validation, for partial-update bodies.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.writeInvalid(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
