package internal

import (
	"net/http"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/store"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// loginUser verifies a username/password pair and issues a JWT. Token
// enforcement on the API routes is a separate, off-by-default switch.
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if store.IsNotFound(err) {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Invalid credentials"})
			return
		}
		s.writeError(w, err)
		return
	}
	if !user.IsActive || user.PasswordHash == nil {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "Invalid credentials"})
		return
	}

	token, err := s.JWTManager.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	var passwordHash *string
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.writeError(w, err)
			return
		}
		h := string(hash)
		passwordHash = &h
	}

	user, err := s.Store.CreateUser(r.Context(), req, passwordHash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

// listUsers handles user listing with the is_active filter and free-text
// search.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	filter := store.UserFilter{
		IsActive: queryBool(r, "is_active"),
		Search:   params.search,
		Skip:     params.skip,
		Limit:    params.limit,
	}

	users, err := s.Store.ListUsers(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

// getUser returns the detail view: user plus open assignment briefs.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid user id")
		return
	}

	detail, err := s.Store.GetUserDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	var passwordHash *string
	if req.Password.Set && req.Password.Valid && req.Password.Value != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password.Value), bcrypt.DefaultCost)
		if err != nil {
			s.writeError(w, err)
			return
		}
		h := string(hash)
		passwordHash = &h
	}

	user, err := s.Store.UpdateUser(r.Context(), id, req, passwordHash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}
