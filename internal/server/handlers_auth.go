package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/users"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed login payload")
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	ttl := time.Duration(s.cfg.Server.TokenTTLHours) * time.Hour
	session, err := s.users.StartSession(r.Context(), user.ID, ttl)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.logger.Info("user signed in",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String("role", string(user.Role)))
	s.writeJSON(w, http.StatusOK, api.LoginResponse{
		Token:  session.Token,
		UserID: user.ID,
		Role:   string(user.Role),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromUser(user))
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !user.Role.IsStaff() {
		s.writeError(w, http.StatusForbidden, "listing accounts requires librarian access")
		return
	}
	accounts, err := s.users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromUsers(accounts))
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/User/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id != user.ID && !user.Role.IsStaff() {
		s.writeError(w, http.StatusForbidden, "viewing other accounts requires librarian access")
		return
	}
	target, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if target == nil {
		s.writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromUser(target))
}
