package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"biblioaccess/internal/api"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

func (s *Server) handleTasksByStatus(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, "status parameter is required")
		return
	}
	status, ok := tasks.ParseStatus(raw)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown status "+raw)
		return
	}

	items, err := s.tasks.List(r.Context(), status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTasks(tasks.VisibleTasks(user.Role, items)))
}

// handleAssignedTasks lists the tasks assigned to a volunteer. Without an
// idUsuario parameter it answers for the caller; querying someone else is a
// staff operation.
func (s *Server) handleAssignedTasks(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	target := user.ID
	if raw := strings.TrimSpace(r.URL.Query().Get("idUsuario")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		if id != user.ID && !user.Role.IsStaff() {
			s.writeError(w, http.StatusForbidden, "querying other volunteers requires librarian access")
			return
		}
		target = id
	}

	items, err := s.tasks.TasksAssignedTo(r.Context(), target)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTasks(items))
}

// handleChangeStatus is the single write path for workflow state. An illegal
// edge answers 409 regardless of role; a legal edge the caller's role may not
// take answers 403.
func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodPut {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed change payload")
		return
	}
	target, ok := tasks.ParseStatus(req.Status)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}

	task, err := s.tasks.GetByID(r.Context(), req.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if task == nil {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if task.Status == target {
		// Same-status changes are accepted and change nothing.
		s.writeJSON(w, http.StatusOK, api.FromTask(task))
		return
	}
	if !tasks.CanTransition(task.Status, target) {
		s.writeError(w, http.StatusConflict,
			"cannot move from "+string(task.Status)+" to "+string(target))
		return
	}
	if !tasks.AllowedTransition(user.Role, task.Status, target) {
		s.writeError(w, http.StatusForbidden,
			"role "+string(user.Role)+" may not move tasks from "+string(task.Status)+" to "+string(target))
		return
	}

	previous := task.Status
	updated, err := s.tasks.ChangeStatus(r.Context(), req.ID, target, user.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.notifier.NotifyStatusChanged(r.Context(), updated, previous); err != nil {
		s.logger.Warn("status change notification failed", logging.Error(err))
	}

	s.logger.Info("task status changed",
		logging.Int64(logging.FieldTaskID, updated.ID),
		logging.String(logging.FieldStatus, string(updated.Status)),
		logging.Int64(logging.FieldUserID, user.ID))
	s.writeJSON(w, http.StatusOK, api.FromTask(updated))
}
