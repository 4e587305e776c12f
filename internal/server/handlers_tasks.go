package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request, user *users.User) {
	switch r.Method {
	case http.MethodGet:
		s.listOrders(w, r, user)
	case http.MethodPost:
		s.createOrder(w, r, user)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listOrders returns the tasks the caller may observe, optionally pre-filtered
// by status. Visibility is reapplied on every fetch.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request, user *users.User) {
	var filter []tasks.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := tasks.ParseStatus(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+raw)
			return
		}
		filter = append(filter, status)
	}

	items, err := s.tasks.List(r.Context(), filter...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTasks(tasks.VisibleTasks(user.Role, items)))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request, user *users.User) {
	if user.Role == users.RoleAlumno {
		s.writeError(w, http.StatusForbidden, "students cannot create tasks")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed multipart payload")
		return
	}

	draft := tasks.NewTask{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("dueDate")); raw != "" {
		due, err := parseDueDate(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid due date "+raw)
			return
		}
		draft.DueDate = due
	}

	// Starting immediately is an explicit opt-in, never an implicit side
	// effect of creation, and follows the same role gate as a manual start.
	startImmediately := parseBoolFlag(r.FormValue("startImmediately"))
	if startImmediately && !tasks.AllowedTransition(user.Role, tasks.StatusPendiente, tasks.StatusEnProceso) {
		s.writeError(w, http.StatusForbidden, "role may not start tasks")
		return
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		path, saveErr := s.saveUpload(file, header)
		if saveErr != nil {
			s.writeServiceError(w, saveErr)
			return
		}
		draft.FilePath = path
	}

	task, err := s.tasks.Create(r.Context(), draft)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.notifier.NotifyTaskCreated(r.Context(), task); err != nil {
		s.logger.Warn("task created notification failed", logging.Error(err))
	}

	if startImmediately {
		task, err = s.tasks.ChangeStatus(r.Context(), task.ID, tasks.StatusEnProceso, user.ID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
	}

	s.logger.Info("task created",
		logging.Int64(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldStatus, string(task.Status)))
	s.writeJSON(w, http.StatusCreated, api.FromTask(task))
}

func (s *Server) handleOrderByID(w http.ResponseWriter, r *http.Request, user *users.User) {
	idStr := strings.TrimPrefix(r.URL.Path, "/order/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if task == nil || !tasks.CanSee(user.Role, task.Status) {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.FromTask(task))
	case http.MethodPut:
		s.updateOrder(w, r, task)
	case http.MethodDelete:
		s.deleteOrder(w, r, user, task)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// updateOrder applies content-only edits. Status is untouchable here: the
// changeStatus endpoint is the single mutation path for workflow state.
func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request, task *tasks.Task) {
	var req api.TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed update payload")
		return
	}

	task.Name = req.Name
	task.Description = req.Description
	if !req.DueDate.IsZero() {
		task.DueDate = req.DueDate
	}
	if err := s.tasks.Update(r.Context(), task); err != nil {
		s.writeServiceError(w, err)
		return
	}

	updated, err := s.tasks.GetByID(r.Context(), task.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromTask(updated))
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request, user *users.User, task *tasks.Task) {
	if !user.Role.IsStaff() {
		s.writeError(w, http.StatusForbidden, "deleting tasks requires librarian access")
		return
	}
	if _, err := s.tasks.Remove(r.Context(), task.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logger.Info("task deleted", logging.Int64(logging.FieldTaskID, task.ID))
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, user *users.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/order/download/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.tasks.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if task == nil || !tasks.CanSee(user.Role, task.Status) {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if !task.HasFile() {
		s.writeError(w, http.StatusNotFound, "task has no attached document")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+task.FileName()+`"`)
	http.ServeFile(w, r, task.FilePath)
}

func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseBoolFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
