package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/logging"
	"biblioaccess/internal/notifications"
	"biblioaccess/internal/services"
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

// Server is the HTTP API exposed by the daemon.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	tasks    *tasks.Store
	users    *users.Store
	notifier notifications.Service

	listener net.Listener
	server   *http.Server
}

// New wires the HTTP API around the given stores.
func New(cfg *config.Config, taskStore *tasks.Store, userStore *users.Store, notifier notifications.Service, logger *slog.Logger) *Server {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	srv := &Server{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		tasks:    taskStore,
		users:    userStore,
		notifier: notifier,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", srv.handleLogin)
	mux.HandleFunc("/user/me", srv.authenticated(srv.handleMe))
	mux.HandleFunc("/User", srv.authenticated(srv.handleUsers))
	mux.HandleFunc("/User/", srv.authenticated(srv.handleUserByID))
	mux.HandleFunc("/order", srv.authenticated(srv.handleOrders))
	mux.HandleFunc("/order/download/", srv.authenticated(srv.handleDownload))
	mux.HandleFunc("/order/", srv.authenticated(srv.handleOrderByID))
	mux.HandleFunc("/OrderManagment/status", srv.authenticated(srv.handleTasksByStatus))
	mux.HandleFunc("/OrderManagment/asignadas", srv.authenticated(srv.handleAssignedTasks))
	mux.HandleFunc("/OrderManagment/changeStatus", srv.authenticated(srv.handleChangeStatus))
	mux.HandleFunc("/health", srv.handleHealth)

	requestTimeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address. Serving stops when ctx
// is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// authenticated validates the bearer token and hands the resolved account to
// the wrapped handler. Unknown and expired tokens answer 401.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, *users.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.users.ResolveToken(r.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if user == nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summary, err := s.tasks.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tasks": map[string]int{
			"total":      summary.Total,
			"pendiente":  summary.Pendiente,
			"enProceso":  summary.EnProceso,
			"enRevision": summary.EnRevision,
			"completada": summary.Completada,
			"denegada":   summary.Denegada,
		},
	})
}
