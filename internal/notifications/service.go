package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"biblioaccess/internal/config"
	"biblioaccess/internal/tasks"
)

const userAgent = "BiblioAccess-Go/0.1.0"

// Service defines the notification surface exposed to the daemon.
type Service interface {
	NotifyTaskCreated(ctx context.Context, task *tasks.Task) error
	NotifyStatusChanged(ctx context.Context, task *tasks.Task, previous tasks.Status) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		taskCreated:   cfg.Notifications.TaskCreated,
		statusChanged: cfg.Notifications.StatusChanged,
		errors:        cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	taskCreated   bool
	statusChanged bool
	errors        bool
}

func (n *ntfyService) NotifyTaskCreated(ctx context.Context, task *tasks.Task) error {
	if !n.taskCreated || task == nil {
		return nil
	}
	message := fmt.Sprintf("Nueva tarea: %s", strings.TrimSpace(task.Name))
	if task.HasFile() {
		message = fmt.Sprintf("%s\nDocumento: %s", message, task.FileName())
	}
	data := payload{
		title:   "BiblioAccess - Tarea creada",
		message: message,
		tags:    []string{"biblioaccess", "task", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStatusChanged(ctx context.Context, task *tasks.Task, previous tasks.Status) error {
	if !n.statusChanged || task == nil {
		return nil
	}
	data := payload{
		title:   "BiblioAccess - Cambio de estado",
		message: fmt.Sprintf("%s: %s -> %s", strings.TrimSpace(task.Name), previous, task.Status),
		tags:    []string{"biblioaccess", "task", "status"},
	}
	if task.Status.IsTerminal() {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" en ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("desconocido")
	}

	data := payload{
		title:    "BiblioAccess - Error",
		message:  builder.String(),
		tags:     []string{"biblioaccess", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "BiblioAccess - Test",
		message:  "Prueba del sistema de notificaciones",
		tags:     []string{"biblioaccess", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTaskCreated(context.Context, *tasks.Task) error                  { return nil }
func (noopService) NotifyStatusChanged(context.Context, *tasks.Task, tasks.Status) error  { return nil }
func (noopService) NotifyError(context.Context, error, string) error                      { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
