package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/services"
)

// CreateTaskInput describes a new task. FilePath, when set, names a local
// document to attach. Progress, when set, is called as attachment bytes are
// read.
type CreateTaskInput struct {
	Name             string
	Description      string
	DueDate          time.Time
	FilePath         string
	StartImmediately bool
	Progress         func(done, total int64)
}

// progressReader reports cumulative bytes read to a callback.
type progressReader struct {
	inner  io.Reader
	total  int64
	done   int64
	report func(done, total int64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.done += int64(n)
		r.report(r.done, r.total)
	}
	return n, err
}

// Tasks lists the tasks visible to the caller, optionally filtered by status.
func (c *Client) Tasks(ctx context.Context, status string) ([]api.Task, error) {
	path := "/order"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var items []api.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Task fetches a single task by id.
func (c *Client) Task(ctx context.Context, id int64) (*api.Task, error) {
	var task api.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/order/%d", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask submits a new task, streaming the attachment when one is named.
func (c *Client) CreateTask(ctx context.Context, input CreateTaskInput) (*api.Task, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"name":        input.Name,
		"description": input.Description,
	}
	if !input.DueDate.IsZero() {
		fields["dueDate"] = input.DueDate.Format("2006-01-02")
	}
	if input.StartImmediately {
		fields["startImmediately"] = "true"
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}

	if input.FilePath != "" {
		file, err := os.Open(input.FilePath)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "client", "create task",
				fmt.Sprintf("cannot open %s", input.FilePath), err)
		}
		defer file.Close()
		part, err := writer.CreateFormFile("file", filepath.Base(input.FilePath))
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		var source io.Reader = file
		if input.Progress != nil {
			info, statErr := file.Stat()
			total := int64(-1)
			if statErr == nil {
				total = info.Size()
			}
			source = &progressReader{inner: file, total: total, report: input.Progress}
		}
		if _, err := io.Copy(part, source); err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/order", body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "client", "POST /order", "server unreachable", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, http.MethodPost, "/order"); err != nil {
		return nil, err
	}

	var task api.Task
	if err := decodeJSON(resp.Body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies content edits to a task. Status never changes here.
func (c *Client) UpdateTask(ctx context.Context, id int64, update api.TaskUpdateRequest) (*api.Task, error) {
	var task api.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/order/%d", id), update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. Requires librarian access.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/order/%d", id), nil, nil)
}

// Download fetches a task's attachment into destDir and returns the written
// path. The server's file name is honored when it sends one.
func (c *Client) Download(ctx context.Context, id int64, destDir string) (string, error) {
	path := fmt.Sprintf("/order/download/%d", id)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrNetwork, "client", "GET "+path, "server unreachable", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, http.MethodGet, path); err != nil {
		return "", err
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = fmt.Sprintf("task-%d-document", id)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	target := filepath.Join(destDir, name)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write download: %w", err)
	}
	return target, nil
}

// TasksByStatus lists tasks in one workflow state, filtered by the caller's
// visibility.
func (c *Client) TasksByStatus(ctx context.Context, status string) ([]api.Task, error) {
	var items []api.Task
	path := "/OrderManagment/status?status=" + url.QueryEscape(status)
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AssignedTasks lists the tasks assigned to a volunteer. Zero means the
// caller.
func (c *Client) AssignedTasks(ctx context.Context, userID int64) ([]api.Task, error) {
	path := "/OrderManagment/asignadas"
	if userID > 0 {
		path += fmt.Sprintf("?idUsuario=%d", userID)
	}
	var items []api.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ChangeStatus requests a workflow transition and returns the updated task.
func (c *Client) ChangeStatus(ctx context.Context, id int64, status string) (*api.Task, error) {
	var task api.Task
	req := api.ChangeStatusRequest{ID: id, Status: status}
	if err := c.do(ctx, http.MethodPut, "/OrderManagment/changeStatus", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	name := filepath.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
