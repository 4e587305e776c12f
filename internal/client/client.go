package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"biblioaccess/internal/api"
	"biblioaccess/internal/config"
	"biblioaccess/internal/services"
	"biblioaccess/internal/session"
)

// Client provides typed access to the HTTP API. The bearer token is read from
// the session store on every request; a 401 answer tears the session down so
// the caller is forced back through login.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

// New builds a client against the configured server address.
func New(cfg *config.Config, sess *session.Store) *Client {
	base := strings.TrimRight(cfg.Server.BaseURL, "/")
	if base == "" {
		base = "http://" + cfg.Server.Bind
	}
	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		session: sess,
	}
}

// BaseURL returns the server address the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	token, err := c.session.Token()
	if err != nil {
		return ""
	}
	return token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do executes the request and decodes a JSON answer into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "client", method+" "+path, "server unreachable", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, method, path); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeJSON(resp.Body, out)
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkStatus maps non-2xx answers onto the service error taxonomy. The
// session is wiped on 401 so stale tokens never linger.
func (c *Client) checkStatus(resp *http.Response, method, path string) error {
	if resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized && c.session != nil {
		_ = c.session.Teardown()
	}
	message := "request failed"
	var errResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	}
	marker := services.FromHTTPStatus(resp.StatusCode)
	return services.Wrap(marker, "client", method+" "+path, message, nil)
}
