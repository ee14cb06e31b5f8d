// Package apiclient implements the service.Service interface against the
// todayd HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"today/internal/config"
	"today/internal/service"
	"today/internal/task"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "session"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4 << 10
)

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

// New creates a client from the stored session.
// Returns config.ErrNoSession if there is none.
func New(cfg *config.Config) (*Client, error) {
	sess, err := cfg.LoadSession()
	if err != nil {
		return nil, err
	}
	apiURL := cfg.APIURL
	if sess.APIURL != "" && apiURL == config.DefaultAPIURL {
		apiURL = sess.APIURL
	}
	return NewWithToken(apiURL, sess.Token, cfg.APITimeout, nil)
}

// NewWithToken creates a client whose cookie jar is seeded with token.
// A nil transport uses http.DefaultTransport.
func NewWithToken(apiURL, token string, timeout time.Duration, transport http.RoundTripper) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api_url %q", apiURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(base, []*http.Cookie{{Name: SessionCookie, Value: token, Path: "/"}})

	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}
	return &Client{
		base:    base,
		http:    &http.Client{Jar: jar, Transport: transport},
		timeout: timeout,
	}, nil
}

// CurrentUser implements service.Service.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var u service.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &u); err != nil {
		return service.User{}, err
	}
	return u, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, req service.CreateTaskRequest) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/api/todos", req, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), upd, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// EndSession implements service.Service.
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/logout", nil, nil)
}

// do sends one request with the client timeout and decodes a JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return wrapError(&statusError{code: resp.StatusCode, body: msg})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

type statusError struct {
	code int
	body []byte
}

func (e *statusError) Error() string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.body, &payload) == nil && payload.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.code, payload.Message)
	}
	return fmt.Sprintf("server returned %d", e.code)
}

// wrapError maps transport and status errors to service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var se *statusError
	if errors.As(err, &se) {
		switch se.code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.ErrUnauthorized
		case http.StatusNotFound:
			return service.ErrNotFound
		}
		return se
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("server unreachable: %w", ue.Err)
	}
	return err
}
