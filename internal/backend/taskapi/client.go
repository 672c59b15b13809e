// Package taskapi implements the service.Service interface over the task
// backend's JSON HTTP API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/task"
)

const (
	// DefaultTimeout bounds an API call when the config leaves it unset.
	DefaultTimeout = 10 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

// ErrUnreachable marks transport failures where the API host could not be reached.
var ErrUnreachable = errors.New("api unreachable")

// Error is a failed API response. Message is the server's message when it
// sent one, otherwise "HTTP <code>: <status text>".
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return e.Message }

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type unreachableError struct {
	base string
	err  error
}

func (e *unreachableError) Error() string {
	return fmt.Sprintf("cannot connect to %s; make sure the backend server is running", e.base)
}

func (e *unreachableError) Unwrap() []error { return []error{ErrUnreachable, e.err} }

// Client implements service.Service over HTTP.
type Client struct {
	base    string
	plain   *http.Client
	authed  *http.Client
	timeout time.Duration
}

// New creates a client for cfg.APIURL. Requests other than register and
// login carry a bearer token taken from tokens.
func New(cfg *config.Config, tokens oauth2.TokenSource) *Client {
	return NewWithHTTPClient(cfg.APIURL, &http.Client{}, tokens, cfg.Timeout)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, tokens oauth2.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	authed := *httpClient
	authed.Transport = &oauth2.Transport{Source: tokens, Base: httpClient.Transport}

	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		plain:   httpClient,
		authed:  &authed,
		timeout: timeout,
	}
}

// envelope is the union of the response shapes the API sends.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    *service.User   `json:"user"`
	Key     string          `json:"key"`
	Task    *task.Task      `json:"task"`
	Tasks   []task.Task     `json:"tasks"`
	Data    json.RawMessage `json:"data"`
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	var env envelope
	if err := c.do(ctx, c.plain, http.MethodPost, "/auth/register", req, &env); err != nil {
		return service.AuthResult{}, err
	}
	return authResult(env)
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	var env envelope
	if err := c.do(ctx, c.plain, http.MethodPost, "/auth/login", req, &env); err != nil {
		return service.AuthResult{}, err
	}
	return authResult(env)
}

func authResult(env envelope) (service.AuthResult, error) {
	if env.Token == "" && len(env.Data) > 0 {
		var inner envelope
		if err := json.Unmarshal(env.Data, &inner); err == nil {
			env.Token, env.User = inner.Token, inner.User
		}
	}
	if env.Token == "" {
		return service.AuthResult{}, fmt.Errorf("malformed auth response: missing token")
	}
	res := service.AuthResult{Token: env.Token}
	if env.User != nil {
		res.User = *env.User
	}
	return res, nil
}

// Verify implements service.Service.
func (c *Client) Verify(ctx context.Context) (service.User, error) {
	return c.user(ctx, "/auth/verify")
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	return c.user(ctx, "/auth/me")
}

func (c *Client) user(ctx context.Context, path string) (service.User, error) {
	var env envelope
	if err := c.do(ctx, c.authed, http.MethodGet, path, nil, &env); err != nil {
		return service.User{}, err
	}
	if env.User != nil {
		return *env.User, nil
	}
	var u service.User
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &u); err == nil && u.Username != "" {
			return u, nil
		}
	}
	return service.User{}, fmt.Errorf("malformed auth response: missing user")
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, q service.TaskQuery) ([]task.Task, error) {
	params := url.Values{}
	for k, v := range map[string]string{
		"status":   string(q.Status),
		"category": q.Category,
		"search":   q.Search,
		"sort":     string(q.Sort),
	} {
		if v != "" {
			params.Set(k, v)
		}
	}
	path := "/tasks"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	var env envelope
	if err := c.do(ctx, c.authed, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if env.Tasks != nil {
		return env.Tasks, nil
	}
	var tasks []task.Task
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &tasks); err != nil {
			return nil, fmt.Errorf("malformed task list: %w", err)
		}
	}
	return tasks, nil
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	return c.taskCall(ctx, http.MethodGet, taskPath(id), nil)
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, in task.Input) (task.Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks", in)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	return c.taskCall(ctx, http.MethodPut, taskPath(id), p)
}

// ToggleTask implements service.Service.
func (c *Client) ToggleTask(ctx context.Context, id string) (task.Task, error) {
	return c.taskCall(ctx, http.MethodPatch, taskPath(id)+"/toggle", nil)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) taskCall(ctx context.Context, method, path string, body any) (task.Task, error) {
	var env envelope
	if err := c.do(ctx, c.authed, method, path, body, &env); err != nil {
		return task.Task{}, err
	}
	if env.Task != nil {
		return *env.Task, nil
	}
	var t task.Task
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return task.Task{}, fmt.Errorf("malformed task: %w", err)
		}
	}
	return t, nil
}

// VAPIDPublicKey implements service.Service.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	var env envelope
	if err := c.do(ctx, c.authed, http.MethodGet, "/notifications/vapid-public-key", nil, &env); err != nil {
		return "", err
	}
	if env.Key == "" {
		return "", fmt.Errorf("server returned no push key")
	}
	return env.Key, nil
}

// SubscribePush implements service.Service.
func (c *Client) SubscribePush(ctx context.Context, sub service.PushSubscription) error {
	return c.do(ctx, c.authed, http.MethodPost, "/notifications/subscribe", sub, nil)
}

// UnsubscribePush implements service.Service.
func (c *Client) UnsubscribePush(ctx context.Context, endpoint string) error {
	body := struct {
		Endpoint string `json:"endpoint"`
	}{endpoint}
	return c.do(ctx, c.authed, http.MethodPost, "/notifications/unsubscribe", body, nil)
}

// do sends one JSON request and decodes the response into out (may be nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body any, out *envelope) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return c.wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return c.wrapTransport(ctx, err)
	}

	return decode(resp, data, out)
}

func decode(resp *http.Response, data []byte, out *envelope) error {
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	httpErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if ok {
			return nil
		}
		return httpErr
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return httpErr
	}

	if !ok || (env.Success != nil && !*env.Success) {
		if env.Message != "" {
			httpErr.Message = env.Message
		} else if ok {
			httpErr.Message = "request failed"
		}
		return httpErr
	}

	if out != nil {
		*out = env
	}
	return nil
}

// wrapTransport maps client-side failures to user-facing errors.
func (c *Client) wrapTransport(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out after %s", c.timeout)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &unreachableError{base: c.base, err: err}
	}
	return fmt.Errorf("request failed: %w", err)
}
