package api

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

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
)

const (
	// CSRFCookie is set by the backend and echoed back in CSRFHeader
	CSRFCookie = "XSRF-TOKEN"
	CSRFHeader = "X-CSRFToken"
)

// StatusError is a non-2xx reply from the backend
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// Is lets errors.Is(err, repository.ErrNotFound) match 404 replies
func (e *StatusError) Is(target error) bool {
	return target == repository.ErrNotFound && e.Code == http.StatusNotFound
}

// Client talks to the dispatch backend's JSON API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  logger.Logger
}

// NewClient creates a client with its own cookie jar for the anti-forgery token
func NewClient(baseURL string, timeout time.Duration, logger logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout, Jar: jar},
		logger:  logger,
	}, nil
}

// ListSchedules fetches every schedule
func (c *Client) ListSchedules(ctx context.Context) ([]entity.Schedule, error) {
	var body struct {
		Schedules []entity.Schedule `json:"schedules"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/schedules", nil, &body); err != nil {
		return nil, err
	}
	return body.Schedules, nil
}

// CreateSchedules posts a batch as one array
func (c *Client) CreateSchedules(ctx context.Context, schedules []entity.Schedule) error {
	return c.do(ctx, http.MethodPost, "/api/schedules", schedules, nil)
}

// UpdateSchedule replaces a schedule
func (c *Client) UpdateSchedule(ctx context.Context, schedule entity.Schedule) error {
	return c.do(ctx, http.MethodPut, "/api/schedules/"+url.PathEscape(schedule.TransactionID), schedule, nil)
}

// DeleteSchedule deletes a schedule; one that is already gone is not an error
func (c *Client) DeleteSchedule(ctx context.Context, transactionID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/schedules/"+url.PathEscape(transactionID), nil, nil)
	if errors.Is(err, repository.ErrNotFound) {
		c.logger.Debug("Schedule already deleted", "transactionID", transactionID)
		return nil
	}
	return err
}

// ListUsers fetches the roster
func (c *Client) ListUsers(ctx context.Context) ([]entity.User, error) {
	var body struct {
		Users []entity.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &body); err != nil {
		return nil, err
	}
	return body.Users, nil
}

// ListTransportUnits fetches the fleet
func (c *Client) ListTransportUnits(ctx context.Context) ([]entity.TransportUnit, error) {
	var body struct {
		Units []entity.TransportUnit `json:"units"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/transport-units", nil, &body); err != nil {
		return nil, err
	}
	return body.Units, nil
}

// Dashboard fetches the admin dashboard counts
func (c *Client) Dashboard(ctx context.Context) (*entity.DashboardMetrics, error) {
	var body entity.DashboardMetrics
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(CSRFHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}

// csrfToken reads the token cookie, asking the backend for one first if
// the jar has none yet
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if token := c.cookie(CSRFCookie); token != "" {
		return token, nil
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return "", fmt.Errorf("failed to obtain csrf token: %w", err)
	}
	token := c.cookie(CSRFCookie)
	if token == "" {
		return "", errors.New("backend did not set a csrf token")
	}
	return token, nil
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}
