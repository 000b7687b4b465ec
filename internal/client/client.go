// Package client talks to the attendance API on behalf of the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
)

// APIError is a non-2xx answer from the API. Error returns the server
// message unchanged so it can be shown to the operator as is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is an authenticated API client. It implements
// attendance.BaselineSource and attendance.BatchSubmitter.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

var (
	_ attendance.BaselineSource = (*Client)(nil)
	_ attendance.BatchSubmitter = (*Client)(nil)
)

// New builds a client. BaseURL must include the API prefix, e.g.
// http://localhost:8080/api/v1.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

// Login exchanges credentials for an access token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var res models.LoginResponse
	payload := models.LoginRequest{Username: username, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &res); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", errors.New("client: login response has no access token")
	}
	c.token = res.AccessToken
	return res.AccessToken, nil
}

// Weekly fetches the roster and recorded statuses for [start, end].
func (c *Client) Weekly(ctx context.Context, start, end time.Time) (*attendance.Baseline, error) {
	query := url.Values{}
	query.Set("startDate", start.Format(attendance.DateLayout))
	query.Set("endDate", end.Format(attendance.DateLayout))

	var rows []dto.EmployeeAttendanceResponse
	if _, err := c.do(ctx, http.MethodGet, "/attendance", query, nil, &rows); err != nil {
		return nil, err
	}
	c.logger.Debug("weekly attendance fetched", zap.Int("employees", len(rows)))
	return dto.BaselineFromWeekly(rows), nil
}

// SubmitBatch posts batch and returns the server's confirmation message.
func (c *Client) SubmitBatch(ctx context.Context, batch attendance.Batch) (string, error) {
	var res dto.BatchAttendanceResult
	message, err := c.do(ctx, http.MethodPost, "/attendance/batch", nil, batch, &res)
	if err != nil {
		return "", err
	}
	if res.Message != "" {
		return res.Message, nil
	}
	return message, nil
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs one call and returns the top-level message of a successful
// envelope, if any.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest interface{}) (string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return "", fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("client: read response: %w", err)
	}
	c.logger.Debug("api call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			if env.Error != nil {
				apiErr.Code = env.Error.Code
				apiErr.Message = env.Error.Message
			}
			if apiErr.Message == "" {
				apiErr.Message = env.Message
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("client: decode response: %w", decodeErr)
	}
	if dest == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return env.Message, nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return "", fmt.Errorf("client: decode data: %w", err)
	}
	return env.Message, nil
}
