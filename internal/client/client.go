// Package client talks to the registration API on behalf of the terminal
// form.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/geo"
	"pdao-registration/internal/schema"
	"pdao-registration/pkg/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Field   string
	Errors  schema.FieldErrors
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("http %d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// FieldMessage is the message for field, or "" when the server did not
// flag it.
func (e *APIError) FieldMessage(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	if e.Field == field {
		return e.Message
	}
	return ""
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Field   string          `json:"field,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

type Client struct {
	http *resty.Client
	log  *zap.Logger

	mu    sync.RWMutex
	token string
}

func New(cfg utils.ClientConfig, log *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: cli, log: log}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register submits a registration and keeps the issued token.
func (c *Client) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	var out response.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Login signs in and keeps the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (*response.AuthResponse, error) {
	var out response.AuthResponse
	body := request.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*response.UserResponse, error) {
	var out response.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Options lists geography choices from the server. It satisfies the
// picker's Source.
func (c *Client) Options(ctx context.Context, level geo.Level, parentCode string) ([]geo.Area, error) {
	var path string
	switch level {
	case geo.LevelRegion:
		path = "/api/geo/regions"
	case geo.LevelProvince:
		path = "/api/geo/regions/{code}/provinces"
	case geo.LevelCity:
		path = "/api/geo/provinces/{code}/cities"
	case geo.LevelBarangay:
		path = "/api/geo/cities/{code}/barangays"
	default:
		return nil, geo.ErrUnknownLevel
	}

	var areas []response.GeoArea
	if err := c.doPath(ctx, path, parentCode, &areas); err != nil {
		return nil, err
	}

	out := make([]geo.Area, len(areas))
	for i, a := range areas {
		out[i] = geo.Area{Code: a.Code, Name: a.Name, ParentCode: a.ParentCode, Level: level}
	}
	return out, nil
}

func (c *Client) doPath(ctx context.Context, path, code string, out any) error {
	req := c.request(ctx)
	if strings.Contains(path, "{code}") {
		req.SetPathParam("code", code)
	}
	resp, err := req.Get(path)
	return c.finish(resp, err, http.MethodGet, path, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.request(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	return c.finish(resp, err, method, path, out)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func (c *Client) finish(resp *resty.Response, err error, method, path string, out any) error {
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if resp.IsError() {
		apiErr := toAPIError(resp.StatusCode(), env)
		c.log.Debug("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("field", apiErr.Field),
		)
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

func toAPIError(status int, env envelope) *APIError {
	apiErr := &APIError{Status: status, Message: env.Message, Field: env.Field}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.Errors = decodeFieldErrors(env.Errors)
	return apiErr
}

// decodeFieldErrors accepts both shapes the server sends: a list of
// {field, message} and a field to message object.
func decodeFieldErrors(raw json.RawMessage) schema.FieldErrors {
	if len(raw) == 0 {
		return nil
	}

	var list schema.FieldErrors
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var byField map[string]string
	if err := json.Unmarshal(raw, &byField); err != nil {
		return nil
	}
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(schema.FieldErrors, 0, len(fields))
	for _, f := range fields {
		out = append(out, schema.FieldError{Field: f, Message: byField[f]})
	}
	return out
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	return true
}
