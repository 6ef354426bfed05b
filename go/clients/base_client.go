package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status code: %d, response: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// WithBearer sets the Authorization header for one request.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// MakeRequest sends body (JSON encoded when non-nil) and returns the raw
// response body of a 2xx response.
func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(responseBody)}
	}

	return responseBody, nil
}

// errorMessage prefers a FastAPI-style {"detail": "..."} body over the raw text.
func errorMessage(body []byte) string {
	var detail struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != nil {
		if s, ok := detail.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(detail.Detail); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(string(body))
}

// DoJSON is MakeRequest followed by decoding the response into result (if non-nil).
func (c *BaseClient) DoJSON(ctx context.Context, method, endpoint string, body, result any, opts ...RequestOption) error {
	data, err := c.MakeRequest(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}
	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(data))
	}
	return nil
}

func (c *BaseClient) Get(ctx context.Context, endpoint string, result any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodGet, endpoint, nil, result, opts...)
}

func (c *BaseClient) Post(ctx context.Context, endpoint string, body, result any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodPost, endpoint, body, result, opts...)
}
