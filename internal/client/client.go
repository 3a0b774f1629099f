// Package client is a typed HTTP client for the microshop services. It is
// used by the orders service to price items against the catalog and by the
// CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"microshop/internal/core/apperr"
)

// Endpoints holds the base URL of each service.
type Endpoints struct {
	Auth     string
	Catalog  string
	Orders   string
	Shipping string
}

// GatewayEndpoints returns the endpoints of a process serving every service
// under its mount prefix.
func GatewayEndpoints(baseURL string) Endpoints {
	baseURL = strings.TrimRight(baseURL, "/")
	return Endpoints{
		Auth:     baseURL + "/auth",
		Catalog:  baseURL + "/products",
		Orders:   baseURL + "/orders",
		Shipping: baseURL + "/shipping",
	}
}

// Client calls the microshop services over HTTP/JSON.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	token      string
}

// New creates a Client. A nil httpClient means http.DefaultClient.
func New(endpoints Endpoints, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoints:  endpoints,
		httpClient: httpClient,
	}
}

// WithToken returns a copy of c that sends token on every call.
// Without it, a token carried by the request context is used (see httpclient.WithBearer).
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is a non-2xx answer from a service.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap maps the status code back onto the shared error taxonomy, so
// errors.Is(err, apperr.ErrNotFound) holds for a 404.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case http.StatusForbidden:
		return apperr.ErrForbidden
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	default:
		return nil
	}
}

// envelope is the success shape shared by every service.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// do sends body as JSON to url and decodes the response into out.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Details: eb.Details}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// data calls do and unwraps the success envelope into out.
func (c *Client) data(ctx context.Context, method, url string, body, out any) error {
	var env envelope
	if err := c.do(ctx, method, url, body, &env); err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
