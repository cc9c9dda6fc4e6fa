// Package backend is the JSON-over-HTTP client shared by the product and cart
// integrations. It knows nothing about products or carts, only how to reach the
// storefront backend and classify its failures.
package backend

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
)

const (
	mimeJSON            = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"

	// maxErrorBody caps how much of a failed response is kept for logs.
	maxErrorBody = 512
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus reports whether err is a StatusError carrying the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the storefront backend rooted at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own transport (tests, tracing).
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// GetJSON issues GET baseURL+path?query and decodes the JSON body into out.
// authorization is forwarded verbatim when non-empty.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, authorization string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("backend get %s: build request: %w", path, err)
	}
	return c.do(req, path, authorization, out)
}

// PostJSON marshals body, POSTs it to baseURL+path and decodes the reply into out.
// out may be nil when the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, path string, body any, authorization string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("backend post %s: encode body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("backend post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	return c.do(req, path, authorization, out)
}

func (c *Client) do(req *http.Request, path, authorization string, out any) error {
	req.Header.Set("Accept", mimeJSON)
	if authorization != "" {
		req.Header.Set(headerAuthorization, authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck
		return &StatusError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend %s %s: decode response: %w", req.Method, path, err)
	}
	return nil
}
