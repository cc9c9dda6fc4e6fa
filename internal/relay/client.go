// Package relay is the storefront side of the chat feature: it validates the
// browser's chat request and forwards it, with the caller's Authorization
// header, to the assistant service. The assistant's reply is returned as-is.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds one forwarded chat turn.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 4 << 20

// ErrAssistantUnavailable means the assistant service could not be reached at all.
var ErrAssistantUnavailable = errors.New("assistant service unavailable")

// UpstreamStatusError is a non-2xx answer from the assistant service.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("assistant returned %d: %s", e.StatusCode, e.Body)
}

// Client posts chat requests to the assistant's /chat endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a Client with a caller-supplied http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Forward sends req and returns the raw JSON reply. Dial failures wrap
// ErrAssistantUnavailable; non-2xx answers are *UpstreamStatusError.
func (c *Client) Forward(ctx context.Context, req *ForwardRequest, authorization string) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if authorization != "" {
		httpReq.Header.Set("Authorization", authorization)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
		}
		return nil, fmt.Errorf("forward chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read assistant response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("assistant returned malformed JSON")
	}
	return json.RawMessage(raw), nil
}

// isConnectionFailure reports refused connections and other dial-stage errors.
// Timeouts after the connection was made are not included.
func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
