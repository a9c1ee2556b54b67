// Package backend is the HTTP client for the REST API that owns users and
// clients. Every authenticated call carries the session's bearer token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/metrics"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodyBytes bounds a backend response body.
const DefaultMaxBodyBytes = 4 << 20

// Client talks to the REST backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// MaxBodyBytes caps how much of a response is read. Zero means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// New creates a backend client for baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// AuthResponse is the body returned by POST /auth/login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// listResponse is the body returned by GET /clients.
type listResponse struct {
	Clients []domain.Client `json:"clients"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, in domain.LoginInput) (*AuthResponse, error) {
	const op = "backend.login"

	var out AuthResponse
	if err := c.call(ctx, op, http.MethodPost, "/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, domain.Unavailable(nil, op, "")
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) error {
	return c.call(ctx, "backend.register", http.MethodPost, "/auth/register", "", in, nil)
}

// ListClients returns the full client collection visible to token.
func (c *Client) ListClients(ctx context.Context, token string) ([]domain.Client, error) {
	const op = "backend.list_clients"

	var raw json.RawMessage
	if err := c.call(ctx, op, http.MethodGet, "/clients", token, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.Client{}, nil
	}

	var clients []domain.Client
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &clients); err != nil {
			return nil, domain.Unavailable(err, op, "")
		}
	} else {
		var body listResponse
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, domain.Unavailable(err, op, "")
		}
		clients = body.Clients
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return clients, nil
}

// CreateClient creates a client record.
func (c *Client) CreateClient(ctx context.Context, token string, in domain.ClientInput) error {
	return c.call(ctx, "backend.create_client", http.MethodPost, "/clients", token, in, nil)
}

// UpdateClient replaces the fields of client id.
func (c *Client) UpdateClient(ctx context.Context, token string, id domain.ClientID, in domain.ClientInput) error {
	return c.call(ctx, "backend.update_client", http.MethodPut, clientPath(id), token, in, nil)
}

// DeleteClient removes client id.
func (c *Client) DeleteClient(ctx context.Context, token string, id domain.ClientID) error {
	return c.call(ctx, "backend.delete_client", http.MethodDelete, clientPath(id), token, nil, nil)
}

func clientPath(id domain.ClientID) string {
	return "/clients/" + url.PathEscape(id.String())
}

// call performs one JSON request. A non-empty token is sent as a bearer
// credential. When out is non-nil the 2xx body is decoded into it.
func (c *Client) call(ctx context.Context, op, method, path, token string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.BackendCall(strings.TrimPrefix(op, "backend."), time.Since(start), err)
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return domain.Internal(err, op, "failed to encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return domain.Internal(err, op, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.Unavailable(fmt.Errorf("failed to send request: %w", err), op, "")
	}
	defer resp.Body.Close()

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return domain.Unavailable(fmt.Errorf("failed to read response body: %w", err), op, "")
	}
	if int64(len(respBody)) > limit {
		return domain.Unavailable(fmt.Errorf("response body exceeds %d bytes", limit), op, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(op, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return domain.Unavailable(fmt.Errorf("failed to decode response: %w", err), op, "")
	}
	return nil
}
