package hive

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
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Hive omnia REST endpoint.
const DefaultBaseURL = "https://api-prod.bgchprod.info:443/omnia"

const (
	mediaType  = "application/vnd.alertme.zoo-6.1+json"
	clientName = "Hive Hotwater"
)

var (
	// ErrUnauthorized indicates the session token was rejected or never obtained
	ErrUnauthorized = errors.New("hive: unauthorized")

	// ErrInvalidMode indicates a hot water mode token the API does not understand
	ErrInvalidMode = errors.New("hive: invalid hot water mode")

	// ErrTimeout indicates a request that did not complete in time
	ErrTimeout = errors.New("hive: request timed out")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Op         string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("hive: %s failed with status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("hive: %s failed with status code %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unwrap maps auth failures onto ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// authState is shared by every Client derived from the same login.
type authState struct {
	mu    sync.RWMutex
	token string
}

func (a *authState) get() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *authState) set(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// Client talks to the Hive cloud API over a caller-owned *http.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       *authState
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a client bound to httpClient. The HTTP client's lifecycle
// (timeouts, transport, closing idle connections) stays with the caller.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		auth:       &authState{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient returns a client using httpClient that shares this client's login.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = c.httpClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    c.baseURL,
		auth:       c.auth,
	}
}

// Authenticated reports whether a session token is held.
func (c *Client) Authenticated() bool {
	return c.auth.get() != ""
}

type sessionsBody struct {
	Sessions []sessionEntry `json:"sessions"`
}

type sessionEntry struct {
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Caller    string `json:"caller,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Login opens an API session and stores its token.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password must be set", ErrUnauthorized)
	}

	req := sessionsBody{Sessions: []sessionEntry{{
		Username: username,
		Password: password,
		Caller:   "WEB",
	}}}

	var resp sessionsBody
	if err := c.do(ctx, http.MethodPost, "/auth/sessions", "login", req, &resp); err != nil {
		return err
	}
	if len(resp.Sessions) == 0 || resp.Sessions[0].SessionID == "" {
		return fmt.Errorf("%w: login response did not contain a session id", ErrUnauthorized)
	}

	c.auth.set(resp.Sessions[0].SessionID)
	log.Debug().Str("username", username).Msg("Hive session opened")
	return nil
}

// Nodes fetches every node on the account.
func (c *Client) Nodes(ctx context.Context) ([]Node, error) {
	var resp nodesBody
	if err := c.do(ctx, http.MethodGet, "/nodes", "list nodes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// UpdateNode sets target values on a node's attributes.
func (c *Client) UpdateNode(ctx context.Context, id string, targets map[string]any) error {
	attrs := make(map[string]Attribute, len(targets))
	for k, v := range targets {
		attrs[k] = Attribute{TargetValue: v}
	}
	body := nodesBody{Nodes: []Node{{Attributes: attrs}}}
	return c.do(ctx, http.MethodPut, "/nodes/"+id, "update node "+id, body, nil)
}

func (c *Client) do(ctx context.Context, method, path, op string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", mediaType)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-Omnia-Client", clientName)
	if token := c.auth.get(); token != "" {
		req.Header.Set("X-Omnia-Access-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
		}
		return fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Op: op, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
