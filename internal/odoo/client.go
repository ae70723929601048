// Package odoo is a small JSON-RPC client for the Odoo external API.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/visit-recap/internal/common"
	"github.com/Veraticus/visit-recap/internal/service"
)

// ErrAuthFailed is returned when the backend rejects the credentials.
var ErrAuthFailed = errors.New("odoo authentication failed")

// Config holds the connection settings for an Odoo instance.
type Config struct {
	URL      string // full JSON-RPC endpoint, e.g. https://example.odoo.com/jsonrpc
	DB       string
	Username string
	APIKey   string
	Timeout  time.Duration
	Retry    service.RetryOptions
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Retry:   service.DefaultRetryOptions(),
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("%w: odoo url", common.ErrMissingConfig)
	case c.DB == "":
		return fmt.Errorf("%w: odoo database", common.ErrMissingConfig)
	case c.Username == "":
		return fmt.Errorf("%w: odoo username", common.ErrMissingConfig)
	case c.APIKey == "":
		return fmt.Errorf("%w: odoo api key", common.ErrMissingConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Message string       `json:"message"`
	Data    RPCErrorData `json:"data"`
	Code    int          `json:"code"`
}

// RPCErrorData carries the server-side exception details.
type RPCErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Debug   string `json:"debug"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc error %d: %s (%s: %s)", e.Code, e.Message, e.Data.Name, e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	ID      string    `json:"id"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Error  *RPCError       `json:"error"`
	ID     any             `json:"id"`
	Result json.RawMessage `json:"result"`
}

// Client talks to one Odoo database as one user. It logs in lazily and
// reuses the uid for every later call.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
	uid        int
	mu         sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the configured instance.
func NewClient(config Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid odoo config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login authenticates and returns the user id.
func (c *Client) Login(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) (int, error) {
	if c.uid != 0 {
		return c.uid, nil
	}

	var result json.RawMessage
	args := []any{c.config.DB, c.config.Username, c.config.APIKey}
	if err := c.call(ctx, "common", "login", args, &result); err != nil {
		return 0, fmt.Errorf("login: %w", err)
	}

	var uid int
	if err := json.Unmarshal(result, &uid); err != nil || uid == 0 {
		// A rejected login comes back as `false`.
		return 0, fmt.Errorf("%w for user %q on database %q", ErrAuthFailed, c.config.Username, c.config.DB)
	}

	c.logger.Debug("logged in to odoo", "uid", uid, "db", c.config.DB)
	c.uid = uid
	return uid, nil
}

// SearchRead runs model.search_read and decodes the records into out.
func (c *Client) SearchRead(ctx context.Context, q SearchRead, out any) error {
	c.mu.Lock()
	uid, err := c.loginLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	domain := q.Domain
	if domain == nil {
		domain = Domain{}
	}
	kwargs := map[string]any{"fields": q.Fields}
	if q.Limit > 0 {
		kwargs["limit"] = q.Limit
	}
	if q.Order != "" {
		kwargs["order"] = q.Order
	}

	args := []any{c.config.DB, uid, c.config.APIKey, q.Model, "search_read", []any{domain}, kwargs}

	start := time.Now()
	if err := c.call(ctx, "object", "execute_kw", args, out); err != nil {
		return fmt.Errorf("search_read %s: %w", q.Model, err)
	}

	c.logger.Debug("search_read completed",
		"model", q.Model,
		"fields", len(q.Fields),
		"limit", q.Limit,
		"duration", time.Since(start))
	return nil
}

// call posts one JSON-RPC request with retries and decodes its result into out.
func (c *Client) call(ctx context.Context, svc, method string, args []any, out any) error {
	return common.WithRetry(ctx, func() error {
		return c.post(ctx, svc, method, args, out)
	}, c.config.Retry)
}

func (c *Client) post(ctx context.Context, svc, method string, args []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      uuid.NewString(),
		Params:  rpcParams{Service: svc, Method: method, Args: args},
	})
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to reach odoo: %w", err), Retryable: ctx.Err() == nil}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: http %d", common.ErrBackendUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return common.Permanent(fmt.Errorf("odoo http error: %d - %s", resp.StatusCode, string(msg)))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if rpcResp.Error != nil {
		return common.Permanent(rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = rpcResp.Result
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return common.Permanent(fmt.Errorf("failed to decode result: %w", err))
	}
	return nil
}
