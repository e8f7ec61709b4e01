package clientcli

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
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// ErrConfigRequired is returned when New is called without a config.
var ErrConfigRequired = errors.New("config is required")

// Client performs operations against a signet gateway.
type Client struct {
	config     *Config
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint:  strings.TrimSuffix(cfg.Endpoint, "/"),
			Username:  cfg.Username,
			Password:  cfg.Password,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Login authenticates with the gateway and stores the bearer token for
// subsequent calls. Only meaningful against a password-mode gateway.
func (c *Client) Login(ctx context.Context) error {
	if c.config.Username == "" || c.config.Password == "" {
		return fmt.Errorf("login: %w", ErrLoginRequired)
	}

	body, err := json.Marshal(map[string]string{
		"username": c.config.Username,
		"password": c.config.Password,
	})
	if err != nil {
		return fmt.Errorf("login: encode request: %w", err)
	}

	var token tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/token/login", bytes.NewReader(body), &token); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.token = token.AccessToken
	return nil
}

// Presign asks the gateway for a presigned URL for op (get, put, delete).
func (c *Client) Presign(ctx context.Context, op PresignOp, opts PresignOptions) (PresignResult, error) {
	var result PresignResult
	if err := c.presign(ctx, op, opts, &result); err != nil {
		return PresignResult{}, err
	}
	return result, nil
}

// PresignGet asks the gateway for a presigned download URL.
func (c *Client) PresignGet(ctx context.Context, opts PresignOptions) (PresignResult, error) {
	return c.Presign(ctx, OpGet, opts)
}

// PresignPost asks the gateway for a presigned POST upload policy.
func (c *Client) PresignPost(ctx context.Context, opts PresignOptions) (PostPolicyResult, error) {
	var result PostPolicyResult
	if err := c.presign(ctx, OpPost, opts, &result); err != nil {
		return PostPolicyResult{}, err
	}
	return result, nil
}

func (c *Client) presign(ctx context.Context, op PresignOp, opts PresignOptions, out any) error {
	if opts.Bucket == "" {
		return fmt.Errorf("presign %s: %w", op, ErrBucketRequired)
	}
	if opts.Key == "" {
		return fmt.Errorf("presign %s: %w", op, ErrKeyRequired)
	}

	body, err := json.Marshal(map[string]any{
		"bucket":     opts.Bucket,
		"key":        opts.Key,
		"expiration": opts.Expiration,
	})
	if err != nil {
		return fmt.Errorf("presign %s: encode request: %w", op, err)
	}

	if err := c.doJSON(ctx, http.MethodPost, "/presigned/"+string(op), bytes.NewReader(body), out); err != nil {
		return fmt.Errorf("presign %s: %w", op, err)
	}
	return nil
}

// List fetches the full listing for a bucket and prefix.
func (c *Client) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	q := url.Values{}
	if opts.Bucket != "" {
		q.Set("bucket", opts.Bucket)
	}
	if opts.Prefix != "" {
		q.Set("prefix", opts.Prefix)
	}

	path := "/bucket/list"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result ListResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return ListResult{}, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// doJSON issues one request with auth attached and decodes the JSON
// response into out. Non-2xx responses become errors carrying the
// gateway's error message.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.config.AccessKey != "" {
		req.Header.Set("x-aws-access-key-id", c.config.AccessKey)
	}
	if c.config.SecretKey != "" {
		req.Header.Set("x-aws-secret-access-key", c.config.SecretKey)
	}
	if c.config.Region != "" {
		req.Header.Set("x-aws-region", c.config.Region)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		var apiErr errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
