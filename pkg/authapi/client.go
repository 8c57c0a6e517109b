package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/moodlog/pkg/logger"
	"github.com/dmitrymomot/moodlog/pkg/requestid"
)

// maxResponseSize limits how much of a response body is read
const maxResponseSize = 64 * 1024

// Client talks to the auth REST API.
// Zero value is not usable; use NewClient to create instances.
type Client struct {
	baseURL    *url.URL
	endpoints  Endpoints
	httpClient *http.Client
	tokens     oauth2.TokenSource
	timeout    time.Duration
	maxRetries int
	backoff    Backoff
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    u,
		endpoints:  UserEndpoints(),
		timeout:    10 * time.Second,
		maxRetries: 2,
		backoff:    DefaultBackoff(),
		userAgent:  "moodlog-session/1.0",
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	c.httpClient = requestid.Wrap(c.httpClient)
	c.logger = c.logger.With(logger.Component("authapi"))

	return c, nil
}

// Endpoints returns the endpoints the client calls.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	if err := creds.Validate(); err != nil {
		return TokenResponse{}, errors.Join(ErrInvalidRequest, err)
	}
	return c.tokenRequest(ctx, c.endpoints.Login, creds)
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, reg Registration) (TokenResponse, error) {
	if err := reg.Validate(); err != nil {
		return TokenResponse{}, errors.Join(ErrInvalidRequest, err)
	}
	return c.tokenRequest(ctx, c.endpoints.Register, reg)
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	if refreshToken == "" {
		return TokenResponse{}, fmt.Errorf("%w: refresh token is required", ErrInvalidRequest)
	}
	return c.tokenRequest(ctx, c.endpoints.Refresh, refreshRequest{RefreshToken: refreshToken})
}

// Logout revokes the current session on the server. The bearer token comes
// from the client's token source.
func (c *Client) Logout(ctx context.Context) error {
	if c.tokens == nil {
		return ErrNoTokenSource
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return errors.Join(ErrUnauthorized, err)
	}

	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   c.httpClient.Transport,
		},
	}

	_, err = c.do(ctx, client, c.endpoints.Logout, nil)
	return err
}

func (c *Client) tokenRequest(ctx context.Context, path string, body any) (TokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return TokenResponse{}, errors.Join(ErrInvalidRequest, err)
	}

	raw, err := c.do(ctx, c.httpClient, path, payload)
	if err != nil {
		return TokenResponse{}, err
	}

	var resp TokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return TokenResponse{}, errors.Join(ErrInvalidResponse, err)
	}
	if resp.Token == "" {
		return TokenResponse{}, fmt.Errorf("%w: token is missing", ErrInvalidResponse)
	}

	return resp, nil
}

// do posts payload to path, retrying temporary failures with backoff.
// Every attempt carries the same request id.
func (c *Client) do(ctx context.Context, client *http.Client, path string, payload []byte) ([]byte, error) {
	target := c.baseURL.JoinPath(path).String()
	ctx, _ = requestid.Ensure(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff.NextInterval(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, status, err := c.attempt(ctx, client, target, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		c.logger.DebugContext(ctx, "auth api request failed",
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Int("status", status),
			logger.Error(err),
		)

		if status != 0 && !temporary(status) {
			return nil, err
		}
		if errors.Is(err, ErrInvalidRequest) {
			return nil, err
		}
	}

	if c.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, client *http.Client, target string, payload []byte) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target, body)
	if err != nil {
		return nil, 0, errors.Join(ErrInvalidRequest, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, 0, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	return raw, resp.StatusCode, nil
}

// errorMessage extracts a readable message from an error body.
func errorMessage(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	msg := strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	return u, nil
}
