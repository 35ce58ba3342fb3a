// Package provision implements the integration with the remote VPN
// provisioning panel: the HTTP client plus the decoders for the panel's
// response payloads.
package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client defines the interface for provisioning panel operations used
// throughout the application. All methods return the raw response body as
// text regardless of HTTP status; only transport failures are errors.
type Client interface {
	// CreateAccount registers a new account under the given username.
	CreateAccount(ctx context.Context, username string) (string, error)

	// FetchProfile retrieves the connection profile payload for a username.
	FetchProfile(ctx context.Context, username string) (string, error)

	// ListUsers retrieves the panel's user listing payload.
	ListUsers(ctx context.Context) (string, error)
}

// createAccountRequest is the panel's account creation body. Traffic limit
// and expiration are fixed plan parameters, not user-configurable.
type createAccountRequest struct {
	Username       string `json:"username"`
	TrafficLimit   int    `json:"traffic_limit"`
	ExpirationDays int    `json:"expiration_days"`
}

const (
	defaultTrafficLimit   = 256
	defaultExpirationDays = 0
)

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     *slog.Logger
}

// NewClient creates a provisioning panel client. baseURL is the panel's
// account collection endpoint; token is sent verbatim in the Authorization
// header of every request.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("provisioning API base URL is required")
	}
	if token == "" {
		return nil, fmt.Errorf("provisioning API token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     logger.With("component", "provision_client"),
	}, nil
}

func (c *httpClient) CreateAccount(ctx context.Context, username string) (string, error) {
	payload, err := json.Marshal(createAccountRequest{
		Username:       username,
		TrafficLimit:   defaultTrafficLimit,
		ExpirationDays: defaultExpirationDays,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode account request: %w", err)
	}

	c.log.InfoContext(ctx, "Creating provisioning account", "username", username)
	return c.do(ctx, http.MethodPost, c.baseURL, payload)
}

func (c *httpClient) FetchProfile(ctx context.Context, username string) (string, error) {
	c.log.InfoContext(ctx, "Fetching connection profile", "username", username)
	return c.do(ctx, http.MethodGet, c.baseURL+"/"+username+"/uri", nil)
}

func (c *httpClient) ListUsers(ctx context.Context) (string, error) {
	c.log.InfoContext(ctx, "Fetching panel user list")
	return c.do(ctx, http.MethodGet, c.baseURL, nil)
}

// do performs one request and returns the response body as text. Non-2xx
// statuses are not errors: the panel reports failures in the body and the
// flows surface that text to the user verbatim.
func (c *httpClient) do(ctx context.Context, method, url string, body []byte) (string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return "", fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Provisioning API request failed", "method", method, "url", url, "error", err)
		return "", fmt.Errorf("provisioning API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read provisioning API response", "method", method, "url", url, "error", err)
		return "", fmt.Errorf("failed to read provisioning API response: %w", err)
	}

	c.log.DebugContext(ctx, "Provisioning API request finished",
		"method", method, "url", url, "status", resp.StatusCode, "body_len", len(data))
	return string(data), nil
}
