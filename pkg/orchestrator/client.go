// Package orchestrator provides a Go client for the remote orchestration
// service that resolves a serialized lookup request to a stored file.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	// FetchPath is the orchestrator route that returns a file for a lookup request.
	FetchPath = "/api/v1/files/fetch"
	// UploadPath is the orchestrator route that stores a raw file body.
	UploadPath = "/api/v1/files"

	// DefaultMaxResponseBytes caps the size of a fetched file.
	DefaultMaxResponseBytes int64 = 32 << 20
)

// Client talks to a single orchestrator instance.
// A Client is cheap to create; the underlying *http.Client may be shared.
type Client struct {
	baseURL          string
	apiKey           string
	httpClient       *http.Client
	maxResponseBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxResponseBytes sets the largest file the client accepts. Values <= 0 keep the default.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

// NewClient creates a Client for the orchestrator at baseURL, e.g. "http://orchestrator:9090".
// apiKey is sent as X-API-Key when non-empty.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxResponseBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the JSON form an orchestrator may use instead of a raw body.
type envelope struct {
	Content *string `json:"content"`
}

// Fetch sends the serialized lookup request and returns the file bytes.
// Failures wrap ErrNotFound, ErrUnavailable or ErrInvalidResponse.
// The request is not retried.
func (c *Client) Fetch(ctx context.Context, lookup []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+FetchPath, bytes.NewReader(lookup))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newAPIError(resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	if int64(len(data)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidResponse, c.maxResponseBytes)
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		return decodeEnvelope(data)
	}
	return data, nil
}

// isJSON reports whether contentType names a JSON media type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// decodeEnvelope extracts the base64 content field of a JSON envelope.
func decodeEnvelope(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrInvalidResponse, err)
	}
	if env.Content == nil {
		return nil, fmt.Errorf("%w: envelope has no content field", ErrInvalidResponse)
	}
	content, err := base64.StdEncoding.DecodeString(*env.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: decode content: %w", ErrInvalidResponse, err)
	}
	return content, nil
}

// uploadResponse is the JSON answer to an upload.
type uploadResponse struct {
	FileID string `json:"fileid"`
}

// Upload stores data on the orchestrator and returns the identifier it was assigned.
// Only orchestrators that accept uploads (such as the development mock) support this.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+UploadPath, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("orchestrator: failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", newAPIError(resp.StatusCode, body)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %w", ErrInvalidResponse, err)
	}
	return ur.FileID, nil
}
