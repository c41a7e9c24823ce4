// Package gateway is the stateless façade between the document route and the
// retrieval backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mxcd/docgate/internal/model"
	"github.com/mxcd/docgate/pkg/orchestrator"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single backend call when no other timeout is configured.
const DefaultTimeout = 5 * time.Second

// Backend resolves a serialized lookup request to document bytes.
type Backend interface {
	Fetch(ctx context.Context, lookup []byte) ([]byte, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, lookup []byte) ([]byte, error)

// Fetch calls f.
func (f BackendFunc) Fetch(ctx context.Context, lookup []byte) ([]byte, error) {
	return f(ctx, lookup)
}

// BackendFactory creates a backend handle for one request. The request's
// headers are handed over as local context; a factory is free to ignore them.
type BackendFactory func(headers model.HeaderTable) (Backend, error)

// Gateway fetches documents through a freshly created backend handle per call.
// It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	newBackend BackendFactory
	timeout    time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the deadline applied to each backend call. Values <= 0 keep the default.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New creates a Gateway that obtains its backend handles from factory.
func New(factory BackendFactory, opts ...Option) (*Gateway, error) {
	if factory == nil {
		return nil, errors.New("gateway: backend factory cannot be nil")
	}
	g := &Gateway{
		newBackend: factory,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Timeout returns the per-call backend deadline.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Retrieve fetches the document described by the serialized lookup request.
// Errors match ErrNotFound, ErrBackendUnavailable (ErrTimeout for deadlines) or ErrInvalidResponse.
func (g *Gateway) Retrieve(ctx context.Context, lookup []byte, headers model.HeaderTable) ([]byte, error) {
	backend, err := g.newBackend(headers)
	if err != nil {
		return nil, fmt.Errorf("%w: create backend: %w", ErrBackendUnavailable, err)
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: backend factory returned nil", ErrBackendUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	payload, err := backend.Fetch(ctx, lookup)
	if err != nil {
		err = classify(err)
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("gateway: backend fetch failed")
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: backend returned no payload", ErrInvalidResponse)
	}

	log.Debug().Int("bytes", len(payload)).Dur("elapsed", time.Since(start)).Msg("gateway: backend fetch succeeded")
	return payload, nil
}

// OrchestratorOptions addresses the remote orchestrator.
type OrchestratorOptions struct {
	BaseURL          string
	APIKey           string
	MaxResponseBytes int64
	// HTTPClient is shared by every handle the factory creates. Defaults to a client without a timeout;
	// the gateway deadline bounds each call.
	HTTPClient *http.Client
}

// NewOrchestratorFactory returns a BackendFactory that builds a new orchestrator
// client for every request. Headers are not forwarded to the orchestrator.
func NewOrchestratorFactory(options OrchestratorOptions) (BackendFactory, error) {
	if options.BaseURL == "" {
		return nil, errors.New("gateway: orchestrator base URL cannot be empty")
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return func(_ model.HeaderTable) (Backend, error) {
		return orchestrator.NewClient(
			options.BaseURL,
			options.APIKey,
			orchestrator.WithHTTPClient(httpClient),
			orchestrator.WithMaxResponseBytes(options.MaxResponseBytes),
		), nil
	}, nil
}
