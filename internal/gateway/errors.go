package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/mxcd/docgate/pkg/orchestrator"
)

var (
	// ErrNotFound means the identifier does not resolve to a document.
	ErrNotFound = errors.New("gateway: document not found")
	// ErrBackendUnavailable means the backend call did not complete.
	ErrBackendUnavailable = errors.New("gateway: backend unavailable")
	// ErrTimeout means the backend call ran past the gateway deadline.
	// It also matches ErrBackendUnavailable.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrBackendUnavailable)
	// ErrInvalidResponse means the backend answered with something that is not a document payload.
	ErrInvalidResponse = errors.New("gateway: invalid backend response")
)

// classify maps a backend error onto the gateway taxonomy, keeping the cause in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBackendUnavailable), errors.Is(err, ErrInvalidResponse):
		return err
	case errors.Is(err, orchestrator.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var netErr net.Error
	isNetErr := errors.As(err, &netErr)
	switch {
	case isNetErr && netErr.Timeout():
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case isNetErr, errors.Is(err, context.Canceled), errors.Is(err, orchestrator.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
}
