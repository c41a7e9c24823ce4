package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mxcd/docgate/internal/model"
	"github.com/mxcd/docgate/pkg/orchestrator"
)

// staticFactory returns a factory that hands out backend on every call.
func staticFactory(backend Backend) BackendFactory {
	return func(model.HeaderTable) (Backend, error) {
		return backend, nil
	}
}

func headersWith(contentType string) model.HeaderTable {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return model.NewHeaderTable(h)
}

func TestNewRequiresFactory(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) returned no error")
	}
}

func TestWithTimeout(t *testing.T) {
	g, _ := New(staticFactory(nil))
	if g.Timeout() != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", g.Timeout(), DefaultTimeout)
	}
	g, _ = New(staticFactory(nil), WithTimeout(-time.Second))
	if g.Timeout() != DefaultTimeout {
		t.Errorf("negative timeout changed Timeout() to %v", g.Timeout())
	}
	g, _ = New(staticFactory(nil), WithTimeout(time.Second))
	if g.Timeout() != time.Second {
		t.Errorf("Timeout() = %v, want 1s", g.Timeout())
	}
}

func TestRetrieve(t *testing.T) {
	payload := []byte{0x25, 0x50, 0x44, 0x46}
	var gotLookup []byte
	var gotDeadline bool

	backend := BackendFunc(func(ctx context.Context, lookup []byte) ([]byte, error) {
		gotLookup = lookup
		_, gotDeadline = ctx.Deadline()
		return payload, nil
	})

	g, err := New(staticFactory(backend), WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	data, err := g.Retrieve(context.Background(), []byte(`{"fileid":"abc123"}`), headersWith("application/pdf"))
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("Retrieve() = %v, want %v", data, payload)
	}
	if string(gotLookup) != `{"fileid":"abc123"}` {
		t.Errorf("backend got lookup %s", gotLookup)
	}
	if !gotDeadline {
		t.Error("backend context has no deadline")
	}
}

func TestRetrieveCreatesBackendPerCall(t *testing.T) {
	var created atomic.Int32
	var seen []string
	factory := func(headers model.HeaderTable) (Backend, error) {
		created.Add(1)
		seen = append(seen, headers.ContentType())
		return BackendFunc(func(context.Context, []byte) ([]byte, error) {
			return []byte("ok"), nil
		}), nil
	}

	g, _ := New(factory)
	for _, ct := range []string{"application/pdf", "image/png"} {
		if _, err := g.Retrieve(context.Background(), []byte(`{}`), headersWith(ct)); err != nil {
			t.Fatalf("Retrieve() error: %v", err)
		}
	}

	if created.Load() != 2 {
		t.Errorf("factory called %d times, want 2", created.Load())
	}
	if len(seen) != 2 || seen[0] != "application/pdf" || seen[1] != "image/png" {
		t.Errorf("factory saw headers %v", seen)
	}
}

func TestRetrieveErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		payload   []byte
		wantErr   error
		isTimeout bool
	}{
		{name: "NotFound", err: &orchestrator.APIError{StatusCode: 404}, wantErr: ErrNotFound},
		{name: "WrappedNotFound", err: fmt.Errorf("lookup: %w", orchestrator.ErrNotFound), wantErr: ErrNotFound},
		{name: "Unavailable", err: &orchestrator.APIError{StatusCode: 503}, wantErr: ErrBackendUnavailable},
		{name: "Deadline", err: context.DeadlineExceeded, wantErr: ErrBackendUnavailable, isTimeout: true},
		{name: "Canceled", err: context.Canceled, wantErr: ErrBackendUnavailable},
		{name: "OrchestratorInvalid", err: orchestrator.ErrInvalidResponse, wantErr: ErrInvalidResponse},
		{name: "Unknown", err: errors.New("unexpected"), wantErr: ErrInvalidResponse},
		{name: "AlreadyClassified", err: ErrNotFound, wantErr: ErrNotFound},
		{name: "NilPayload", wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := BackendFunc(func(context.Context, []byte) ([]byte, error) {
				return tt.payload, tt.err
			})
			g, _ := New(staticFactory(backend))

			data, err := g.Retrieve(context.Background(), []byte(`{"fileid":"x"}`), model.HeaderTable{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Retrieve() error = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrTimeout) != tt.isTimeout {
				t.Errorf("errors.Is(err, ErrTimeout) = %v, want %v", !tt.isTimeout, tt.isTimeout)
			}
			if data != nil {
				t.Errorf("Retrieve() returned data %v alongside an error", data)
			}
		})
	}
}

func TestRetrieveEmptyPayload(t *testing.T) {
	backend := BackendFunc(func(context.Context, []byte) ([]byte, error) {
		return []byte{}, nil
	})
	g, _ := New(staticFactory(backend))

	data, err := g.Retrieve(context.Background(), []byte(`{}`), model.HeaderTable{})
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Retrieve() = %v, want empty", data)
	}
}

func TestRetrieveTimeout(t *testing.T) {
	backend := BackendFunc(func(ctx context.Context, _ []byte) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	g, _ := New(staticFactory(backend), WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := g.Retrieve(context.Background(), []byte(`{}`), model.HeaderTable{})
	if !errors.Is(err, ErrTimeout) || !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Retrieve() took %v", elapsed)
	}
}

func TestRetrieveCallerCancel(t *testing.T) {
	backend := BackendFunc(func(ctx context.Context, _ []byte) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	g, _ := New(staticFactory(backend), WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Retrieve(ctx, []byte(`{}`), model.HeaderTable{})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrBackendUnavailable", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("caller cancellation reported as timeout")
	}
}

func TestRetrieveFactoryFailure(t *testing.T) {
	tests := []struct {
		name    string
		factory BackendFactory
	}{
		{name: "Error", factory: func(model.HeaderTable) (Backend, error) { return nil, errors.New("no route") }},
		{name: "NilBackend", factory: func(model.HeaderTable) (Backend, error) { return nil, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := New(tt.factory)
			_, err := g.Retrieve(context.Background(), []byte(`{}`), model.HeaderTable{})
			if !errors.Is(err, ErrBackendUnavailable) {
				t.Fatalf("Retrieve() error = %v, want ErrBackendUnavailable", err)
			}
		})
	}
}

func TestRetrieveConcurrent(t *testing.T) {
	backend := BackendFunc(func(_ context.Context, lookup []byte) ([]byte, error) {
		req, err := model.ParseLookupRequest(lookup)
		if err != nil {
			return nil, err
		}
		return []byte("content-of-" + req.FileID()), nil
	})
	g, _ := New(staticFactory(backend))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", i)
			lookup, _ := model.NewLookupRequest(id).Serialize()
			data, err := g.Retrieve(context.Background(), lookup, model.HeaderTable{})
			if err != nil {
				t.Errorf("Retrieve(%s) error: %v", id, err)
				return
			}
			if string(data) != "content-of-"+id {
				t.Errorf("Retrieve(%s) = %s", id, data)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewOrchestratorFactory(t *testing.T) {
	if _, err := NewOrchestratorFactory(OrchestratorOptions{}); err == nil {
		t.Fatal("NewOrchestratorFactory() without BaseURL returned no error")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Caller-Header") != "" {
			t.Error("inbound headers were forwarded to the orchestrator")
		}
		body, _ := io.ReadAll(r.Body)
		switch string(body) {
		case `{"fileid":"abc123"}`:
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("%PDF"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	factory, err := NewOrchestratorFactory(OrchestratorOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOrchestratorFactory() error: %v", err)
	}
	g, _ := New(factory, WithTimeout(time.Second))

	h := http.Header{}
	h.Set("X-Caller-Header", "1")
	headers := model.NewHeaderTable(h)

	data, err := g.Retrieve(context.Background(), []byte(`{"fileid":"abc123"}`), headers)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if string(data) != "%PDF" {
		t.Errorf("Retrieve() = %q", data)
	}

	_, err = g.Retrieve(context.Background(), []byte(`{"fileid":"missing"}`), headers)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Retrieve(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	factory, _ := NewOrchestratorFactory(OrchestratorOptions{BaseURL: server.URL})
	g, _ := New(factory, WithTimeout(50*time.Millisecond))

	_, err := g.Retrieve(context.Background(), []byte(`{"fileid":"slow"}`), model.HeaderTable{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Retrieve() error = %v, want ErrTimeout", err)
	}
}
