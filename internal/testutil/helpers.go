// Package testutil holds helpers shared by HTTP-level tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TimurManjosov/bucketflags/internal/api"
	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/store"
)

// StandardFlags mirrors the fixtures used across evaluator tests.
func StandardFlags() map[string]flags.Definition {
	return map[string]flags.Definition{
		"test-enabled":              {Scheme: flags.SchemeRandom, Enabled: 1},
		"test-not-enabled":          {Scheme: flags.SchemeRandom, Enabled: 0},
		"test-perc-enabled":         {Scheme: flags.SchemeRandom, Enabled: 0.5},
		"test-perc-enabled-session": {Scheme: flags.SchemeSession, Enabled: 0.5},
	}
}

// NewTestServer creates a server over a registry loaded from an in-memory
// store seeded with defs. The store is returned for reload tests.
func NewTestServer(t *testing.T, defs map[string]flags.Definition, opts ...api.Option) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore(flags.BaseEnv)
	if err := SeedDefinitions(context.Background(), memStore, flags.BaseEnv, defs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reg, err := flags.LoadRegistry(context.Background(), memStore)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return api.NewServer(flags.NewHolder(reg), opts...), memStore
}

// SeedDefinitions writes defs into w under env.
func SeedDefinitions(ctx context.Context, w store.Writer, env string, defs map[string]flags.Definition) error {
	for name, def := range defs {
		if err := w.UpsertDefinition(ctx, env, name, def); err != nil {
			return err
		}
	}
	return nil
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
