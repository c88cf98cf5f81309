package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

func TestNewTestServer(t *testing.T) {
	server, memStore := NewTestServer(t, StandardFlags())
	if server == nil || memStore == nil {
		t.Fatal("Expected non-nil server and store")
	}

	defs, err := memStore.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs) != len(StandardFlags()) {
		t.Errorf("Expected %d seeded flags, got %d", len(StandardFlags()), len(defs))
	}
}

func TestNewTestServer_EmptyRegistry(t *testing.T) {
	server, _ := NewTestServer(t, nil)
	if server.Flags().IsEnabled(context.Background(), "anything", nil) {
		t.Error("Expected empty registry to disable everything")
	}
}

func TestHTTPRequest_Do(t *testing.T) {
	server, _ := NewTestServer(t, nil)

	rr := (&HTTPRequest{Path: "/healthz"}).Do(t, server.Router())
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", rr.Body.String())
	}
}

func TestHTTPRequest_DoWithHeaders(t *testing.T) {
	server, _ := NewTestServer(t, map[string]flags.Definition{"a": {Scheme: flags.SchemeRandom, Enabled: 1}})
	handler := server.Router()

	first := (&HTTPRequest{Path: "/v1/flags"}).Do(t, handler)
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("Expected ETag header")
	}

	rr := (&HTTPRequest{
		Path:    "/v1/flags",
		Headers: map[string]string{"If-None-Match": etag},
	}).Do(t, handler)
	if rr.Code != http.StatusNotModified {
		t.Errorf("Expected 304, got %d", rr.Code)
	}
}
