package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

type flagsResponse struct {
	ETag  string                      `json:"etag"`
	Flags map[string]flags.Definition `json:"flags"`
}

type flagResponse struct {
	Name string `json:"name"`
	flags.Definition
}

// handleListFlags handles GET /v1/flags. The ETag is the registry
// fingerprint; a matching If-None-Match answers 304.
func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	reg := s.registry.Load()
	etag := reg.Fingerprint()

	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Values("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, flagsResponse{ETag: etag, Flags: reg.Definitions()})
}

// handleGetFlag handles GET /v1/flags/{name}.
func (s *Server) handleGetFlag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := s.registry.Load().Get(name)
	if !ok {
		NotFoundError(w, r, "flag not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, flagResponse{Name: name, Definition: def})
}

// etagMatches reports whether any If-None-Match value matches etag using weak
// comparison. Values may be comma separated lists or "*".
func etagMatches(values []string, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
				return true
			}
		}
	}
	return false
}
