package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/bucketflags/internal/featureflags"
)

const (
	bucketForParam = "bucket_for"
	flagsParam     = "flags"
	maxEvalFlags   = 100
)

type evaluateResponse struct {
	Results []featureflags.Evaluation `json:"results"`
}

// bucketFor returns the explicit bucketing override from the query, or nil.
func bucketFor(r *http.Request) any {
	q := r.URL.Query()
	if !q.Has(bucketForParam) {
		return nil
	}
	return q.Get(bucketForParam)
}

// handleEvaluateFlag handles GET /v1/flags/{name}/evaluate.
// Unknown flags evaluate to false like any other disabled flag.
func (s *Server) handleEvaluateFlag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, featureflags.Evaluation{
		Flag:    name,
		Enabled: s.flags.IsEnabled(r.Context(), name, bucketFor(r)),
	})
}

// handleEvaluate handles GET /v1/evaluate?flags=a,b,c.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	names := splitNames(r.URL.Query().Get(flagsParam))
	if len(names) == 0 {
		BadRequestError(w, r, ErrCodeMissingField, "flags query parameter is required")
		return
	}
	if len(names) > maxEvalFlags {
		BadRequestErrorWithFields(w, r, ErrCodeValidation, "too many flags requested",
			map[string]string{flagsParam: "at most 100 flags per request"})
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Results: s.flags.Evaluate(r.Context(), names, bucketFor(r)),
	})
}
