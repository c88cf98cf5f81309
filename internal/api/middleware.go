package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	"github.com/TimurManjosov/bucketflags/internal/session"
)

// sessionContext installs a session slot for the request, fills it from the
// session query parameter and clears it once the handler returns.
func (s *Server) sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := session.NewContext(r.Context())
		defer session.ClearSessionID(ctx)

		if q := r.URL.Query(); q.Has(s.sessionParam) {
			if err := session.SetSessionID(ctx, q.Get(s.sessionParam)); err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("set session id")
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog attaches the server logger to the request and logs one line per
// request once it completes.
func (s *Server) accessLog(next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})
	return hlog.NewHandler(s.logger)(access(next))
}
