// Package api is the HTTP serving layer around the flag evaluator.
//
// Every request gets its own session slot: the session middleware reads the
// session query parameter, stores it before the handler runs and clears it
// when the handler returns.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/bucketflags/internal/featureflags"
	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/telemetry"
)

const (
	DefaultSessionParam = "sid"
	requestTimeout      = 5 * time.Second
)

// Server serves flag definitions and evaluations.
type Server struct {
	registry       *flags.Holder
	flags          *featureflags.FeatureFlags
	logger         zerolog.Logger
	sessionParam   string
	rateLimitPerIP int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for access logs, evaluation failures and reloads.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSessionParam sets the query parameter carrying the session id.
func WithSessionParam(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.sessionParam = name
		}
	}
}

// WithRateLimit limits each client IP to n requests per minute; 0 disables.
func WithRateLimit(n int) Option {
	return func(s *Server) { s.rateLimitPerIP = n }
}

// NewServer creates a server evaluating flags from h.
func NewServer(h *flags.Holder, opts ...Option) *Server {
	s := &Server{
		registry:     h,
		logger:       zerolog.Nop(),
		sessionParam: DefaultSessionParam,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.flags = featureflags.New(h, featureflags.WithLogger(s.logger))
	return s
}

// Flags returns the evaluator used by the handlers.
func (s *Server) Flags() *featureflags.FeatureFlags { return s.flags }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.Middleware)
	if s.rateLimitPerIP > 0 {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/flags", s.handleListFlags)
		r.Get("/flags/{name}", s.handleGetFlag)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionContext)
			r.Get("/flags/{name}/evaluate", s.handleEvaluateFlag)
			r.Get("/evaluate", s.handleEvaluate)
		})
	})

	return r
}

// Reload loads a fresh registry from src and publishes it. On error the
// current registry stays in place.
func (s *Server) Reload(ctx context.Context, src flags.Source) error {
	reg, err := flags.LoadRegistry(ctx, src)
	if err != nil {
		telemetry.RegistryReloads.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("flag registry reload failed, keeping current registry")
		return err
	}

	previous := s.registry.Load().Fingerprint()
	s.registry.Store(reg)
	telemetry.RegistryReloads.WithLabelValues("ok").Inc()
	telemetry.RegistryFlags.Set(float64(reg.Len()))
	s.logger.Info().
		Int("flags", reg.Len()).
		Str("etag", reg.Fingerprint()).
		Bool("changed", previous != reg.Fingerprint()).
		Msg("flag registry reloaded")
	return nil
}
