package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TimurManjosov/bucketflags/internal/api"
	"github.com/TimurManjosov/bucketflags/internal/config"
	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/logging"
	"github.com/TimurManjosov/bucketflags/internal/store"
	"github.com/TimurManjosov/bucketflags/internal/telemetry"
)

func main() {
	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("config")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("logging")
	}
	logger = logger.With().Str("app_env", cfg.AppEnv).Logger()

	ctx := context.Background()
	src, err := store.NewSource(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("flag source")
	}
	defer src.Close()

	// invalid flag configuration is fatal at startup
	reg, err := flags.LoadRegistry(ctx, src)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.FlagsSource).Msg("load flags")
	}
	holder := flags.NewHolder(reg)

	telemetry.Init()
	telemetry.RegistryFlags.Set(float64(reg.Len()))
	logger.Info().Int("flags", reg.Len()).Str("etag", reg.Fingerprint()).Msg("flag registry loaded")

	srvAPI := api.NewServer(holder,
		api.WithLogger(logger),
		api.WithSessionParam(cfg.SessionParam),
		api.WithRateLimit(cfg.RateLimitPerIP),
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		return serve(srv)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		return serve(metricsSrv)
	})

	// SIGHUP triggers a full reload; a bad reload keeps the current registry
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				_ = srvAPI.Reload(gctx, src)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(srv.Shutdown(ctxShut), metricsSrv.Shutdown(ctxShut))
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server")
	}
	logger.Info().Msg("stopped")
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
