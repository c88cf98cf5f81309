// Package featureflags answers "is this flag on right now?".
//
// IsEnabled is built to fail closed: an unknown flag, an out-of-range enabled
// value or any problem producing a bucketing identifier yields false. It
// never returns an error and never panics; failures are logged with the flag,
// scheme and reason.
//
// Usage:
//
//	ff := featureflags.New(holder, featureflags.WithLogger(logger))
//	if ff.IsEnabled(r.Context(), "new_tab", nil) {
//	    // ...
//	}
//
// bucketFor overrides the flag's scheme. A string is hashed, a []byte is used
// as is; anything else disables the flag for that call.
package featureflags

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/rollout"
	"github.com/TimurManjosov/bucketflags/internal/telemetry"
)

// ReasonUnknownFlag labels evaluations of flags missing from the registry.
const ReasonUnknownFlag = "unknown_flag"

// FeatureFlags evaluates flags from the registry published by a flags.Holder.
// It is safe for concurrent use.
type FeatureFlags struct {
	registry *flags.Holder
	resolver rollout.Resolver
	logger   zerolog.Logger
}

// Option configures FeatureFlags.
type Option func(*FeatureFlags)

// WithLogger sets the logger used for evaluation failures.
func WithLogger(l zerolog.Logger) Option {
	return func(f *FeatureFlags) { f.logger = l }
}

// WithResolver replaces the bucketing identifier resolver.
func WithResolver(r rollout.Resolver) Option {
	return func(f *FeatureFlags) { f.resolver = r }
}

// New returns an evaluator reading from h. Without WithLogger nothing is logged.
func New(h *flags.Holder, opts ...Option) *FeatureFlags {
	f := &FeatureFlags{
		registry: h,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsEnabled reports whether flagName is on for this evaluation.
//
// Steps, each of which may short-circuit to false:
//  1. look up the flag
//  2. reject enabled <= 0 or enabled > 1
//  3. resolve the bucketing identifier from bucketFor, or from the flag's
//     scheme (session when unset)
//  4. map the identifier onto [0,1) and compare: value <= enabled
func (f *FeatureFlags) IsEnabled(ctx context.Context, flagName string, bucketFor any) bool {
	telemetry.FlagEvaluations.Inc()

	def, ok := f.registry.Load().Get(flagName)
	if !ok {
		telemetry.FlagEvaluationFailures.WithLabelValues(ReasonUnknownFlag).Inc()
		f.logger.Debug().Str("flag", flagName).Msg("flag not configured")
		return false
	}

	if def.Enabled <= 0.0 || def.Enabled > 1.0 {
		return false
	}

	scheme := def.Scheme
	if scheme == "" {
		scheme = flags.DefaultScheme
	}

	res := f.resolver.Resolve(ctx, scheme, bucketFor)
	if !res.OK() {
		telemetry.FlagEvaluationFailures.WithLabelValues(string(res.Failure)).Inc()
		f.logger.Warn().
			Str("flag", flagName).
			Str("scheme", string(scheme)).
			Str("reason", string(res.Failure)).
			Msg(res.Detail)
		return false
	}

	return rollout.Decide(res.ID, def.Enabled)
}

// Evaluation is the outcome of one flag check as reported by Evaluate.
type Evaluation struct {
	Flag    string `json:"flag"`
	Enabled bool   `json:"enabled"`
}

// Evaluate checks each of names; unknown names evaluate to false.
func (f *FeatureFlags) Evaluate(ctx context.Context, names []string, bucketFor any) []Evaluation {
	out := make([]Evaluation, 0, len(names))
	for _, name := range names {
		out = append(out, Evaluation{Flag: name, Enabled: f.IsEnabled(ctx, name, bucketFor)})
	}
	return out
}
