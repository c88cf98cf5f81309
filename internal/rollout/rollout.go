// Package rollout turns bucketing identifiers into rollout decisions.
//
// An identifier is either supplied by the caller or derived from the flag's
// scheme:
//   - string override: SHA-256 digest of the string
//   - []byte override: used as is
//   - "random" scheme: 32 fresh bytes from crypto/rand on every call
//   - "session" scheme: digest of the request's session id
//
// The identifier is mapped to a value in [0,1) with ToInterval and compared
// against the flag's enabled fraction.
package rollout

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/session"
)

// Failure names the reason a bucketing identifier could not be produced.
type Failure string

const (
	FailureNone              Failure = ""
	FailureInvalidOverride   Failure = "invalid_override_type"
	FailureUnsupportedScheme Failure = "unsupported_scheme"
	FailureMissingSession    Failure = "missing_session_context"
	FailureRandomSource      Failure = "random_source"
)

// Resolution is the outcome of Resolve: an identifier, or a failure reason
// with detail for logging.
type Resolution struct {
	ID      []byte
	Failure Failure
	Detail  string
}

// OK reports whether an identifier was produced.
func (r Resolution) OK() bool { return r.Failure == FailureNone }

func failed(f Failure, format string, args ...any) Resolution {
	return Resolution{Failure: f, Detail: fmt.Sprintf(format, args...)}
}

// Resolver produces bucketing identifiers. The zero value reads random bytes
// from crypto/rand, which is safe for concurrent use.
type Resolver struct {
	// Random overrides the entropy source for the random scheme.
	Random io.Reader
}

// Resolve uses the zero Resolver.
func Resolve(ctx context.Context, scheme flags.Scheme, override any) Resolution {
	return Resolver{}.Resolve(ctx, scheme, override)
}

// Resolve returns the bucketing identifier for one evaluation. An explicit
// override takes precedence over the scheme. Resolve never panics; every
// problem is reported through Resolution.Failure.
func (r Resolver) Resolve(ctx context.Context, scheme flags.Scheme, override any) Resolution {
	if override != nil {
		switch v := override.(type) {
		case string:
			return Resolution{ID: Digest(v)}
		case []byte:
			return Resolution{ID: v}
		default:
			return failed(FailureInvalidOverride, "bucket_for must be string or []byte, got %T", override)
		}
	}

	switch scheme {
	case flags.SchemeRandom:
		return r.random()
	case flags.SchemeSession:
		id, ok := session.ID(ctx)
		if !ok {
			return failed(FailureMissingSession, "scheme %q requires a session id, none set", scheme)
		}
		return Resolution{ID: Digest(id)}
	default:
		return failed(FailureUnsupportedScheme, "scheme must be one of %q, %q, got %q",
			flags.SchemeRandom, flags.SchemeSession, scheme)
	}
}

func (r Resolver) random() Resolution {
	src := r.Random
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, IDSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return failed(FailureRandomSource, "read random bytes: %v", err)
	}
	return Resolution{ID: buf}
}

// Decide maps id onto [0,1) and reports whether it falls at or below enabled.
func Decide(id []byte, enabled float64) bool {
	return ToInterval(id) <= enabled
}
