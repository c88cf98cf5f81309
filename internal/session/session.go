// Package session carries the per-request session identifier used by the
// "session" bucketing scheme.
//
// The identifier lives in a slot attached to the request context, never in a
// package-level variable. A slot is installed once per inbound request with
// NewContext, filled with SetSessionID at the start of handling and emptied
// with ClearSessionID when the request ends. Two requests never share a slot,
// so concurrent requests cannot observe each other's identifier.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSlot is returned when the context was not prepared with NewContext.
var ErrNoSlot = errors.New("session: context has no session slot")

type ctxKey struct{}

type slot struct {
	mu  sync.RWMutex
	id  string
	set bool
}

// NewContext returns a child context holding an empty session slot.
func NewContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &slot{})
}

// WithSessionID is shorthand for NewContext followed by SetSessionID.
func WithSessionID(ctx context.Context, id string) context.Context {
	ctx = NewContext(ctx)
	_ = SetSessionID(ctx, id)
	return ctx
}

func fromContext(ctx context.Context) *slot {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*slot)
	return s
}

// SetSessionID stores id in the request's slot.
func SetSessionID(ctx context.Context, id string) error {
	s := fromContext(ctx)
	if s == nil {
		return ErrNoSlot
	}
	s.mu.Lock()
	s.id, s.set = id, true
	s.mu.Unlock()
	return nil
}

// ClearSessionID empties the request's slot. Clearing a context without a
// slot is a no-op.
func ClearSessionID(ctx context.Context) {
	s := fromContext(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	s.id, s.set = "", false
	s.mu.Unlock()
}

// ID returns the session identifier for ctx, if one is set.
func ID(ctx context.Context) (string, bool) {
	s := fromContext(ctx)
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.set
}
