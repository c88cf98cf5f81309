// Package store provides the sources flag definitions are loaded from.
//
// Every source yields raw definitions; validation happens once in
// flags.LoadRegistry. Sources layer an environment section over the
// "default" section the same way regardless of backend.
package store

import (
	"context"

	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// Source is a flags.Source holding resources that must be released.
type Source interface {
	flags.Source

	// Close releases any resources held by the source.
	Close() error
}

// Writer is implemented by sources that accept definition changes. Changes
// only reach a running server on its next full reload.
type Writer interface {
	UpsertDefinition(ctx context.Context, env, name string, def flags.Definition) error
	DeleteDefinition(ctx context.Context, env, name string) error
}

// fileSource adapts flags.FileSource to Source.
type fileSource struct {
	flags.FileSource
}

func (fileSource) Close() error { return nil }

// overlay returns base with env's definitions laid over it.
func overlay(base, env map[string]flags.Definition) map[string]flags.Definition {
	out := make(map[string]flags.Definition, len(base)+len(env))
	for name, def := range base {
		out[name] = def
	}
	for name, def := range env {
		out[name] = def
	}
	return out
}
