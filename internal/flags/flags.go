// Package flags holds the flag schema and the immutable registry built from it.
//
// A flag block has two fields:
//
//	[default.flags.<flag_name>]
//	scheme = "session"
//	enabled = 0.5
//
// scheme selects how a bucketing identifier is obtained when the caller does
// not supply one ("random" or "session"); enabled is the fraction of the
// interval [0,1] for which the flag is on.
package flags

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Scheme is a bucketing scheme name.
type Scheme string

const (
	SchemeRandom  Scheme = "random"
	SchemeSession Scheme = "session"
)

// DefaultScheme applies to definitions that leave scheme unset.
const DefaultScheme = SchemeSession

// Valid reports whether s is one of the known schemes.
func (s Scheme) Valid() bool {
	return s == SchemeRandom || s == SchemeSession
}

// Definition is the configuration of a single flag.
type Definition struct {
	Scheme  Scheme  `json:"scheme" yaml:"scheme"`
	Enabled float64 `json:"enabled" yaml:"enabled"`
}

// Registry maps flag names to definitions. It is never mutated after
// construction and may be shared between goroutines without locking.
type Registry struct {
	defs        map[string]Definition
	names       []string
	fingerprint string
}

// NewRegistry builds a registry from defs. The map is copied; later changes to
// defs do not affect the registry.
//
// Flag names are case-insensitive and stored in lower case, whichever source
// they came from. Validate rejects names that collide once lowercased.
func NewRegistry(defs map[string]Definition) *Registry {
	r := &Registry{
		defs:  make(map[string]Definition, len(defs)),
		names: make([]string, 0, len(defs)),
	}
	for name, def := range defs {
		key := normalizeName(name)
		if _, dup := r.defs[key]; !dup {
			r.names = append(r.names, key)
		}
		r.defs[key] = def
	}
	sort.Strings(r.names)
	r.fingerprint = r.computeFingerprint()
	return r
}

// Get returns the definition for name, ignoring case. A missing flag is not
// an error.
func (r *Registry) Get(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	if def, ok := r.defs[name]; ok {
		return def, true
	}
	def, ok := r.defs[normalizeName(name)]
	return def, ok
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}

// Names returns the flag names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of flags.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Definitions returns a copy of the underlying map.
func (r *Registry) Definitions() map[string]Definition {
	out := make(map[string]Definition, r.Len())
	if r == nil {
		return out
	}
	for name, def := range r.defs {
		out[name] = def
	}
	return out
}

// Fingerprint is a weak ETag identifying the registry contents. Registries
// with equal definitions have equal fingerprints.
func (r *Registry) Fingerprint() string {
	if r == nil {
		return NewRegistry(nil).fingerprint
	}
	return r.fingerprint
}

func (r *Registry) computeFingerprint() string {
	d := xxhash.New()
	for _, name := range r.names {
		def := r.defs[name]
		_, _ = d.WriteString(name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(string(def.Scheme))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.FormatFloat(def.Enabled, 'g', -1, 64))
		_, _ = d.WriteString("\n")
	}
	return `W/"` + strconv.FormatUint(d.Sum64(), 16) + `"`
}

// Holder publishes the current registry. Reloads swap in a whole new
// registry; readers never see a partially built one.
type Holder struct {
	current atomic.Pointer[Registry]
}

// NewHolder returns a holder publishing r.
func NewHolder(r *Registry) *Holder {
	h := &Holder{}
	h.Store(r)
	return h
}

// Load returns the current registry, or an empty one if none was stored.
func (h *Holder) Load() *Registry {
	if h == nil {
		return NewRegistry(nil)
	}
	if r := h.current.Load(); r != nil {
		return r
	}
	return NewRegistry(nil)
}

// Store replaces the current registry.
func (h *Holder) Store(r *Registry) {
	h.current.Store(r)
}
