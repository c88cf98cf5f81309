package flags

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// BaseEnv is the settings section every environment inherits from.
	BaseEnv = "default"
	// DefaultEnvPrefix prefixes environment variables overriding single fields,
	// e.g. BUCKETFLAGS_FLAGS__NEW_TAB__ENABLED=0.25.
	DefaultEnvPrefix = "BUCKETFLAGS"
)

// An explicit empty scheme is an error; only an omitted one means DefaultScheme.
var emptySchemeMessage = fmt.Sprintf("must be one of %q, %q, got %q", SchemeRandom, SchemeSession, "")

// Source produces raw flag definitions. Sources do not validate; LoadRegistry
// does that once over the merged result.
type Source interface {
	Load(ctx context.Context) (map[string]Definition, error)
}

// LoadRegistry loads definitions from src, validates them and builds a registry.
// Any returned error is fatal to startup.
func LoadRegistry(ctx context.Context, src Source) (*Registry, error) {
	defs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(defs); err != nil {
		return nil, err
	}
	return NewRegistry(defs), nil
}

// FileSource reads TOML settings files laid out in environment sections:
//
//	[default.flags.new_tab]
//	scheme = "random"
//	enabled = 0.1
//
//	[staging.flags.new_tab]
//	scheme = "session"
//	enabled = 1.0
//
// Files are merged in order, later files winning. The selected environment's
// flag blocks replace same-named blocks from the default section and add new
// ones. Environment variables of the form <PREFIX>_FLAGS__<NAME>__<FIELD> are
// applied last.
//
// Flag names are case-insensitive and reported in lower case.
type FileSource struct {
	Files     []string
	Env       string
	EnvPrefix string
	// Environ lists environment variables; os.Environ when nil.
	Environ func() []string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) (map[string]Definition, error) {
	if len(s.Files) == 0 {
		return nil, fmt.Errorf("flags: no settings files configured")
	}

	v := viper.New()
	v.SetConfigType("toml")
	for _, f := range s.Files {
		v.SetConfigFile(f)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("flags: read %s: %w", f, err)
		}
	}

	cerr := &ConfigurationError{}
	defs := decodeSection(v, BaseEnv, cerr)

	env := strings.ToLower(strings.TrimSpace(s.Env))
	if env != "" && env != BaseEnv {
		for name, def := range decodeSection(v, env, cerr) {
			defs[name] = def
		}
	}

	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}
	prefix := s.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	applyEnvOverrides(defs, prefix, environ(), cerr)

	if !cerr.empty() {
		return nil, cerr
	}
	return defs, nil
}

func decodeSection(v *viper.Viper, section string, cerr *ConfigurationError) map[string]Definition {
	defs := make(map[string]Definition)
	raw := v.Get(section + ".flags")
	if raw == nil {
		return defs
	}
	blocks, err := cast.ToStringMapE(raw)
	if err != nil {
		cerr.add(section+".flags", "must be a table of flag blocks")
		return defs
	}
	for name, block := range blocks {
		def, ok := decodeBlock(name, block, cerr)
		if ok {
			defs[strings.ToLower(name)] = def
		}
	}
	return defs
}

func decodeBlock(name string, block any, cerr *ConfigurationError) (Definition, bool) {
	fields, err := cast.ToStringMapE(block)
	if err != nil {
		cerr.add("flags."+name, "must be a table with scheme and enabled")
		return Definition{}, false
	}

	var def Definition
	ok := true
	for key, val := range fields {
		switch strings.ToLower(key) {
		case "scheme":
			s, err := cast.ToStringE(val)
			if err != nil {
				cerr.add(fieldPath(name, "scheme"), "must be a string")
				ok = false
				continue
			}
			if s == "" {
				cerr.add(fieldPath(name, "scheme"), emptySchemeMessage)
				ok = false
				continue
			}
			def.Scheme = Scheme(s)
		case "enabled":
			f, err := cast.ToFloat64E(val)
			if err != nil {
				cerr.add(fieldPath(name, "enabled"), "must be a number")
				ok = false
				continue
			}
			def.Enabled = f
		default:
			cerr.add(fieldPath(name, key), "unknown field")
			ok = false
		}
	}
	return def, ok
}

// applyEnvOverrides applies <prefix>_FLAGS__<NAME>__<FIELD>=<value> entries.
func applyEnvOverrides(defs map[string]Definition, prefix string, environ []string, cerr *ConfigurationError) {
	marker := strings.ToUpper(prefix) + "_FLAGS__"
	for _, kv := range environ {
		key, val, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(strings.ToUpper(key), marker) {
			continue
		}
		nameField := key[len(marker):]
		sep := strings.LastIndex(nameField, "__")
		if sep <= 0 {
			cerr.add(key, "expected "+marker+"<NAME>__<FIELD>")
			continue
		}
		name := strings.ToLower(nameField[:sep])
		field := strings.ToLower(nameField[sep+2:])

		def := defs[name]
		switch field {
		case "scheme":
			scheme := strings.TrimSpace(val)
			if scheme == "" {
				cerr.add(fieldPath(name, "scheme"), emptySchemeMessage)
				continue
			}
			def.Scheme = Scheme(scheme)
		case "enabled":
			f, err := cast.ToFloat64E(strings.TrimSpace(val))
			if err != nil {
				cerr.add(fieldPath(name, "enabled"), fmt.Sprintf("must be a number, got %q", val))
				continue
			}
			def.Enabled = f
		default:
			cerr.add(fieldPath(name, field), "unknown field")
			continue
		}
		defs[name] = def
	}
}
