package flags

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinEnabled = 0.0
	MaxEnabled = 1.0

	// MaxNameLength is the maximum length for flag names
	MaxNameLength = 64
)

// namePattern matches alphanumeric characters, underscores, and hyphens
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ConfigurationError reports invalid flag definitions found at load time.
// It is fatal to startup and never reaches evaluation.
type ConfigurationError struct {
	// Errors maps a field path such as "flags.my_flag.enabled" to a message.
	Errors map[string]string
}

func (e *ConfigurationError) add(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[field] = message
}

func (e *ConfigurationError) empty() bool { return len(e.Errors) == 0 }

// Error implements the error interface. Fields are listed in sorted order.
func (e *ConfigurationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Errors[f]
	}
	return "invalid flag configuration: " + strings.Join(parts, "; ")
}

func fieldPath(name, field string) string {
	return "flags." + name + "." + field
}

// Validate checks every definition and returns a *ConfigurationError listing
// all violations, or nil.
//
// Rules:
//   - names are at most MaxNameLength characters of [a-zA-Z0-9_-] and
//     unique ignoring case
//   - enabled must satisfy 0.0 <= enabled <= 1.0
//   - scheme must be "random" or "session"; an empty scheme means DefaultScheme
func Validate(defs map[string]Definition) error {
	cerr := &ConfigurationError{}
	seen := make(map[string]string, len(defs))
	for name, def := range defs {
		if strings.TrimSpace(name) == "" {
			cerr.add("flags", "flag name cannot be empty")
			continue
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			cerr.add(fieldPath(name, "name"), fmt.Sprintf("must not exceed %d characters", MaxNameLength))
			continue
		}
		if !namePattern.MatchString(name) {
			cerr.add(fieldPath(name, "name"), "must contain only alphanumeric characters, underscores, and hyphens")
			continue
		}
		key := normalizeName(name)
		if other, dup := seen[key]; dup {
			first, second := other, name
			if second < first {
				first, second = second, first
			}
			cerr.add(fieldPath(key, "name"), fmt.Sprintf("%q and %q differ only in case", first, second))
		}
		seen[key] = name
		if math.IsNaN(def.Enabled) || def.Enabled < MinEnabled || def.Enabled > MaxEnabled {
			cerr.add(fieldPath(name, "enabled"),
				fmt.Sprintf("must be between %.1f and %.1f, got %v", MinEnabled, MaxEnabled, def.Enabled))
		}
		if def.Scheme != "" && !def.Scheme.Valid() {
			cerr.add(fieldPath(name, "scheme"),
				fmt.Sprintf("must be one of %q, %q, got %q", SchemeRandom, SchemeSession, def.Scheme))
		}
	}
	if cerr.empty() {
		return nil
	}
	return cerr
}
