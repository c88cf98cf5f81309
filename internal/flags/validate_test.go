package flags

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		defs      map[string]Definition
		wantField string
	}{
		{"empty registry", map[string]Definition{}, ""},
		{"enabled zero", map[string]Definition{"a": {Scheme: SchemeRandom, Enabled: 0}}, ""},
		{"enabled one", map[string]Definition{"a": {Scheme: SchemeSession, Enabled: 1}}, ""},
		{"scheme unset", map[string]Definition{"a": {Enabled: 0.5}}, ""},
		{"enabled above one", map[string]Definition{"a": {Scheme: SchemeRandom, Enabled: 1.5}}, "flags.a.enabled"},
		{"enabled negative", map[string]Definition{"a": {Scheme: SchemeRandom, Enabled: -0.1}}, "flags.a.enabled"},
		{"enabled NaN", map[string]Definition{"a": {Scheme: SchemeRandom, Enabled: math.NaN()}}, "flags.a.enabled"},
		{"unknown scheme", map[string]Definition{"a": {Scheme: "sticky", Enabled: 0.5}}, "flags.a.scheme"},
		{"empty name", map[string]Definition{" ": {Scheme: SchemeRandom, Enabled: 0.5}}, "flags"},
		{"name with dot", map[string]Definition{"a.b": {Enabled: 0.5}}, "flags.a.b.name"},
		{"name too long", map[string]Definition{strings.Repeat("x", MaxNameLength+1): {Enabled: 0.5}},
			"flags." + strings.Repeat("x", MaxNameLength+1) + ".name"},
		{"mixed case name", map[string]Definition{"New_Tab": {Enabled: 0.5}}, ""},
		{"names differing only in case", map[string]Definition{
			"New_Tab": {Enabled: 0.5},
			"new_tab": {Enabled: 1},
		}, "flags.new_tab.name"},
		{"name at max length", map[string]Definition{strings.Repeat("x", MaxNameLength): {Enabled: 0.5}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.defs)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("Expected *ConfigurationError, got %v", err)
			}
			if _, ok := cerr.Errors[tt.wantField]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantField, cerr.Errors)
			}
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	err := Validate(map[string]Definition{
		"a": {Scheme: "bogus", Enabled: 2},
		"b": {Scheme: SchemeRandom, Enabled: -1},
	})

	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected *ConfigurationError, got %v", err)
	}
	if len(cerr.Errors) != 3 {
		t.Errorf("Expected 3 field errors, got %d: %v", len(cerr.Errors), cerr.Errors)
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "invalid flag configuration: flags.a.enabled") {
		t.Errorf("Expected sorted message, got %q", msg)
	}
}

func TestScheme_Valid(t *testing.T) {
	if !SchemeRandom.Valid() || !SchemeSession.Valid() {
		t.Error("Expected built-in schemes to be valid")
	}
	if Scheme("").Valid() || Scheme("Random").Valid() {
		t.Error("Expected empty and mis-cased schemes to be invalid")
	}
}
