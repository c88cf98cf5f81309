package rollout

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/TimurManjosov/bucketflags/internal/flags"
	"github.com/TimurManjosov/bucketflags/internal/session"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestResolve_StringOverride(t *testing.T) {
	res := Resolve(context.Background(), flags.SchemeRandom, "user-123")
	if !res.OK() {
		t.Fatalf("unexpected failure: %s (%s)", res.Failure, res.Detail)
	}
	if !bytes.Equal(res.ID, Digest("user-123")) {
		t.Errorf("Expected digest of override, got %x", res.ID)
	}
}

func TestResolve_BytesOverride(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	res := Resolve(context.Background(), flags.SchemeSession, raw)
	if !res.OK() {
		t.Fatalf("unexpected failure: %s", res.Failure)
	}
	if !bytes.Equal(res.ID, raw) {
		t.Errorf("Expected bytes used verbatim, got %x", res.ID)
	}
}

func TestResolve_OverrideBeatsSession(t *testing.T) {
	ctx := session.WithSessionID(context.Background(), "session-a")
	res := Resolve(ctx, flags.SchemeSession, "explicit")
	if !bytes.Equal(res.ID, Digest("explicit")) {
		t.Error("Expected override to take precedence over session id")
	}
}

func TestResolve_InvalidOverride(t *testing.T) {
	for _, override := range []any{42, 1.5, []string{"a"}, struct{}{}} {
		res := Resolve(context.Background(), flags.SchemeRandom, override)
		if res.Failure != FailureInvalidOverride {
			t.Errorf("override %T: expected %s, got %q", override, FailureInvalidOverride, res.Failure)
		}
		if res.ID != nil {
			t.Errorf("override %T: expected no identifier", override)
		}
	}
}

func TestResolve_Random(t *testing.T) {
	a := Resolve(context.Background(), flags.SchemeRandom, nil)
	b := Resolve(context.Background(), flags.SchemeRandom, nil)
	if !a.OK() || !b.OK() {
		t.Fatalf("unexpected failure: %s / %s", a.Failure, b.Failure)
	}
	if len(a.ID) != IDSize {
		t.Errorf("Expected %d random bytes, got %d", IDSize, len(a.ID))
	}
	if bytes.Equal(a.ID, b.ID) {
		t.Error("Two random identifiers were identical")
	}
}

func TestResolve_RandomSourceFailure(t *testing.T) {
	r := Resolver{Random: failingReader{}}
	res := r.Resolve(context.Background(), flags.SchemeRandom, nil)
	if res.Failure != FailureRandomSource {
		t.Errorf("Expected %s, got %q", FailureRandomSource, res.Failure)
	}
}

func TestResolve_Session(t *testing.T) {
	ctx := session.WithSessionID(context.Background(), "000")
	res := Resolve(ctx, flags.SchemeSession, nil)
	if !res.OK() {
		t.Fatalf("unexpected failure: %s", res.Failure)
	}
	if !bytes.Equal(res.ID, Digest("000")) {
		t.Errorf("Expected digest of session id, got %x", res.ID)
	}
}

func TestResolve_MissingSession(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no slot", context.Background()},
		{"empty slot", session.NewContext(context.Background())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.ctx, flags.SchemeSession, nil)
			if res.Failure != FailureMissingSession {
				t.Errorf("Expected %s, got %q", FailureMissingSession, res.Failure)
			}
		})
	}
}

func TestResolve_ClearedSession(t *testing.T) {
	ctx := session.WithSessionID(context.Background(), "abc")
	session.ClearSessionID(ctx)
	if res := Resolve(ctx, flags.SchemeSession, nil); res.Failure != FailureMissingSession {
		t.Errorf("Expected %s after clear, got %q", FailureMissingSession, res.Failure)
	}
}

func TestResolve_UnsupportedScheme(t *testing.T) {
	for _, scheme := range []flags.Scheme{"", "sticky", "Random"} {
		res := Resolve(context.Background(), scheme, nil)
		if res.Failure != FailureUnsupportedScheme {
			t.Errorf("scheme %q: expected %s, got %q", scheme, FailureUnsupportedScheme, res.Failure)
		}
	}
}

func TestDecide_Boundary(t *testing.T) {
	// {0x80} maps to exactly 0.5
	if !Decide([]byte{0x80}, 0.5) {
		t.Error("Expected value equal to threshold to be enabled")
	}
	if Decide([]byte{0x80, 0x80}, 0.5) {
		t.Error("Expected 0.75 to be above threshold 0.5")
	}
	if !Decide([]byte{0, 0, 0, 0}, 0.5) {
		t.Error("Expected 0.0 to be enabled at 0.5")
	}
	if Decide([]byte{0xff, 0xff, 0xff, 0xff}, 0.5) {
		t.Error("Expected 0.9375 to be disabled at 0.5")
	}
}

func TestDecide_Distribution(t *testing.T) {
	const total = 10000
	for _, p := range []float64{0.25, 0.5, 0.9} {
		hits := 0
		for i := 0; i < total; i++ {
			res := Resolve(context.Background(), flags.SchemeRandom, nil)
			if Decide(res.ID, p) {
				hits++
			}
		}
		rate := float64(hits) / total
		if rate < p-0.05 || rate > p+0.05 {
			t.Errorf("enabled=%.2f: observed rate %.4f outside tolerance", p, rate)
		}
	}
}
