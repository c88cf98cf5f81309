package rollout

import (
	"bytes"
	"encoding/hex"
	"math"
	"strconv"
	"testing"
)

func TestDigest_Deterministic(t *testing.T) {
	a := Digest("x")
	b := Digest("x")
	if !bytes.Equal(a, b) {
		t.Errorf("Digest is not deterministic: %x vs %x", a, b)
	}
	if len(a) != IDSize {
		t.Errorf("Expected %d bytes, got %d", IDSize, len(a))
	}
}

func TestDigest_KnownValue(t *testing.T) {
	want := "2ac9a6746aca543af8dff39894cfe8173afba21eb01c6fae33d52947222855ef"
	if got := hex.EncodeToString(Digest("000")); got != want {
		t.Errorf("Digest(\"000\") = %s, want %s", got, want)
	}
}

func TestDigest_DifferentInputs(t *testing.T) {
	if bytes.Equal(Digest("000"), Digest("fff")) {
		t.Error("Expected different digests for different inputs")
	}
}

func TestToInterval(t *testing.T) {
	tests := []struct {
		name string
		id   []byte
		want float64
	}{
		{"empty", nil, 0},
		{"all zero", []byte{0, 0, 0, 0}, 0},
		{"all ones", []byte{0xff, 0xff, 0xff, 0xff}, 0.9375},
		{"leading bit only", []byte{0x80, 0, 0, 0}, 0.5},
		{"low bits ignored", []byte{0x7f, 0x7f, 0x7f, 0x7f}, 0},
		{"second byte", []byte{0x7f, 0xff}, 0.25},
		{"one byte high", []byte{0x80}, 0.5},
		{"32 bytes all ones", bytes.Repeat([]byte{0xff}, 32), 1 - math.Ldexp(1, -32)},
		{"digest of 000", Digest("000"), 0.39450700604356825},
		{"digest of fff", Digest("fff"), 0.9924232589546591},
		{"digest of x", Digest("x"), 0.039514253148809075},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToInterval(tt.id); got != tt.want {
				t.Errorf("ToInterval(%x) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestToInterval_LongIdentifiers(t *testing.T) {
	// beyond 64 bytes the big.Int path is taken
	id := append([]byte{0x80}, make([]byte, 99)...)
	if got := ToInterval(id); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}

	// 1-2^-70 is not representable and rounds to 1.0
	if got := ToInterval(bytes.Repeat([]byte{0xff}, 70)); got != 1.0 {
		t.Errorf("Expected rounding to 1.0, got %v", got)
	}

	// both paths must agree at the boundary
	id64 := bytes.Repeat([]byte{0x80, 0x00}, 32)
	id65 := append(append([]byte{}, id64...), 0x00)
	if a, b := ToInterval(id64), ToInterval(id65); a != b {
		t.Errorf("Trailing zero bit changed the value: %v vs %v", a, b)
	}
}

func TestToInterval_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := ToInterval(Digest("user-" + strconv.Itoa(i)))
		if v < 0 || v >= 1 {
			t.Fatalf("Value out of range for user-%d: %v", i, v)
		}
	}
}
