package rollout

import (
	"crypto/sha256"
	"math"
	"math/big"
)

// IDSize is the length of identifiers produced by Digest and the random scheme.
const IDSize = sha256.Size

// Digest hashes s into a 32-byte bucketing identifier. The same string always
// yields the same identifier.
func Digest(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// ToInterval maps an identifier of any length onto [0,1).
//
// Only the most significant bit of each byte is used: the bits are read in
// order into an n-bit integer which is then divided by 2^n. An n-byte
// identifier therefore has n bits of resolution. All-zero input maps to 0;
// all-0xFF input maps to 1-2^-n (which rounds to 1.0 once n exceeds 53).
func ToInterval(id []byte) float64 {
	n := len(id)
	if n <= 64 {
		var acc uint64
		for _, b := range id {
			acc = acc<<1 | uint64(b>>7)
		}
		return math.Ldexp(float64(acc), -n)
	}

	acc := new(big.Int)
	for _, b := range id {
		acc.Lsh(acc, 1)
		if b&0x80 != 0 {
			acc.SetBit(acc, 0, 1)
		}
	}
	f := new(big.Float).SetInt(acc)
	f.SetMantExp(f, -n)
	out, _ := f.Float64()
	return out
}
