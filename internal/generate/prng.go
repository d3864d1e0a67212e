package generate

import (
	"encoding/binary"
	"math/big"
)

// xorshift128 is a 128-bit-state xorshift generator seeded directly from
// the engine's 128-bit universe seed, giving the same seed the same star
// field bit-for-bit on every platform.
type xorshift128 struct {
	s0, s1 uint64
}

// newXorshift128 derives the two 64-bit lanes of state from a signed
// 128-bit seed via a fixed 16-byte big-endian encoding — not big.Int.Bits,
// whose word size varies with GOARCH and would make the PRNG's state
// platform-dependent. The all-zero state is a fixed point of xorshift, so
// a zero seed is nudged to a non-zero one.
func newXorshift128(seed *big.Int) *xorshift128 {
	var buf [16]byte
	new(big.Int).Abs(seed).FillBytes(buf[:])
	hi := binary.BigEndian.Uint64(buf[0:8])
	lo := binary.BigEndian.Uint64(buf[8:16])
	if lo == 0 && hi == 0 {
		lo = 0x9e3779b97f4a7c15
		hi = 0xbf58476d1ce4e5b9
	}
	return &xorshift128{s0: lo, s1: hi}
}

// Uint64 advances the generator and returns the next 64-bit output.
func (x *xorshift128) Uint64() uint64 {
	s1 := x.s0
	s0 := x.s1
	x.s0 = s0
	s1 ^= s1 << 23
	s1 ^= s1 >> 17
	s1 ^= s0
	s1 ^= s0 >> 26
	x.s1 = s1
	return x.s0 + x.s1
}

// Int63 returns the upper 63 bits of the next output as a non-negative
// int64.
func (x *xorshift128) Int63() int64 { return int64(x.Uint64() >> 1) }

// Seed re-seeds the generator from a native uint64, satisfying
// golang.org/x/exp/rand.Source. Not used by the engine directly —
// seeding always goes through newXorshift128 — but required to satisfy
// the interface.
func (x *xorshift128) Seed(seed uint64) {
	*x = *newXorshift128(new(big.Int).SetUint64(seed))
}
