// Package ticks implements the engine's Time type: a signed 128-bit integer
// tick count. Negative values are legal so the engine can be queried before
// its epoch.
//
// A fixed-width 64-bit integer is not enough headroom for long-running
// simulations at fine tick resolution, so Time is built on the standard
// library's math/big, which is exact and produces bit-identical results
// across platforms.
package ticks

import (
	"fmt"
	"math/big"
	"strings"
)

// Time is an opaque signed 128-bit tick count.
type Time struct {
	v *big.Int
}

// bound is 2^127, the magnitude limit for a signed 128-bit integer.
var bound = new(big.Int).Lsh(big.NewInt(1), 127)

func normalize(v *big.Int) Time {
	if v.CmpAbs(bound) >= 0 {
		panic(fmt.Sprintf("ticks: value %s overflows a signed 128-bit tick count", v))
	}
	return Time{v: v}
}

// Zero is tick 0, the conventional epoch reference.
func Zero() Time { return Time{v: big.NewInt(0)} }

// FromInt64 builds a Time from a native int64 tick count.
func FromInt64(t int64) Time { return Time{v: big.NewInt(t)} }

// Parse reads a Time from a base-10 (or 0x-prefixed base-16) string,
// supporting magnitudes beyond int64 range for large seeds and epochs.
func Parse(s string) (Time, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Time{}, fmt.Errorf("ticks: %q is not a valid integer", s)
	}
	if v.CmpAbs(bound) >= 0 {
		return Time{}, fmt.Errorf("ticks: %q overflows a signed 128-bit tick count", s)
	}
	return Time{v: v}, nil
}

// Add returns t + step.
func (t Time) Add(step Time) Time {
	return normalize(new(big.Int).Add(t.v, step.v))
}

// Sub returns t - other.
func (t Time) Sub(other Time) Time {
	return normalize(new(big.Int).Sub(t.v, other.v))
}

// Cmp returns -1, 0, or +1 as t is less than, equal to, or greater than other.
func (t Time) Cmp(other Time) int { return t.v.Cmp(other.v) }

// Less reports whether t < other.
func (t Time) Less(other Time) bool { return t.Cmp(other) < 0 }

// IsZero reports whether t is the zero tick.
func (t Time) IsZero() bool { return t.v.Sign() == 0 }

// String renders the tick count in base 10.
func (t Time) String() string { return t.v.String() }

// Float64 converts t to the nearest representable float64, exactly via
// big.Float so the rounding is platform-independent.
func (t Time) Float64() float64 {
	f, _ := new(big.Float).SetInt(t.v).Float64()
	return f
}

// ZeroPadded renders the tick count's magnitude zero-padded to at least
// width digits, with a leading "-" preserved for negative ticks ahead of
// the padding, suitable for lexically sortable output filenames.
func (t Time) ZeroPadded(width int) string {
	sign := ""
	if t.v.Sign() < 0 {
		sign = "-"
	}
	digits := new(big.Int).Abs(t.v).String()
	if len(digits) < width {
		digits = strings.Repeat("0", width-len(digits)) + digits
	}
	return sign + digits
}

// Fraction returns (t - t0) / period as an exact rational reduced to the
// nearest representable float64.
// Exact-rational-then-round keeps the conversion bit-identical across
// platforms, which keeps Keplerian periodicity holding to tolerance.
func Fraction(t, t0, period Time) float64 {
	num := new(big.Int).Sub(t.v, t0.v)
	r := new(big.Rat).SetFrac(num, period.v)
	f, _ := r.Float64()
	return f
}
