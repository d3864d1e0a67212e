// Package dynamics implements the pluggable per-body rule mapping a tick to
// a relative offset or orientation. The closed set {Fixed, Keplerian,
// Rotating} is modelled as three concrete types behind two small interfaces
// rather than an open-ended plugin registry.
//
// Every Translator and Orienter here must be deterministic and pure: two
// queries at equal t yield bit-equal results.
package dynamics

import (
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Kind discriminates the three Dynamic variants, used by the JSON codec
// in internal/ioformat to pick a concrete type without an open registry.
type Kind string

const (
	KindFixed     Kind = "fixed"
	KindKeplerian Kind = "keplerian"
	KindRotating  Kind = "rotating"
)

// Dynamic is the common tag interface implemented by all three variants.
type Dynamic interface {
	Kind() Kind
}

// Translator maps a tick to a translational offset relative to the parent
// body's frame. Fixed and Keplerian implement this; Rotating does not — it
// emits only an orientation, never a translation.
type Translator interface {
	Dynamic
	PositionAt(t ticks.Time) vector.Vec3
}

// Orienter maps a tick to a unit orientation quaternion. Only Rotating
// implements this.
type Orienter interface {
	Dynamic
	OrientationAt(t ticks.Time) vector.Quat
}

// Fixed is a constant offset, independent of time.
type Fixed struct {
	Offset vector.Vec3
}

func (Fixed) Kind() Kind { return KindFixed }

// PositionAt returns the stored offset unconditionally.
func (f Fixed) PositionAt(ticks.Time) vector.Vec3 { return f.Offset }
