package dynamics

import (
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Rotating is a fixed-axis spin: it emits only an orientation, never a
// translation. The axis need not be pre-normalized.
type Rotating struct {
	Axis  vector.Vec3
	Rate  scalar.Scalar // radians/tick
	Phase scalar.Scalar // phase at epoch
	Epoch ticks.Time
}

func (Rotating) Kind() Kind { return KindRotating }

// OrientationAt returns the axis-angle quaternion for angle = phase +
// rate*(t - epoch).
func (r Rotating) OrientationAt(t ticks.Time) vector.Quat {
	elapsed := t.Sub(r.Epoch).Float64()
	angle := float64(r.Phase) + float64(r.Rate)*elapsed
	return vector.AxisAngle(r.Axis, scalar.Scalar(angle))
}
