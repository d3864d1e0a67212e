// Package projector maps an observatory's local-frame body directions onto
// a 2-D chart plane and resolves which bodies occlude which.
package projector

import (
	"math"

	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/vector"
)

// Projection maps a unit local-frame direction to chart coordinates (u, v),
// reporting visible=false when the direction should not be drawn at all
// (below the horizon, or a pole singularity for the chosen projection).
type Projection interface {
	Project(dir vector.Vec3) (u, v scalar.Scalar, visible bool)
}

// Orthographic projects onto the plane perpendicular to local-up, centered
// on the zenith: (x, y) of the direction, gated on z >= 0.
type Orthographic struct{}

func (Orthographic) Project(dir vector.Vec3) (scalar.Scalar, scalar.Scalar, bool) {
	if dir.Z < 0 {
		return 0, 0, false
	}
	return dir.X, dir.Y, true
}

// Stereographic projects from the nadir onto the horizon plane, so the
// zenith maps to the origin and the horizon to the unit circle, preserving
// angles at the cost of radial distortion near the horizon.
type Stereographic struct{}

func (Stereographic) Project(dir vector.Vec3) (scalar.Scalar, scalar.Scalar, bool) {
	if dir.Z < 0 {
		return 0, 0, false
	}
	denom := 1 + float64(dir.Z)
	if denom == 0 {
		return 0, 0, false
	}
	return scalar.Scalar(float64(dir.X) / denom), scalar.Scalar(float64(dir.Y) / denom), true
}

// Equirectangular projects azimuth/altitude linearly onto a u in [-1, 1],
// v in [-1, 1] plane, with v=1 at the zenith.
type Equirectangular struct{}

func (Equirectangular) Project(dir vector.Vec3) (scalar.Scalar, scalar.Scalar, bool) {
	if dir.Z < 0 {
		return 0, 0, false
	}
	azimuth := math.Atan2(float64(dir.Y), float64(dir.X))
	altitude := math.Asin(clamp(float64(dir.Z), -1, 1))
	return scalar.Scalar(azimuth / math.Pi), scalar.Scalar(altitude / (math.Pi / 2)), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
