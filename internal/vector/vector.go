// Package vector provides the Vec3 and orientation-quaternion primitives
// shared by the body tree, observatory, and projector. Arithmetic is
// delegated to gonum's r3 and quat packages so the engine gets a
// numerically reviewed implementation instead of a hand-rolled one.
package vector

import (
	"math"

	"github.com/star/astrograph/internal/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a length-3 vector in the engine's configured Scalar precision.
type Vec3 struct {
	X, Y, Z scalar.Scalar
}

// Zero is the additive identity.
var Zero = Vec3{}

func (v Vec3) g() r3.Vec { return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)} }

func fromG(g r3.Vec) Vec3 {
	return Vec3{X: scalar.Scalar(g.X), Y: scalar.Scalar(g.Y), Z: scalar.Scalar(g.Z)}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return fromG(r3.Add(v.g(), w.g())) }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return fromG(r3.Sub(v.g(), w.g())) }

// Scale returns k*v.
func (v Vec3) Scale(k scalar.Scalar) Vec3 { return fromG(r3.Scale(float64(k), v.g())) }

// Dot returns the scalar (inner) product of v and w.
func (v Vec3) Dot(w Vec3) scalar.Scalar { return scalar.Scalar(r3.Dot(v.g(), w.g())) }

// Cross returns the vector (cross) product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 { return fromG(r3.Cross(v.g(), w.g())) }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() scalar.Scalar { return scalar.Scalar(r3.Norm(v.g())) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged since it has no well-defined direction.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// SphericalToCartesian converts a (r, theta, phi) triple in the physics
// convention (theta = polar angle from the +Z pole, phi = azimuthal angle
// in the XY plane) to Cartesian coordinates.
func SphericalToCartesian(r, theta, phi scalar.Scalar) Vec3 {
	sinT, cosT := math.Sincos(float64(theta))
	sinP, cosP := math.Sincos(float64(phi))
	return Vec3{
		X: scalar.Scalar(float64(r) * sinT * cosP),
		Y: scalar.Scalar(float64(r) * sinT * sinP),
		Z: scalar.Scalar(float64(r) * cosT),
	}
}

// Quat is a unit orientation quaternion.
type Quat struct{ q quat.Number }

// Identity is the null rotation.
var Identity = Quat{q: quat.Number{Real: 1}}

// AxisAngle builds the rotation of angle radians about axis (need not be
// pre-normalized).
func AxisAngle(axis Vec3, angle scalar.Scalar) Quat {
	a := axis.Normalize()
	half := float64(angle) / 2
	s := math.Sin(half)
	return Quat{q: quat.Number{
		Real: math.Cos(half),
		Imag: float64(a.X) * s,
		Jmag: float64(a.Y) * s,
		Kmag: float64(a.Z) * s,
	}}
}

// Mul composes rotations: (a.Mul(b)) applies b first, then a, matching the
// Rz(Ω)·Rx(i)·Rz(ω) composition order used for orbital-plane rotations.
func (a Quat) Mul(b Quat) Quat { return Quat{q: quat.Mul(a.q, b.q)} }

// Rotate applies the rotation to v.
func (a Quat) Rotate(v Vec3) Vec3 {
	p := quat.Number{Imag: float64(v.X), Jmag: float64(v.Y), Kmag: float64(v.Z)}
	r := quat.Mul(quat.Mul(a.q, p), quat.Conj(a.q))
	return Vec3{X: scalar.Scalar(r.Imag), Y: scalar.Scalar(r.Jmag), Z: scalar.Scalar(r.Kmag)}
}
