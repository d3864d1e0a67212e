//go:build !scalar32

// Package scalar picks the engine's floating-point precision at build time.
// Build with -tags scalar32 for single precision; double precision is the
// default.
package scalar

// Scalar is the engine-wide floating point type. All lengths, angles, and
// derived quantities use this type so a single build decides precision for
// the whole simulation.
type Scalar = float64

// Epsilon is the Kepler-solver convergence tolerance for this precision.
const Epsilon Scalar = 1e-12

// MaxKeplerIterations bounds the Newton-Raphson solve regardless of
// precision. A var, not a const, so tests can lower it to force the
// non-convergence path deterministically instead of hunting for a
// pathological (eccentricity, meanAnomaly) pair.
var MaxKeplerIterations = 64
