//go:build scalar32

package scalar

// Scalar is the engine-wide floating point type for the single-precision build.
type Scalar = float32

// Epsilon is the Kepler-solver convergence tolerance for this precision.
const Epsilon Scalar = 1e-6

// MaxKeplerIterations bounds the Newton-Raphson solve regardless of
// precision. A var, not a const, so tests can lower it to force the
// non-convergence path deterministically instead of hunting for a
// pathological (eccentricity, meanAnomaly) pair.
var MaxKeplerIterations = 64
