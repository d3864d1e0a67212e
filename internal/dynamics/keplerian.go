package dynamics

import (
	"log/slog"
	"math"

	"github.com/star/astrograph/internal/diagnostics"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Keplerian is a two-body orbit described by the six classical elements
// plus an orbital period and an epoch tick.
type Keplerian struct {
	SemiMajorAxis       scalar.Scalar // a
	Eccentricity        scalar.Scalar // e, 0 <= e < 1
	Inclination         scalar.Scalar // i
	LongitudeAscNode    scalar.Scalar // Ω
	ArgumentOfPeriapsis scalar.Scalar // ω
	MeanAnomalyAtEpoch  scalar.Scalar // M0
	Period              ticks.Time    // P, ticks
	Epoch               ticks.Time    // t0

	// logger receives a warning every time PositionAt's Kepler solve hits
	// its iteration cap without converging. Nil disables logging; the
	// kepler_non_convergence_total counter still increments either way.
	logger *slog.Logger

	planeRotation vector.Quat
}

// NewKeplerian builds a Keplerian dynamic, precomputing the orbital-plane
// rotation Rz(Ω)·Rx(i)·Rz(ω) once since it is invariant in time. logger may
// be nil, matching observatory.Resolve and driver.Run's convention.
func NewKeplerian(a, e, i, lan, aop, m0 scalar.Scalar, period, epoch ticks.Time, logger *slog.Logger) *Keplerian {
	k := &Keplerian{
		SemiMajorAxis:       a,
		Eccentricity:        e,
		Inclination:         i,
		LongitudeAscNode:    lan,
		ArgumentOfPeriapsis: aop,
		MeanAnomalyAtEpoch:  m0,
		Period:              period,
		Epoch:               epoch,
		logger:              logger,
	}
	k.planeRotation = k.rotationToParentFrame()
	return k
}

func (k *Keplerian) rotationToParentFrame() vector.Quat {
	rz1 := vector.AxisAngle(vector.Vec3{Z: 1}, k.LongitudeAscNode)
	rx := vector.AxisAngle(vector.Vec3{X: 1}, k.Inclination)
	rz2 := vector.AxisAngle(vector.Vec3{Z: 1}, k.ArgumentOfPeriapsis)
	return rz1.Mul(rx).Mul(rz2)
}

func (Keplerian) Kind() Kind { return KindKeplerian }

// meanAnomaly computes M = M0 + 2π·(t-t0)/P, reduced to (-π, π].
func (k *Keplerian) meanAnomaly(t ticks.Time) scalar.Scalar {
	frac := ticks.Fraction(t, k.Epoch, k.Period)
	m := float64(k.MeanAnomalyAtEpoch) + 2*math.Pi*frac
	return scalar.Scalar(reduceToSignedPi(m))
}

// reduceToSignedPi wraps an angle in radians to the half-open interval (-π, π].
func reduceToSignedPi(a float64) float64 {
	const tau = 2 * math.Pi
	a = math.Mod(a, tau)
	switch {
	case a <= -math.Pi:
		a += tau
	case a > math.Pi:
		a -= tau
	}
	return a
}

// PositionAt solves Kepler's equation by Newton-Raphson and returns the
// body's offset in the parent frame.
func (k *Keplerian) PositionAt(t ticks.Time) vector.Vec3 {
	e := float64(k.Eccentricity)
	m := float64(k.meanAnomaly(t))

	eccentricAnomaly, converged := SolveKepler(m, e, k.logger)
	if !converged {
		diagnostics.IncKeplerNonConvergence()
	}

	_, cosE := math.Sincos(eccentricAnomaly)
	a := float64(k.SemiMajorAxis)
	r := a * (1 - e*cosE)

	trueAnomaly := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(eccentricAnomaly/2),
		math.Sqrt(1-e)*math.Cos(eccentricAnomaly/2),
	)
	sinNu, cosNu := math.Sincos(trueAnomaly)

	inPlane := vector.Vec3{
		X: scalar.Scalar(r * cosNu),
		Y: scalar.Scalar(r * sinNu),
		Z: 0,
	}

	return k.planeRotation.Rotate(inPlane)
}

// SolveKepler solves M = E - e*sin(E) for the eccentric anomaly E by
// Newton-Raphson, starting from E0 = M + e*sin(M) (or π·sign(M) for highly
// eccentric orbits where that seed diverges). It terminates when |ΔE| <
// epsilon or after MaxKeplerIterations, whichever comes first; on hitting
// the cap it returns the last iterate and reports converged=false so the
// caller can log a non-convergence warning without treating it as fatal.
//
// logger may be nil; when non-nil a non-convergence is logged at Warn.
func SolveKepler(meanAnomaly, eccentricity float64, logger *slog.Logger) (eccentricAnomaly float64, converged bool) {
	e := eccentricAnomaly0(meanAnomaly, eccentricity)

	for i := 0; i < scalar.MaxKeplerIterations; i++ {
		sinE, cosE := math.Sincos(e)
		f := e - eccentricity*sinE - meanAnomaly
		fPrime := 1 - eccentricity*cosE
		delta := f / fPrime
		e -= delta
		if math.Abs(delta) < float64(scalar.Epsilon) {
			return e, true
		}
	}

	if logger != nil {
		logger.Warn("kepler solver did not converge",
			"mean_anomaly", meanAnomaly,
			"eccentricity", eccentricity,
			"max_iterations", scalar.MaxKeplerIterations,
		)
	}
	return e, false
}

func eccentricAnomaly0(meanAnomaly, eccentricity float64) float64 {
	if eccentricity > 0.8 {
		if meanAnomaly < 0 {
			return -math.Pi
		}
		return math.Pi
	}
	return meanAnomaly + eccentricity*math.Sin(meanAnomaly)
}
