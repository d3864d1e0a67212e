// Package generate implements the procedural universe generator: a seeded
// xorshift-128 PRNG feeding a handful of gonum distributions to build a
// Body tree of stars, planets, and moons.
package generate

import (
	"fmt"
	"log/slog"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/dynamics"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Options configures the generator.
type Options struct {
	StarCount int

	MaxRadius scalar.Scalar // half-extent of the rejection-sampling cube

	PlanetCountMean float64
	MoonCountMean   float64

	SemiMajorAxisMin, SemiMajorAxisMax         scalar.Scalar
	MoonSemiMajorAxisMin, MoonSemiMajorAxisMax scalar.Scalar

	EccentricityAlpha, EccentricityBeta float64 // Beta-like, concentrated near 0
	InclinationSigma                    float64 // radians, clipped to [-pi/2, pi/2]

	StellarMassScale scalar.Scalar // Kepler-third-law analog: P = scale * a^1.5

	RotationRateMin, RotationRateMax   scalar.Scalar
	RotationPhaseMin, RotationPhaseMax scalar.Scalar

	// WithFrostLine places each star's first planet at the fixed
	// FrostLineScale distance before drawing the rest log-uniformly, instead
	// of drawing every planet's semi-major axis independently.
	WithFrostLine  bool
	FrostLineScale scalar.Scalar

	RetryBudget int
}

// DefaultOptions returns the generator's stated defaults.
func DefaultOptions() Options {
	return Options{
		StarCount:            0,
		MaxRadius:            1000,
		PlanetCountMean:      4,
		MoonCountMean:        1.5,
		SemiMajorAxisMin:     0.3,
		SemiMajorAxisMax:     40,
		MoonSemiMajorAxisMin: 0.001,
		MoonSemiMajorAxisMax: 0.05,
		EccentricityAlpha:    1,
		EccentricityBeta:     20,
		InclinationSigma:     0.15,
		StellarMassScale:     365.25,
		RotationRateMin:      0.001,
		RotationRateMax:      0.05,
		RotationPhaseMin:     0,
		RotationPhaseMax:     2 * math.Pi,
		WithFrostLine:        false,
		FrostLineScale:       5,
		RetryBudget:          10000,
	}
}

// ParseSeed reads a 128-bit seed from a base-10 or 0x-prefixed base-16
// string, the same textual convention as ticks.Parse.
func ParseSeed(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errkind.New(errkind.BadInput, fmt.Sprintf("%q is not a valid integer seed", s))
	}
	if v.BitLen() > 128 {
		return nil, errkind.New(errkind.BadInput, fmt.Sprintf("seed %q does not fit in 128 bits", s))
	}
	return v, nil
}

// distributions bundles the generator's random variates so each stage
// passes one value instead of five.
type distributions struct {
	angle         distuv.Uniform
	unit          distuv.Uniform
	planetCount   distuv.Poisson
	moonCount     distuv.Poisson
	eccentricity  distuv.Beta
	inclination   distuv.Normal
	rotationRate  distuv.Uniform
	rotationPhase distuv.Uniform
}

func newDistributions(rng *xorshift128, opts Options) distributions {
	return distributions{
		angle:         distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng},
		unit:          distuv.Uniform{Min: -1, Max: 1, Src: rng},
		planetCount:   distuv.Poisson{Lambda: opts.PlanetCountMean, Src: rng},
		moonCount:     distuv.Poisson{Lambda: opts.MoonCountMean, Src: rng},
		eccentricity:  distuv.Beta{Alpha: opts.EccentricityAlpha, Beta: opts.EccentricityBeta, Src: rng},
		inclination:   distuv.Normal{Mu: 0, Sigma: opts.InclinationSigma, Src: rng},
		rotationRate:  distuv.Uniform{Min: float64(opts.RotationRateMin), Max: float64(opts.RotationRateMax), Src: rng},
		rotationPhase: distuv.Uniform{Min: float64(opts.RotationPhaseMin), Max: float64(opts.RotationPhaseMax), Src: rng},
	}
}

// Generate builds a Body tree rooted at a Fixed origin with StarCount star
// children, each with zero or more planets, each with zero or more moons.
// The identical seed and Options produce a byte-identical tree across
// platforms and runs, given a fixed build-time Scalar precision. logger is
// attached to every generated planet/moon's Keplerian dynamic, and may be
// nil.
func Generate(seed *big.Int, opts Options, logger *slog.Logger) (*body.Tree, error) {
	rng := newXorshift128(seed)
	d := newDistributions(rng, opts)

	root := &body.Body{Dynamic: dynamics.Fixed{Offset: vector.Vec3{}}}

	for i := 0; i < opts.StarCount; i++ {
		offset, err := rejectionSampleInSphere(rng, opts.MaxRadius, opts.RetryBudget)
		if err != nil {
			return nil, err
		}
		star := &body.Body{Dynamic: dynamics.Fixed{Offset: offset}}
		star.Rotation = randomRotation(d)

		planetCount := int(d.planetCount.Rand())
		for p := 0; p < planetCount; p++ {
			a := semiMajorAxisFor(rng, opts, p)
			planet := newOrbitingBody(a, d, opts.StellarMassScale, logger)
			planet.Rotation = randomRotation(d)

			moonCount := int(d.moonCount.Rand())
			for m := 0; m < moonCount; m++ {
				ma := logUniform(rng, opts.MoonSemiMajorAxisMin, opts.MoonSemiMajorAxisMax)
				moon := newOrbitingBody(ma, d, opts.StellarMassScale/50, logger)
				moon.Rotation = randomRotation(d)
				planet.Children = append(planet.Children, moon)
			}
			star.Children = append(star.Children, planet)
		}
		root.Children = append(root.Children, star)
	}

	return body.New(root), nil
}

// semiMajorAxisFor draws a planet's semi-major axis: log-uniform by
// default, or pinned at the frost line for the first planet of each star
// when WithFrostLine is set.
func semiMajorAxisFor(rng *xorshift128, opts Options, planetIndex int) scalar.Scalar {
	if opts.WithFrostLine && planetIndex == 0 {
		return opts.FrostLineScale
	}
	return logUniform(rng, opts.SemiMajorAxisMin, opts.SemiMajorAxisMax)
}

// rejectionSampleInSphere draws a point uniformly in a cube of half-extent
// maxRadius, rejecting samples outside the inscribed sphere, bounding
// retries so a pathological RNG cannot spin forever.
func rejectionSampleInSphere(rng *xorshift128, maxRadius scalar.Scalar, retryBudget int) (vector.Vec3, error) {
	uniform := distuv.Uniform{Min: -float64(maxRadius), Max: float64(maxRadius), Src: rng}
	for attempt := 0; attempt < retryBudget; attempt++ {
		p := vector.Vec3{
			X: scalar.Scalar(uniform.Rand()),
			Y: scalar.Scalar(uniform.Rand()),
			Z: scalar.Scalar(uniform.Rand()),
		}
		if p.Norm() <= maxRadius {
			return p, nil
		}
	}
	return vector.Vec3{}, errkind.New(errkind.GenerationStalled,
		fmt.Sprintf("rejection sampling exceeded %d attempts", retryBudget))
}

// logUniform draws a from a log-uniform distribution over [min, max].
func logUniform(rng *xorshift128, min, max scalar.Scalar) scalar.Scalar {
	logMin, logMax := math.Log(float64(min)), math.Log(float64(max))
	u := distuv.Uniform{Min: logMin, Max: logMax, Src: rng}
	return scalar.Scalar(math.Exp(u.Rand()))
}

// keplerPeriod is the Kepler-third-law analog P = scale * a^1.5, floored
// at 1 tick so a tiny semi-major axis never yields a degenerate zero
// period.
func keplerPeriod(a, scale scalar.Scalar) ticks.Time {
	p := float64(scale) * math.Pow(float64(a), 1.5)
	if p < 1 {
		p = 1
	}
	return ticks.FromInt64(int64(math.Round(p)))
}

// newOrbitingBody builds a Keplerian body at semi-major axis a, drawing
// eccentricity, inclination, and the three angular elements from d.
func newOrbitingBody(a scalar.Scalar, d distributions, massScale scalar.Scalar, logger *slog.Logger) *body.Body {
	e := scalar.Scalar(d.eccentricity.Rand())
	if e >= 1 {
		e = 0.999
	}
	i := clipInclination(d.inclination.Rand())
	lan := scalar.Scalar(d.angle.Rand())
	aop := scalar.Scalar(d.angle.Rand())
	m0 := scalar.Scalar(d.angle.Rand())
	period := keplerPeriod(a, massScale)

	dyn := dynamics.NewKeplerian(a, e, i, lan, aop, m0, period, ticks.Zero(), logger)
	return &body.Body{Dynamic: dyn}
}

func clipInclination(v float64) scalar.Scalar {
	if v > math.Pi/2 {
		v = math.Pi / 2
	}
	if v < -math.Pi/2 {
		v = -math.Pi / 2
	}
	return scalar.Scalar(v)
}

// randomRotation builds a Rotating dynamic with its axis drawn uniformly
// on the unit sphere via Marsaglia's method, and rate/phase uniform in
// their configured ranges.
func randomRotation(d distributions) *dynamics.Rotating {
	var x, y, s float64
	for {
		x = d.unit.Rand()
		y = d.unit.Rand()
		s = x*x + y*y
		if s < 1 {
			break
		}
	}
	factor := math.Sqrt(1 - s)
	axis := vector.Vec3{
		X: scalar.Scalar(2 * x * factor),
		Y: scalar.Scalar(2 * y * factor),
		Z: scalar.Scalar(1 - 2*s),
	}
	return &dynamics.Rotating{
		Axis:  axis,
		Rate:  scalar.Scalar(d.rotationRate.Rand()),
		Phase: scalar.Scalar(d.rotationPhase.Rand()),
		Epoch: ticks.Zero(),
	}
}
