package generate

import (
	"errors"
	"math/big"
	"testing"

	"github.com/star/astrograph/internal/dynamics"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/ticks"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.StarCount = 3
	opts.PlanetCountMean = 2
	opts.MoonCountMean = 0.5
	return opts
}

func TestGenerateIsDeterministic(t *testing.T) {
	seed := big.NewInt(42)
	opts := smallOptions()

	a, err := Generate(seed, opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(seed, opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	flatA, flatB := a.Flat(), b.Flat()
	if len(flatA) != len(flatB) {
		t.Fatalf("two generations of the same seed produced different tree sizes: %d vs %d", len(flatA), len(flatB))
	}
	for i := range flatA {
		if !flatA[i].Id.Equal(flatB[i].Id) {
			t.Fatalf("entry %d Id mismatch: %v vs %v", i, flatA[i].Id, flatB[i].Id)
		}
		posA := a.WorldPosition(flatA[i].Id, ticks.Zero())
		posB := b.WorldPosition(flatB[i].Id, ticks.Zero())
		if posA != posB {
			t.Fatalf("entry %d WorldPosition mismatch: %+v vs %+v", i, posA, posB)
		}
	}
}

func TestGenerateProducesRequestedStarCount(t *testing.T) {
	opts := smallOptions()
	tree, err := Generate(big.NewInt(7), opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := len(tree.Root().Children); got != opts.StarCount {
		t.Fatalf("got %d stars, want %d", got, opts.StarCount)
	}
}

func TestGenerateEveryStarHasFixedDynamicInsideMaxRadius(t *testing.T) {
	opts := smallOptions()
	opts.MaxRadius = 5
	tree, err := Generate(big.NewInt(1), opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, star := range tree.Root().Children {
		fixed, ok := star.Dynamic.(dynamics.Fixed)
		if !ok {
			t.Fatalf("star dynamic = %T, want dynamics.Fixed", star.Dynamic)
		}
		if fixed.Offset.Norm() > opts.MaxRadius {
			t.Fatalf("star offset %+v exceeds MaxRadius %v", fixed.Offset, opts.MaxRadius)
		}
	}
}

func TestGeneratePlanetsAreKeplerian(t *testing.T) {
	opts := smallOptions()
	opts.PlanetCountMean = 5
	tree, err := Generate(big.NewInt(9), opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	found := false
	for _, star := range tree.Root().Children {
		for _, planet := range star.Children {
			found = true
			if _, ok := planet.Dynamic.(*dynamics.Keplerian); !ok {
				t.Fatalf("planet dynamic = %T, want *dynamics.Keplerian", planet.Dynamic)
			}
		}
	}
	if !found {
		t.Skip("no planets drawn for this seed; Poisson(5) landed on zero for every star")
	}
}

func TestGenerateRetryBudgetExhaustedReturnsGenerationStalled(t *testing.T) {
	opts := smallOptions()
	opts.StarCount = 1
	opts.MaxRadius = 1
	opts.RetryBudget = 0

	_, err := Generate(big.NewInt(3), opts, nil)
	if err == nil {
		t.Fatalf("expected an error with a zero retry budget")
	}
	var e *errkind.Error
	if !errors.As(err, &e) || e.Kind != errkind.GenerationStalled {
		t.Fatalf("err = %v, want errkind.GenerationStalled", err)
	}
}

func TestGenerateWithFrostLinePinsFirstPlanet(t *testing.T) {
	opts := smallOptions()
	opts.StarCount = 1
	opts.PlanetCountMean = 3
	opts.WithFrostLine = true
	opts.FrostLineScale = 7

	tree, err := Generate(big.NewInt(11), opts, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	star := tree.Root().Children[0]
	if len(star.Children) == 0 {
		t.Skip("no planets drawn for this seed")
	}
	first, ok := star.Children[0].Dynamic.(*dynamics.Keplerian)
	if !ok {
		t.Fatalf("first planet dynamic = %T, want *dynamics.Keplerian", star.Children[0].Dynamic)
	}
	if first.SemiMajorAxis != opts.FrostLineScale {
		t.Fatalf("first planet semi-major axis = %v, want frost line %v", first.SemiMajorAxis, opts.FrostLineScale)
	}
}

func TestParseSeedAcceptsDecimalAndHex(t *testing.T) {
	v, err := ParseSeed("123")
	if err != nil || v.Int64() != 123 {
		t.Fatalf("ParseSeed(123) = %v, %v", v, err)
	}
	v, err = ParseSeed("0xff")
	if err != nil || v.Int64() != 255 {
		t.Fatalf("ParseSeed(0xff) = %v, %v", v, err)
	}
}

func TestParseSeedRejectsGarbage(t *testing.T) {
	if _, err := ParseSeed("not-a-number"); err == nil {
		t.Fatalf("expected an error for a non-numeric seed")
	}
}

func TestKeplerPeriodFloorsAtOneTick(t *testing.T) {
	p := keplerPeriod(0, 1)
	if p.Less(ticks.FromInt64(1)) {
		t.Fatalf("keplerPeriod(0, 1) = %v, want at least 1 tick", p)
	}
}
