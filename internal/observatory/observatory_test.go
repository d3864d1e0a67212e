package observatory

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/dynamics"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func testTree() *body.Tree {
	radius := scalar.Scalar(0.01)
	planet := &body.Body{
		Name:    "planet",
		Dynamic: dynamics.Fixed{Offset: vector.Vec3{X: 0, Y: 0, Z: 10}},
		Radius:  &radius,
	}
	sun := &body.Body{
		Name:     "sun",
		Dynamic:  dynamics.Fixed{Offset: vector.Vec3{}},
		Children: []*body.Body{planet},
	}
	return body.New(sun)
}

func TestResolveDropsUnresolvedHost(t *testing.T) {
	tree := testTree()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	obs := []Observatory{
		{Host: body.Id{}, Location: Spherical{R: 1, Theta: 0, Phi: 0}, Name: "valid"},
		{Host: body.Id{9}, Location: Spherical{R: 1, Theta: 0, Phi: 0}, Name: "dangling"},
	}
	kept := Resolve(tree, obs, logger)
	if len(kept) != 1 || kept[0].Name != "valid" {
		t.Fatalf("Resolve() = %+v, want only the valid observatory kept", kept)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected a warning to be logged for the dangling observatory")
	}
}

func TestObserveSeesBodyDirectlyOverhead(t *testing.T) {
	tree := testTree()
	o := Observatory{Host: body.Id{}, Location: Spherical{R: 1, Theta: 0, Phi: 0}, Name: "pole"}

	visible := Observe(tree, o, ticks.Zero())
	if len(visible) != 1 {
		t.Fatalf("expected 1 visible body, got %d", len(visible))
	}
	v := visible[0]
	if !almostEqual(float64(v.Direction.Z), 1) {
		t.Fatalf("body directly overhead should project to up=1, got %+v", v.Direction)
	}
	if !almostEqual(float64(v.Distance), 9) {
		t.Fatalf("distance = %v, want 9", v.Distance)
	}
}

func TestObserveOmitsBodyBelowHorizon(t *testing.T) {
	radius := scalar.Scalar(0.01)
	below := &body.Body{
		Name:    "below",
		Dynamic: dynamics.Fixed{Offset: vector.Vec3{X: 0, Y: 0, Z: -10}},
		Radius:  &radius,
	}
	sun := &body.Body{
		Name:     "sun",
		Dynamic:  dynamics.Fixed{Offset: vector.Vec3{}},
		Children: []*body.Body{below},
	}
	tree := body.New(sun)
	o := Observatory{Host: body.Id{}, Location: Spherical{R: 1, Theta: 0, Phi: 0}, Name: "pole"}

	visible := Observe(tree, o, ticks.Zero())
	if len(visible) != 0 {
		t.Fatalf("body below horizon should be omitted, got %+v", visible)
	}
}

func TestDisplayNameFallsBackToHostAndLatLon(t *testing.T) {
	o := Observatory{Host: body.Id{0}, Location: Spherical{R: 1, Theta: math.Pi / 2, Phi: math.Pi}}
	got := o.DisplayName()
	if got != "0@0.00N0.00E" {
		t.Fatalf("DisplayName fallback = %q, want %q", got, "0@0.00N0.00E")
	}
	named := Observatory{Host: body.Id{0}, Name: "Greenwich"}
	if got := named.DisplayName(); got != "Greenwich" {
		t.Fatalf("DisplayName with a name set = %q, want %q", got, "Greenwich")
	}
}

func threePlanetTree() *body.Tree {
	radius := scalar.Scalar(0.01)
	a := &body.Body{Name: "a", Dynamic: dynamics.Fixed{Offset: vector.Vec3{X: 1, Y: 0, Z: 10}}, Radius: &radius}
	b := &body.Body{Name: "b", Dynamic: dynamics.Fixed{Offset: vector.Vec3{X: -1, Y: 0, Z: 10}}, Radius: &radius}
	c := &body.Body{Name: "c", Dynamic: dynamics.Fixed{Offset: vector.Vec3{X: 0, Y: 0, Z: -10}}, Radius: &radius}
	sun := &body.Body{Name: "sun", Dynamic: dynamics.Fixed{}, Children: []*body.Body{a, b, c}}
	return body.New(sun)
}

func TestConstellationLinesKeepsEdgesWithBothEndpointsVisible(t *testing.T) {
	tree := threePlanetTree()
	o := Observatory{
		Host:     body.Id{},
		Location: Spherical{R: 1, Theta: 0, Phi: 0},
		Name:     "pole",
		Constellations: []Constellation{
			{Name: "line", Edges: []Edge{
				{A: body.Id{0}, B: body.Id{1}}, // both visible (a, b directly overhead-ish)
				{A: body.Id{0}, B: body.Id{2}}, // c is below the horizon
				{A: body.Id{1}, B: body.Id{9}}, // 9 doesn't exist
			}},
		},
	}

	visible := Observe(tree, o, ticks.Zero())
	lines := ConstellationLines(o, visible)
	if len(lines) != 1 {
		t.Fatalf("ConstellationLines() = %d lines, want 1 (got %+v)", len(lines), lines)
	}
}

func TestConstellationLinesEmptyWhenObservatoryHasNone(t *testing.T) {
	tree := threePlanetTree()
	o := Observatory{Host: body.Id{}, Location: Spherical{R: 1, Theta: 0, Phi: 0}, Name: "pole"}
	visible := Observe(tree, o, ticks.Zero())
	if lines := ConstellationLines(o, visible); lines != nil {
		t.Fatalf("ConstellationLines() with no constellations = %+v, want nil", lines)
	}
}

func TestObserveExcludesHostItself(t *testing.T) {
	tree := testTree()
	o := Observatory{Host: body.Id{0}, Location: Spherical{R: 0.001, Theta: 0, Phi: 0}, Name: "on-planet"}

	visible := Observe(tree, o, ticks.Zero())
	for _, v := range visible {
		if v.Id.Equal(body.Id{0}) {
			t.Fatalf("observatory should not observe its own host")
		}
	}
}
