// Package observatory implements fixed observation posts on the surface of
// a body: resolving a host Body, building a local up/north/east frame, and
// projecting every other body in the tree into that frame.
package observatory

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Observatory sits on the surface of a host body at a body-fixed spherical
// location (r, θ, φ), where θ is the polar angle from the host's +Z pole
// and φ is the azimuthal angle in the host's XY plane.
type Observatory struct {
	Host           body.Id
	Location       Spherical
	Name           string
	Constellations []Constellation
}

// Constellation is a named set of body-pairs ("edges") that the chart
// writer draws as lines behind body disks, for whichever edges have both
// endpoints currently visible.
type Constellation struct {
	Name  string
	Edges []Edge
}

// Edge marks one constellation line by the Ids of the bodies at its ends.
type Edge struct {
	A, B body.Id
}

// Spherical is a (radius, polar angle, azimuthal angle) triple in a body's
// fixed frame, in the physics convention vector.SphericalToCartesian uses.
type Spherical struct {
	R, Theta, Phi scalar.Scalar
}

// Cartesian converts the location to the host's body-fixed Cartesian frame.
func (s Spherical) Cartesian() vector.Vec3 {
	return vector.SphericalToCartesian(s.R, s.Theta, s.Phi)
}

// DisplayName returns the observatory's user-given Name, or, if unset, a
// name generated from its host body and latitude/longitude, matching the
// output writer's directory-naming convention without requiring every
// generated observatory to carry a string.
func (o Observatory) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	lat := 90 - float64(o.Location.Theta)*180/math.Pi
	lon := float64(o.Location.Phi)*180/math.Pi - 180
	return fmt.Sprintf("%s@%.2fN%.2fE", o.Host.String(), lat, lon)
}

// Frame is the observer's local right-handed basis: up is the radial
// outward direction at the observer's surface position, north is the
// tangent toward increasing latitude, and east completes the basis.
type Frame struct {
	Up, North, East vector.Vec3
}

// Visible is one other body projected into an observatory's local frame at
// a given tick: Direction is the unit vector toward the body, Distance is
// the straight-line distance, and AngularRadius is the body's angular
// radius as seen from the observer.
type Visible struct {
	Id            body.Id
	Body          *body.Body
	Direction     vector.Vec3
	Distance      scalar.Scalar
	AngularRadius scalar.Scalar
}

// Resolve drops any observatory whose Host does not resolve in tree,
// logging a warning for each. Call this once before a simulation run
// starts, not mid-run, since the tree is immutable for the run's duration.
func Resolve(tree *body.Tree, observatories []Observatory, logger *slog.Logger) []Observatory {
	kept := make([]Observatory, 0, len(observatories))
	for _, o := range observatories {
		if _, ok := tree.Lookup(o.Host); !ok {
			if logger != nil {
				logger.Warn("dropping observatory with unresolved host",
					"observatory", o.Name, "host", o.Host.String())
			}
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// worldPosition returns the observatory's position in world space and the
// local frame built from the host's orientation at t.
func worldPosition(tree *body.Tree, o Observatory, t ticks.Time) (vector.Vec3, Frame) {
	hostPos := tree.WorldPosition(o.Host, t)
	hostOrientation := tree.BodyOrientation(o.Host, t)

	localOffset := o.Location.Cartesian()
	up := localOffset.Normalize()
	if up == vector.Zero {
		up = vector.Vec3{Z: 1}
	}

	worldUp := hostOrientation.Rotate(up)
	worldOffset := hostOrientation.Rotate(localOffset)

	north := tangentNorth(up).Normalize()
	east := worldUp.Cross(hostOrientation.Rotate(north)).Normalize()
	// Recompute north so (up, north, east) is exactly orthonormal in world space.
	worldNorth := east.Cross(worldUp).Normalize()

	return hostPos.Add(worldOffset), Frame{Up: worldUp, North: worldNorth, East: east}
}

// tangentNorth returns a unit vector tangent to the sphere at up, pointing
// toward increasing latitude (toward +Z), degenerating to the +X direction
// at the poles where that tangent is undefined.
func tangentNorth(up vector.Vec3) vector.Vec3 {
	pole := vector.Vec3{Z: 1}
	proj := pole.Sub(up.Scale(up.Dot(pole)))
	if proj.Norm() == 0 {
		return vector.Vec3{X: 1}
	}
	return proj
}

// Line is one constellation edge with both endpoints resolved to local-
// frame directions, ready for projection.
type Line struct {
	A, B vector.Vec3
}

// ConstellationLines filters o's constellation edges down to the ones
// where both endpoints are in visible, and returns their local-frame
// directions. An edge with either endpoint below the horizon, or naming a
// body outside the tree, is silently dropped — the same per-tick
// visibility gate Observe already applies to bodies.
func ConstellationLines(o Observatory, visible []Visible) []Line {
	if len(o.Constellations) == 0 {
		return nil
	}

	byID := make(map[string]vector.Vec3, len(visible))
	for _, v := range visible {
		byID[v.Id.String()] = v.Direction
	}

	var lines []Line
	for _, c := range o.Constellations {
		for _, e := range c.Edges {
			a, ok := byID[e.A.String()]
			if !ok {
				continue
			}
			b, ok := byID[e.B.String()]
			if !ok {
				continue
			}
			lines = append(lines, Line{A: a, B: b})
		}
	}
	return lines
}

// Observe projects every other body in the tree into o's local frame at t.
// Bodies below the horizon (negative up-component) are omitted, matching
// the Projector's default orthographic horizon gate.
func Observe(tree *body.Tree, o Observatory, t ticks.Time) []Visible {
	origin, frame := worldPosition(tree, o, t)

	results := make([]Visible, 0, len(tree.Flat()))
	for _, entry := range tree.Flat() {
		if entry.Id.Equal(o.Host) {
			continue
		}
		pos := tree.WorldPosition(entry.Id, t)
		offset := pos.Sub(origin)
		dist := offset.Norm()
		if dist == 0 {
			continue
		}
		worldDir := offset.Scale(1 / dist)

		local := vector.Vec3{
			X: worldDir.Dot(frame.East),
			Y: worldDir.Dot(frame.North),
			Z: worldDir.Dot(frame.Up),
		}
		if local.Z < 0 {
			continue
		}

		results = append(results, Visible{
			Id:            entry.Id,
			Body:          entry.Body,
			Direction:     local,
			Distance:      dist,
			AngularRadius: body.AngularRadius(entry.Body.Radius, dist),
		})
	}
	return results
}
