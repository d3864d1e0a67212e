// Package body implements the hierarchical Body Tree: a rooted, immutable
// tree of bodies whose translational and rotational offsets compose along
// the path from root to any descendant.
package body

import (
	"fmt"
	"math"
	"strings"

	"github.com/star/astrograph/internal/dynamics"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
	"github.com/star/astrograph/internal/vector"
)

// Id is a path from the tree root: an ordered sequence of child indices.
// The root's Id is the empty path. Equality is structural, not pointer
// identity, so an Id is safe to use as a map key or to persist across runs.
type Id []int

// String renders an Id as dash-separated indices; the root renders empty.
func (id Id) String() string {
	if len(id) == 0 {
		return ""
	}
	parts := make([]string, len(id))
	for i, v := range id {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, "-")
}

// Equal reports whether id and other name the same path.
func (id Id) Equal(other Id) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}

// child returns a new Id extending id with index i, never aliasing id's
// backing array.
func (id Id) child(i int) Id {
	next := make(Id, len(id)+1)
	copy(next, id)
	next[len(id)] = i
	return next
}

// Body is a node in the tree: a star, planet, moon, or center of mass.
type Body struct {
	Name     string
	Dynamic  dynamics.Translator
	Rotation *dynamics.Rotating // nil if the body does not rotate
	Children []*Body
	Radius   *scalar.Scalar // nil if the body has no participation in eclipses
}

// DisplayName returns the body's user-given Name, or, if unset, a name
// generated from its Id (e.g. "0-1-2"), matching the output writer's
// filename and label conventions without requiring every generated body
// to carry a string.
func (b *Body) DisplayName(id Id) string {
	if b.Name != "" {
		return b.Name
	}
	return id.String()
}

// Tree is a rooted, immutable Body tree plus a precomputed flat listing of
// every node, built once so parallel workers can iterate it without
// re-walking the hierarchy.
type Tree struct {
	root *Body
	flat []Entry
}

// Entry pairs a Body with its resolved Id in a flattened listing.
type Entry struct {
	Id   Id
	Body *Body
}

// New builds a Tree from a root Body, computing the flat listing eagerly.
func New(root *Body) *Tree {
	t := &Tree{root: root}
	t.flat = flatten(root, Id{})
	return t
}

func flatten(b *Body, id Id) []Entry {
	out := []Entry{{Id: id, Body: b}}
	for i, c := range b.Children {
		out = append(out, flatten(c, id.child(i))...)
	}
	return out
}

// Root returns the tree's root Body.
func (t *Tree) Root() *Body { return t.root }

// Flat returns the precomputed (Id, *Body) listing in root-first,
// depth-first order.
func (t *Tree) Flat() []Entry { return t.flat }

// Lookup resolves an Id to its Body, walking child indices from the root.
// It reports false if any index along the path is out of range.
func (t *Tree) Lookup(id Id) (*Body, bool) {
	node := t.root
	for _, idx := range id {
		if idx < 0 || idx >= len(node.Children) {
			return nil, false
		}
		node = node.Children[idx]
	}
	return node, true
}

func rotationOf(b *Body, tm ticks.Time) vector.Quat {
	if b.Rotation == nil {
		return vector.Identity
	}
	return b.Rotation.OrientationAt(tm)
}

// WorldPosition returns the sum of parent-chain translational dynamics for
// the body at id: world_position(body,t) = world_position(parent,t) +
// parent_orientation(t)·dynamic(body).position_at(t), with the root's
// world position equal to its own dynamic evaluated in the identity frame.
func (t *Tree) WorldPosition(id Id, tm ticks.Time) vector.Vec3 {
	node := t.root
	pos := node.Dynamic.PositionAt(tm)
	orientation := rotationOf(node, tm)
	for _, idx := range id {
		node = node.Children[idx]
		pos = pos.Add(orientation.Rotate(node.Dynamic.PositionAt(tm)))
		orientation = orientation.Mul(rotationOf(node, tm))
	}
	return pos
}

// BodyOrientation composes rotational dynamics along the chain from root to
// id, identity for every ancestor (and the body itself) that does not
// rotate.
func (t *Tree) BodyOrientation(id Id, tm ticks.Time) vector.Quat {
	node := t.root
	orientation := rotationOf(node, tm)
	for _, idx := range id {
		node = node.Children[idx]
		orientation = orientation.Mul(rotationOf(node, tm))
	}
	return orientation
}

// AngularRadius returns the angular radius (half the angular diameter) in
// radians of a body with the given radius seen from distance away. Bodies
// with no radius (or a non-positive distance) are treated as point sources
// with a small floor so radius-less bodies still register as visible marks
// on a chart; bodies with a radius get no floor here.
func AngularRadius(radius *scalar.Scalar, distance scalar.Scalar) scalar.Scalar {
	const pointSourceFloor = 0.01
	if radius == nil || distance <= 0 {
		return pointSourceFloor
	}
	ratio := float64(*radius) / float64(distance)
	if ratio > 1 {
		ratio = 1
	}
	return scalar.Scalar(math.Asin(ratio))
}
