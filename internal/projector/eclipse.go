package projector

import (
	"math"
	"sort"

	"github.com/star/astrograph/internal/observatory"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/vector"
)

// Occlusion classifies how a body's disk interacts with a nearer body's
// disk, per the angular-overlap test below.
type Occlusion int

const (
	NoInteraction Occlusion = iota
	FullyOccluded
	PartiallyEclipsed
	PartialOverlap
)

// Projected is one body placed on a chart: its projected (U, V), its
// occlusion classification, and whether it should be omitted entirely
// (fully occluded bodies are dropped, per the writer's output contract).
type Projected struct {
	Visible   observatory.Visible
	U, V      scalar.Scalar
	Occlusion Occlusion
	Omit      bool
}

// Resolve projects every visible body and classifies pairwise occlusion.
// Bodies without a radius never occlude or are occluded — they participate
// in the chart but not in the eclipse test. The returned slice is ordered
// farthest-first so a renderer drawing in order naturally paints nearer
// bodies on top, matching "A drawn on top" in every eclipse/overlap case
// below.
func Resolve(proj Projection, visibles []observatory.Visible) []Projected {
	sorted := make([]observatory.Visible, len(visibles))
	copy(sorted, visibles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	out := make([]Projected, len(sorted))
	for i, v := range sorted {
		u, vv, isVisible := proj.Project(v.Direction)
		out[i] = Projected{Visible: v, U: u, V: vv}
		if !isVisible {
			out[i].Omit = true
		}
	}

	for i := range sorted {
		a := sorted[i]
		if a.Body.Radius == nil || out[i].Omit {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			b := sorted[j]
			if b.Body.Radius == nil || out[j].Omit {
				continue
			}
			classifyPair(a, b, &out[i], &out[j])
		}
	}

	kept := make([]Projected, 0, len(out))
	for i := len(out) - 1; i >= 0; i-- {
		if !out[i].Omit {
			kept = append(kept, out[i])
		}
	}
	return kept
}

// classifyPair applies the angular-overlap test between the nearer body a
// and the farther body b, updating their occlusion fields in place.
func classifyPair(a, b observatory.Visible, outA, outB *Projected) {
	alpha := angularSeparation(a.Direction, b.Direction)
	rhoA, rhoB := float64(a.AngularRadius), float64(b.AngularRadius)

	switch {
	case alpha >= rhoA+rhoB:
		// Disks do not overlap; an exact tie counts as non-overlap.
	case alpha+rhoB <= rhoA:
		outB.Omit = true
		outB.Occlusion = FullyOccluded
	case alpha+rhoA <= rhoB:
		outB.Occlusion = PartiallyEclipsed
	default:
		outA.Occlusion = PartialOverlap
		outB.Occlusion = PartialOverlap
	}
}

func angularSeparation(a, b vector.Vec3) float64 {
	dot := float64(a.Dot(b))
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}
