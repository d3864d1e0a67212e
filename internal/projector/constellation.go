package projector

import (
	"github.com/star/astrograph/internal/observatory"
	"github.com/star/astrograph/internal/scalar"
)

// ProjectedLine is one constellation edge with both endpoints projected
// into chart space.
type ProjectedLine struct {
	U1, V1, U2, V2 scalar.Scalar
}

// ResolveLines projects each line's endpoints under proj, dropping any
// line where either endpoint does not project (below the horizon, or a
// pole singularity for the chosen projection).
func ResolveLines(proj Projection, lines []observatory.Line) []ProjectedLine {
	out := make([]ProjectedLine, 0, len(lines))
	for _, l := range lines {
		u1, v1, ok := proj.Project(l.A)
		if !ok {
			continue
		}
		u2, v2, ok := proj.Project(l.B)
		if !ok {
			continue
		}
		out = append(out, ProjectedLine{U1: u1, V1: v1, U2: u2, V2: v2})
	}
	return out
}
