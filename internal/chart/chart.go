// Package chart writes one SVG star chart per (observatory, tick), the
// engine's only externally visible simulation artifact.
package chart

import (
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/projector"
	"github.com/star/astrograph/internal/scalar"
	"github.com/star/astrograph/internal/ticks"
)

// Options configures chart rendering. Size is the fixed square canvas
// dimension; RadiusScale is the constant k in max(1, k·ρ_body) used to
// turn an angular radius into an on-screen pixel radius; DrawLabels turns
// on body-name text next to each rendered disk.
type Options struct {
	Size        int
	RadiusScale scalar.Scalar
	DrawLabels  bool
}

// DefaultOptions matches the writer's default contract: a 1080x1080
// canvas and a radius scale picked so a typical planet's disk is legible
// without swamping the chart.
func DefaultOptions() Options {
	return Options{Size: 1080, RadiusScale: 200, DrawLabels: false}
}

// pathFor returns the chart's filename, creating its parent directory.
func pathFor(outRoot, observatoryName string, t ticks.Time) (string, error) {
	dir := filepath.Join(outRoot, observatoryName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errkind.Wrap(errkind.IoFailure, "creating chart directory "+dir, err)
	}
	return filepath.Join(dir, t.ZeroPadded(10)+".svg"), nil
}

// Write renders one chart for the given observatory and tick, overwriting
// any existing file at that path. lines are drawn first, so body disks in
// projected always paint over them.
func Write(outRoot, observatoryName string, t ticks.Time, projected []projector.Projected, lines []projector.ProjectedLine, opts Options) error {
	path, err := pathFor(outRoot, observatoryName, t)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errkind.Wrap(errkind.IoFailure, "creating chart file "+tmp, err)
	}

	render(f, projected, lines, opts)

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errkind.Wrap(errkind.IoFailure, "closing chart file "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errkind.Wrap(errkind.IoFailure, "renaming chart file into place: "+path, err)
	}
	return nil
}

func render(f *os.File, projected []projector.Projected, lines []projector.ProjectedLine, opts Options) {
	canvas := svg.New(f)
	canvas.Start(opts.Size, opts.Size)
	canvas.Title("star chart")

	center := opts.Size / 2
	horizonR := opts.Size / 2
	canvas.Circle(center, center, horizonR, "fill:#000;stroke:#444")

	for _, l := range lines {
		x1 := center + int(float64(l.U1)*float64(horizonR))
		y1 := center - int(float64(l.V1)*float64(horizonR))
		x2 := center + int(float64(l.U2)*float64(horizonR))
		y2 := center - int(float64(l.V2)*float64(horizonR))
		canvas.Line(x1, y1, x2, y2, "stroke:#aaa;stroke-width:1")
	}

	for _, p := range projected {
		x := center + int(float64(p.U)*float64(horizonR))
		y := center - int(float64(p.V)*float64(horizonR)) // SVG y grows downward; v grows toward the zenith's north
		r := onScreenRadius(p.Visible.AngularRadius, opts.RadiusScale)

		style := diskStyle(p.Occlusion)
		canvas.Circle(x, y, r, style)

		if opts.DrawLabels && p.Visible.Body != nil {
			canvas.Text(x+r+2, y, p.Visible.Body.DisplayName(p.Visible.Id), "fill:#ccc;font-size:10px")
		}
	}

	canvas.End()
}

func onScreenRadius(angularRadius, k scalar.Scalar) int {
	r := int(float64(k) * float64(angularRadius))
	if r < 1 {
		return 1
	}
	return r
}

func diskStyle(o projector.Occlusion) string {
	switch o {
	case projector.PartiallyEclipsed:
		return "fill:#886;stroke:#ffa"
	case projector.PartialOverlap:
		return "fill:#aac;stroke:#ccf"
	default:
		return "fill:#fff"
	}
}
