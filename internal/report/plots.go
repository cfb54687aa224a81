package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/hits"
)

// Projection selects the two coordinates drawn by a plot.
type Projection int

const (
	ProjectionXY Projection = iota
	ProjectionXZ
	ProjectionYZ
)

func (p Projection) String() string {
	switch p {
	case ProjectionXZ:
		return "xz"
	case ProjectionYZ:
		return "yz"
	default:
		return "xy"
	}
}

func (p Projection) labels() (string, string) {
	switch p {
	case ProjectionXZ:
		return "X (mm)", "Z (mm)"
	case ProjectionYZ:
		return "Y (mm)", "Z (mm)"
	default:
		return "X (mm)", "Y (mm)"
	}
}

func (p Projection) coords(h cluster3d.Hit3D) (float64, float64) {
	switch p {
	case ProjectionXZ:
		return h.Position.X, h.Position.Z
	case ProjectionYZ:
		return h.Position.Y, h.Position.Z
	default:
		return h.Position.X, h.Position.Y
	}
}

// wireHalfLength is how far each side of the 3D hit a contributing wire is
// drawn in the XY projection.
const wireHalfLength = 15.0

// NewProjectionPlot draws the final 3D hits of res, coloured and sized by
// charge. The XY projection also draws a short segment of each wire used.
func NewProjectionPlot(title string, proj Projection, res *cluster3d.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s", title, proj)
	p.X.Label.Text, p.Y.Label.Text = proj.labels()

	hs := res.Hits()
	if len(hs) == 0 {
		return p, nil
	}

	maxQ := 0.0
	pts := make(plotter.XYs, len(hs))
	for i, h := range hs {
		pts[i].X, pts[i].Y = proj.coords(h)
		maxQ = math.Max(maxQ, h.Charge)
	}

	if proj == ProjectionXY && res.Arena != nil {
		for _, h := range hs {
			for _, idx := range h.Constituents {
				if err := addWire(p, res.Arena.Hit(idx), h); err != nil {
					return nil, err
				}
			}
		}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		q := hs[i].Charge
		r := 1.5
		if maxQ > 0 {
			r += 3.5 * math.Sqrt(math.Max(q, 0)/maxQ)
		}
		return draw.GlyphStyle{Color: chargeColor(q, maxQ), Radius: vg.Points(r), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)
	p.Legend.Add(fmt.Sprintf("3D hits (%d)", len(hs)), sc)
	return p, nil
}

func addWire(p *plot.Plot, w *hits.Hit1D, h cluster3d.Hit3D) error {
	// Project the hit onto the wire and draw the segment around it.
	dx, dy := h.Position.X-w.Position.X, h.Position.Y-w.Position.Y
	s := dx*w.WireDir.X + dy*w.WireDir.Y
	cx, cy := w.Position.X+s*w.WireDir.X, w.Position.Y+s*w.WireDir.Y
	seg := plotter.XYs{
		{X: cx - wireHalfLength*w.WireDir.X, Y: cy - wireHalfLength*w.WireDir.Y},
		{X: cx + wireHalfLength*w.WireDir.X, Y: cy + wireHalfLength*w.WireDir.Y},
	}
	line, err := plotter.NewLine(seg)
	if err != nil {
		return err
	}
	line.Color = planeColor(w.Plane)
	line.Width = vg.Points(0.5)
	line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(line)
	return nil
}

func planeColor(pl hits.Plane) color.Color {
	switch pl {
	case hits.PlaneV:
		return parseHex("#1f9e89")
	case hits.PlaneU:
		return parseHex("#b5de2b")
	default:
		return parseHex("#3e4989")
	}
}

// WriteProjections saves the XY, XZ and YZ projections of res as PNG files
// named <name>_<proj>.png in outputDir, returning the paths written.
func WriteProjections(outputDir, name string, res *cluster3d.Result) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	var written []string
	for _, proj := range []Projection{ProjectionXY, ProjectionXZ, ProjectionYZ} {
		p, err := NewProjectionPlot(name, proj, res)
		if err != nil {
			return written, fmt.Errorf("%s plot: %w", proj, err)
		}
		file := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", name, proj))
		if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
			return written, fmt.Errorf("save %s: %w", file, err)
		}
		written = append(written, file)
	}
	return written, nil
}
