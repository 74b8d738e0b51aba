package preview

import (
	"fmt"
	"image/color"
	"io"

	"github.com/soypat/parasurf/internal/d3"
	"github.com/soypat/parasurf/mesh"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plane is a coordinate plane a wireframe is projected on.
type Plane uint8

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneXZ:
		return "xz"
	case PlaneYZ:
		return "yz"
	}
	return fmt.Sprintf("Plane(%d)", uint8(p))
}

// ParsePlane returns the Plane named by s, one of "xy", "xz" or "yz".
func ParsePlane(s string) (Plane, error) {
	for _, p := range []Plane{PlaneXY, PlaneXZ, PlaneYZ} {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown projection plane %q", s)
}

// axes returns the component indices projected on the horizontal and
// vertical plot axes.
func (p Plane) axes() (h, v int) {
	switch p {
	case PlaneXZ:
		return 0, 2
	case PlaneYZ:
		return 1, 2
	}
	return 0, 1
}

var sheetColors = [2]color.RGBA{
	{R: 0x46, G: 0x89, B: 0x66, A: 0xff},
	{R: 0xb6, G: 0x49, B: 0x26, A: 0xff},
}

// PlotWireframe writes a PNG plot of wf projected on plane to w.
// Each sheet is drawn in its own color.
func PlotWireframe(w io.Writer, wf *mesh.Wireframe, plane Plane) error {
	if plane > PlaneYZ {
		return fmt.Errorf("invalid projection %s", plane)
	}
	h, v := plane.axes()
	name := plane.String()
	p := plot.New()
	p.Title.Text = "wireframe " + name
	p.X.Label.Text = name[:1]
	p.Y.Label.Text = name[1:]
	for _, strips := range [2][]mesh.Strip{wf.UStrips, wf.VStrips} {
		half := len(strips) / 2
		for i, s := range strips {
			xys := make(plotter.XYs, s.Count)
			for k := range xys {
				pt := d3.Load(wf.Positions, s.First+k)
				xys[k].X = component(pt, h)
				xys[k].Y = component(pt, v)
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("strip %d: %w", i, err)
			}
			line.Color = sheetColors[min(i/max(half, 1), 1)]
			line.Width = vg.Points(0.5)
			p.Add(line)
		}
	}
	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func component(v r3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
