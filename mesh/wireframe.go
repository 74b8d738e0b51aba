package mesh

import (
	"github.com/soypat/parasurf"
	"github.com/soypat/parasurf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Strip is a polyline of Count consecutive vertices starting at vertex First.
type Strip struct {
	First int
	Count int
}

// Wireframe is a line strip rendering of both sheets of a surface.
// For each sheet the positions hold, in order, UCount strips of constant u
// (running along v) followed by VCount strips of constant v (running along u).
type Wireframe struct {
	Positions []float32 // 3 per vertex
	// UStrips are the strips of constant u, plus sheet first.
	UStrips []Strip
	// VStrips are the strips of constant v, plus sheet first.
	VStrips []Strip
}

// NewWireframe samples s over its domain at resolution res.
func NewWireframe(s parasurf.Surface, res Resolution) (*Wireframe, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	sm := newSampler(s, res, TangentDisplacement)
	uCount, vCount := res.UCount(), res.VCount()
	wf := &Wireframe{
		Positions: make([]float32, 0, 3*2*res.VertexCount()),
		UStrips:   make([]Strip, 0, 2*uCount),
		VStrips:   make([]Strip, 0, 2*vCount),
	}
	n := 0
	add := func(p r3.Vec) {
		wf.Positions = append(wf.Positions, float32(p.X), float32(p.Y), float32(p.Z))
		n++
	}
	for _, sheet := range parasurf.Sheets {
		for col := 0; col < uCount; col++ {
			wf.UStrips = append(wf.UStrips, Strip{First: n, Count: vCount})
			for row := 0; row < vCount; row++ {
				u, v := sm.uv(row, col)
				add(s.Evaluate(u, v, sheet))
			}
		}
		for row := 0; row < vCount; row++ {
			wf.VStrips = append(wf.VStrips, Strip{First: n, Count: uCount})
			for col := 0; col < uCount; col++ {
				u, v := sm.uv(row, col)
				add(s.Evaluate(u, v, sheet))
			}
		}
	}
	return wf, nil
}

// VertexCount returns the number of strip vertices.
func (wf *Wireframe) VertexCount() int { return len(wf.Positions) / 3 }

// Segments returns the number of line segments drawn by all strips.
func (wf *Wireframe) Segments() (n int) {
	for _, strips := range [2][]Strip{wf.UStrips, wf.VStrips} {
		for _, s := range strips {
			n += s.Count - 1
		}
	}
	return n
}

// Points returns the vertices of strip s.
func (wf *Wireframe) Points(s Strip) []r3.Vec {
	pts := make([]r3.Vec, s.Count)
	for i := range pts {
		pts[i] = d3.Load(wf.Positions, s.First+i)
	}
	return pts
}
