package mesh

import (
	"github.com/soypat/parasurf"
	"github.com/soypat/parasurf/internal/d3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// sampler walks the parameter grid of a surface.
type sampler struct {
	s    parasurf.Surface
	res  Resolution
	mode TangentMode
	d    r2.Box
	// Parameter domain origin and size.
	u0, du float64
	v0, dv float64
}

func newSampler(s parasurf.Surface, res Resolution, mode TangentMode) *sampler {
	d := s.Domain()
	return &sampler{
		s:    s,
		res:  res,
		mode: mode,
		d:    d,
		u0:   d.Min.X,
		du:   d.Max.X - d.Min.X,
		v0:   d.Min.Y,
		dv:   d.Max.Y - d.Min.Y,
	}
}

// uv returns the parameters of grid sample (row, col), clamped to the domain
// since surfaces may be undefined just past its edges.
func (sm *sampler) uv(row, col int) (u, v float64) {
	u = sm.u0 + sm.du*float64(col)/float64(sm.res.USteps)
	v = sm.v0 + sm.dv*float64(row)/float64(sm.res.VSteps)
	return parasurf.Clamp(u, sm.d.Min.X, sm.d.Max.X), parasurf.Clamp(v, sm.d.Min.Y, sm.d.Max.Y)
}

// sampleAll fills the vertex attributes of m. Rows write disjoint ranges
// so they may be sampled in any order.
func (sm *sampler) sampleAll(m *Mesh, concurrent int) error {
	vCount := sm.res.VCount()
	if concurrent < 2 {
		for row := 0; row < vCount; row++ {
			sm.sampleRow(m, row)
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(concurrent)
	for row := 0; row < vCount; row++ {
		row := row
		g.Go(func() error {
			sm.sampleRow(m, row)
			return nil
		})
	}
	return g.Wait()
}

func (sm *sampler) sampleRow(m *Mesh, row int) {
	uCount := sm.res.UCount()
	tv := float32(float64(row) / float64(sm.res.VSteps))
	for col := 0; col < uCount; col++ {
		u, v := sm.uv(row, col)
		tu := float32(float64(col) / float64(sm.res.USteps))
		for _, sheet := range parasurf.Sheets {
			i := sm.res.Index(GridVertex{Sheet: sheet, Row: row, Col: col})
			d3.Store(m.positions, i, sm.s.Evaluate(u, v, sheet))
			m.uvs[2*i] = tu
			m.uvs[2*i+1] = tv
			t, b := sm.frame(u, v, sheet)
			d3.Store(m.tangents, i, t)
			d3.Store(m.bitangents, i, b)
		}
	}
}

// frame returns the tangent and bitangent at (u,v).
func (sm *sampler) frame(u, v float64, sheet parasurf.Sheet) (t, b r3.Vec) {
	switch sm.mode {
	case TangentDerivative:
		return parasurf.Jacobian(sm.s, u, v, sheet, 0)
	case TangentUnit:
		return unitOrZero(parasurf.TangentU(sm.s, u, v, sheet)),
			unitOrZero(parasurf.TangentV(sm.s, u, v, sheet))
	}
	return parasurf.TangentU(sm.s, u, v, sheet), parasurf.TangentV(sm.s, u, v, sheet)
}

func unitOrZero(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}
