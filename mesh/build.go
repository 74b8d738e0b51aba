package mesh

import (
	"fmt"

	"github.com/soypat/parasurf"
)

// TangentMode selects how vertex tangent frames are computed.
type TangentMode uint8

const (
	// TangentDisplacement stores the forward displacements s(u+δ,v)-s(u,v)
	// and s(u,v+δ)-s(u,v) unscaled.
	TangentDisplacement TangentMode = iota
	// TangentUnit stores the displacements normalized. Zero vectors stay zero.
	TangentUnit
	// TangentDerivative stores the partial derivatives ∂s/∂u and ∂s/∂v.
	TangentDerivative
)

func (m TangentMode) String() string {
	switch m {
	case TangentDisplacement:
		return "displacement"
	case TangentUnit:
		return "unit"
	case TangentDerivative:
		return "derivative"
	}
	return fmt.Sprintf("TangentMode(%d)", uint8(m))
}

// ParseTangentMode returns the TangentMode named by s. The empty string
// selects TangentDisplacement.
func ParseTangentMode(s string) (TangentMode, error) {
	if s == "" {
		return TangentDisplacement, nil
	}
	for m := TangentDisplacement; m <= TangentDerivative; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown tangent mode %q", s)
}

// Options configures Build. The zero value is valid.
type Options struct {
	Tangents TangentMode
	// IndexWidth selects the index buffer format. IndexAuto picks the narrowest.
	IndexWidth IndexFormat
	// Concurrent is the amount of goroutines used to sample rows and
	// accumulate normals. Values below 2 build on the calling goroutine.
	Concurrent int
}

// Build tessellates both sheets of s at resolution res. A nil opts
// uses the zero value Options.
func Build(s parasurf.Surface, res Resolution, opts *Options) (*Mesh, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if o.Tangents > TangentDerivative {
		return nil, fmt.Errorf("unknown tangent mode %s", o.Tangents)
	}
	format, err := o.IndexWidth.resolve(res)
	if err != nil {
		return nil, err
	}
	nv := res.VertexCount()
	m := &Mesh{
		res:        res,
		positions:  make([]float32, 3*nv),
		normals:    make([]float32, 3*nv),
		uvs:        make([]float32, 2*nv),
		tangents:   make([]float32, 3*nv),
		bitangents: make([]float32, 3*nv),
		format:     format,
	}
	sm := newSampler(s, res, o.Tangents)
	if err := sm.sampleAll(m, o.Concurrent); err != nil {
		return nil, err
	}
	m.indices = appendIndices(make([]uint32, 0, 3*res.TriangleCount()), res)
	if err := synthesizeNormals(m.normals, m.positions, m.indices, o.Concurrent); err != nil {
		return nil, err
	}
	return m, nil
}

// BuildRibbon builds the canonical ribbon surface over its default domain.
func BuildRibbon(p parasurf.ShapeParams, res Resolution) (*Mesh, error) {
	s, err := parasurf.NewRibbon(p)
	if err != nil {
		return nil, err
	}
	return Build(s, res, nil)
}
