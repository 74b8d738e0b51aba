package mesh

import (
	"errors"
	"fmt"

	"github.com/fogleman/simplify"
	"github.com/hschendel/stl"
	"github.com/soypat/glgl/math/ms3"
)

// Solid converts m to an stl.Solid that may be written in ASCII or binary
// form. Facet normals are unit length, or zero for degenerate triangles.
func Solid(m *Mesh, name string) *stl.Solid {
	solid := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, m.TriangleCount()),
	}
	for i := range solid.Triangles {
		f := stlFacet(m.soupTriangle(i))
		solid.Triangles[i] = stl.Triangle{
			Normal:   stl.Vec3(f.Normal),
			Vertices: [3]stl.Vec3{f.Vertex1, f.Vertex2, f.Vertex3},
		}
	}
	return solid
}

// Simplify decimates the triangles of m down to roughly factor times the
// original count using quadric error metrics. Degenerate triangles are
// dropped before decimation.
func Simplify(m *Mesh, factor float64) ([]ms3.Triangle, error) {
	if !(factor > 0 && factor <= 1) {
		return nil, fmt.Errorf("simplify factor %g outside (0,1]", factor)
	}
	in := make([]*simplify.Triangle, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.soupTriangle(i)
		if ms3.Norm(t.Normal()) == 0 {
			continue
		}
		in = append(in, simplify.NewTriangle(simplifyVec(t[0]), simplifyVec(t[1]), simplifyVec(t[2])))
	}
	if len(in) == 0 {
		return nil, errors.New("mesh has no area")
	}
	out := simplify.NewMesh(in).Simplify(factor)
	tris := make([]ms3.Triangle, len(out.Triangles))
	for i, t := range out.Triangles {
		tris[i] = ms3.Triangle{ms3Vec(t.V1), ms3Vec(t.V2), ms3Vec(t.V3)}
	}
	return tris, nil
}

func simplifyVec(v ms3.Vec) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func ms3Vec(v simplify.Vector) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
