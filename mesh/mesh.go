package mesh

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/parasurf"
	"github.com/soypat/parasurf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidResolution is returned when a resolution has a non-positive step count.
	ErrInvalidResolution = errors.New("invalid resolution")
	// ErrIndexOverflow is returned when the vertex count does not fit the index type.
	ErrIndexOverflow = errors.New("vertex index overflows index type")
)

// Resolution is the number of parameter steps along u and v.
// A sheet has (USteps+1)*(VSteps+1) vertices.
type Resolution struct {
	USteps int `toml:"u" yaml:"u"`
	VSteps int `toml:"v" yaml:"v"`
}

// Validate returns ErrInvalidResolution if either step count is not positive.
func (r Resolution) Validate() error {
	if r.USteps <= 0 || r.VSteps <= 0 {
		return fmt.Errorf("%w: uSteps=%d vSteps=%d must be positive", ErrInvalidResolution, r.USteps, r.VSteps)
	}
	return nil
}

// UCount is the number of samples along u.
func (r Resolution) UCount() int { return r.USteps + 1 }

// VCount is the number of samples along v.
func (r Resolution) VCount() int { return r.VSteps + 1 }

// SheetSize is the number of vertices in one sheet.
func (r Resolution) SheetSize() int { return r.UCount() * r.VCount() }

// VertexCount is the number of vertices of both sheets.
func (r Resolution) VertexCount() int { return 2 * r.SheetSize() }

// TriangleCount is the number of triangles emitted by the topology builder.
func (r Resolution) TriangleCount() int { return 8 * r.USteps * r.VSteps }

// SheetOffset returns the flattened index of the first vertex of sheet.
func (r Resolution) SheetOffset(sheet parasurf.Sheet) int {
	if sheet == parasurf.Minus {
		return r.SheetSize()
	}
	return 0
}

// GridVertex identifies a sample of the parameter grid.
type GridVertex struct {
	Sheet parasurf.Sheet
	Row   int // v sample, [0, VCount)
	Col   int // u sample, [0, UCount)
}

// Index returns the flattened vertex index of gv.
func (r Resolution) Index(gv GridVertex) int {
	return r.SheetOffset(gv.Sheet) + gv.Row*r.UCount() + gv.Col
}

// GridVertex is the inverse of Index.
func (r Resolution) GridVertex(idx int) GridVertex {
	sheet := parasurf.Plus
	if idx >= r.SheetSize() {
		sheet = parasurf.Minus
		idx -= r.SheetSize()
	}
	return GridVertex{Sheet: sheet, Row: idx / r.UCount(), Col: idx % r.UCount()}
}

// lastIndex returns the largest flattened index and false if it does not
// fit in 64 bits.
func (r Resolution) lastIndex() (uint64, bool) {
	hi, lo := bits.Mul64(uint64(r.UCount()), uint64(r.VCount()))
	if hi != 0 || lo > math.MaxUint64/2 {
		return 0, false
	}
	return 2*lo - 1, true
}

// IndexFormat is the integer width of a mesh's index buffer.
type IndexFormat uint8

const (
	// IndexAuto picks the narrowest format able to address every vertex.
	IndexAuto IndexFormat = 0
	Index16   IndexFormat = 16
	Index32   IndexFormat = 32
)

// Size returns the size in bytes of one index.
func (f IndexFormat) Size() int { return int(f) / 8 }

func (f IndexFormat) String() string {
	switch f {
	case IndexAuto:
		return "auto"
	case Index16:
		return "uint16"
	case Index32:
		return "uint32"
	}
	return fmt.Sprintf("IndexFormat(%d)", uint8(f))
}

// resolve returns the concrete format for res.
func (f IndexFormat) resolve(res Resolution) (IndexFormat, error) {
	last, ok := res.lastIndex()
	if !ok {
		return 0, fmt.Errorf("%w: resolution %dx%d", ErrIndexOverflow, res.USteps, res.VSteps)
	}
	switch f {
	case IndexAuto:
		if last <= math.MaxUint16 {
			return Index16, nil
		}
		f = Index32
		fallthrough
	case Index32:
		if last > math.MaxUint32 {
			return 0, fmt.Errorf("%w: last index %d exceeds %s", ErrIndexOverflow, last, Index32)
		}
	case Index16:
		if last > math.MaxUint16 {
			return 0, fmt.Errorf("%w: last index %d exceeds %s, reduce resolution", ErrIndexOverflow, last, Index16)
		}
	default:
		return 0, fmt.Errorf("unsupported index format %s", f)
	}
	return f, nil
}

// Mesh is a tessellated two-sheet surface. Attribute arrays are aligned by
// vertex index. Slices returned by accessors are shared with the Mesh and
// must not be modified.
type Mesh struct {
	res        Resolution
	positions  []float32 // 3 per vertex
	normals    []float32 // 3 per vertex
	uvs        []float32 // 2 per vertex
	tangents   []float32 // 3 per vertex
	bitangents []float32 // 3 per vertex
	indices    []uint32  // 3 per triangle
	format     IndexFormat
}

func (m *Mesh) Resolution() Resolution { return m.res }

func (m *Mesh) VertexCount() int { return len(m.positions) / 3 }

func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

// Positions returns vertex positions, 3 floats per vertex.
func (m *Mesh) Positions() []float32 { return m.positions }

// Normals returns unit vertex normals, 3 floats per vertex.
func (m *Mesh) Normals() []float32 { return m.normals }

// UVs returns texture coordinates, 2 floats per vertex.
func (m *Mesh) UVs() []float32 { return m.uvs }

// Tangents returns the u direction of the vertex frames, 3 floats per vertex.
func (m *Mesh) Tangents() []float32 { return m.tangents }

// Bitangents returns the v direction of the vertex frames, 3 floats per vertex.
func (m *Mesh) Bitangents() []float32 { return m.bitangents }

// Indices returns the triangle list, 3 indices per triangle.
func (m *Mesh) Indices() []uint32 { return m.indices }

// IndexFormat returns the narrowest index width the mesh was built for.
func (m *Mesh) IndexFormat() IndexFormat { return m.format }

// Indices16 returns a 16 bit copy of the triangle list for consumers
// limited to 16 bit index buffers.
func (m *Mesh) Indices16() ([]uint16, error) {
	if m.format != Index16 {
		return nil, fmt.Errorf("%w: mesh of %d vertices needs %s indices", ErrIndexOverflow, m.VertexCount(), m.format)
	}
	return convertIndices(make([]uint16, len(m.indices)), m.indices), nil
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) r3.Vec { return d3.Load(m.positions, i) }

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) r3.Vec { return d3.Load(m.normals, i) }

// Triangle returns the vertex indices of the i'th triangle.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.indices[3*i], m.indices[3*i+1], m.indices[3*i+2]}
}

// Triangles returns the mesh as a triangle soup.
func (m *Mesh) Triangles() []ms3.Triangle {
	tris := make([]ms3.Triangle, m.TriangleCount())
	for i := range tris {
		tris[i] = m.soupTriangle(i)
	}
	return tris
}

func (m *Mesh) soupTriangle(i int) ms3.Triangle {
	idx := m.Triangle(i)
	var t ms3.Triangle
	for k, vi := range idx {
		p := m.positions[3*vi : 3*vi+3]
		t[k] = ms3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return t
}

// Bounds returns the axis aligned bounding box of the vertices.
func (m *Mesh) Bounds() r3.Box {
	bb := d3.Empty()
	for i := 0; i < m.VertexCount(); i++ {
		bb = bb.Include(m.Position(i))
	}
	return r3.Box(bb)
}

// Validate checks the structural invariants of the mesh: aligned attribute
// arrays, in-range indices, finite attributes and unit or fallback normals.
func (m *Mesh) Validate() error {
	nv := m.res.VertexCount()
	switch {
	case len(m.positions) != 3*nv, len(m.normals) != 3*nv, len(m.tangents) != 3*nv,
		len(m.bitangents) != 3*nv, len(m.uvs) != 2*nv:
		return fmt.Errorf("attribute arrays not aligned to %d vertices", nv)
	case len(m.indices) != 3*m.res.TriangleCount():
		return fmt.Errorf("got %d indices, want %d", len(m.indices), 3*m.res.TriangleCount())
	}
	for i, idx := range m.indices {
		if int(idx) >= nv {
			return fmt.Errorf("index %d at %d out of range [0,%d)", idx, i, nv)
		}
	}
	for _, attr := range []struct {
		name string
		data []float32
	}{
		{"position", m.positions}, {"normal", m.normals}, {"uv", m.uvs},
		{"tangent", m.tangents}, {"bitangent", m.bitangents},
	} {
		for i, f := range attr.data {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				return fmt.Errorf("non-finite %s component %d", attr.name, i)
			}
		}
	}
	const tol = 1e-5
	for i := 0; i < nv; i++ {
		n := m.normals[3*i : 3*i+3]
		if n[0] == 0 && n[1] == 0 && n[2] == 1 {
			continue
		}
		length := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if math32.Abs(length-1) > tol {
			return fmt.Errorf("normal %d has length %g", i, length)
		}
	}
	return nil
}
