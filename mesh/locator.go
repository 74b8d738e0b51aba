package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kdtree.Interface = kdVertices{}

// Locator finds the mesh vertex nearest to a point.
type Locator struct {
	tree *kdtree.Tree
	res  Resolution
}

// NewLocator indexes the vertices of m. The Locator does not reference m.
func NewLocator(m *Mesh) *Locator {
	vs := make(kdVertices, m.VertexCount())
	for i := range vs {
		vs[i] = kdVertex{p: m.Position(i), idx: i}
	}
	return &Locator{
		tree: kdtree.New(vs, false),
		res:  m.res,
	}
}

// Nearest returns the grid vertex closest to p, its flattened index and its
// distance to p. Coincident vertices resolve to any one of them.
func (l *Locator) Nearest(p r3.Vec) (gv GridVertex, idx int, dist float64) {
	got, d2 := l.tree.Nearest(kdVertex{p: p, idx: -1})
	idx = got.(kdVertex).idx
	return l.res.GridVertex(idx), idx, math.Sqrt(d2)
}

type kdVertex struct {
	p   r3.Vec
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdVertex), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.p, b.(kdVertex).p))
}

// c = a.dim - b.dim
func kdComp(a, b kdVertex, dim int) float64 {
	switch dim {
	case 0:
		return a.p.X - b.p.X
	case 1:
		return a.p.Y - b.p.Y
	}
	return a.p.Z - b.p.Z
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface { return k[start:end] }

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.vertices[i], p.vertices[j], p.dim) < 0
}

func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}

func (p kdPlane) Len() int { return len(p.vertices) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
