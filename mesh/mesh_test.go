package mesh

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"testing"

	"github.com/soypat/parasurf"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitParams = parasurf.ShapeParams{L: 1, T: 1, B: 1}

func unitRibbon(t testing.TB) *parasurf.Ribbon {
	s, err := parasurf.NewRibbon(unitParams)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuildCounts(t *testing.T) {
	s := unitRibbon(t)
	for _, res := range []Resolution{{1, 1}, {4, 3}, {10, 7}, {32, 32}} {
		m, err := Build(s, res, nil)
		if err != nil {
			t.Fatal(err)
		}
		wantV := 2 * (res.USteps + 1) * (res.VSteps + 1)
		wantT := 8 * res.USteps * res.VSteps
		if m.VertexCount() != wantV {
			t.Errorf("%v: got %d vertices, want %d", res, m.VertexCount(), wantV)
		}
		if m.TriangleCount() != wantT || len(m.Indices()) != 3*wantT {
			t.Errorf("%v: got %d triangles, want %d", res, m.TriangleCount(), wantT)
		}
		if len(m.UVs()) != 2*wantV || len(m.Normals()) != 3*wantV ||
			len(m.Tangents()) != 3*wantV || len(m.Bitangents()) != 3*wantV {
			t.Errorf("%v: attribute arrays not aligned", res)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("%v: %v", res, err)
		}
	}
}

func TestSingleCell(t *testing.T) {
	m, err := BuildRibbon(unitParams, Resolution{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{
		0, 1, 5,
		0, 5, 4,
		1, 3, 7,
		1, 7, 5,
		0, 4, 6,
		0, 6, 2,
		2, 3, 7,
		2, 7, 6,
	}
	got := m.Indices()
	if len(got) != len(want) {
		t.Fatalf("got %d indices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got, want)
		}
	}
	if m.VertexCount() != 8 || m.IndexFormat() != Index16 {
		t.Errorf("got %d vertices with %s indices", m.VertexCount(), m.IndexFormat())
	}
}

func TestSheetOffset(t *testing.T) {
	res := Resolution{5, 4}
	m, err := BuildRibbon(unitParams, res)
	if err != nil {
		t.Fatal(err)
	}
	pos := m.Positions()
	for row := 0; row < res.VCount(); row++ {
		for col := 0; col < res.UCount(); col++ {
			plus := GridVertex{Sheet: parasurf.Plus, Row: row, Col: col}
			minus := GridVertex{Sheet: parasurf.Minus, Row: row, Col: col}
			ip, im := res.Index(plus), res.Index(minus)
			if im-ip != res.UCount()*res.VCount() {
				t.Fatalf("sheet offset got %d, want %d", im-ip, res.UCount()*res.VCount())
			}
			if res.GridVertex(ip) != plus || res.GridVertex(im) != minus {
				t.Fatalf("GridVertex(%d)=%v, GridVertex(%d)=%v", ip, res.GridVertex(ip), im, res.GridVertex(im))
			}
			if pos[3*ip+1] != -pos[3*im+1] || pos[3*ip] != pos[3*im] || pos[3*ip+2] != pos[3*im+2] {
				t.Errorf("vertex %v not mirrored: %v %v", plus, pos[3*ip:3*ip+3], pos[3*im:3*im+3])
			}
			uvp, uvm := m.UVs()[2*ip:2*ip+2], m.UVs()[2*im:2*im+2]
			wantU := float32(float64(col) / float64(res.USteps))
			wantV := float32(float64(row) / float64(res.VSteps))
			if uvp[0] != wantU || uvp[1] != wantV || uvm[0] != wantU || uvm[1] != wantV {
				t.Errorf("vertex %v: uv %v %v, want (%g,%g)", plus, uvp, uvm, wantU, wantV)
			}
		}
	}
}

func TestOriginMirrored(t *testing.T) {
	res := Resolution{4, 4}
	s, err := unitRibbon(t).WithDomain(r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 1, Y: 1}})
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(s, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	plus := m.Position(res.Index(GridVertex{Sheet: parasurf.Plus}))
	minus := m.Position(res.Index(GridVertex{Sheet: parasurf.Minus}))
	if plus.Y != -minus.Y {
		t.Errorf("u=0,v=0 plus y %g, minus y %g", plus.Y, minus.Y)
	}
}

func TestBuildDeterministic(t *testing.T) {
	s := unitRibbon(t)
	res := Resolution{24, 17}
	a, err := Build(s, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(s, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Build(s, res, &Options{Concurrent: 4})
	if err != nil {
		t.Fatal(err)
	}
	for _, other := range []*Mesh{b, c} {
		for name, pair := range map[string][2][]float32{
			"positions":  {a.Positions(), other.Positions()},
			"uvs":        {a.UVs(), other.UVs()},
			"tangents":   {a.Tangents(), other.Tangents()},
			"bitangents": {a.Bitangents(), other.Bitangents()},
		} {
			if i := mismatchF32(pair[0], pair[1], 0); i >= 0 {
				t.Errorf("%s differ at %d: %g != %g", name, i, pair[0][i], pair[1][i])
			}
		}
		for i := range a.Indices() {
			if a.Indices()[i] != other.Indices()[i] {
				t.Fatalf("indices differ at %d", i)
			}
		}
	}
	if i := mismatchF32(a.Normals(), b.Normals(), 0); i >= 0 {
		t.Errorf("sequential normals differ at %d", i)
	}
	if i := mismatchF32(a.Normals(), c.Normals(), 1e-5); i >= 0 {
		t.Errorf("concurrent normals differ at %d: %g != %g", i, a.Normals()[i], c.Normals()[i])
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestIndexFormat(t *testing.T) {
	for _, test := range []struct {
		res     Resolution
		in      IndexFormat
		want    IndexFormat
		wantErr bool
	}{
		{res: Resolution{1, 1}, in: IndexAuto, want: Index16},
		{res: Resolution{127, 255}, in: IndexAuto, want: Index16}, // 65536 vertices.
		{res: Resolution{127, 255}, in: Index16, want: Index16},
		{res: Resolution{128, 255}, in: IndexAuto, want: Index32},
		{res: Resolution{128, 255}, in: Index16, wantErr: true},
		{res: Resolution{128, 255}, in: Index32, want: Index32},
		{res: Resolution{1, 1}, in: Index32, want: Index32},
		{res: Resolution{1 << 20, 1 << 20}, in: IndexAuto, wantErr: true},
		{res: Resolution{1 << 20, 1 << 20}, in: Index32, wantErr: true},
	} {
		got, err := test.in.resolve(test.res)
		if test.wantErr {
			if !errors.Is(err, ErrIndexOverflow) {
				t.Errorf("%v %s: want ErrIndexOverflow, got %v", test.res, test.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v %s: %v", test.res, test.in, err)
		} else if got != test.want {
			t.Errorf("%v %s: got %s, want %s", test.res, test.in, got, test.want)
		}
	}
	if Index16.Size() != 2 || Index32.Size() != 4 {
		t.Errorf("index sizes %d, %d bytes", Index16.Size(), Index32.Size())
	}
}

func TestIndices16(t *testing.T) {
	s := unitRibbon(t)
	m, err := Build(s, Resolution{127, 255}, nil)
	if err != nil {
		t.Fatal(err)
	}
	idx16, err := m.Indices16()
	if err != nil {
		t.Fatal(err)
	}
	for i, idx := range m.Indices() {
		if uint32(idx16[i]) != idx {
			t.Fatalf("index %d: got %d, want %d", i, idx16[i], idx)
		}
	}
	m, err = Build(s, Resolution{2, 2}, &Options{IndexWidth: Index32})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = m.Indices16(); !errors.Is(err, ErrIndexOverflow) {
		t.Errorf("want ErrIndexOverflow for 32 bit mesh, got %v", err)
	}
	if _, err = Build(s, Resolution{128, 255}, &Options{IndexWidth: Index16}); !errors.Is(err, ErrIndexOverflow) {
		t.Errorf("want ErrIndexOverflow building past 16 bit ceiling, got %v", err)
	}
}

func TestInvalidResolution(t *testing.T) {
	s := unitRibbon(t)
	for _, res := range []Resolution{{0, 1}, {1, 0}, {-1, 5}, {3, -2}} {
		if _, err := Build(s, res, nil); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("Build %v: want ErrInvalidResolution, got %v", res, err)
		}
		if _, err := NewWireframe(s, res); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("NewWireframe %v: want ErrInvalidResolution, got %v", res, err)
		}
	}
}

func TestBounds(t *testing.T) {
	m, err := BuildRibbon(unitParams, Resolution{10, 13})
	if err != nil {
		t.Fatal(err)
	}
	bb := m.Bounds()
	const tol = 1e-6
	want := r3.Box{
		Min: r3.Vec{X: 0, Y: bb.Min.Y, Z: -0.3},
		Max: r3.Vec{X: 1, Y: bb.Max.Y, Z: 1},
	}
	if !parasurf.EqualWithin(bb.Min, want.Min, tol) || !parasurf.EqualWithin(bb.Max, want.Max, tol) {
		t.Errorf("got bounds %v, want %v", bb, want)
	}
	if bb.Min.Y != -bb.Max.Y {
		t.Errorf("y bounds not symmetric: %v", bb)
	}
}

// flat is a surface whose sheets coincide so every triangle has zero area.
type flat struct{}

func (flat) Evaluate(u, v float64, _ parasurf.Sheet) r3.Vec { return r3.Vec{X: u, Y: v} }

func (flat) Domain() r2.Box { return r2.Box{Max: r2.Vec{X: 1, Y: 1}} }

func TestNormalFallback(t *testing.T) {
	m, err := Build(flat{}, Resolution{3, 3}, &Options{Concurrent: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		if n := m.Normal(i); n != fallbackNormal {
			t.Fatalf("vertex %d: got normal %v, want %v", i, n, fallbackNormal)
		}
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFaceNormal(t *testing.T) {
	n := faceNormal(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Y: 3})
	if n != (r3.Vec{Z: 6}) {
		t.Errorf("got %v, want unnormalized (0,0,6)", n)
	}
}

func TestTangentModes(t *testing.T) {
	s := unitRibbon(t)
	res := Resolution{8, 8}
	disp, err := Build(s, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	unit, err := Build(s, res, &Options{Tangents: TangentUnit})
	if err != nil {
		t.Fatal(err)
	}
	deriv, err := Build(s, res, &Options{Tangents: TangentDerivative})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Build(s, res, &Options{Tangents: TangentDerivative + 1}); err == nil {
		t.Error("want error for unknown tangent mode")
	}
	for _, m := range []*Mesh{disp, unit, deriv} {
		if err := m.Validate(); err != nil {
			t.Error(err)
		}
	}
	for i := 0; i < unit.VertexCount(); i++ {
		for _, arr := range [][]float32{unit.Tangents(), unit.Bitangents()} {
			n := arr[3*i : 3*i+3]
			l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
			if l != 0 && math.Abs(l-1) > 1e-5 {
				t.Fatalf("vertex %d: unit tangent length %g", i, l)
			}
		}
	}
	// Interior vertex: displacement/δ approximates the derivative.
	i := res.Index(GridVertex{Sheet: parasurf.Plus, Row: 4, Col: 4})
	for k := 0; k < 3; k++ {
		got := float64(disp.Tangents()[3*i+k]) / parasurf.DefaultDelta
		want := float64(deriv.Tangents()[3*i+k])
		if math.Abs(got-want) > 1e-2 {
			t.Errorf("tangent component %d: displacement/δ=%g, derivative=%g", k, got, want)
		}
	}
}

func TestFoliumBuild(t *testing.T) {
	s, err := parasurf.NewFolium(unitParams)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(s, Resolution{16, 40}, &Options{Concurrent: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
}

func mismatchF32(a, b []float32, tol float32) int {
	if len(a) != len(b) {
		return 0
	}
	for i := range a {
		d := a[i] - b[i]
		if d > tol || d < -tol {
			return i
		}
	}
	return -1
}

func BenchmarkBuildRibbon(b *testing.B) {
	s := unitRibbon(b)
	res := Resolution{128, 128}
	for _, conc := range []int{1, 4} {
		b.Run(fmt.Sprintf("concurrent=%d", conc), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, err := Build(s, res, &Options{Concurrent: conc})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestNormalWorkers(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	for _, test := range []struct {
		nt, concurrent int
	}{
		{nt: 100, concurrent: 8},
		{nt: 8 * 64 * 64, concurrent: 4},
		{nt: 8 * 64 * 64, concurrent: 4096},
		{nt: 8 * 256 * 256, concurrent: 1 << 20},
	} {
		got := normalWorkers(test.nt, test.concurrent)
		if got > test.concurrent || got > procs || got > test.nt/minChunkTriangles {
			t.Errorf("normalWorkers(%d, %d) = %d exceeds bounds (GOMAXPROCS=%d)", test.nt, test.concurrent, got, procs)
		}
	}
	if got := normalWorkers(100, 8); got != 0 {
		t.Errorf("small mesh got %d workers, want sequential", got)
	}
}

func TestBuildManyWorkers(t *testing.T) {
	s := unitRibbon(t)
	res := Resolution{64, 64}
	seq, err := Build(s, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, concurrent := range []int{2, 4096} {
		m, err := Build(s, res, &Options{Concurrent: concurrent})
		if err != nil {
			t.Fatal(err)
		}
		if i := mismatchF32(seq.Positions(), m.Positions(), 0); i >= 0 {
			t.Errorf("concurrent=%d: positions differ at %d", concurrent, i)
		}
		if i := mismatchF32(seq.Normals(), m.Normals(), 1e-5); i >= 0 {
			t.Errorf("concurrent=%d: normals differ at %d: %g != %g", concurrent, i, seq.Normals()[i], m.Normals()[i])
		}
	}
}
