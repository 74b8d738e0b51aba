package glview

import (
	"fmt"
	"go/parser"
	"go/token"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/parasurf"
	"github.com/soypat/parasurf/mesh"
)

const tol = 1e-9

func vecNear(a, b fauxgl.Vector, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func matNear(a, b fauxgl.Matrix, tol float64) bool {
	x := [16]float64{a.X00, a.X01, a.X02, a.X03, a.X10, a.X11, a.X12, a.X13, a.X20, a.X21, a.X22, a.X23, a.X30, a.X31, a.X32, a.X33}
	y := [16]float64{b.X00, b.X01, b.X02, b.X03, b.X10, b.X11, b.X12, b.X13, b.X20, b.X21, b.X22, b.X23, b.X30, b.X31, b.X32, b.X33}
	for i := range x {
		if math.Abs(x[i]-y[i]) > tol {
			return false
		}
	}
	return true
}

func TestTrackballZeroDrag(t *testing.T) {
	tb := NewTrackball(800, 600)
	tb.Press(400, 300)
	tb.Drag(400, 300)
	if !matNear(tb.Rotation(), fauxgl.Identity(), tol) {
		t.Errorf("zero drag rotated: %v", tb.Rotation())
	}
	tb.Release()
	if !matNear(tb.Rotation(), fauxgl.Identity(), tol) {
		t.Errorf("zero drag rotated after release: %v", tb.Rotation())
	}
}

func TestTrackballDrag(t *testing.T) {
	tb := NewTrackball(800, 600)
	const x0, y0, x1, y1 = 400, 300, 520, 250
	tb.Press(x0, y0)
	tb.Drag(x1, y1)
	start, cur := tb.project(x0, y0), tb.project(x1, y1)
	got := tb.Rotation().MulDirection(start)
	if !vecNear(got, cur, 1e-9) {
		t.Errorf("drag maps %v to %v, want %v", start, got, cur)
	}
	// Dragging right turns the front of the ball right, about +Y.
	if got.X <= 0 {
		t.Errorf("rightward drag moved front point to %v", got)
	}
	during := tb.Rotation()
	tb.Release()
	if !matNear(tb.Rotation(), during, tol) {
		t.Error("rotation changed on release")
	}
	tb.Drag(0, 0)
	if !matNear(tb.Rotation(), during, tol) {
		t.Error("drag without press changed rotation")
	}
	tb.Reset()
	if !matNear(tb.Rotation(), fauxgl.Identity(), tol) {
		t.Error("reset kept rotation")
	}
}

func TestTrackballProjectUnit(t *testing.T) {
	tb := NewTrackball(640, 480)
	for _, p := range [][2]float64{{0, 0}, {320, 240}, {640, 480}, {100, 400}, {600, 10}} {
		v := tb.project(p[0], p[1])
		if math.Abs(v.Length()-1) > 1e-12 {
			t.Errorf("project(%v) = %v not unit", p, v)
		}
		if v.Z <= 0 {
			t.Errorf("project(%v) = %v behind ball", p, v)
		}
	}
	tb.Resize(0, -1)
	if tb.width != 640 || tb.height != 480 {
		t.Error("resize accepted non-positive size")
	}
}

func TestGLMat4ColumnMajor(t *testing.T) {
	m := fauxgl.Translate(fauxgl.V(1, 2, 3))
	g := glMat4(m)
	if g[12] != 1 || g[13] != 2 || g[14] != 3 || g[15] != 1 {
		t.Errorf("translation not in last column: %v", g)
	}
	if g[3] != 0 || g[7] != 0 || g[11] != 0 {
		t.Errorf("bottom row not zero: %v", g)
	}
}

func TestNormalMatRotation(t *testing.T) {
	r := fauxgl.Rotate(fauxgl.V(0, 1, 0), 0.7).Translate(fauxgl.V(3, -1, 2))
	n := normalMat3(r)
	want := [9]float32{
		float32(r.X00), float32(r.X10), float32(r.X20),
		float32(r.X01), float32(r.X11), float32(r.X21),
		float32(r.X02), float32(r.X12), float32(r.X22),
	}
	for i := range n {
		if math.Abs(float64(n[i]-want[i])) > 1e-6 {
			t.Fatalf("normal matrix of rigid transform differs from its rotation: got %v want %v", n, want)
		}
	}
}

func TestSceneMatrices(t *testing.T) {
	var s Scene
	mv, _ := s.Matrices()
	got := mv.MulPosition(fauxgl.Vector{})
	if !vecNear(got, fauxgl.V(0, 0, -viewDistance), 1e-9) {
		t.Errorf("origin in eye space at %v", got)
	}
	s.Rotation = fauxgl.Rotate(fauxgl.V(0, 0, 1), 1.1)
	mv2, _ := s.Matrices()
	if !vecNear(mv2.MulPosition(fauxgl.Vector{}), got, 1e-9) {
		t.Error("model rotation moved the origin")
	}
	// The light stays at a fixed distance from the origin.
	for _, a := range []float64{0, 1, math.Pi} {
		s.LightAngle = a
		l := s.LightEye(mv)
		d := l.Sub(got).Length()
		want := math.Hypot(lightRadius, lightHeight)
		if math.Abs(d-want) > 1e-9 {
			t.Errorf("light at angle %g is %g from origin, want %g", a, d, want)
		}
	}
}

func TestAttributes(t *testing.T) {
	m, err := mesh.BuildRibbon(parasurf.ShapeParams{L: 1, T: 1, B: 1}, mesh.Resolution{USteps: 3, VSteps: 2})
	if err != nil {
		t.Fatal(err)
	}
	attrs := attributes(m)
	wantSizes := [...]int32{3, 3, 2, 3, 3}
	for i, a := range attrs {
		name := attributeNames[i]
		if a.size != wantSizes[i] {
			t.Errorf("attribute %s has size %d, want %d", name, a.size, wantSizes[i])
		}
		if len(a.data) != int(a.size)*m.VertexCount() {
			t.Errorf("attribute %s has %d floats for %d vertices", name, len(a.data), m.VertexCount())
		}
	}
}

func TestShaderDeclarations(t *testing.T) {
	vertex := shaderSource[:strings.Index(shaderSource, "#shader fragment")]
	wantTypes := [...]string{"vec3", "vec3", "vec2", "vec3", "vec3"}
	for i, name := range attributeNames {
		decl := fmt.Sprintf("in %s %s;", wantTypes[i], name)
		if !strings.Contains(vertex, decl) {
			t.Errorf("vertex shader lacks %q", decl)
		}
	}
	for _, name := range uniformNames {
		if !strings.Contains(shaderSource, " "+name+";") {
			t.Errorf("shader lacks uniform %q", name)
		}
	}
}

// GL function pointers are loaded per profile package. Every package drawing
// with GL must use the profile initialized by glgl and NewRenderer.
func TestGLProfile(t *testing.T) {
	const want = "github.com/go-gl/gl/v4.6-core/gl"
	for _, dir := range []string{".", "../examples/viewer"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 0 {
			t.Fatalf("no Go files in %s", dir)
		}
		fset := token.NewFileSet()
		for _, file := range files {
			f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatal(err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if strings.HasPrefix(path, "github.com/go-gl/gl/") && path != want {
					t.Errorf("%s imports %s, want %s", file, path, want)
				}
			}
		}
	}
}

func TestIndexType(t *testing.T) {
	if xt, err := indexType(mesh.Index16); err != nil || xt != gl.UNSIGNED_SHORT {
		t.Errorf("Index16: %v %v", xt, err)
	}
	if xt, err := indexType(mesh.Index32); err != nil || xt != gl.UNSIGNED_INT {
		t.Errorf("Index32: %v %v", xt, err)
	}
	if _, err := indexType(mesh.IndexAuto); err == nil {
		t.Error("IndexAuto accepted")
	}
}
