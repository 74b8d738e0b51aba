// Command parasurf tessellates a parametric surface and writes the result
// as STL, PNG previews or a wireframe plot.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/parasurf/internal/config"
	"github.com/soypat/parasurf/internal/d3"
	"github.com/soypat/parasurf/mesh"
	"github.com/soypat/parasurf/preview"
	"gonum.org/v1/gonum/spatial/r3"
)

type flags struct {
	config     string
	kind       string
	l, t, b    float64
	u, v       int
	tangents   string
	index      int
	concurrent int

	stl       string
	ascii     bool
	simplify  float64
	png       string
	wireframe string
	plane     string
	probe     string
	dump      string
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("parasurf: ")
	var f flags
	def := config.Default()
	flag.StringVar(&f.config, "config", "", "TOML or YAML build configuration `file`")
	flag.StringVar(&f.kind, "kind", def.Kind, "surface kind: ribbon or folium")
	flag.Float64Var(&f.l, "L", def.Shape.L, "length parameter")
	flag.Float64Var(&f.t, "T", def.Shape.T, "thickness parameter")
	flag.Float64Var(&f.b, "B", def.Shape.B, "breadth parameter")
	flag.IntVar(&f.u, "u", def.Resolution.USteps, "steps along u")
	flag.IntVar(&f.v, "v", def.Resolution.VSteps, "steps along v")
	flag.StringVar(&f.tangents, "tangents", def.Tangents, "tangent mode: displacement, unit or derivative")
	flag.IntVar(&f.index, "index", def.IndexWidth, "index width in bits: 16, 32 or 0 for automatic")
	flag.IntVar(&f.concurrent, "concurrent", def.Concurrent, "worker goroutines, 0 or 1 builds sequentially")
	flag.StringVar(&f.stl, "stl", "", "write the mesh as STL to `file`")
	flag.BoolVar(&f.ascii, "ascii", false, "write ASCII STL instead of binary")
	flag.Float64Var(&f.simplify, "simplify", 0, "decimate the STL output to this fraction of triangles")
	flag.StringVar(&f.png, "png", "", "write a shaded preview to `file`")
	flag.StringVar(&f.wireframe, "wireframe", "", "write a wireframe plot PNG to `file`")
	flag.StringVar(&f.plane, "plane", "xy", "wireframe projection plane: xy, xz or yz")
	flag.StringVar(&f.probe, "probe", "", "report the grid vertex nearest to point `x,y,z`")
	flag.StringVar(&f.dump, "dump", "", "write the effective configuration to `file` (.toml or .yaml)")
	flag.Parse()

	cfg, err := f.resolve()
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, f); err != nil {
		log.Fatal(err)
	}
}

// resolve loads the configuration file if any and applies the flags that
// were set explicitly on top of it.
func (f flags) resolve() (config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		cfg, err = config.Load(f.config)
		if err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "kind":
			cfg.Kind = f.kind
		case "L":
			cfg.Shape.L = f.l
		case "T":
			cfg.Shape.T = f.t
		case "B":
			cfg.Shape.B = f.b
		case "u":
			cfg.Resolution.USteps = f.u
		case "v":
			cfg.Resolution.VSteps = f.v
		case "tangents":
			cfg.Tangents = f.tangents
		case "index":
			cfg.IndexWidth = f.index
		case "concurrent":
			cfg.Concurrent = f.concurrent
		}
	})
	return cfg, nil
}

func run(cfg config.Config, f flags) error {
	m, err := cfg.Build()
	if err != nil {
		return err
	}
	bb := d3.Box(m.Bounds())
	fmt.Printf("%s L=%g T=%g B=%g grid %dx%d\n", cfg.Kind, cfg.Shape.L, cfg.Shape.T, cfg.Shape.B,
		cfg.Resolution.USteps, cfg.Resolution.VSteps)
	fmt.Printf("vertices %d triangles %d indices %s (%d bytes)\n", m.VertexCount(), m.TriangleCount(),
		m.IndexFormat(), 3*m.TriangleCount()*m.IndexFormat().Size())
	fmt.Printf("bounds min %+.4g max %+.4g\n", bb.Min, bb.Max)
	fmt.Printf("center %+.4g size %+.4g\n", bb.Center(), bb.Size())

	if f.dump != "" {
		if err := dumpConfig(f.dump, cfg); err != nil {
			return err
		}
	}
	if f.stl != "" {
		if err := writeSTL(f.stl, m, cfg.Kind, f.ascii, f.simplify); err != nil {
			return err
		}
		log.Println("wrote", f.stl)
	}
	if f.png != "" {
		img, err := preview.Render(m, preview.DefaultView)
		if err != nil {
			return err
		}
		if err := preview.SavePNG(f.png, img); err != nil {
			return err
		}
		log.Println("wrote", f.png)
	}
	if f.wireframe != "" {
		if err := writeWireframe(f.wireframe, cfg, f.plane); err != nil {
			return err
		}
		log.Println("wrote", f.wireframe)
	}
	if f.probe != "" {
		p, err := parseVec(f.probe)
		if err != nil {
			return err
		}
		gv, idx, dist := mesh.NewLocator(m).Nearest(p)
		fmt.Printf("nearest to %v: vertex %d (%s sheet, row %d, col %d) at distance %.6g\n",
			p, idx, gv.Sheet, gv.Row, gv.Col, dist)
	}
	return nil
}

func writeSTL(path string, m *mesh.Mesh, name string, ascii bool, factor float64) error {
	if factor <= 0 && !ascii {
		return mesh.CreateSTL(path, mesh.NewTriangleReader(m))
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	if factor > 0 {
		tris, err := mesh.Simplify(m, factor)
		if err != nil {
			return err
		}
		log.Printf("simplified %d triangles to %d", m.TriangleCount(), len(tris))
		if ascii {
			log.Println("simplified output is always binary STL")
		}
		if _, err = mesh.WriteSTL(w, tris); err != nil {
			return err
		}
	} else {
		solid := mesh.Solid(m, name)
		solid.IsAscii = true
		if err = solid.WriteAll(w); err != nil {
			return err
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return fp.Close()
}

func writeWireframe(path string, cfg config.Config, plane string) error {
	pl, err := preview.ParsePlane(plane)
	if err != nil {
		return err
	}
	s, err := cfg.Surface()
	if err != nil {
		return err
	}
	wf, err := mesh.NewWireframe(s, cfg.Resolution)
	if err != nil {
		return err
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	if err := preview.PlotWireframe(w, wf, pl); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return fp.Close()
}

func dumpConfig(path string, cfg config.Config) error {
	format := "toml"
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		format = "yaml"
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := cfg.Encode(fp, format); err != nil {
		return err
	}
	return fp.Close()
}

func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var c [3]float64
	for i, p := range parts {
		var err error
		c[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("point %q: %w", s, err)
		}
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
