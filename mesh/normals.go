package mesh

import (
	"runtime"

	"github.com/soypat/parasurf/internal/d3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateNormal is the length below which an accumulated normal is
// replaced by fallbackNormal.
const degenerateNormal = 1e-6

// minChunkTriangles is the least number of triangles worth a private
// accumulator in concurrent normal synthesis.
const minChunkTriangles = 4096

var fallbackNormal = r3.Vec{Z: 1}

// synthesizeNormals writes facet-average normals to dst. Each triangle adds
// its unnormalized face normal (p2-p1)×(p3-p1) to its three vertices.
func synthesizeNormals(dst, positions []float32, indices []uint32, concurrent int) error {
	nv := len(positions) / 3
	nt := len(indices) / 3
	acc := make([]r3.Vec, nv)
	workers := normalWorkers(nt, concurrent)
	if workers < 2 {
		accumulate(acc, positions, indices)
	} else {
		// Contiguous triangle chunks with private accumulators,
		// reduced in chunk order after the barrier.
		chunk := (nt + workers - 1) / workers
		partial := make([][]r3.Vec, 0, workers)
		var g errgroup.Group
		for start := 0; start < nt; start += chunk {
			end := start + chunk
			if end > nt {
				end = nt
			}
			part := make([]r3.Vec, nv)
			partial = append(partial, part)
			tris := indices[3*start : 3*end]
			g.Go(func() error {
				accumulate(part, positions, tris)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, part := range partial {
			for i := range acc {
				acc[i] = r3.Add(acc[i], part[i])
			}
		}
	}
	for i, n := range acc {
		if r3.Norm(n) > degenerateNormal {
			n = r3.Unit(n)
		} else {
			n = fallbackNormal
		}
		d3.Store(dst, i, n)
	}
	return nil
}

// normalWorkers returns the number of triangle chunks accumulated in
// parallel. Each chunk holds a full accumulator so the count is bounded by
// the available processors and the triangle count.
func normalWorkers(nt, concurrent int) int {
	return min(concurrent, runtime.GOMAXPROCS(0), nt/minChunkTriangles)
}

func accumulate(acc []r3.Vec, positions []float32, indices []uint32) {
	for t := 0; t+2 < len(indices); t += 3 {
		i1, i2, i3 := int(indices[t]), int(indices[t+1]), int(indices[t+2])
		p1 := d3.Load(positions, i1)
		n := faceNormal(p1, d3.Load(positions, i2), d3.Load(positions, i3))
		acc[i1] = r3.Add(acc[i1], n)
		acc[i2] = r3.Add(acc[i2], n)
		acc[i3] = r3.Add(acc[i3], n)
	}
}

// faceNormal returns the unnormalized normal of triangle p1,p2,p3.
// Its length is twice the triangle's area.
func faceNormal(p1, p2, p3 r3.Vec) r3.Vec {
	return r3.Cross(r3.Sub(p2, p1), r3.Sub(p3, p1))
}
