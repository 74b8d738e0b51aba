package mesh

import "github.com/soypat/parasurf"

// appendIndices appends the triangle list stitching both sheets of a
// res grid to dst. Each cell contributes 8 triangles: the top and bottom
// bands between sheets, the left and right bands, in that order.
func appendIndices(dst []uint32, res Resolution) []uint32 {
	uCount := uint32(res.UCount())
	off := uint32(res.SheetOffset(parasurf.Minus))
	for v := 0; v < res.VSteps; v++ {
		for u := 0; u < res.USteps; u++ {
			tl := uint32(v)*uCount + uint32(u)
			tr := tl + 1
			bl := tl + uCount
			br := bl + 1
			mtl, mtr, mbl, mbr := tl+off, tr+off, bl+off, br+off
			dst = append(dst,
				tl, tr, mtr,
				tl, mtr, mtl,
				tr, br, mbr,
				tr, mbr, mtr,
				tl, mtl, mbl,
				tl, mbl, bl,
				bl, br, mbr,
				bl, mbr, mbl,
			)
		}
	}
	return dst
}
