package transport

import (
	"github.com/notargets/gotpfa/grid"
)

// PressureSolution supplies the outward flux of every half-face
type PressureSolution interface {
	OutFlux(halfFace int) float64
}

// AssembleFluxes writes one signed flux per face into dst, positive from
// FaceCells[f][0] towards FaceCells[f][1]. Each half-face contributes its
// outward flux, negated when the visiting cell is the high cell, so both
// cells of a face store the same value. dst is allocated when too short.
func AssembleFluxes(g *grid.Grid, ps PressureSolution, dst []float64) []float64 {
	if len(dst) < g.NumFaces {
		dst = make([]float64, g.NumFaces)
	}
	dst = dst[:g.NumFaces]
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for i := lo; i < hi; i++ {
			f := g.CellFaces[i]
			sgn := 1.
			if g.FaceCells[f][0] != c {
				sgn = -1
			}
			dst[f] = sgn * ps.OutFlux(i)
		}
	}
	return dst
}
