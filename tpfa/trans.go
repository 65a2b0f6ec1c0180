// Package tpfa computes two-point flux approximation transmissibilities
package tpfa

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/rock"
)

// ErrDegenerate is returned when a half-face conductivity is not strictly
// positive and finite, which happens for degenerate geometry or permeability
var ErrDegenerate = errors.New("degenerate half transmissibility")

// HalfTrans returns one conductivity per half-face, in CellFaces order:
//
//	t = A (n·K·d) / |d|²
//
// with d the offset from the cell centroid to the face centroid and n the unit
// normal pointing out of the cell.
func HalfTrans(g *grid.Grid, perm []*mat.SymDense) (htrans []float64, err error) {
	htrans = make([]float64, g.NumHalfFaces())
	for c := 0; c < g.NumCells; c++ {
		K := perm[c]
		lo, hi := g.CellFaceRange(c)
		for i := lo; i < hi; i++ {
			var (
				f = g.CellFaces[i]
				n = g.OutwardNormal(c, f)
				d = r3.Sub(g.FaceCentroids[f], g.CellCentroids[c])
				t = g.FaceAreas[f] * permDot(K, d, n) / r3.Dot(d, d)
			)
			if !(t > 0) || math.IsInf(t, 0) {
				return nil, fmt.Errorf("%w: cell %d face %d: %g", ErrDegenerate, c, f, t)
			}
			htrans[i] = t
		}
	}
	return
}

// Trans combines half-face conductivities by harmonic averaging,
// T = 1/Σ(1/t), one or two contributions per face
func Trans(g *grid.Grid, htrans []float64) (trans []float64) {
	trans = make([]float64, g.NumFaces)
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for i := lo; i < hi; i++ {
			trans[g.CellFaces[i]] += 1 / htrans[i]
		}
	}
	for f := range trans {
		trans[f] = 1 / trans[f]
	}
	return
}

// Build returns the face transmissibilities of a grid and rock
func Build(g *grid.Grid, r *rock.Properties) ([]float64, error) {
	htrans, err := HalfTrans(g, r.Permeability)
	if err != nil {
		return nil, err
	}
	return Trans(g, htrans), nil
}

// Harmonic returns 1/(1/a + 1/b)
func Harmonic(a, b float64) float64 {
	return a * b / (a + b)
}

// permDot returns d·K·n
func permDot(K *mat.SymDense, d, n r3.Vec) float64 {
	var Kn mat.VecDense
	Kn.MulVec(K, mat.NewVecDense(3, []float64{n.X, n.Y, n.Z}))
	return mat.Dot(mat.NewVecDense(3, []float64{d.X, d.Y, d.Z}), &Kn)
}
