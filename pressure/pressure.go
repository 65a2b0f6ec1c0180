// Package pressure provides the half-face fluxes that drive saturation
// transport: prescribed velocity fields and an incompressible TPFA solve.
package pressure

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/linsolve"
)

// FluxField stores one outward flux per half-face, in grid CellFaces order
type FluxField struct {
	Flux []float64
}

// OutFlux returns the flux leaving the cell through half-face hf
func (ff *FluxField) OutFlux(hf int) float64 {
	return ff.Flux[hf]
}

// Uniform returns the fluxes of a constant Darcy velocity v
func Uniform(g *grid.Grid, v r3.Vec) (ff *FluxField) {
	ff = &FluxField{Flux: make([]float64, g.NumHalfFaces())}
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for i := lo; i < hi; i++ {
			f := g.CellFaces[i]
			ff.Flux[i] = g.FaceAreas[f] * r3.Dot(g.OutwardNormal(c, f), v)
		}
	}
	return
}

// FromFaceFlux expands per-face fluxes, positive from FaceCells[f][0] to
// FaceCells[f][1], into outward half-face fluxes
func FromFaceFlux(g *grid.Grid, faceflux []float64) (ff *FluxField) {
	ff = &FluxField{Flux: make([]float64, g.NumHalfFaces())}
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for i := lo; i < hi; i++ {
			f := g.CellFaces[i]
			if g.FaceCells[f][0] == c {
				ff.Flux[i] = faceflux[f]
			} else {
				ff.Flux[i] = -faceflux[f]
			}
		}
	}
	return
}

// Options configures SolveTPFA
type Options struct {
	// Boundary pressures by grid tag, untagged boundary faces are sealed
	Dirichlet map[int]float64
	// Optional per-face total mobility, 1 when nil
	Mobility []float64
	// Optional per-cell volumetric source, positive injects
	Sources []float64
	// Linear solver, linsolve.Default when nil
	Solver linsolve.Solver
}

// Solution is a solved pressure field with its fluxes
type Solution struct {
	Pressure []float64
	*FluxField
}

// SolveTPFA solves the incompressible single phase pressure equation
//
//	Σ_f T_f λ_f (p_i - p_j) = q_i
//
// with Dirichlet pressures on tagged boundary faces. Without any Dirichlet
// face the pressure is pinned to zero in cell 0.
func SolveTPFA(g *grid.Grid, trans []float64, opts Options) (sol *Solution, err error) {
	var (
		nc     = g.NumCells
		A      = linsolve.NewBuilder(nc, nc)
		b      = make([]float64, nc)
		tl     = make([]float64, g.NumFaces)
		pinned bool
	)
	if len(trans) != g.NumFaces {
		return nil, fmt.Errorf("pressure: %d transmissibilities for %d faces", len(trans), g.NumFaces)
	}
	for f := range tl {
		tl[f] = trans[f]
		if opts.Mobility != nil {
			tl[f] *= opts.Mobility[f]
		}
	}
	for f := 0; f < g.NumFaces; f++ {
		c0, c1 := g.FaceCells[f][0], g.FaceCells[f][1]
		if c1 >= 0 {
			A.Add(c0, c0, tl[f])
			A.Add(c1, c1, tl[f])
			A.Add(c0, c1, -tl[f])
			A.Add(c1, c0, -tl[f])
			continue
		}
		if pb, ok := opts.Dirichlet[g.BoundaryTags[f]]; ok {
			A.Add(c0, c0, tl[f])
			b[c0] += tl[f] * pb
			pinned = true
		}
	}
	if opts.Sources != nil {
		for c, q := range opts.Sources {
			b[c] += q
		}
	}
	if !pinned {
		A.Add(0, 0, 1)
	}
	solver := opts.Solver
	if solver == nil {
		solver = linsolve.Default(nc)
	}
	sol = &Solution{}
	if sol.Pressure, err = solver.Solve(A.ToCSR(), b); err != nil {
		return nil, fmt.Errorf("pressure: %w", err)
	}

	faceflux := make([]float64, g.NumFaces)
	for f := 0; f < g.NumFaces; f++ {
		c0, c1 := g.FaceCells[f][0], g.FaceCells[f][1]
		switch {
		case c1 >= 0:
			faceflux[f] = tl[f] * (sol.Pressure[c0] - sol.Pressure[c1])
		default:
			if pb, ok := opts.Dirichlet[g.BoundaryTags[f]]; ok {
				faceflux[f] = tl[f] * (sol.Pressure[c0] - pb)
			}
		}
	}
	sol.FluxField = FromFaceFlux(g, faceflux)
	return
}
