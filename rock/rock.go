// Package rock holds per-cell porosity and permeability
package rock

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gotpfa/grid"
)

var (
	// ErrNotSPD is returned for a permeability tensor that is not symmetric positive definite
	ErrNotSPD = errors.New("permeability is not symmetric positive definite")
	// ErrPorosity is returned for porosity outside (0,1]
	ErrPorosity = errors.New("porosity out of range")
)

// Properties stores one porosity and one 3x3 permeability tensor per cell
type Properties struct {
	Porosity     []float64
	Permeability []*mat.SymDense
}

// NewIsotropic returns homogeneous rock with permeability k*I
func NewIsotropic(nc int, porosity, k float64) *Properties {
	return NewDiagonal(nc, porosity, [3]float64{k, k, k})
}

// NewDiagonal returns homogeneous rock with a diagonal permeability tensor
func NewDiagonal(nc int, porosity float64, k [3]float64) (r *Properties) {
	r = &Properties{
		Porosity:     make([]float64, nc),
		Permeability: make([]*mat.SymDense, nc),
	}
	for c := 0; c < nc; c++ {
		r.Porosity[c] = porosity
		r.Permeability[c] = mat.NewSymDense(3, []float64{
			k[0], 0, 0,
			0, k[1], 0,
			0, 0, k[2],
		})
	}
	return
}

// SetPermeability replaces the tensor of cell c with the full symmetric tensor
// given by its upper triangle (kxx, kxy, kxz, kyy, kyz, kzz)
func (r *Properties) SetPermeability(c int, upper [6]float64) {
	r.Permeability[c] = mat.NewSymDense(3, []float64{
		upper[0], upper[1], upper[2],
		upper[1], upper[3], upper[4],
		upper[2], upper[4], upper[5],
	})
}

// NumCells returns the number of cells described
func (r *Properties) NumCells() int {
	return len(r.Porosity)
}

// Validate checks sizes against the grid, porosity bounds, and that every
// tensor admits a Cholesky factorisation
func (r *Properties) Validate(g *grid.Grid) error {
	if len(r.Porosity) != g.NumCells || len(r.Permeability) != g.NumCells {
		return fmt.Errorf("rock sized %d/%d for %d cells", len(r.Porosity), len(r.Permeability), g.NumCells)
	}
	var chol mat.Cholesky
	for c := 0; c < g.NumCells; c++ {
		if phi := r.Porosity[c]; !(phi > 0 && phi <= 1) {
			return fmt.Errorf("%w: cell %d porosity %g", ErrPorosity, c, phi)
		}
		K := r.Permeability[c]
		if K == nil || K.SymmetricDim() != 3 {
			return fmt.Errorf("%w: cell %d has no 3x3 tensor", ErrNotSPD, c)
		}
		if ok := chol.Factorize(K); !ok {
			return fmt.Errorf("%w: cell %d", ErrNotSPD, c)
		}
	}
	return nil
}

// PoreVolume returns volume*porosity per cell
func (r *Properties) PoreVolume(g *grid.Grid) (pv []float64) {
	pv = make([]float64, g.NumCells)
	for c := range pv {
		pv[c] = g.CellVolumes[c] * r.Porosity[c]
	}
	return
}
