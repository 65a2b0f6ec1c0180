// Package linsolve assembles sparse systems and solves them with either a
// dense LU factorisation or preconditioned BiCGStab
package linsolve

import (
	"github.com/james-bowman/sparse"
)

// Builder accumulates matrix entries in dictionary-of-keys form. Repeated
// contributions to the same entry are summed.
type Builder struct {
	M      *sparse.DOK
	nr, nc int
}

// NewBuilder returns an empty nr x nc builder
func NewBuilder(nr, nc int) *Builder {
	return &Builder{M: sparse.NewDOK(nr, nc), nr: nr, nc: nc}
}

// Dims returns the matrix dimensions
func (b *Builder) Dims() (r, c int) { return b.nr, b.nc }

// Add accumulates v into entry (i, j)
func (b *Builder) Add(i, j int, v float64) {
	if v == 0 {
		return
	}
	b.M.Set(i, j, b.M.At(i, j)+v)
}

// Set overwrites entry (i, j)
func (b *Builder) Set(i, j int, v float64) {
	b.M.Set(i, j, v)
}

// ToCSR converts the accumulated entries to compressed sparse row form
func (b *Builder) ToCSR() *sparse.CSR {
	return b.M.ToCSR()
}

// MulVec returns A*x
func MulVec(A *sparse.CSR, x []float64) (y []float64) {
	nr, _ := A.Dims()
	y = make([]float64, nr)
	mulVecTo(y, A, x)
	return
}

// mulVecTo overwrites y with A*x
func mulVecTo(y []float64, A *sparse.CSR, x []float64) {
	for i := range y {
		y[i] = 0
	}
	A.MulVecTo(y, false, x)
}

// diagonal returns the diagonal of A, zero where absent
func diagonal(A *sparse.CSR) (d []float64) {
	nr, _ := A.Dims()
	d = make([]float64, nr)
	A.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] += v
		}
	})
	return
}
