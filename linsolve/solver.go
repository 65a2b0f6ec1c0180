package linsolve

import (
	"errors"
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingular is returned when the system matrix cannot be factorised
	ErrSingular = errors.New("singular matrix")
	// ErrNoConvergence is returned when an iterative solve hits its iteration cap
	ErrNoConvergence = errors.New("linear solver did not converge")
)

// Solver solves A x = b
type Solver interface {
	Solve(A *sparse.CSR, b []float64) (x []float64, err error)
}

// DenseThreshold is the largest system Default solves with a dense LU
var DenseThreshold = 1500

// Default returns a dense LU for small systems and BiCGStab otherwise
func Default(n int) Solver {
	if n <= DenseThreshold {
		return DenseLU{}
	}
	return &BiCGStab{Tol: 1e-10, MaxIt: 10 * n}
}

// DenseLU expands the matrix and solves with a partial pivoting LU
type DenseLU struct{}

func (DenseLU) Solve(A *sparse.CSR, b []float64) (x []float64, err error) {
	nr, nc := A.Dims()
	if nr != nc || nr != len(b) {
		return nil, fmt.Errorf("dense LU: %dx%d system with rhs of length %d", nr, nc, len(b))
	}
	var lu mat.LU
	lu.Factorize(A.ToDense())
	xv := mat.NewVecDense(nr, nil)
	if err = lu.SolveVecTo(xv, false, mat.NewVecDense(nr, append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return xv.RawVector().Data, nil
}

// BiCGStab is a Jacobi preconditioned stabilised bi-conjugate gradient solver
// for general sparse systems. Tol is relative to the norm of b.
type BiCGStab struct {
	Tol        float64
	MaxIt      int
	Iterations int // of the last solve
}

func (s *BiCGStab) Solve(A *sparse.CSR, b []float64) (x []float64, err error) {
	var (
		n     = len(b)
		dinv  = diagonal(A)
		r     = make([]float64, n)
		rhat  = make([]float64, n)
		p     = make([]float64, n)
		v     = make([]float64, n)
		phat  = make([]float64, n)
		shat  = make([]float64, n)
		sv    = make([]float64, n)
		tv    = make([]float64, n)
		rho   = 1.
		alpha = 1.
		omega = 1.
		bnorm = floats.Norm(b, 2)
	)
	if nr, nc := A.Dims(); nr != nc || nr != n {
		return nil, fmt.Errorf("bicgstab: %dx%d system with rhs of length %d", nr, nc, n)
	}
	x = make([]float64, n)
	if bnorm == 0 {
		return
	}
	for i, d := range dinv {
		if d == 0 {
			return nil, fmt.Errorf("%w: zero diagonal in row %d", ErrSingular, i)
		}
		dinv[i] = 1 / d
	}
	precondition := func(dst, src []float64) {
		for i := range dst {
			dst[i] = dinv[i] * src[i]
		}
	}
	copy(r, b)
	copy(rhat, r)
	tol := s.Tol * bnorm
	for s.Iterations = 1; s.Iterations <= s.MaxIt; s.Iterations++ {
		rhoNew := floats.Dot(rhat, r)
		if rhoNew == 0 {
			return nil, fmt.Errorf("%w: breakdown at iteration %d", ErrNoConvergence, s.Iterations)
		}
		if s.Iterations == 1 {
			copy(p, r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			for i := range p {
				p[i] = r[i] + beta*(p[i]-omega*v[i])
			}
		}
		rho = rhoNew
		precondition(phat, p)
		mulVecTo(v, A, phat)
		alpha = rho / floats.Dot(rhat, v)
		for i := range sv {
			sv[i] = r[i] - alpha*v[i]
		}
		if floats.Norm(sv, 2) < tol {
			floats.AddScaled(x, alpha, phat)
			return
		}
		precondition(shat, sv)
		mulVecTo(tv, A, shat)
		tt := floats.Dot(tv, tv)
		if tt == 0 {
			return nil, fmt.Errorf("%w: breakdown at iteration %d", ErrNoConvergence, s.Iterations)
		}
		omega = floats.Dot(tv, sv) / tt
		floats.AddScaled(x, alpha, phat)
		floats.AddScaled(x, omega, shat)
		for i := range r {
			r[i] = sv[i] - omega*tv[i]
		}
		rn := floats.Norm(r, 2)
		if math.IsNaN(rn) {
			return nil, fmt.Errorf("%w: NaN residual at iteration %d", ErrNoConvergence, s.Iterations)
		}
		if rn < tol {
			return
		}
		if omega == 0 {
			return nil, fmt.Errorf("%w: breakdown at iteration %d", ErrNoConvergence, s.Iterations)
		}
	}
	return nil, fmt.Errorf("%w: %d iterations", ErrNoConvergence, s.MaxIt)
}
