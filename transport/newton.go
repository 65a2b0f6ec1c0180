package transport

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/linsolve"
)

// Report flags, negative values are failures
const (
	FlagConverged    = 1
	FlagMaxIt        = -1
	FlagNaN          = -2
	FlagLinearSolver = -3
)

// Report is the outcome of one nonlinear solve
type Report struct {
	Flag       int
	Iterations int
	Residual   float64 // final residual, ∞-norm
	Update     float64 // last saturation update, ∞-norm
}

// Converged reports whether the solve succeeded
func (r Report) Converged() bool { return r.Flag >= 0 }

// NonlinearSolver advances state by one implicit step of length dt
type NonlinearSolver interface {
	Solve(src []Source, dt float64, ctrl Control, state *State, ls linsolve.Solver) Report
}

// SolverFactory binds a nonlinear solver to a model
type SolverFactory func(m *Model) NonlinearSolver

// Newton is a Newton-Raphson solver for Model. Saturations are chopped into
// [0,1] after every update.
type Newton struct {
	model *Model
	prev  []fluid.Pair
	res   []float64
}

// NewNewton returns a Newton-Raphson solver for m
func NewNewton(m *Model) NonlinearSolver {
	nc := m.NumCells()
	return &Newton{
		model: m,
		prev:  make([]fluid.Pair, nc),
		res:   make([]float64, nc),
	}
}

func (n *Newton) Solve(src []Source, dt float64, ctrl Control, state *State, ls linsolve.Solver) (rpt Report) {
	var (
		nc   = n.model.NumCells()
		s    = state.Saturation
		res0 float64
	)
	copy(n.prev, s)
	for it := 0; ; it++ {
		J := linsolve.NewBuilder(nc, nc)
		n.model.Assemble(state, n.prev, src, dt, n.res, J)
		res := floats.Norm(n.res, math.Inf(1))
		rpt.Iterations, rpt.Residual = it, res
		if math.IsNaN(res) || math.IsInf(res, 0) {
			rpt.Flag = FlagNaN
			return
		}
		if it == 0 {
			res0 = res
		}
		if res < ctrl.Atol || (it > 0 && res < ctrl.Rtol*res0) {
			rpt.Flag = FlagConverged
			return
		}
		if it >= ctrl.MaxIt {
			rpt.Flag = FlagMaxIt
			return
		}
		dx, err := ls.Solve(J.ToCSR(), n.res)
		if err != nil {
			rpt.Flag = FlagLinearSolver
			return
		}
		rpt.Update = 0
		for i := range s {
			old := s[i].First()
			s[i] = fluid.NewPair(clamp01(old - dx[i]))
			rpt.Update = math.Max(rpt.Update, math.Abs(s[i].First()-old))
		}
	}
}
