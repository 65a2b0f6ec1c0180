package transport

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/linsolve"
)

// Result describes one Stepper.Solve call
type Result struct {
	Converged bool
	SubSteps  int     // sub-steps of the last attempt
	Repeats   int     // failed attempts retried
	Dt        float64 // sub-step length of the last attempt
	Last      Report  // report of the last nonlinear solve
}

// Stepper advances a saturation field over macro time steps. Each step is
// solved implicitly; when a sub-step fails the whole interval is restarted
// from its initial state with twice as many sub-steps.
type Stepper struct {
	cache     *Cache
	fluid     Fluid
	cfg       Config
	logger    *slog.Logger
	metrics   *Metrics
	newSolver SolverFactory
	ls        linsolve.Solver
}

type Option func(st *Stepper)

func WithLogger(logger *slog.Logger) Option {
	return func(st *Stepper) {
		st.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(st *Stepper) {
		st.metrics = m
	}
}

// WithSolverFactory replaces the Newton-Raphson solver
func WithSolverFactory(f SolverFactory) Option {
	return func(st *Stepper) {
		st.newSolver = f
	}
}

// WithLinearSolver fixes the linear solver, linsolve.Default otherwise
func WithLinearSolver(ls linsolve.Solver) Option {
	return func(st *Stepper) {
		st.ls = ls
	}
}

// NewStepper returns a stepper over a frozen setup cache
func NewStepper(c *Cache, fl Fluid, cfg Config, opts ...Option) *Stepper {
	st := &Stepper{
		cache:     c,
		fluid:     fl,
		cfg:       cfg,
		newSolver: NewNewton,
	}
	for _, opt := range opts {
		opt(st)
	}
	if st.logger == nil {
		st.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if st.ls == nil {
		st.ls = linsolve.Default(c.Grid.NumCells)
	}
	return st
}

// Config returns the solver options
func (st *Stepper) Config() Config { return st.cfg }

// Cache returns the setup data
func (st *Stepper) Cache() *Cache { return st.cache }

// Solve advances sat in place over interval. injection may be nil, otherwise
// it holds one rate per cell. A solve that still fails after the configured
// number of repeats leaves its last attempted state in sat and returns
// Converged false without an error. Errors are reserved for invalid input
// and for saturations rejected by the guard.
func (st *Stepper) Solve(sat []float64, interval float64, gravity r3.Vec, ps PressureSolution,
	injection *sparse.Vector) (res Result, err error) {
	var (
		g     = st.cache.Grid
		start = time.Now()
	)
	if len(sat) != g.NumCells {
		return res, fmt.Errorf("transport: %d saturations for %d cells", len(sat), g.NumCells)
	}
	if !(interval > 0) {
		return res, fmt.Errorf("transport: time interval must be positive, got %g", interval)
	}
	if injection != nil && injection.Len() != g.NumCells {
		return res, fmt.Errorf("transport: %d injection rates for %d cells", injection.Len(), g.NumCells)
	}

	var (
		state = &State{
			Saturation: fluid.Expand(sat, nil),
			FaceFlux:   AssembleFluxes(g, ps, nil),
		}
		model  = NewModel(st.cache, st.fluid, gravity)
		src    = model.Sources(state.FaceFlux, injection)
		solver = st.newSolver(model)
		steps  = 1
		dt     = interval
	)
	for {
		st.metrics.incAttempt()
		var rpt Report
		for q := 0; q < steps; q++ {
			rpt = solver.Solve(src, dt, st.cfg.Control, state, st.ls)
			st.metrics.addIterations(rpt.Iterations)
			if !rpt.Converged() {
				break
			}
		}
		res.Last = rpt
		if rpt.Converged() {
			res.Converged = true
			break
		}
		if res.Repeats >= st.cfg.MaxRepeats {
			break
		}
		st.logger.Warn("transport failed, retrying with more steps",
			"steps", 2*steps, "flag", rpt.Flag, "iterations", rpt.Iterations, "residual", rpt.Residual)
		steps *= 2
		dt = interval / float64(steps)
		// Restart the interval, nothing from the failed attempt is kept
		state.Saturation = fluid.Expand(sat, state.Saturation)
		res.Repeats++
		st.metrics.incRetry()
	}
	res.SubSteps, res.Dt = steps, dt
	fluid.Collapse(state.Saturation, sat)
	st.metrics.observeSolve(time.Since(start))

	if res.Converged {
		st.logger.Debug("transport step done",
			"repeats", res.Repeats, "steps", res.SubSteps, "elapsed", time.Since(start))
	} else {
		st.metrics.incFailure()
		st.logger.Error("transport did not converge",
			"repeats", res.Repeats, "steps", res.SubSteps, "flag", res.Last.Flag, "residual", res.Last.Residual)
	}
	err = Guard{Check: st.cfg.CheckSat, Clamp: st.cfg.ClampSat}.CheckAndClamp(sat)
	return
}
