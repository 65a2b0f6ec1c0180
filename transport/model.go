package transport

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/linsolve"
	"github.com/notargets/gotpfa/tpfa"
)

// State is the working state of one transport solve
type State struct {
	Saturation []fluid.Pair
	FaceFlux   []float64
}

// Source is a volumetric rate into a cell. A positive rate injects fluid with
// fractional flow Frac, a negative rate produces at the cell's own
// fractional flow.
type Source struct {
	Cell int
	Rate float64
	Frac fluid.Pair
}

// connection couples cells i and j through one flux, positive from i to j
type connection struct {
	i, j  int
	face  int     // face flux index
	trans float64 // transmissibility
	dx    r3.Vec  // centroid offset from i to j
}

// Model evaluates the backward Euler, upstream weighted residual
//
//	R_i = pv_i (s_i - s⁰_i) + dt Σ_j q1_ij - dt Σ_src rate f
//
// and its Jacobian with respect to the phase 1 saturations
type Model struct {
	cache *Cache
	fluid Fluid
	conns []connection
	grav  []float64 // T (ρ1-ρ2) g·dx per connection
}

// NewModel collects the interior faces and periodic pairs of the cache as
// connections and evaluates their gravity terms
func NewModel(c *Cache, fl Fluid, gravity r3.Vec) (m *Model) {
	g := c.Grid
	m = &Model{cache: c, fluid: fl}
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) {
			continue
		}
		i, j := g.FaceCells[f][0], g.FaceCells[f][1]
		m.conns = append(m.conns, connection{
			i: i, j: j, face: f,
			trans: c.Trans[f],
			dx:    r3.Sub(g.CellCentroids[j], g.CellCentroids[i]),
		})
	}
	// A periodic pair is a connection through the identified face pair
	for _, p := range c.Boundary.Periodic {
		m.conns = append(m.conns, connection{
			i: p.Low, j: p.High, face: p.Face,
			trans: tpfa.Harmonic(c.Trans[p.Face], c.Trans[p.PartnerFace]),
			dx: r3.Add(
				r3.Sub(g.FaceCentroids[p.Face], g.CellCentroids[p.Low]),
				r3.Sub(g.CellCentroids[p.High], g.FaceCentroids[p.PartnerFace])),
		})
	}
	rho := fl.Density()
	m.grav = make([]float64, len(m.conns))
	for k, cn := range m.conns {
		m.grav[k] = cn.trans * (rho[0] - rho[1]) * r3.Dot(gravity, cn.dx)
	}
	return
}

// NumCells returns the number of unknowns
func (m *Model) NumCells() int { return m.cache.Grid.NumCells }

// Sources returns the boundary and well terms for a face flux field.
// Dirichlet faces carry the flux entering through them, periodic faces are
// handled as connections. Injection holds per cell rates, positive rates
// inject pure phase 1.
func (m *Model) Sources(faceflux []float64, injection *sparse.Vector) (src []Source) {
	for _, d := range m.cache.Boundary.Dirichlet {
		// Boundary face flux is outward from its single cell
		if rate := -faceflux[d.Face]; rate != 0 {
			src = append(src, Source{Cell: d.Cell, Rate: rate, Frac: d.Frac})
		}
	}
	if injection != nil {
		injection.DoNonZero(func(i, _ int, v float64) {
			src = append(src, Source{Cell: i, Rate: v, Frac: fluid.NewPair(1)})
		})
	}
	return
}

// Assemble evaluates the residual into R and, when J is not nil, adds the
// Jacobian entries to J. R is overwritten.
func (m *Model) Assemble(state *State, prev []fluid.Pair, src []Source, dt float64, R []float64, J *linsolve.Builder) {
	var (
		s  = state.Saturation
		pv = m.cache.PoreVolume
	)
	for i := range R {
		R[i] = pv[i] * (s[i].First() - prev[i].First())
		if J != nil {
			J.Add(i, i, pv[i])
		}
	}
	for k, cn := range m.conns {
		q, dqi, dqj := m.phaseFlux(cn, state.FaceFlux[cn.face], m.grav[k], s)
		R[cn.i] += dt * q
		R[cn.j] -= dt * q
		if J != nil {
			J.Add(cn.i, cn.i, dt*dqi)
			J.Add(cn.i, cn.j, dt*dqj)
			J.Add(cn.j, cn.i, -dt*dqi)
			J.Add(cn.j, cn.j, -dt*dqj)
		}
	}
	for _, sr := range src {
		switch {
		case sr.Rate > 0:
			R[sr.Cell] -= dt * sr.Rate * sr.Frac.First()
		case sr.Rate < 0:
			mob, dmob := m.fluid.Mobility(sr.Cell, s[sr.Cell])
			f, df := fluid.FractionalFlow(mob, dmob)
			R[sr.Cell] -= dt * sr.Rate * f.First()
			if J != nil {
				J.Add(sr.Cell, sr.Cell, -dt*sr.Rate*df)
			}
		}
	}
}

// phaseFlux returns the phase 1 flux from i to j for total flux v and
// gravity term G
//
//	q1 = λ1 (v + λ2 G) / (λ1 + λ2)
//
// with upwinded mobilities, and its derivatives with respect to s_i and s_j
func (m *Model) phaseFlux(cn connection, v, G float64, s []fluid.Pair) (q, dqi, dqj float64) {
	var (
		mi, dmi        = m.fluid.Mobility(cn.i, s[cn.i])
		mj, dmj        = m.fluid.Mobility(cn.j, s[cn.j])
		fromI1, fromI2 = upwind(v, G, mi, mj)
		a, da, b, db   float64
	)
	if fromI1 {
		a, da = mi[0], dmi[0]
	} else {
		a, da = mj[0], dmj[0]
	}
	if fromI2 {
		b, db = mi[1], dmi[1]
	} else {
		b, db = mj[1], dmj[1]
	}
	tot := a + b
	if tot <= 0 {
		return
	}
	var (
		tot2 = tot * tot
		dqa  = b * (v + b*G) / tot2
		dqb  = a * (a*G - v) / tot2
	)
	q = a * (v + b*G) / tot
	if fromI1 {
		dqi += dqa * da
	} else {
		dqj += dqa * da
	}
	if fromI2 {
		dqi += dqb * db
	} else {
		dqj += dqb * db
	}
	return
}

// upwind reports, per phase, whether the mobility is taken from cell i. The
// phase whose direction follows from the signs of v and G alone is decided
// first, the other one by the sign of its own flux.
func upwind(v, G float64, mi, mj [2]float64) (fromI1, fromI2 bool) {
	switch {
	case G == 0:
		return v >= 0, v >= 0
	case G > 0 && v >= 0:
		return true, v-mi[0]*G >= 0
	case G > 0:
		return v+mj[1]*G >= 0, false
	case v >= 0:
		return v+mi[1]*G >= 0, true
	default:
		return false, v-mj[0]*G >= 0
	}
}
