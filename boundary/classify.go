package boundary

import (
	"errors"
	"fmt"

	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/grid"
)

var (
	// ErrMissingPartner is returned when a periodic face names a partner id
	// that no periodic boundary face carries
	ErrMissingPartner = errors.New("periodic partner not found")
	// ErrSelfPaired is returned when a periodic face resolves to itself or to
	// a face of its own cell
	ErrSelfPaired = errors.New("periodic face paired with itself")
	// ErrUnclassified is returned for a boundary face with no recognised condition
	ErrUnclassified = errors.New("boundary face has no saturation condition")
)

// MobilityModel evaluates phase mobilities at a cell
type MobilityModel interface {
	Mobility(cell int, s fluid.Pair) (mob, dmob [2]float64)
}

// PeriodicPair is one resolved periodic connection. Face belongs to Low,
// PartnerFace to High, and Low < High.
type PeriodicPair struct {
	Low, High         int
	Face, PartnerFace int
}

// DirichletSource is a boundary face with a prescribed inflow composition.
// Frac holds the fractional flow at the prescribed saturation.
type DirichletSource struct {
	Cell, Face int
	Frac       fluid.Pair
}

// Classification is the frozen result of resolving a condition Set on a grid
type Classification struct {
	Periodic  []PeriodicPair
	Dirichlet []DirichletSource
}

// Classify resolves conds on g. Periodic partners are catalogued over all
// boundary faces first, then every half-face is visited and resolved. Each
// periodic pair is recorded once, from its lower cell. Dirichlet saturations
// are converted to fractional flow with mob.
func Classify(g *grid.Grid, conds Set, mob MobilityModel) (cl *Classification, err error) {
	var (
		maxbid int
		lookup []int
	)
	// Pass 1: catalog periodic faces by boundary id
	for f := 0; f < g.NumFaces; f++ {
		if g.IsBoundary(f) && g.BoundaryIDs[f] > maxbid {
			maxbid = g.BoundaryIDs[f]
		}
	}
	lookup = make([]int, maxbid+1)
	for i := range lookup {
		lookup[i] = -1
	}
	for f := 0; f < g.NumFaces; f++ {
		if !g.IsBoundary(f) {
			continue
		}
		if _, ok := conds[g.BoundaryIDs[f]].(Periodic); ok {
			lookup[g.BoundaryIDs[f]] = f
		}
	}

	// Pass 2: resolve each boundary half-face
	cl = &Classification{}
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for _, f := range g.CellFaces[lo:hi] {
			if !g.IsBoundary(f) {
				continue
			}
			bid := g.BoundaryIDs[f]
			switch bc := conds[bid].(type) {
			case Periodic:
				if bc.Partner <= 0 || bc.Partner > maxbid || lookup[bc.Partner] < 0 {
					return nil, fmt.Errorf("%w: face %d (id %d) names partner id %d",
						ErrMissingPartner, f, bid, bc.Partner)
				}
				nb := lookup[bc.Partner]
				if nb == f {
					return nil, fmt.Errorf("%w: face %d", ErrSelfPaired, f)
				}
				other := g.FaceCells[nb][0]
				if other == c {
					return nil, fmt.Errorf("%w: faces %d and %d both belong to cell %d", ErrSelfPaired, f, nb, c)
				}
				if c > other {
					continue
				}
				cl.Periodic = append(cl.Periodic, PeriodicPair{Low: c, High: other, Face: f, PartnerFace: nb})
			case Dirichlet:
				if bc.Saturation < 0 || bc.Saturation > 1 {
					return nil, fmt.Errorf("face %d (id %d): Dirichlet saturation %g outside [0,1]", f, bid, bc.Saturation)
				}
				cl.Dirichlet = append(cl.Dirichlet, DirichletSource{Cell: c, Face: f, Frac: fluid.NewPair(bc.Saturation)})
			default:
				return nil, fmt.Errorf("%w: face %d (id %d)", ErrUnclassified, f, bid)
			}
		}
	}

	// Saturation -> fractional flow
	for i := range cl.Dirichlet {
		d := &cl.Dirichlet[i]
		m, dm := mob.Mobility(d.Cell, d.Frac)
		d.Frac, _ = fluid.FractionalFlow(m, dm)
	}
	return
}

// PeriodicFaces returns the representative face of every periodic pair
func (cl *Classification) PeriodicFaces() (faces []int) {
	faces = make([]int, len(cl.Periodic))
	for i, p := range cl.Periodic {
		faces[i] = p.Face
	}
	return
}

// DirichletCells returns the cell of every Dirichlet source, one per face
func (cl *Classification) DirichletCells() (cells []int) {
	cells = make([]int, len(cl.Dirichlet))
	for i, d := range cl.Dirichlet {
		cells[i] = d.Cell
	}
	return
}
