package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/gotpfa/boundary"
	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/fluid/relperm"
	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/rock"
)

// newLineCase builds an nx cell row of unit cubes with unit porosity and
// permeability. Side xmin gets saturation sIn, every other face sealed
// Dirichlet zero unless periodic in x.
func newLineCase(t *testing.T, nx int, sIn float64, periodic bool, fl Fluid) *Cache {
	t.Helper()
	g, err := grid.NewCartesian(nx, 1, 1, float64(nx), 1, 1)
	require.NoError(t, err)
	conds := boundary.NewSet()
	if periodic {
		conds, err = boundary.PairSides(g, grid.XMin, grid.XMax, 1e-9)
		require.NoError(t, err)
	} else {
		conds.Side(g, grid.XMin, boundary.Dirichlet{Saturation: sIn})
	}
	conds.Fill(g, boundary.Dirichlet{Saturation: 0})
	c, err := NewCache(g, rock.NewIsotropic(g.NumCells, 1, 1), conds, fl)
	require.NoError(t, err)
	return c
}

func linearFluid(t *testing.T) *fluid.TwoPhase {
	t.Helper()
	fl, err := fluid.New([2]float64{1, 1}, [2]float64{1, 1}, nil)
	require.NoError(t, err)
	return fl
}

func coreyFluid(t *testing.T, density [2]float64) *fluid.TwoPhase {
	t.Helper()
	kr, err := relperm.New("corey")
	require.NoError(t, err)
	fl, err := fluid.New([2]float64{1, 2}, density, kr)
	require.NoError(t, err)
	return fl
}
