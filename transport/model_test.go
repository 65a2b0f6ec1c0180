package transport

import (
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/boundary"
	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/linsolve"
	"github.com/notargets/gotpfa/rock"
)

func TestUpwind(t *testing.T) {
	mi, mj := [2]float64{0.2, 0.5}, [2]float64{0.6, 0.1}
	testCases := []struct {
		v, G           float64
		fromI1, fromI2 bool
	}{
		{1, 0, true, true},
		{-1, 0, false, false},
		{0.05, 1, true, false},  // v - λ1_i G < 0
		{0.5, 1, true, true},    // v - λ1_i G > 0
		{-0.05, 1, true, false}, // v + λ2_j G > 0
		{-0.5, 1, false, false},
		{0.05, -1, false, true}, // v + λ2_i G < 0
		{0.8, -1, true, true},
		{-0.05, -1, false, true}, // v - λ1_j G > 0
		{-0.8, -1, false, false},
	}
	for _, tc := range testCases {
		f1, f2 := upwind(tc.v, tc.G, mi, mj)
		assert.Equal(t, tc.fromI1, f1, "v=%g G=%g phase 1", tc.v, tc.G)
		assert.Equal(t, tc.fromI2, f2, "v=%g G=%g phase 2", tc.v, tc.G)
	}
}

// vertical column of three unit cells, gravity pointing down
func newColumn(t *testing.T, fl Fluid) *Cache {
	t.Helper()
	g, err := grid.NewCartesian(1, 1, 3, 1, 1, 3)
	require.NoError(t, err)
	conds := boundary.NewSet().Fill(g, boundary.Dirichlet{Saturation: 0.3})
	c, err := NewCache(g, rock.NewIsotropic(g.NumCells, 0.5, 1), conds, fl)
	require.NoError(t, err)
	return c
}

func TestJacobianMatchesFiniteDifferences(t *testing.T) {
	var (
		fl    = coreyFluid(t, [2]float64{1, 0.8})
		c     = newColumn(t, fl)
		m     = NewModel(c, fl, r3.Vec{Z: -1})
		g     = c.Grid
		nc    = g.NumCells
		state = &State{
			Saturation: fluid.Expand([]float64{0.3, 0.5, 0.7}, nil),
			FaceFlux:   make([]float64, g.NumFaces),
		}
		prev = fluid.Expand([]float64{0.2, 0.5, 0.6}, nil)
		dt   = 0.7
	)
	// z faces follow the 6 x and 6 y faces
	state.FaceFlux[12] = -0.02
	state.FaceFlux[13] = 0.05
	state.FaceFlux[14] = -0.03
	state.FaceFlux[15] = 0.04
	src := m.Sources(state.FaceFlux, sparse.NewVector(nc, []int{1}, []float64{0.01}))
	require.Len(t, src, 3)

	R := make([]float64, nc)
	J := linsolve.NewBuilder(nc, nc)
	m.Assemble(state, prev, src, dt, R, J)
	A := J.ToCSR()

	h := 1e-7
	for k := 0; k < nc; k++ {
		var (
			Rp  = make([]float64, nc)
			Rm  = make([]float64, nc)
			s0  = state.Saturation[k]
			eps = []float64{h, -h}
		)
		for n, out := range [][]float64{Rp, Rm} {
			state.Saturation[k] = fluid.NewPair(s0.First() + eps[n])
			m.Assemble(state, prev, src, dt, out, nil)
		}
		state.Saturation[k] = s0
		for i := 0; i < nc; i++ {
			assert.InDelta(t, (Rp[i]-Rm[i])/(2*h), A.At(i, k), 1e-6, "dR%d/ds%d", i, k)
		}
	}
}

func TestSources(t *testing.T) {
	fl := linearFluid(t)
	c := newLineCase(t, 2, 1, false, fl)
	m := NewModel(c, fl, r3.Vec{})
	faceflux := make([]float64, c.Grid.NumFaces)
	faceflux[0] = -0.1 // into cell 0 through xmin
	faceflux[1] = 0.1
	faceflux[2] = 0.1 // out of cell 1 through xmax
	src := m.Sources(faceflux, sparse.NewVector(2, []int{0}, []float64{-0.5}))
	require.Len(t, src, 3)
	assert.Equal(t, Source{Cell: 0, Rate: 0.1, Frac: fluid.NewPair(1)}, src[0])
	assert.Equal(t, 1, src[1].Cell)
	assert.Equal(t, -0.1, src[1].Rate)
	assert.Equal(t, Source{Cell: 0, Rate: -0.5, Frac: fluid.NewPair(1)}, src[2])
}

func TestPeriodicConnection(t *testing.T) {
	fl := linearFluid(t)
	c := newLineCase(t, 4, 0, true, fl)
	m := NewModel(c, fl, r3.Vec{X: 1})
	// 3 interior faces plus the periodic pair
	require.Len(t, m.conns, 4)
	p := m.conns[3]
	assert.Equal(t, 0, p.i)
	assert.Equal(t, 3, p.j)
	assert.Equal(t, c.Trans[1], p.trans)
	// Through the periodic face the next cell is one cell width away
	assert.InDelta(t, -1, p.dx.X, 1e-15)
}
