package tpfa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/rock"
)

func TestHarmonicAverage(t *testing.T) {
	g, err := grid.NewCartesian(2, 1, 1, 2, 1, 1)
	require.NoError(t, err)
	r := rock.NewIsotropic(g.NumCells, 0.2, 1)
	r.SetPermeability(1, [6]float64{4, 0, 0, 4, 0, 4})

	htrans, err := HalfTrans(g, r.Permeability)
	require.NoError(t, err)
	require.Len(t, htrans, g.NumHalfFaces())
	for _, h := range htrans[:6] {
		assert.InDelta(t, 2, h, 1e-14)
	}
	for _, h := range htrans[6:] {
		assert.InDelta(t, 8, h, 1e-14)
	}

	trans := Trans(g, htrans)
	// Interior face between the cells, T = 1/(1/h1 + 1/h2)
	assert.InDelta(t, 1/(1.0/2+1.0/8), trans[1], 1e-14)
	assert.InDelta(t, Harmonic(2, 8), trans[1], 1e-14)
	// Boundary faces, T = h
	assert.InDelta(t, 2, trans[0], 1e-14)
	assert.InDelta(t, 8, trans[2], 1e-14)
}

func TestTransPositive(t *testing.T) {
	g, err := grid.NewCartesian(3, 2, 2, 1, 2, 3)
	require.NoError(t, err)
	r := rock.NewDiagonal(g.NumCells, 0.3, [3]float64{1, 10, 0.1})
	for c := 0; c < g.NumCells; c += 2 {
		r.SetPermeability(c, [6]float64{5, 1, 0.5, 4, 0.2, 3})
	}
	require.NoError(t, r.Validate(g))
	trans, err := Build(g, r)
	require.NoError(t, err)
	require.Len(t, trans, g.NumFaces)
	for f, T := range trans {
		assert.Greater(t, T, 0.0, "face %d", f)
	}
}

func TestTransTetrahedral(t *testing.T) {
	g, err := grid.NewTetrahedral([]r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: -1},
	}, [][4]int{{0, 1, 2, 3}, {0, 2, 1, 4}}, nil)
	require.NoError(t, err)
	trans, err := Build(g, rock.NewIsotropic(g.NumCells, 0.1, 1))
	require.NoError(t, err)
	for f, T := range trans {
		assert.Greater(t, T, 0.0, "face %d", f)
	}
}

func TestDegenerate(t *testing.T) {
	g, err := grid.NewCartesian(2, 1, 1, 2, 1, 1)
	require.NoError(t, err)
	r := rock.NewIsotropic(g.NumCells, 0.2, 0)
	_, err = Build(g, r)
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestPermDotFullTensor(t *testing.T) {
	K := mat.NewSymDense(3, []float64{
		2, 1, 0,
		1, 3, 0.5,
		0, 0.5, 1,
	})
	d := r3.Vec{X: 1, Y: 1}
	assert.InDelta(t, 3, permDot(K, d, r3.Vec{X: 1}), 1e-15)
	assert.InDelta(t, 4, permDot(K, d, r3.Vec{Y: 1}), 1e-15)
	assert.InDelta(t, 0.5, permDot(K, d, r3.Vec{Z: 1}), 1e-15)
	// Symmetric in d and n
	assert.InDelta(t, permDot(K, r3.Vec{Z: 1}, d), permDot(K, d, r3.Vec{Z: 1}), 1e-15)
}
