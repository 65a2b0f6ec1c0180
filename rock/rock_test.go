package rock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gotpfa/grid"
)

func TestValidate(t *testing.T) {
	g, err := grid.NewCartesian(2, 2, 1, 2, 2, 1)
	require.NoError(t, err)

	r := NewDiagonal(g.NumCells, 0.2, [3]float64{1, 2, 3})
	assert.NoError(t, r.Validate(g))
	assert.Equal(t, 4, r.NumCells())
	assert.Equal(t, 2.0, r.Permeability[3].At(1, 1))

	r.SetPermeability(1, [6]float64{2, 0.5, 0, 2, 0.5, 2})
	assert.NoError(t, r.Validate(g))
	assert.Equal(t, 0.5, r.Permeability[1].At(2, 1))

	// Indefinite
	r.SetPermeability(2, [6]float64{1, 2, 0, 1, 0, 1})
	assert.True(t, errors.Is(r.Validate(g), ErrNotSPD))

	r = NewIsotropic(g.NumCells, 0, 1)
	assert.True(t, errors.Is(r.Validate(g), ErrPorosity))

	r = NewIsotropic(3, 0.1, 1)
	assert.Error(t, r.Validate(g))
}

func TestPoreVolume(t *testing.T) {
	g, err := grid.NewCartesian(4, 1, 1, 2, 1, 1)
	require.NoError(t, err)
	r := NewIsotropic(g.NumCells, 0.25, 1)
	for _, pv := range r.PoreVolume(g) {
		assert.InDelta(t, 0.125, pv, 1e-15)
	}
}
