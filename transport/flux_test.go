package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/pressure"
)

func TestAssembleFluxesSignConsistency(t *testing.T) {
	g, err := grid.NewCartesian(3, 2, 1, 3, 2, 1)
	require.NoError(t, err)
	ff := pressure.Uniform(g, r3.Vec{X: 0.3, Y: -0.2})

	faceflux := AssembleFluxes(g, ff, nil)
	require.Len(t, faceflux, g.NumFaces)
	for c := 0; c < g.NumCells; c++ {
		lo, hi := g.CellFaceRange(c)
		for hf := lo; hf < hi; hf++ {
			f := g.CellFaces[hf]
			if g.FaceCells[f][0] == c {
				assert.InDelta(t, ff.OutFlux(hf), faceflux[f], 1e-15)
			} else {
				assert.InDelta(t, -ff.OutFlux(hf), faceflux[f], 1e-15)
			}
		}
	}
	for f := 0; f < g.NumFaces; f++ {
		n := g.FaceNormals[f]
		assert.InDelta(t, g.FaceAreas[f]*(0.3*n.X-0.2*n.Y), faceflux[f], 1e-15)
	}

	// Reassembly into the same buffer is idempotent
	again := AssembleFluxes(g, ff, faceflux)
	assert.Equal(t, faceflux, again)
}
