// Package transport advances two-phase saturations with an implicit,
// upstream weighted finite volume scheme driven by a fixed flux field.
package transport

import (
	"fmt"

	"github.com/notargets/gotpfa/boundary"
	"github.com/notargets/gotpfa/fluid"
	"github.com/notargets/gotpfa/grid"
	"github.com/notargets/gotpfa/rock"
	"github.com/notargets/gotpfa/tpfa"
)

// Fluid evaluates phase mobilities and densities
type Fluid interface {
	Mobility(cell int, s fluid.Pair) (mob, dmob [2]float64)
	Density() [2]float64
}

// Cache is the setup data shared by every transport step on one grid and
// rock. It is built once and never modified.
type Cache struct {
	Grid       *grid.Grid
	PoreVolume []float64
	Trans      []float64
	Boundary   *boundary.Classification
}

// NewCache validates its inputs and computes pore volumes,
// transmissibilities and the resolved boundary conditions
func NewCache(g *grid.Grid, r *rock.Properties, conds boundary.Set, fl Fluid) (c *Cache, err error) {
	if err = g.Validate(); err != nil {
		return
	}
	if err = r.Validate(g); err != nil {
		return
	}
	c = &Cache{Grid: g, PoreVolume: r.PoreVolume(g)}
	if c.Trans, err = tpfa.Build(g, r); err != nil {
		return nil, fmt.Errorf("transmissibility: %w", err)
	}
	if c.Boundary, err = boundary.Classify(g, conds, fl); err != nil {
		return nil, fmt.Errorf("boundary conditions: %w", err)
	}
	return
}
