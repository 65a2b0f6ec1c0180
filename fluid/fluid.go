// Package fluid implements the incompressible two-phase fluid used by the
// transport solver: phase mobilities λ = kr/μ and their saturation derivatives.
package fluid

import (
	"fmt"

	"github.com/notargets/gotpfa/fluid/relperm"
)

// TwoPhase is a fluid with constant viscosities and densities per phase
type TwoPhase struct {
	Viscosity [2]float64
	Rho       [2]float64
	RelPerm   relperm.Model
}

// New returns a two-phase fluid, kr may be nil for linear curves
func New(viscosity, density [2]float64, kr relperm.Model) (*TwoPhase, error) {
	if viscosity[0] <= 0 || viscosity[1] <= 0 {
		return nil, fmt.Errorf("viscosities must be positive, got %v", viscosity)
	}
	if kr == nil {
		kr = relperm.NewCorey(1, 1)
	}
	return &TwoPhase{Viscosity: viscosity, Rho: density, RelPerm: kr}, nil
}

// Mobility returns the phase mobilities at saturation s and their
// derivatives with respect to the phase 1 saturation. The cell index is
// accepted for interface compatibility with cell dependent models.
func (o *TwoPhase) Mobility(cell int, s Pair) (mob, dmob [2]float64) {
	s1 := s.First()
	mob[0] = o.RelPerm.Kr1(s1) / o.Viscosity[0]
	mob[1] = o.RelPerm.Kr2(s1) / o.Viscosity[1]
	dmob[0] = o.RelPerm.DKr1(s1) / o.Viscosity[0]
	dmob[1] = o.RelPerm.DKr2(s1) / o.Viscosity[1]
	return
}

// Density returns the phase densities
func (o *TwoPhase) Density() [2]float64 {
	return o.Rho
}

// FractionalFlow returns f = λ1/(λ1+λ2) as a pair, and ∂f/∂s. With both
// phases immobile the flow is attributed to phase 2.
func (o *TwoPhase) FractionalFlow(cell int, s Pair) (f Pair, df float64) {
	mob, dmob := o.Mobility(cell, s)
	return FractionalFlow(mob, dmob)
}

// FractionalFlow evaluates f = λ1/(λ1+λ2) and its derivative from mobilities
func FractionalFlow(mob, dmob [2]float64) (f Pair, df float64) {
	tot := mob[0] + mob[1]
	if tot <= 0 {
		return NewPair(0), 0
	}
	f = NewPair(mob[0] / tot)
	df = (dmob[0]*mob[1] - mob[0]*dmob[1]) / (tot * tot)
	return
}
