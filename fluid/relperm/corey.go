package relperm

import (
	"fmt"
	"math"
)

// Corey implements power law curves on the normalised saturation
//
//	se  = (s - sr1) / (1 - sr1 - sr2)
//	kr1 = kmax1 * se^n1
//	kr2 = kmax2 * (1-se)^n2
type Corey struct {
	N1, N2       float64 // exponents
	Sr1, Sr2     float64 // residual saturations
	Kmax1, Kmax2 float64 // end point relative permeabilities
}

func init() {
	allocators["corey"] = func() Model { return NewCorey(2, 2) }
	allocators["linear"] = func() Model { return NewCorey(1, 1) }
}

// NewCorey returns a Corey model without residual saturations
func NewCorey(n1, n2 float64) *Corey {
	return &Corey{N1: n1, N2: n2, Kmax1: 1, Kmax2: 1}
}

// Init sets parameters n1, n2, sr1, sr2, kmax1, kmax2
func (o *Corey) Init(prms Params) (err error) {
	if err = checkPrms("corey", prms, "n1", "n2", "sr1", "sr2", "kmax1", "kmax2"); err != nil {
		return
	}
	for key, val := range prms {
		switch key {
		case "n1":
			o.N1 = val
		case "n2":
			o.N2 = val
		case "sr1":
			o.Sr1 = val
		case "sr2":
			o.Sr2 = val
		case "kmax1":
			o.Kmax1 = val
		case "kmax2":
			o.Kmax2 = val
		}
	}
	if o.N1 < 1 || o.N2 < 1 {
		return fmt.Errorf("corey: exponents must be >= 1, got %g, %g", o.N1, o.N2)
	}
	if o.Sr1 < 0 || o.Sr2 < 0 || o.Sr1+o.Sr2 >= 1 {
		return fmt.Errorf("corey: invalid residual saturations %g, %g", o.Sr1, o.Sr2)
	}
	if o.Kmax1 <= 0 || o.Kmax2 <= 0 {
		return fmt.Errorf("corey: end points must be positive, got %g, %g", o.Kmax1, o.Kmax2)
	}
	return
}

// GetPrms returns the current parameters
func (o *Corey) GetPrms() Params {
	return Params{"n1": o.N1, "n2": o.N2, "sr1": o.Sr1, "sr2": o.Sr2, "kmax1": o.Kmax1, "kmax2": o.Kmax2}
}

// normalised saturation and its derivative, zero outside the mobile range
func (o *Corey) se(s float64) (se, dse float64) {
	den := 1 - o.Sr1 - o.Sr2
	se = (s - o.Sr1) / den
	switch {
	case se < 0:
		return 0, 0
	case se > 1:
		return 1, 0
	}
	return se, 1 / den
}

// Kr1 returns kr1
func (o *Corey) Kr1(s float64) float64 {
	se, _ := o.se(s)
	return o.Kmax1 * math.Pow(se, o.N1)
}

// Kr2 returns kr2
func (o *Corey) Kr2(s float64) float64 {
	se, _ := o.se(s)
	return o.Kmax2 * math.Pow(1-se, o.N2)
}

// DKr1 returns ∂kr1/∂s
func (o *Corey) DKr1(s float64) float64 {
	se, dse := o.se(s)
	if dse == 0 {
		return 0
	}
	return o.Kmax1 * o.N1 * math.Pow(se, o.N1-1) * dse
}

// DKr2 returns ∂kr2/∂s
func (o *Corey) DKr2(s float64) float64 {
	se, dse := o.se(s)
	if dse == 0 {
		return 0
	}
	return -o.Kmax2 * o.N2 * math.Pow(1-se, o.N2-1) * dse
}
