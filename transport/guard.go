package transport

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is wrapped by RangeError
var ErrOutOfRange = errors.New("saturation out of range")

// SaturationSlack is the excursion outside [0,1] tolerated without clamping
const SaturationSlack = 1.e-3

// RangeError names the first cell found outside the physical range
type RangeError struct {
	Cell  int
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: cell %d saturation %g", ErrOutOfRange, e.Cell, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// Guard validates saturations after a transport step
type Guard struct {
	Check bool // skip everything when false
	Clamp bool // clamp into [0,1] rather than fail
}

// CheckAndClamp clamps s into [0,1] in place when Clamp is set, otherwise
// fails on the first value further than SaturationSlack outside [0,1].
// NaN always fails.
func (gd Guard) CheckAndClamp(s []float64) error {
	if !gd.Check {
		return nil
	}
	for c, v := range s {
		if v >= 0 && v <= 1 {
			continue
		}
		switch {
		case math.IsNaN(v):
			return &RangeError{Cell: c, Value: v}
		case gd.Clamp:
			s[c] = clamp01(v)
		case v > 1+SaturationSlack || v < -SaturationSlack:
			return &RangeError{Cell: c, Value: v}
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
