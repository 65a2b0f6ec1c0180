// Package relperm implements relative permeability models for two-phase flow
package relperm

import (
	"fmt"
	"sort"
)

// Params holds named model parameters
type Params map[string]float64

// Model defines phase 1 / phase 2 relative permeability curves, both as
// functions of the phase 1 saturation s
type Model interface {
	Init(prms Params) error // Init initialises the model, missing parameters keep their defaults
	GetPrms() Params        // GetPrms returns the current parameters
	Kr1(s float64) float64  // Kr1 returns kr1
	Kr2(s float64) float64  // Kr2 returns kr2
	DKr1(s float64) float64 // DKr1 returns ∂kr1/∂s
	DKr2(s float64) float64 // DKr2 returns ∂kr2/∂s
}

// New allocates a model by name with default parameters
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, fmt.Errorf("relative permeability model %q is not available, have %v", name, Names())
	}
	return allocator(), nil
}

// Names lists the registered models
func Names() (names []string) {
	for name := range allocators {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// allocators holds all available models
var allocators = map[string]func() Model{}

func checkPrms(name string, prms Params, known ...string) error {
	for key := range prms {
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: unknown parameter %q", name, key)
		}
	}
	return nil
}
