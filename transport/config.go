package transport

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyCheckSat   = "check_sat"
	KeyClampSat   = "clamp_sat"
	KeyNRMaxIt    = "transport_nr_max_it"
	KeyMaxRepeats = "transport_max_rep"
	KeyAtol       = "transport_atol"
	KeyRtol       = "transport_rtol"
)

// Control holds the Newton-Raphson stopping criteria
type Control struct {
	MaxIt int     // iteration cap
	Atol  float64 // absolute residual tolerance, ∞-norm
	Rtol  float64 // residual tolerance relative to the first iterate
}

// Config is the immutable solver configuration
type Config struct {
	CheckSat   bool
	ClampSat   bool
	MaxRepeats int
	Control
}

// DefaultConfig returns the default solver options
func DefaultConfig() Config {
	return Config{
		CheckSat:   true,
		ClampSat:   false,
		MaxRepeats: 10,
		Control: Control{
			MaxIt: 10,
			Atol:  1.0e-6,
			Rtol:  5.0e-7,
		},
	}
}

// SetDefaults registers the default options on v
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyCheckSat, d.CheckSat)
	v.SetDefault(KeyClampSat, d.ClampSat)
	v.SetDefault(KeyNRMaxIt, d.MaxIt)
	v.SetDefault(KeyMaxRepeats, d.MaxRepeats)
	v.SetDefault(KeyAtol, d.Atol)
	v.SetDefault(KeyRtol, d.Rtol)
}

// ConfigFromViper reads the solver options from v, falling back to the defaults
func ConfigFromViper(v *viper.Viper) (cfg Config, err error) {
	SetDefaults(v)
	cfg = Config{
		CheckSat:   v.GetBool(KeyCheckSat),
		ClampSat:   v.GetBool(KeyClampSat),
		MaxRepeats: v.GetInt(KeyMaxRepeats),
		Control: Control{
			MaxIt: v.GetInt(KeyNRMaxIt),
			Atol:  v.GetFloat64(KeyAtol),
			Rtol:  v.GetFloat64(KeyRtol),
		},
	}
	err = cfg.Validate()
	return
}

// Validate rejects options the stepper cannot run with
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxIt < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyNRMaxIt, cfg.MaxIt)
	case cfg.MaxRepeats < 0:
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxRepeats, cfg.MaxRepeats)
	case cfg.Atol < 0 || cfg.Rtol < 0:
		return fmt.Errorf("tolerances must not be negative, got atol=%g rtol=%g", cfg.Atol, cfg.Rtol)
	}
	return nil
}

// Print writes the options the way the CLI reports them
func (cfg Config) Print() {
	fmt.Printf("%-20s = %v\n", KeyCheckSat, cfg.CheckSat)
	fmt.Printf("%-20s = %v\n", KeyClampSat, cfg.ClampSat)
	fmt.Printf("%-20s = %d\n", KeyNRMaxIt, cfg.MaxIt)
	fmt.Printf("%-20s = %d\n", KeyMaxRepeats, cfg.MaxRepeats)
	fmt.Printf("%-20s = %g\n", KeyAtol, cfg.Atol)
	fmt.Printf("%-20s = %g\n", KeyRtol, cfg.Rtol)
}
