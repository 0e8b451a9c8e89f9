package house

import "math"

// DefaultAuxDivisor is the per-minute scaling applied to aux output. It is a
// calibration constant, not a unit conversion.
const DefaultAuxDivisor = 60.0

type AuxConfig struct {
	Enabled   bool
	Setpoint  float64 // °F
	MaxOutput float64 // BTU/hr
	Divisor   float64
}

func (cfg *AuxConfig) Validate() error {
	if !(cfg.MaxOutput >= 0) || math.IsInf(cfg.MaxOutput, 0) {
		return ErrNegativeAuxOutput
	}
	if cfg.Divisor == 0 || math.IsNaN(cfg.Divisor) {
		return ErrZeroAuxDivisor
	}
	// A negative divisor would make a firing heater remove heat.
	if cfg.Divisor < 0 || math.IsInf(cfg.Divisor, 0) {
		return ErrNonPositiveAuxDivisor
	}
	return nil
}

// AuxiliaryHeater is a thermostat-driven on/off heater. It keeps no state
// between steps: there is no deadband, so it may toggle every step.
type AuxiliaryHeater struct {
	cfg AuxConfig
}

func NewAuxiliaryHeater(cfg AuxConfig) (*AuxiliaryHeater, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &AuxiliaryHeater{cfg: cfg}, nil
}

func (h *AuxiliaryHeater) Config() AuxConfig {
	return h.cfg
}

// State reports whether the heater fires at the given interior temperature.
func (h *AuxiliaryHeater) State(current float64) HeaterState {
	if h.cfg.Enabled && h.cfg.Setpoint >= current {
		return HeaterOn
	}
	return HeaterOff
}

// Dispatch returns the heat delivered per hour of simulated time and the
// resulting heater state.
func (h *AuxiliaryHeater) Dispatch(current float64) (float64, HeaterState) {
	state := h.State(current)
	if state == HeaterOff {
		return 0, HeaterOff
	}
	if h.cfg.Divisor == 0 {
		// Validate rejects this; guard against a zero-valued heater.
		return math.NaN(), HeaterOn
	}
	return h.cfg.MaxOutput * (h.cfg.Setpoint - current) / h.cfg.Divisor, HeaterOn
}
