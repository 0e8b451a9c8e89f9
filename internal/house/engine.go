package house

import "math"

// Calibration holds the fitted constants of the model.
type Calibration struct {
	SolarCoefficient    float64 // BTU/hr per ft² of pane while the sun is out
	DirectSolarFraction float64 // share of insolation heating the interior at once
	ReleaseRate         float64 // fraction of stored solar heat released per hour
	Weights             SurfaceWeights
}

func DefaultCalibration() Calibration {
	return Calibration{
		SolarCoefficient:    32,
		DirectSolarFraction: 0.40,
		ReleaseRate:         0.3525,
		Weights:             SurfaceWeights{Pane: 0.30, Wall: 0.40, Roof: 0.30},
	}
}

func (c *Calibration) Validate() error {
	if c.SolarCoefficient < 0 {
		return ErrInvalidCalibration
	}
	if c.DirectSolarFraction < 0 || c.DirectSolarFraction > 1 {
		return ErrInvalidCalibration
	}
	if c.ReleaseRate < 0 || c.ReleaseRate > 1 {
		return ErrInvalidCalibration
	}
	return c.Weights.Validate()
}

// Environment is the read side of the ambient conditions for one step.
type Environment interface {
	AmbientTemp() float64
	SunOut() bool
}

// EnvironmentSample is the ambient condition for exactly one timestep.
type EnvironmentSample struct {
	Ambient float64 // °F
	Sun     bool
}

func (s EnvironmentSample) AmbientTemp() float64 { return s.Ambient }
func (s EnvironmentSample) SunOut() bool         { return s.Sun }

// State is the mutable part of one simulated house, threaded by the caller
// from step to step.
type State struct {
	CurrentTemp float64
	Store       MassStore
	UsedAux     bool
}

func NewState(startTemp float64) State {
	return State{CurrentTemp: startTemp}
}

func (s State) StoredHeat() float64 {
	return s.Store.Stored()
}

// Breakdown is the energy balance of one step in BTU. Positive terms add heat
// to the interior.
type Breakdown struct {
	Conductive  float64
	SolarDirect float64
	SolarStored float64 // moved into the mass store, not part of Net
	MassRelease float64
	Aux         float64
	Net         float64
}

type StepResult struct {
	Temp      float64
	UsedAux   bool
	Heater    HeaterState
	Comfort   Comfort
	Breakdown Breakdown
}

// Engine computes the per-step energy balance of one envelope. It holds only
// read-only configuration and is safe for concurrent use.
type Engine struct {
	env    Envelope
	heater *AuxiliaryHeater
	cal    Calibration
}

func NewEngine(env Envelope, aux AuxConfig, cal Calibration) (*Engine, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	heater, err := NewAuxiliaryHeater(aux)
	if err != nil {
		return nil, err
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Engine{env: env, heater: heater, cal: cal}, nil
}

func (e *Engine) Envelope() Envelope       { return e.env }
func (e *Engine) Aux() AuxConfig           { return e.heater.Config() }
func (e *Engine) Calibration() Calibration { return e.cal }

// Step advances st by dtHours under the given environment and returns the new
// state. st itself is not modified.
func (e *Engine) Step(st State, env Environment, dtHours float64) (State, StepResult, error) {
	if !(dtHours > 0) || math.IsInf(dtHours, 0) {
		return st, StepResult{}, ErrInvalidTimestep
	}
	ambient := env.AmbientTemp()
	if math.IsNaN(ambient) || math.IsInf(ambient, 0) {
		return st, StepResult{}, ErrInvalidSample
	}

	current := st.CurrentTemp
	store := st.Store
	var b Breakdown

	b.Conductive = -ConductiveLoss(e.env, e.cal.Weights, current, ambient) * dtHours

	if env.SunOut() {
		insolation := e.cal.SolarCoefficient * e.env.Pane.Area * dtHours
		b.SolarDirect = e.cal.DirectSolarFraction * insolation
		b.SolarStored = insolation - b.SolarDirect
		store.Add(b.SolarStored)
	}

	b.MassRelease = store.Release(e.cal.ReleaseRate * dtHours)

	auxRate, heater := e.heater.Dispatch(current)
	if math.IsNaN(auxRate) {
		return st, StepResult{}, ErrZeroAuxDivisor
	}
	b.Aux = auxRate * dtHours

	b.Net = b.Conductive + b.SolarDirect + b.MassRelease + b.Aux
	newTemp := current + b.Net/e.env.ThermalCapacity()

	next := State{
		CurrentTemp: newTemp,
		Store:       store,
		UsedAux:     heater == HeaterOn,
	}
	return next, StepResult{
		Temp:      newTemp,
		UsedAux:   next.UsedAux,
		Heater:    heater,
		Comfort:   e.env.Classify(newTemp),
		Breakdown: b,
	}, nil
}
