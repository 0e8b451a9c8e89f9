package sim

import (
	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

// SampleSource yields one tick per step until it is exhausted.
type SampleSource interface {
	Next() (weather.Tick, bool)
}

type Observer interface {
	OnStep(Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Step)

func (f ObserverFunc) OnStep(s Step) { f(s) }

type Config struct {
	HouseID   string
	StepHours float64
	MaxSteps  int // 0 runs until the source is exhausted
	StartTemp float64
}

// Step is one completed simulation step.
type Step struct {
	HouseID string
	Tick    weather.Tick
	Result  house.StepResult
	State   house.State // state after the step
}

type Result struct {
	HouseID string
	Steps   []Step
	Report  Report
}

// Temperatures returns the interior temperature after each step.
func (r *Result) Temperatures() []float64 {
	out := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Result.Temp
	}
	return out
}
