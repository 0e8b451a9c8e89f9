package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

// Report summarizes a run: how long the interior spent in each comfort
// class and how much auxiliary heat was needed.
type Report struct {
	Steps        int     `json:"steps"`
	ElapsedHours float64 `json:"elapsed_hours"`

	Fine    int `json:"fine"`
	TooHot  int `json:"too_hot"`
	TooCold int `json:"too_cold"`

	LongestOutOfBand int `json:"longest_out_of_band"`

	AuxSteps  int     `json:"aux_steps"`
	AuxEnergy float64 `json:"aux_energy_btu"`

	MinTemp   float64 `json:"min_temp"`
	MaxTemp   float64 `json:"max_temp"`
	MeanTemp  float64 `json:"mean_temp"`
	StdDev    float64 `json:"stddev_temp"`
	FinalTemp float64 `json:"final_temp"`

	FinalStoredHeat float64 `json:"final_stored_heat_btu"`
}

func (r Report) OutOfBand() int {
	return r.TooHot + r.TooCold
}

// ReportBuilder accumulates a Report step by step.
type ReportBuilder struct {
	stepHours float64
	report    Report
	temps     []float64
	streak    int
}

func NewReportBuilder(stepHours float64) *ReportBuilder {
	return &ReportBuilder{stepHours: stepHours}
}

func (b *ReportBuilder) Observe(s Step) {
	r := &b.report
	r.Steps++
	r.ElapsedHours = s.Tick.ElapsedHours + b.stepHours
	switch s.Result.Comfort {
	case house.ComfortTooHot:
		r.TooHot++
	case house.ComfortTooCold:
		r.TooCold++
	default:
		r.Fine++
	}
	if s.Result.Comfort == house.ComfortFine {
		b.streak = 0
	} else {
		b.streak++
		r.LongestOutOfBand = max(r.LongestOutOfBand, b.streak)
	}
	if s.Result.UsedAux {
		r.AuxSteps++
		r.AuxEnergy += s.Result.Breakdown.Aux
	}
	r.FinalTemp = s.Result.Temp
	r.FinalStoredHeat = s.State.StoredHeat()
	b.temps = append(b.temps, s.Result.Temp)
}

func (b *ReportBuilder) Report() Report {
	r := b.report
	if len(b.temps) == 0 {
		return r
	}
	r.MinTemp = floats.Min(b.temps)
	r.MaxTemp = floats.Max(b.temps)
	r.MeanTemp = stat.Mean(b.temps, nil)
	if len(b.temps) > 1 {
		r.StdDev = stat.StdDev(b.temps, nil)
	}
	return r
}
