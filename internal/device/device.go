package device

import (
	"sync"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

// Device holds the latest snapshot of one simulated house. It is fed by the
// simulation as a sim.Observer and read by the controllers.
type Device struct {
	ID string

	env house.Envelope
	aux house.AuxConfig

	mu   sync.RWMutex
	snap house.Snapshot
}

func New(id string, e *house.Engine, startTemp float64) *Device {
	d := &Device{ID: id, env: e.Envelope(), aux: e.Aux()}
	d.snap = d.initial(startTemp)
	return d
}

// initial is the snapshot before the first step of a run.
func (d *Device) initial(startTemp float64) house.Snapshot {
	return house.Snapshot{
		HouseID:             d.ID,
		InteriorTemperature: startTemp,
		AuxEnabled:          d.aux.Enabled,
		AuxSetpoint:         d.aux.Setpoint,
		Comfort:             d.env.Classify(startTemp),
		MinTemp:             d.env.MinTemp,
		MaxTemp:             d.env.MaxTemp,
	}
}

func (d *Device) OnStep(s sim.Step) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.snap.Step = s.Tick.Index
	d.snap.ElapsedHours = s.Tick.ElapsedHours
	d.snap.Day = s.Tick.Day
	d.snap.Week = s.Tick.Week
	d.snap.InteriorTemperature = s.Result.Temp
	d.snap.AmbientTemperature = s.Tick.Sample.Ambient
	d.snap.SunOut = s.Tick.Sample.Sun
	d.snap.StoredHeat = s.State.StoredHeat()
	d.snap.UsedAux = s.Result.UsedAux
	d.snap.Comfort = s.Result.Comfort
	if s.Result.UsedAux {
		d.snap.AuxSteps++
		d.snap.AuxEnergy += s.Result.Breakdown.Aux
	}
}

// Reset clears the per-run counters, used when a replay starts over.
func (d *Device) Reset(startTemp float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = d.initial(startTemp)
}

func (d *Device) Get() house.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}
