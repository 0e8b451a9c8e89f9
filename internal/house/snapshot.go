package house

// Snapshot is the flat read model of one simulated house after a step.
type Snapshot struct {
	HouseID      string
	Step         int
	ElapsedHours float64
	Day          int
	Week         int

	InteriorTemperature float64
	AmbientTemperature  float64
	SunOut              bool
	StoredHeat          float64

	UsedAux     bool
	AuxEnabled  bool
	AuxSetpoint float64
	AuxSteps    int
	AuxEnergy   float64 // BTU delivered since the start of the run

	Comfort Comfort
	MinTemp float64
	MaxTemp float64
}
