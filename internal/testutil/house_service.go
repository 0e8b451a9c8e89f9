package testutil

import "github.com/Agrid-Dev/thermohouse/internal/house"

// FakeHouseService is a reusable fake implementing ports.HouseService.
// Put ONLY what multiple test packages need here.
type FakeHouseService struct {
	S        house.Snapshot
	GetCalls int
}

func NewFakeHouseService() *FakeHouseService {
	return &FakeHouseService{
		S: house.Snapshot{
			HouseID:             "house-1",
			Step:                12,
			ElapsedHours:        13,
			InteriorTemperature: 68.5,
			AmbientTemperature:  41.25,
			SunOut:              true,
			StoredHeat:          1520.75,
			UsedAux:             true,
			AuxEnabled:          true,
			AuxSetpoint:         66,
			AuxSteps:            3,
			AuxEnergy:           10000,
			Comfort:             house.ComfortFine,
			MinTemp:             65,
			MaxTemp:             75,
		},
	}
}

func (f *FakeHouseService) Get() house.Snapshot {
	f.GetCalls++
	return f.S
}
