package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

func step(id string, temp float64, aux float64) sim.Step {
	return sim.Step{
		HouseID: id,
		Tick:    weather.Tick{Sample: house.EnvironmentSample{Ambient: 40}},
		Result: house.StepResult{
			Temp:      temp,
			UsedAux:   aux > 0,
			Comfort:   house.ComfortFine,
			Breakdown: house.Breakdown{Aux: aux},
		},
		State: house.State{CurrentTemp: temp, Store: house.NewMassStore(500)},
	}
}

func TestCollectorTracksLastStep(t *testing.T) {
	c := NewCollector()
	c.OnStep(step("a", 68, 0))
	c.OnStep(step("a", 67, 3333))

	assert.Equal(t, 67.0, testutil.ToFloat64(c.interior.WithLabelValues("a")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.ambient.WithLabelValues("a")))
	assert.Equal(t, 500.0, testutil.ToFloat64(c.storedHeat.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.auxOn.WithLabelValues("a")))
	assert.Equal(t, float64(house.ComfortFine), testutil.ToFloat64(c.comfort.WithLabelValues("a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.steps.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.auxSteps.WithLabelValues("a")))
	assert.Equal(t, 3333.0, testutil.ToFloat64(c.auxEnergy.WithLabelValues("a")))
}

func TestCollectorSeparatesHouses(t *testing.T) {
	c := NewCollector()
	c.OnStep(step("a", 68, 0))
	c.OnStep(step("b", 71, 0))

	assert.Equal(t, 68.0, testutil.ToFloat64(c.interior.WithLabelValues("a")))
	assert.Equal(t, 71.0, testutil.ToFloat64(c.interior.WithLabelValues("b")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.steps))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector()
	c.OnStep(step("a", 68, 0))

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `thermohouse_interior_temperature_fahrenheit{house="a"} 68`)
}
