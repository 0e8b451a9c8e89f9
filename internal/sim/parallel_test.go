package sim

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

func TestRunEnsembleMatchesSequentialRuns(t *testing.T) {
	records := testRecords(7)
	newSource := func() (SampleSource, error) { return weather.NewSchedule(records, 1) }

	auxes := []house.AuxConfig{
		{},
		{Enabled: true, Setpoint: 66, MaxOutput: 40000},
		{Enabled: true, Setpoint: 70, MaxOutput: 20000},
	}
	var specs []HouseSpec
	var steps atomic.Int64
	for i, aux := range auxes {
		specs = append(specs, HouseSpec{
			Engine:    newTestEngine(t, aux),
			Config:    Config{HouseID: string(rune('a' + i)), StepHours: 1, StartTemp: 68},
			Observers: []Observer{ObserverFunc(func(Step) { steps.Add(1) })},
		})
	}

	results, err := RunEnsemble(context.Background(), specs, newSource, 2, discardLogger())
	require.NoError(t, err)
	require.Len(t, results, len(specs))
	assert.Equal(t, int64(3*7*24), steps.Load())

	for i, spec := range specs {
		r, err := New(spec.Engine, spec.Config, discardLogger())
		require.NoError(t, err)
		src, err := newSource()
		require.NoError(t, err)
		want, err := r.Run(context.Background(), src)
		require.NoError(t, err)

		assert.Equal(t, spec.Config.HouseID, results[i].HouseID)
		assert.Equal(t, want.Temperatures(), results[i].Temperatures())
		assert.Equal(t, want.Report, results[i].Report)
	}
}

func TestRunEnsemblePropagatesErrors(t *testing.T) {
	specs := []HouseSpec{
		{Engine: newTestEngine(t, house.AuxConfig{}), Config: Config{StepHours: 1, StartTemp: 68}},
		{Engine: newTestEngine(t, house.AuxConfig{}), Config: Config{StepHours: 0}},
	}
	newSource := func() (SampleSource, error) { return weather.NewSchedule(testRecords(1), 1) }

	_, err := RunEnsemble(context.Background(), specs, newSource, 0, discardLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
