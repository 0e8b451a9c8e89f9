package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

func days(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{Week: i/7 + 1, Day: i%7 + 1, Low: float64(20 + i), High: float64(40 + i), SunAngle: 30}
	}
	return records
}

func drain(s *Schedule) []Tick {
	var ticks []Tick
	for {
		tick, ok := s.Next()
		if !ok {
			return ticks
		}
		ticks = append(ticks, tick)
	}
}

func TestClockCounters(t *testing.T) {
	c, err := NewClock(1)
	require.NoError(t, err)

	for range 23 {
		c.Advance()
	}
	assert.Equal(t, 0, c.Day())
	assert.False(t, c.Daytime())

	c.Advance()
	assert.Equal(t, 1, c.Day())
	assert.True(t, c.Daytime())
	assert.Equal(t, 0.0, c.HourOfDay())

	for range 24 * 6 {
		c.Advance()
	}
	assert.Equal(t, 7, c.Day())
	assert.Equal(t, 1, c.Week())
	assert.Equal(t, 168.0, c.ElapsedHours())
}

func TestClockRejectsBadStep(t *testing.T) {
	for _, step := range []float64{0, -1} {
		_, err := NewClock(step)
		assert.ErrorIs(t, err, ErrInvalidStep)
	}
}

func TestScheduleHalfDayToggle(t *testing.T) {
	s, err := NewSchedule(days(2), 1)
	require.NoError(t, err)

	ticks := drain(s)
	require.Len(t, ticks, 48)
	assert.Equal(t, 48, s.Len())

	for i, tick := range ticks {
		assert.Equal(t, i, tick.Index)
		assert.Equal(t, float64(i), tick.ElapsedHours)
		day := i / 24
		assert.Equal(t, day, tick.Day)
		rec := days(2)[day]
		if i%24 < 12 {
			assert.Equal(t, house.EnvironmentSample{Ambient: rec.High, Sun: true}, tick.Sample, "step %d", i)
		} else {
			assert.Equal(t, house.EnvironmentSample{Ambient: rec.Low}, tick.Sample, "step %d", i)
		}
	}
}

func TestScheduleWeekCounter(t *testing.T) {
	s, err := NewSchedule(days(15), 1)
	require.NoError(t, err)

	ticks := drain(s)
	require.Len(t, ticks, 15*24)
	assert.Equal(t, 0, ticks[7*24-1].Week)
	assert.Equal(t, 1, ticks[7*24].Week)
	assert.Equal(t, 2, ticks[14*24].Week)
}

func TestScheduleCoarseStep(t *testing.T) {
	s, err := NewSchedule(days(2), 5)
	require.NoError(t, err)

	ticks := drain(s)
	require.Len(t, ticks, s.Len())
	require.Len(t, ticks, 10)
	// hour 10 is daytime, hour 15 is night
	assert.True(t, ticks[2].Sample.Sun)
	assert.False(t, ticks[3].Sample.Sun)
	// hour 25 is the second day
	assert.Equal(t, 1, ticks[5].Day)
}

func TestNewScheduleErrors(t *testing.T) {
	_, err := NewSchedule(nil, 1)
	assert.ErrorIs(t, err, ErrNoRecords)
	_, err = NewSchedule(days(1), 0)
	assert.ErrorIs(t, err, ErrInvalidStep)
}
