package weather

import (
	"errors"
	"math"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

const (
	HoursPerDay  = 24
	DaysPerWeek  = 7
	halfDayHours = 12
)

var ErrInvalidStep = errors.New("step hours must be positive")

// Clock counts simulated time in whole steps so that long runs do not drift.
type Clock struct {
	stepHours float64
	steps     int
}

func NewClock(stepHours float64) (*Clock, error) {
	if !(stepHours > 0) || math.IsInf(stepHours, 0) {
		return nil, ErrInvalidStep
	}
	return &Clock{stepHours: stepHours}, nil
}

func (c *Clock) Advance()              { c.steps++ }
func (c *Clock) Steps() int            { return c.steps }
func (c *Clock) StepHours() float64    { return c.stepHours }
func (c *Clock) ElapsedHours() float64 { return float64(c.steps) * c.stepHours }

func (c *Clock) Day() int {
	return int(math.Floor(c.ElapsedHours() / HoursPerDay))
}

func (c *Clock) Week() int {
	return c.Day() / DaysPerWeek
}

func (c *Clock) HourOfDay() float64 {
	return c.ElapsedHours() - float64(c.Day())*HoursPerDay
}

// Daytime is true for the first half of each simulated day.
func (c *Clock) Daytime() bool {
	return c.HourOfDay() < halfDayHours
}

// Tick is one step of the schedule.
type Tick struct {
	Index        int
	ElapsedHours float64
	Day          int
	Week         int
	Record       Record
	Sample       house.EnvironmentSample
}

// Schedule walks the records one day at a time. The first twelve hours of
// each day use the daily high with the sun out, the last twelve the daily
// low with no sun.
type Schedule struct {
	records []Record
	clock   *Clock
}

func NewSchedule(records []Record, stepHours float64) (*Schedule, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	clock, err := NewClock(stepHours)
	if err != nil {
		return nil, err
	}
	return &Schedule{records: records, clock: clock}, nil
}

func (s *Schedule) StepHours() float64 {
	return s.clock.StepHours()
}

// Len is the number of steps the schedule yields in total.
func (s *Schedule) Len() int {
	return int(math.Ceil(float64(len(s.records)*HoursPerDay) / s.clock.StepHours()))
}

func (s *Schedule) Next() (Tick, bool) {
	day := s.clock.Day()
	if day >= len(s.records) {
		return Tick{}, false
	}
	rec := s.records[day]
	sample := house.EnvironmentSample{Ambient: rec.Low}
	if s.clock.Daytime() {
		sample = house.EnvironmentSample{Ambient: rec.High, Sun: true}
	}
	tick := Tick{
		Index:        s.clock.Steps(),
		ElapsedHours: s.clock.ElapsedHours(),
		Day:          day,
		Week:         s.clock.Week(),
		Record:       rec,
		Sample:       sample,
	}
	s.clock.Advance()
	return tick, true
}
