package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Runner drives one house through a sample source.
type Runner struct {
	engine    *house.Engine
	cfg       Config
	log       *slog.Logger
	observers []Observer
}

func New(engine *house.Engine, cfg Config, log *slog.Logger) (*Runner, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		engine: engine,
		cfg:    cfg,
		log:    log.With("house", cfg.HouseID),
	}, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.StepHours > 0) || math.IsInf(cfg.StepHours, 0) {
		return fmt.Errorf("%w: step hours must be positive, got %f", ErrInvalidConfig, cfg.StepHours)
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must not be negative, got %d", ErrInvalidConfig, cfg.MaxSteps)
	}
	if math.IsNaN(cfg.StartTemp) || math.IsInf(cfg.StartTemp, 0) {
		return fmt.Errorf("%w: start temperature must be finite", ErrInvalidConfig)
	}
	return nil
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Config() Config { return r.cfg }

// Run folds the engine over the source. On cancellation it returns the steps
// completed so far together with ctx.Err().
func (r *Runner) Run(ctx context.Context, src SampleSource) (*Result, error) {
	result := &Result{HouseID: r.cfg.HouseID}
	report := NewReportBuilder(r.cfg.StepHours)
	st := house.NewState(r.cfg.StartTemp)

	r.log.Info("simulation started", "start_temp", r.cfg.StartTemp, "step_hours", r.cfg.StepHours)

	for r.cfg.MaxSteps == 0 || len(result.Steps) < r.cfg.MaxSteps {
		select {
		case <-ctx.Done():
			result.Report = report.Report()
			return result, ctx.Err()
		default:
		}

		tick, ok := src.Next()
		if !ok {
			break
		}

		next, res, err := r.engine.Step(st, tick.Sample, r.cfg.StepHours)
		if err != nil {
			result.Report = report.Report()
			return result, fmt.Errorf("step %d: %w", tick.Index, err)
		}
		st = next

		s := Step{HouseID: r.cfg.HouseID, Tick: tick, Result: res, State: st}
		result.Steps = append(result.Steps, s)
		report.Observe(s)
		for _, o := range r.observers {
			o.OnStep(s)
		}

		r.log.Debug("step",
			"step", tick.Index,
			"ambient", tick.Sample.Ambient,
			"interior", res.Temp,
			"aux", res.UsedAux,
			"comfort", res.Comfort.String())
	}

	result.Report = report.Report()
	r.log.Info("simulation finished",
		"steps", result.Report.Steps,
		"aux_steps", result.Report.AuxSteps,
		"too_hot", result.Report.TooHot,
		"too_cold", result.Report.TooCold)
	return result, nil
}
