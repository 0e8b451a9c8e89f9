package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/thermohouse/cmd/app"
	httpctrl "github.com/Agrid-Dev/thermohouse/internal/controllers/http"
	kafkactrl "github.com/Agrid-Dev/thermohouse/internal/controllers/kafka"
	modbusctrl "github.com/Agrid-Dev/thermohouse/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/thermohouse/internal/controllers/mqtt"
	"github.com/Agrid-Dev/thermohouse/internal/device"
	"github.com/Agrid-Dev/thermohouse/internal/logging"
	"github.com/Agrid-Dev/thermohouse/internal/metrics"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

type runnable interface {
	Run(ctx context.Context) error
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return err
	}
	defer closeLog()

	records, err := resolveWeather(cfg)
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	dev := device.New(cfg.HouseID, engine, cfg.Simulation.StartTemp)
	collector := metrics.NewCollector()

	runner, err := sim.New(engine, cfg.SimConfig(), log)
	if err != nil {
		return err
	}
	runner.AddObserver(dev)
	runner.AddObserver(collector)

	controllers, err := buildControllers(cfg, dev, collector, runner, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	for name, c := range controllers {
		g.Go(func() error {
			log.Info("controller started", "controller", name)
			if err := c.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	// Controllers block until gctx is done. A finished --once replay returns
	// context.Canceled, which stops the whole group.
	g.Go(func() error {
		return replay(gctx, cfg, records, runner, dev, log)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildControllers(cfg app.Config, dev *device.Device, collector *metrics.Collector, runner *sim.Runner, log *slog.Logger) (map[string]runnable, error) {
	out := map[string]runnable{}
	cc := cfg.Controllers

	if cc.HTTP.Enabled {
		out["http"] = httpctrl.New(dev, cc.HTTP.Addr, cfg.HouseID, collector.Handler())
	}
	if cc.MQTT.Enabled {
		c, err := mqttctrl.New(dev, mqttctrl.Config{
			HouseID:         cfg.HouseID,
			BrokerURL:       cc.MQTT.BrokerURL,
			ClientID:        cc.MQTT.ClientID,
			BaseTopic:       cc.MQTT.BaseTopic,
			QoS:             cc.MQTT.QoS,
			RetainSnapshot:  cc.MQTT.RetainSnapshot,
			PublishInterval: cc.MQTT.PublishInterval,
			Username:        cc.MQTT.Username,
			Password:        cc.MQTT.Password,
		})
		if err != nil {
			return nil, err
		}
		out["mqtt"] = c
	}
	if cc.Modbus.Enabled {
		c, err := modbusctrl.New(dev, modbusctrl.Config{
			HouseID: cfg.HouseID,
			Addr:    cc.Modbus.Addr,
			UnitID:  cc.Modbus.UnitID,
		})
		if err != nil {
			return nil, err
		}
		out["modbus"] = c
	}
	if cc.Kafka.Enabled {
		pub, err := kafkactrl.New(kafkactrl.Config{
			Brokers: cc.Kafka.Brokers,
			Topic:   cc.Kafka.Topic,
		}, log.With("controller", "kafka"))
		if err != nil {
			return nil, err
		}
		runner.AddObserver(pub)
		out["kafka"] = pub
	}
	return out, nil
}

// replay runs the weather schedule paced by simulation.replay_interval and
// starts over when it is exhausted, unless --once is set.
func replay(ctx context.Context, cfg app.Config, records []weather.Record, runner *sim.Runner, dev *device.Device, log *slog.Logger) error {
	for pass := 1; ; pass++ {
		sched, err := weather.NewSchedule(records, cfg.Simulation.StepHours)
		if err != nil {
			return err
		}
		paced, err := sim.NewPacedSource(ctx, sched, cfg.Simulation.ReplayInterval)
		if err != nil {
			return err
		}
		res, err := runner.Run(ctx, paced)
		paced.Stop()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Info("replay pass finished",
			"pass", pass,
			"steps", res.Report.Steps,
			"out_of_band", res.Report.OutOfBand(),
			"aux_steps", res.Report.AuxSteps)
		if once {
			return context.Canceled
		}
		dev.Reset(cfg.Simulation.StartTemp)
	}
}
