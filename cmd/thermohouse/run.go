package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermohouse/cmd/app"
	kafkactrl "github.com/Agrid-Dev/thermohouse/internal/controllers/kafka"
	"github.com/Agrid-Dev/thermohouse/internal/logging"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
	"github.com/Agrid-Dev/thermohouse/internal/store"
	"github.com/Agrid-Dev/thermohouse/internal/weather"
)

// loadConfigs returns the base config followed by one config per --house
// file. Without --house the base config is the only house.
func loadConfigs() (app.Config, []app.Config, error) {
	base, err := app.LoadConfig(configPath)
	if err != nil {
		return app.Config{}, nil, err
	}
	if len(houseFiles) == 0 {
		return base, []app.Config{base}, nil
	}

	houses := make([]app.Config, 0, len(houseFiles))
	seen := make(map[string]string, len(houseFiles))
	for _, path := range houseFiles {
		cfg, err := app.LoadConfig(path)
		if err != nil {
			return app.Config{}, nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[cfg.HouseID]; dup {
			return app.Config{}, nil, fmt.Errorf("house id %q used by both %s and %s", cfg.HouseID, prev, path)
		}
		seen[cfg.HouseID] = path
		houses = append(houses, cfg)
	}
	return base, houses, nil
}

func resolveDataDir(cfg app.Config) string {
	if dataDir != "" {
		return dataDir
	}
	return cfg.Simulation.DataDir
}

func resolveWeather(cfg app.Config) ([]weather.Record, error) {
	path := weatherFile
	if path == "" {
		path = cfg.Simulation.WeatherFile
	}
	records, err := weather.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	return records, nil
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	base, houses, err := loadConfigs()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(base.LoggingOptions())
	if err != nil {
		return err
	}
	defer closeLog()

	records, err := resolveWeather(base)
	if err != nil {
		return err
	}

	// Weather pacing is shared, so step size and length come from the base config.
	stepHours := base.Simulation.StepHours
	steps := base.Simulation.MaxSteps
	if cmd.Flags().Changed("steps") {
		steps = maxSteps
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var observers []sim.Observer
	if base.Controllers.Kafka.Enabled {
		// A batch run outpaces the broker, so wait for queue space rather
		// than drop readings.
		pub, err := kafkactrl.New(kafkactrl.Config{
			Brokers:  base.Controllers.Kafka.Brokers,
			Topic:    base.Controllers.Kafka.Topic,
			Blocking: true,
		}, log.With("controller", "kafka"))
		if err != nil {
			return err
		}
		observers = append(observers, pub)
		pubCtx, stopPub := context.WithCancel(ctx)
		defer stopPub()
		publisherDone := make(chan error, 1)
		go func() { publisherDone <- pub.Run(pubCtx) }()
		defer func() {
			stopPub()
			<-publisherDone
			if d := pub.Dropped(); d > 0 {
				log.Warn("kafka readings dropped", "count", d)
			}
		}()
	}

	specs := make([]sim.HouseSpec, 0, len(houses))
	for _, cfg := range houses {
		engine, err := cfg.Engine()
		if err != nil {
			return fmt.Errorf("house %s: %w", cfg.HouseID, err)
		}
		sc := cfg.SimConfig()
		sc.StepHours = stepHours
		sc.MaxSteps = steps
		specs = append(specs, sim.HouseSpec{Engine: engine, Config: sc, Observers: observers})
	}

	newSource := func() (sim.SampleSource, error) {
		return weather.NewSchedule(records, stepHours)
	}
	results, err := sim.RunEnsemble(ctx, specs, newSource, 0, log)
	if err != nil {
		return err
	}

	st := store.New(resolveDataDir(base))
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	for i, res := range results {
		cfg := houses[i]
		runID := ""
		if !noSave {
			meta := store.RunMetadata{
				HouseID:     res.HouseID,
				WeatherFile: weatherPath(base),
				StepHours:   stepHours,
				StartTemp:   cfg.Simulation.StartTemp,
				AuxEnabled:  cfg.Aux.Enabled,
				AuxSetpoint: cfg.Aux.Setpoint,
				Envelope:    store.Summarize(specs[i].Engine.Envelope()),
				Report:      res.Report,
			}
			runID, err = st.Save(meta, res.Steps)
			if err != nil {
				return fmt.Errorf("save %s: %w", res.HouseID, err)
			}
			log.Info("run saved", "house", res.HouseID, "run", runID)
		}

		fmt.Println(renderReport(res.HouseID, runID, res.Report))
		if showPlot {
			fmt.Println(renderTemperaturePlot(res.HouseID, res.Report.ElapsedHours, interiorSeries(res), ambientSeries(res)))
			fmt.Println(renderAuxPlot(res.HouseID, res.Report.ElapsedHours, auxSeries(res)))
		}
	}
	return nil
}

func weatherPath(cfg app.Config) string {
	if weatherFile != "" {
		return weatherFile
	}
	return cfg.Simulation.WeatherFile
}

func interiorSeries(res *sim.Result) []float64 { return res.Temperatures() }

func ambientSeries(res *sim.Result) []float64 {
	out := make([]float64, len(res.Steps))
	for i, s := range res.Steps {
		out[i] = s.Tick.Sample.Ambient
	}
	return out
}

func auxSeries(res *sim.Result) []bool {
	out := make([]bool, len(res.Steps))
	for i, s := range res.Steps {
		out[i] = s.Result.UsedAux
	}
	return out
}

func listRuns(_ *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	st := store.New(resolveDataDir(cfg))
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOUSE\tTIME\tSTEPS\tDT\tOUT OF BAND\tAUX STEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fh\t%d\t%d\n",
			run.ID,
			run.HouseID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Report.Steps,
			run.StepHours,
			run.Report.OutOfBand(),
			run.Report.AuxSteps,
		)
	}

	return w.Flush()
}

func plotRun(_ *cobra.Command, args []string) error {
	runID := args[0]

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	st := store.New(resolveDataDir(cfg))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("no data to plot")
	}

	interior := make([]float64, len(rows))
	ambient := make([]float64, len(rows))
	stored := make([]float64, len(rows))
	aux := make([]bool, len(rows))
	for i, r := range rows {
		interior[i] = r.Interior
		ambient[i] = r.Ambient
		stored[i] = r.StoredHeat
		aux[i] = r.UsedAux
	}
	elapsed := rows[len(rows)-1].ElapsedHours

	fmt.Println(renderReport(meta.HouseID, meta.ID, meta.Report))
	fmt.Println(renderTemperaturePlot(meta.HouseID, elapsed, interior, ambient))
	fmt.Println(renderAuxPlot(meta.HouseID, elapsed, aux))
	fmt.Println(renderSeriesPlot(spanCaption("stored heat (BTU)", elapsed), stored))
	return nil
}

func printConfig(_ *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
