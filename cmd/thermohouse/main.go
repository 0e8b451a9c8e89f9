package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	dataDir     string
	houseFiles  []string
	weatherFile string
	maxSteps    int
	showPlot    bool
	noSave      bool
	once        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "thermohouse",
		Short:        "passive solar house thermal simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run store directory (default simulation.data_dir)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one or more houses over a weather file",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringArrayVar(&houseFiles, "house", nil, "house config file, repeat for an ensemble")
	runCmd.Flags().StringVar(&weatherFile, "weather", "", "weather CSV (default simulation.weather_file)")
	runCmd.Flags().IntVar(&maxSteps, "steps", 0, "stop after this many steps (0 = whole file)")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot interior and ambient temperature")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the store")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "replay the weather in wall-clock time and expose the house over the enabled controllers",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&weatherFile, "weather", "", "weather CSV (default simulation.weather_file)")
	serveCmd.Flags().BoolVar(&once, "once", false, "stop after one pass over the weather file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}

	rootCmd.AddCommand(runCmd, serveCmd, listCmd, plotCmd, configCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
