package simulate

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heilmeiera/time-discrete-race-simulator/log"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/config"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/results"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/sim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulates races for the given parameter file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate()
		},
	}
	cmd.Flags().StringVarP(&config.ParFile,
		"parfile",
		"p",
		"",
		"path to the simulation parameter file (json or yaml)")
	cmd.Flags().Float64Var(&config.TimestepSize,
		"timestep-size",
		0.2,
		"simulation time step size in seconds")
	cmd.Flags().IntVar(&config.NumRuns,
		"runs",
		1,
		"number of races to simulate")
	cmd.Flags().IntVar(&config.MaxConcurrency,
		"max-concurrency",
		8,
		"upper bound for parallel race workers")
	cmd.Flags().Float64Var(&config.RealtimeFactor,
		"realtime-factor",
		0,
		"pace the simulation against the wall clock (1.0 = real speed, 0 = unpaced)")
	cmd.Flags().BoolVar(&config.LiveRanking,
		"live",
		false,
		"print the live ranking while pacing")
	cmd.Flags().StringVarP(&config.OutputDir,
		"output-dir",
		"o",
		"",
		"directory for result files (empty: results are not saved)")
	//nolint:errcheck // flag is defined right above
	cmd.MarkFlagRequired("parfile")
	return cmd
}

//nolint:cyclop // mode dispatch
func runSimulate() error {
	setupLogger()

	if config.ProfilingPort > 0 {
		log.Info("starting profiling server", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort), nil)
			if err != nil {
				log.Error("profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	pars, err := simpars.LoadFile(config.ParFile)
	if err != nil {
		return err
	}
	log.Info("parameters loaded",
		log.String("file", config.ParFile),
		log.String("track", pars.Track.Name),
		log.Int("laps", pars.Race.TotalLaps),
		log.Int("cars", len(pars.Race.Participants)))

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.NumRuns > 1 {
		return runBatch(ctx, pars)
	}
	return runSingle(ctx, pars)
}

func runSingle(ctx context.Context, pars *simpars.SimPars) error {
	race, err := racesim.NewRace(pars, config.TimestepSize)
	if err != nil {
		return err
	}

	var opts []sim.Option
	if config.RealtimeFactor > 0 {
		opts = append(opts, sim.WithRealtimeFactor(config.RealtimeFactor))
	}
	runner := sim.NewRunner(race, opts...)

	if config.LiveRanking && config.RealtimeFactor > 0 {
		snapshots, err := runner.Subscribe()
		if err != nil {
			return err
		}
		go printLiveRanking(snapshots)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	return emitResult(uuid.New().String(), result)
}

func runBatch(ctx context.Context, pars *simpars.SimPars) error {
	runs, err := sim.RunBatch(ctx, pars, config.TimestepSize,
		config.NumRuns, config.MaxConcurrency)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if err := emitResult(run.RunID.String(), run.Result); err != nil {
			return err
		}
	}
	return nil
}

func emitResult(runID string, result *racesim.Result) error {
	if err := results.WriteClassification(os.Stdout, result); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)

	if config.OutputDir == "" {
		return nil
	}
	path, err := results.SaveJSON(config.OutputDir, runID, result)
	if err != nil {
		return err
	}
	log.Info("result saved", log.String("file", path))
	return nil
}

func printLiveRanking(snapshots <-chan *racesim.RaceSnapshot) {
	for snap := range snapshots {
		fmt.Printf("\nt=%8.1fs  lap %d/%d  flag %s\n",
			snap.RaceTime, snap.LeaderLap, snap.TotalLaps, snap.Flag)
		for _, car := range snap.Cars {
			fmt.Printf("  P%-2d #%-3d %s  lap %2d  %-15s gap %7s\n",
				car.Rank, car.CarNo, car.DriverInitials, car.Lap, car.State,
				results.FormatLaptime(car.GapLeader))
		}
	}
}

func setupLogger() {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}
