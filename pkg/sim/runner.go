// Package sim drives racesim races: as fast as possible for batch studies,
// or paced against the wall clock with a live snapshot stream.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/heilmeiera/time-discrete-race-simulator/log"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/utils/broadcast"
)

type Option func(*Runner)

// WithRealtimeFactor paces the simulation against the wall clock: 1.0 runs at
// real speed, 10.0 ten times faster. Zero or negative runs unpaced.
func WithRealtimeFactor(factor float64) Option {
	return func(r *Runner) {
		r.realtimeFactor = factor
	}
}

// WithLogger routes the runner's progress output to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner advances one race to completion. While pacing, snapshots are
// published once per simulated second to all subscribers.
type Runner struct {
	race           *racesim.Race
	realtimeFactor float64
	logger         *log.Logger

	snapshotSource chan *racesim.RaceSnapshot
	broadcast      broadcast.BroadcastServer[*racesim.RaceSnapshot]
}

func NewRunner(race *racesim.Race, opts ...Option) *Runner {
	r := &Runner{
		race:   race,
		logger: log.Default().Named("sim"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.realtimeFactor > 0 {
		r.snapshotSource = make(chan *racesim.RaceSnapshot)
		r.broadcast = broadcast.NewBroadcastServer("snapshots", r.snapshotSource)
	}
	return r
}

// Subscribe returns a channel of live snapshots. Only available while pacing;
// an unpaced run finishes too fast for any consumer to keep up.
func (r *Runner) Subscribe() (<-chan *racesim.RaceSnapshot, error) {
	if r.broadcast == nil {
		return nil, fmt.Errorf("snapshots are only published when pacing")
	}
	return r.broadcast.Subscribe(), nil
}

// Run simulates the race to the end and returns the final classification.
func (r *Runner) Run(ctx context.Context) (*racesim.Result, error) {
	start := time.Now()
	defer func() {
		if r.broadcast != nil {
			r.broadcast.Close()
		}
	}()

	var err error
	if r.realtimeFactor > 0 {
		err = r.runPaced(ctx)
	} else {
		err = r.runUnpaced(ctx)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("race finished",
		log.Int("laps", r.race.LeaderLap()-1),
		log.Float64("raceTime", r.race.RaceTime()),
		log.Duration("wallTime", time.Since(start)))
	return r.race.Result(), nil
}

func (r *Runner) runUnpaced(ctx context.Context) error {
	// checking the context on every tick would dominate the loop
	const checkEvery = 4096

	for tick := 0; !r.race.Finished(); tick++ {
		if tick%checkEvery == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		r.race.SimulateTimestep()
	}
	return nil
}

func (r *Runner) runPaced(ctx context.Context) error {
	wallStep := time.Duration(float64(time.Second) *
		r.race.TimestepSize() / r.realtimeFactor)
	ticker := time.NewTicker(wallStep)
	defer ticker.Stop()

	nextSnapshot := 0.0
	lastLeaderLap := 0
	for !r.race.Finished() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.race.SimulateTimestep()
		}

		if r.race.RaceTime() >= nextSnapshot {
			nextSnapshot = r.race.RaceTime() + 1.0
			select {
			case r.snapshotSource <- r.race.Snapshot():
			default:
			}
		}
		if lap := r.race.LeaderLap(); lap != lastLeaderLap {
			lastLeaderLap = lap
			r.logger.Info("leader lap",
				log.Int("lap", lap),
				log.Float64("raceTime", r.race.RaceTime()))
		}
	}
	return nil
}
