package racesim_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
	"github.com/heilmeiera/time-discrete-race-simulator/testsupport/basedata"
)

const testTimestep = 0.2

func newSampleRace(t *testing.T) *racesim.Race {
	t.Helper()
	race, err := racesim.NewRace(basedata.SamplePars(), testTimestep)
	require.NoError(t, err)
	return race
}

// runUntil steps the race until cond holds for the current snapshot and
// returns that snapshot.
func runUntil(t *testing.T, race *racesim.Race,
	cond func(*racesim.RaceSnapshot) bool,
) *racesim.RaceSnapshot {
	t.Helper()
	for tick := 0; tick < 200_000; tick++ {
		snap := race.Snapshot()
		if cond(snap) {
			return snap
		}
		if race.Finished() {
			break
		}
		race.SimulateTimestep()
	}
	t.Fatal("condition not reached")
	return nil
}

func carByNo(t *testing.T, snap *racesim.RaceSnapshot, carNo int) racesim.CarSnapshot {
	t.Helper()
	for _, car := range snap.Cars {
		if car.CarNo == carNo {
			return car
		}
	}
	t.Fatalf("car %d not in snapshot", carNo)
	return racesim.CarSnapshot{}
}

func TestNewRaceRejectsBadInput(t *testing.T) {
	_, err := racesim.NewRace(basedata.SamplePars(), 0)
	require.ErrorContains(t, err, "timestep size")

	_, err = racesim.NewRace(basedata.SamplePars(), 2.0)
	require.ErrorContains(t, err, "timestep size")

	pars := basedata.SamplePars()
	pars.Race.TotalLaps = 0
	_, err = racesim.NewRace(pars, testTimestep)
	require.ErrorContains(t, err, "tot_no_laps")
}

func TestInitialOrderFollowsTheGrid(t *testing.T) {
	race := newSampleRace(t)
	snap := race.Snapshot()

	require.Len(t, snap.Cars, 2)
	assert.Equal(t, 77, snap.Cars[0].CarNo) // pole sitter
	assert.Equal(t, 1, snap.Cars[0].Rank)
	assert.Equal(t, 44, snap.Cars[1].CarNo)
	assert.Equal(t, "RACE_START", snap.Cars[0].State)
}

func TestExactProgressTieBreaksByGridPosition(t *testing.T) {
	// with zero grid deltas both cars start at the identical coordinate
	pars := basedata.SamplePars()
	pars.Track.DPerGridPos = 0
	pars.Track.DFirstGridPos = 0

	race, err := racesim.NewRace(pars, testTimestep)
	require.NoError(t, err)

	snap := race.Snapshot()
	require.Len(t, snap.Cars, 2)
	require.Equal(t, snap.Cars[0].RaceProg, snap.Cars[1].RaceProg)
	assert.Equal(t, 77, snap.Cars[0].CarNo) // grid slot 1 ranks ahead
	assert.Equal(t, 44, snap.Cars[1].CarNo)
}

func TestRaceRunsToCompletion(t *testing.T) {
	race := newSampleRace(t)
	runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return race.Finished()
	})

	assert.Equal(t, racesim.FlagChequered, race.FlagState())

	result := race.Result()
	require.Len(t, result.Cars, 2)
	assert.Equal(t, "Testring", result.TrackName)
	assert.Equal(t, 2026, result.Season)

	for rank, car := range result.Cars {
		assert.Equal(t, rank+1, car.Rank)
		assert.Equal(t, 30, car.Laps)
		assert.Positive(t, car.RaceTime)
		require.Len(t, car.Laptimes, 31)

		for lap := 1; lap <= car.Laps; lap++ {
			assert.Positive(t, car.Laptimes[lap], "lap %d", lap)
			assert.LessOrEqual(t, car.BestLaptime, car.Laptimes[lap], "lap %d", lap)
			assert.Greater(t, car.Racetimes[lap], car.Racetimes[lap-1], "lap %d", lap)
		}
	}
	assert.LessOrEqual(t, result.Cars[0].RaceTime, result.Cars[1].RaceTime)
}

func TestScheduledStopSwapsTires(t *testing.T) {
	race := newSampleRace(t)

	snap := runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).Lap == 15
	})
	before := carByNo(t, snap, 77)
	assert.Equal(t, "A5", before.TireCompound)
	assert.Equal(t, 14, before.TireAge)

	// the car stands still at its pit location near the end of lap 20
	snap = runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).State == "PIT_STANDSTILL"
	})
	assert.Equal(t, 20, carByNo(t, snap, 77).Lap)

	// lap 21 is driven on the fresh set from its very first meter
	snap = runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).Lap == 21
	})
	after := carByNo(t, snap, 77)
	assert.Equal(t, "A4", after.TireCompound)
	assert.Equal(t, 0, after.TireAge)

	// the other car stops three laps later
	assert.Equal(t, "A5", carByNo(t, snap, 44).TireCompound)
	snap = runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 44).Lap == 24
	})
	assert.Equal(t, "A4", carByNo(t, snap, 44).TireCompound)
}

func TestPitStopStacksTireRefuelAndDriverCosts(t *testing.T) {
	pars := basedata.SamplePars()
	car := pars.Cars[77]
	car.TPitRefuelPerKg = lo.ToPtr(0.5)
	car.TPitDriverChange = lo.ToPtr(4.0)
	car.Strategy = []simpars.StrategyEntry{
		{Inlap: 0, Compound: "A5", DriverInitials: "BOT"},
		{Inlap: 21, Compound: "A4", RefuelMass: 10.0, DriverInitials: "HAM"},
	}
	pars.Cars[77] = car

	race, err := racesim.NewRace(pars, testTimestep)
	require.NoError(t, err)

	snap := runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).Lap == 20
	})
	before := carByNo(t, snap, 77)
	assert.Equal(t, "BOT", before.DriverInitials)
	assert.InDelta(t, 16.0, before.FuelMass, 1e-9)

	// the refueled mass is on board from the standstill on
	snap = runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).State == "PIT_STANDSTILL"
	})
	assert.InDelta(t, 26.0, carByNo(t, snap, 77).FuelMass, 1e-9)

	// tire change 3.0 s, 10 kg at 0.5 s/kg and driver change 4.0 s add up
	ticks := 0
	for carByNo(t, race.Snapshot(), 77).State == "PIT_STANDSTILL" {
		race.SimulateTimestep()
		ticks++
	}
	assert.InDelta(t, 12.0, float64(ticks)*testTimestep, testTimestep+1e-9)

	snap = runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).Lap == 21
	})
	after := carByNo(t, snap, 77)
	assert.Equal(t, "HAM", after.DriverInitials)
	assert.Equal(t, "A4", after.TireCompound)
	assert.Equal(t, 0, after.TireAge)
	assert.InDelta(t, 25.0, after.FuelMass, 1e-9)
}

func TestFuelAccounting(t *testing.T) {
	race := newSampleRace(t)

	snap := runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return carByNo(t, snap, 77).Lap == 11
	})
	assert.InDelta(t, 25.0, carByNo(t, snap, 77).FuelMass, 1e-9)

	runUntil(t, race, func(snap *racesim.RaceSnapshot) bool {
		return race.Finished()
	})
	for _, car := range race.Snapshot().Cars {
		assert.GreaterOrEqual(t, car.FuelMass, 0.0)
	}
}

func TestRaceProgressIsMonotonic(t *testing.T) {
	race := newSampleRace(t)

	prev := map[int]float64{}
	for _, car := range race.Snapshot().Cars {
		prev[car.CarNo] = car.RaceProg
	}
	for tick := 0; tick < 5000; tick++ {
		race.SimulateTimestep()
		for _, car := range race.Snapshot().Cars {
			assert.GreaterOrEqual(t, car.RaceProg, prev[car.CarNo])
			prev[car.CarNo] = car.RaceProg
		}
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	run := func() *racesim.Result {
		race := newSampleRace(t)
		for !race.Finished() {
			race.SimulateTimestep()
		}
		return race.Result()
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("results differ between identical runs (-first +second):\n%s", diff)
	}
}
