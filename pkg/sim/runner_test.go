package sim_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/sim"
	"github.com/heilmeiera/time-discrete-race-simulator/testsupport/basedata"
)

func sampleRace(t *testing.T) *racesim.Race {
	t.Helper()
	race, err := racesim.NewRace(basedata.SamplePars(), 0.2)
	require.NoError(t, err)
	return race
}

func TestRunnerUnpaced(t *testing.T) {
	runner := sim.NewRunner(sampleRace(t))

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Cars, 2)
	assert.Equal(t, 30, result.Cars[0].Laps)
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.NewRunner(sampleRace(t)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunnerSubscribeRequiresPacing(t *testing.T) {
	runner := sim.NewRunner(sampleRace(t))
	_, err := runner.Subscribe()
	require.Error(t, err)
}

func TestRunnerPacedPublishesSnapshots(t *testing.T) {
	// 2000x real time keeps the wall time of the test low
	runner := sim.NewRunner(sampleRace(t), sim.WithRealtimeFactor(2000))
	snapshots, err := runner.Subscribe()
	require.NoError(t, err)

	received := make(chan *racesim.RaceSnapshot, 1)
	go func() {
		for snap := range snapshots {
			select {
			case received <- snap:
			default:
			}
		}
	}()

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Cars, 2)

	snap := <-received
	require.Len(t, snap.Cars, 2)
	assert.Positive(t, snap.RaceTime)
}

func TestRunBatch(t *testing.T) {
	runs, err := sim.RunBatch(context.Background(), basedata.SamplePars(), 0.2, 3, 2)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	ids := map[string]bool{}
	for _, run := range runs {
		require.NotNil(t, run.Result)
		ids[run.RunID.String()] = true
	}
	assert.Len(t, ids, 3)

	// identical parameters must yield identical outcomes
	if diff := cmp.Diff(runs[0].Result, runs[1].Result); diff != "" {
		t.Errorf("batch runs differ (-first +second):\n%s", diff)
	}
}

func TestRunBatchRejectsZeroRuns(t *testing.T) {
	_, err := sim.RunBatch(context.Background(), basedata.SamplePars(), 0.2, 0, 1)
	require.Error(t, err)
}
