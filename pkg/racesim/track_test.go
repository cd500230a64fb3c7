package racesim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/testsupport/basedata"
)

func TestTrackDerivedValues(t *testing.T) {
	track := racesim.NewTrack(&basedata.SamplePars().Track)

	assert.InDelta(t, 500.0, track.TrackLengthPitZone, 1e-9)
	assert.InDelta(t, 0.24, track.OvertakingZonesLapFrac, 1e-9)
	assert.InDelta(t, (300.0+5.0)/5000.0, track.Turn1LapFrac, 1e-9)
}

func TestTrackPitZoneWrapsFinishLine(t *testing.T) {
	pars := basedata.SamplePars().Track
	pars.PitZone = [2]float64{4800.0, 200.0}

	track := racesim.NewTrack(&pars)
	assert.InDelta(t, 400.0, track.TrackLengthPitZone, 1e-9)
}

func TestTrackGridSlot(t *testing.T) {
	track := racesim.NewTrack(&basedata.SamplePars().Track)

	assert.InDelta(t, -5.0, track.GridSlot(1), 1e-9)
	assert.InDelta(t, -21.0, track.GridSlot(3), 1e-9)
}

func TestTrackPitDriveTimeLoss(t *testing.T) {
	track := racesim.NewTrack(&basedata.SamplePars().Track)

	// 350 m pit lane at 20 m/s against race pace across the pit zone fraction
	want := 350.0/20.0 - (80.0+1.5)*1.04*0.1
	assert.InDelta(t, want, track.PitDriveTimeLoss(), 1e-9)
}
