package racesim

import (
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// Track holds the immutable circuit geometry and reference times. All
// positions share the same "distance along the lap" coordinate in
// [0, length); intervals may wrap around the finish line.
type Track struct {
	Name                 string
	TQ                   float64
	TGapRacePace         float64
	SMass                float64
	TDRSEffect           float64
	PitSpeedLimit        float64
	TLossFirstLap        float64
	DPerGridPos          float64
	DFirstGridPos        float64
	Length               float64
	RealLengthPitZone    float64
	S12                  float64
	S23                  float64
	DRSMeasurementPoints []float64
	Turn1                float64
	PitZone              [2]float64
	PitsAfterFinishLine  bool
	OvertakingZones      [][2]float64

	// derived at construction
	TrackLengthPitZone     float64 // on-track distance covered by the pit zone
	Turn1LapFrac           float64 // lap fraction from the first grid slot to turn 1
	OvertakingZonesLapFrac float64 // lap fraction covered by all overtaking zones
}

// NewTrack builds a Track from validated parameters and precomputes the
// derived lap fractions.
func NewTrack(pars *simpars.TrackPars) *Track {
	t := &Track{
		Name:                 pars.Name,
		TQ:                   pars.TQ,
		TGapRacePace:         pars.TGapRacePace,
		SMass:                pars.SMass,
		TDRSEffect:           pars.TDRSEffect,
		PitSpeedLimit:        pars.PitSpeedLimit,
		TLossFirstLap:        pars.TLossFirstLap,
		DPerGridPos:          pars.DPerGridPos,
		DFirstGridPos:        pars.DFirstGridPos,
		Length:               pars.Length,
		RealLengthPitZone:    pars.RealLengthPitZone,
		S12:                  pars.S12,
		S23:                  pars.S23,
		DRSMeasurementPoints: append([]float64{}, pars.DRSMeasurementPoints...),
		Turn1:                pars.Turn1,
		PitZone:              pars.PitZone,
		PitsAfterFinishLine:  pars.PitsAfterFinishLine,
		OvertakingZones:      append([][2]float64{}, pars.OvertakingZones...),
	}

	t.TrackLengthPitZone = t.intervalLength(t.PitZone)

	var lenZones float64
	for _, zone := range t.OvertakingZones {
		lenZones += t.intervalLength(zone)
	}
	t.OvertakingZonesLapFrac = lenZones / t.Length

	t.Turn1LapFrac = (t.Turn1 - t.DFirstGridPos) / t.Length

	return t
}

// intervalLength returns the on-track length of [start, end], taking a
// wrap-around at the finish line into account.
func (t *Track) intervalLength(zone [2]float64) float64 {
	if zone[0] < zone[1] {
		return zone[1] - zone[0]
	}
	return t.Length - zone[0] + zone[1]
}

// GridSlot returns the s coordinate of the given grid position, usually
// negative since the grid is located before the finish line.
func (t *Track) GridSlot(pGrid int) float64 {
	return t.DFirstGridPos + float64(pGrid-1)*t.DPerGridPos
}

// PitDriveTimeLoss returns the approximate time loss for driving through the
// pit lane compared to staying on track, standstill excluded.
func (t *Track) PitDriveTimeLoss() float64 {
	pitZoneLapFrac := t.TrackLengthPitZone / t.Length
	return t.RealLengthPitZone/t.PitSpeedLimit -
		(t.TQ+t.TGapRacePace)*1.04*pitZoneLapFrac
}
