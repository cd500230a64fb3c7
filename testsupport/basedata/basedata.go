// Package basedata provides a small but complete parameter set for tests.
package basedata

import (
	"github.com/samber/lo"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// SamplePars returns a valid two-car parameter set on a fictional 5 km
// circuit with two overtaking zones and a pit lane before the finish line.
// Car 77 starts from pole and stops at the boundary into lap 21, car 44
// follows from grid slot 2 and stops at the boundary into lap 24. Every call
// returns a fresh copy, callers may mutate freely.
func SamplePars() *simpars.SimPars {
	return &simpars.SimPars{
		Race: simpars.RacePars{
			Season:        2026,
			TotalLaps:     30,
			DRSAllowedLap: 3,
			MinTimeDist:   1.0,
			TDuel:         0.6,
			TPassBonus:    0.3,
			DRSWindow:     1.0,
			UseDRS:        true,
			Participants:  []int{44, 77},
		},
		Track: simpars.TrackPars{
			Name:                 "Testring",
			TQ:                   80.0,
			TGapRacePace:         1.5,
			SMass:                0.03,
			TDRSEffect:           -0.5,
			PitSpeedLimit:        20.0,
			TLossFirstLap:        2.0,
			DPerGridPos:          -8.0,
			DFirstGridPos:        -5.0,
			Length:               5000.0,
			RealLengthPitZone:    350.0,
			S12:                  1600.0,
			S23:                  3300.0,
			DRSMeasurementPoints: []float64{450.0, 2350.0},
			Turn1:                300.0,
			PitZone:              [2]float64{4300.0, 4800.0},
			PitsAfterFinishLine:  false,
			OvertakingZones:      [][2]float64{{600.0, 1200.0}, {2500.0, 3100.0}},
		},
		Drivers: map[string]simpars.DriverPars{
			"HAM": {
				Initials: "HAM",
				Name:     "Liam Hamley",
				TDriver:  0.10,
				VelMax:   339.0,
				DegrPars: sampleDegrPars(),
			},
			"BOT": {
				Initials: "BOT",
				Name:     "Veli Bottaro",
				TDriver:  0.25,
				VelMax:   336.0,
				DegrPars: sampleDegrPars(),
			},
		},
		Cars: map[int]simpars.CarPars{
			77: {
				CarNo:          77,
				Team:           "Silver Arrows",
				Manufacturer:   "Stuttgart",
				Color:          "#00d2be",
				TCar:           0.20,
				MFuel:          35.0,
				MFuelMax:       lo.ToPtr(110.0),
				BFuelPerLap:    1.0,
				TPitTireChange: lo.ToPtr(3.0),
				PitLocation:    4550.0,
				PGrid:          1,
				Strategy: []simpars.StrategyEntry{
					{Inlap: 0, Compound: "A5", DriverInitials: "BOT"},
					{Inlap: 21, Compound: "A4"},
				},
			},
			44: {
				CarNo:          44,
				Team:           "Silver Arrows",
				Manufacturer:   "Stuttgart",
				Color:          "#00d2be",
				TCar:           0.15,
				MFuel:          35.0,
				MFuelMax:       lo.ToPtr(110.0),
				BFuelPerLap:    1.0,
				TPitTireChange: lo.ToPtr(3.0),
				PitLocation:    4560.0,
				PGrid:          2,
				Strategy: []simpars.StrategyEntry{
					{Inlap: 0, Compound: "A5", DriverInitials: "HAM"},
					{Inlap: 24, Compound: "A4"},
				},
			},
		},
	}
}

func sampleDegrPars() map[string]simpars.DegrPars {
	return map[string]simpars.DegrPars{
		"A4": {
			Model:         simpars.DegrModelLin,
			TAddColdTires: 1.0,
			K0:            0.5,
			K1Lin:         lo.ToPtr(0.05),
		},
		"A5": {
			Model:         simpars.DegrModelLin,
			TAddColdTires: 0.8,
			K0:            0.3,
			K1Lin:         lo.ToPtr(0.08),
		},
	}
}
