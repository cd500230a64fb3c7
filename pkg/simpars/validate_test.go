package simpars_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
	"github.com/heilmeiera/time-discrete-race-simulator/testsupport/basedata"
)

func TestValidateSamplePars(t *testing.T) {
	require.NoError(t, basedata.SamplePars().Validate())
}

//nolint:funlen // table driven
func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *simpars.SimPars)
		wantErr string
	}{
		{
			name:    "zero race distance",
			mutate:  func(p *simpars.SimPars) { p.Race.TotalLaps = 0 },
			wantErr: "tot_no_laps",
		},
		{
			name:    "non-positive minimum distance",
			mutate:  func(p *simpars.SimPars) { p.Race.MinTimeDist = 0 },
			wantErr: "min_t_dist",
		},
		{
			name:    "negative DRS window",
			mutate:  func(p *simpars.SimPars) { p.Race.DRSWindow = -0.5 },
			wantErr: "drs_window",
		},
		{
			name:    "no participants",
			mutate:  func(p *simpars.SimPars) { p.Race.Participants = nil },
			wantErr: "participant list is empty",
		},
		{
			name:    "participant without car parameters",
			mutate:  func(p *simpars.SimPars) { p.Race.Participants = []int{44, 5} },
			wantErr: "participant 5 has no car parameters",
		},
		{
			name:    "negative track length",
			mutate:  func(p *simpars.SimPars) { p.Track.Length = -1 },
			wantErr: "track length",
		},
		{
			name:    "turn 1 outside the lap",
			mutate:  func(p *simpars.SimPars) { p.Track.Turn1 = 6000 },
			wantErr: "turn_1",
		},
		{
			name:    "no overtaking zones",
			mutate:  func(p *simpars.SimPars) { p.Track.OvertakingZones = nil },
			wantErr: "at least one overtaking zone",
		},
		{
			name: "DRS point count mismatch",
			mutate: func(p *simpars.SimPars) {
				p.Track.DRSMeasurementPoints = []float64{450.0}
			},
			wantErr: "one DRS measurement point per overtaking zone",
		},
		{
			name: "overlapping overtaking zones",
			mutate: func(p *simpars.SimPars) {
				p.Track.OvertakingZones = [][2]float64{{600, 1200}, {1100, 1700}}
			},
			wantErr: "overlap",
		},
		{
			name: "unknown degradation model",
			mutate: func(p *simpars.SimPars) {
				d := p.Drivers["HAM"]
				d.DegrPars["A4"] = simpars.DegrPars{Model: "exp"}
				p.Drivers["HAM"] = d
			},
			wantErr: "unknown degradation model",
		},
		{
			name: "missing model coefficient",
			mutate: func(p *simpars.SimPars) {
				d := p.Drivers["HAM"]
				d.DegrPars["A4"] = simpars.DegrPars{Model: simpars.DegrModelQuad,
					K1Quad: lo.ToPtr(0.1)}
				p.Drivers["HAM"] = d
			},
			wantErr: "requires parameter k_2_quad",
		},
		{
			name: "duplicate grid position",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[44]
				car.PGrid = 1
				p.Cars[44] = car
			},
			wantErr: "share grid position",
		},
		{
			name: "pit location outside the pit zone",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.PitLocation = 100
				p.Cars[77] = car
			},
			wantErr: "not within the pit zone",
		},
		{
			name: "missing start configuration",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy = nil
				p.Cars[77] = car
			},
			wantErr: "at least the start configuration",
		},
		{
			name: "first entry not at inlap 0",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[0].Inlap = 1
				p.Cars[77] = car
			},
			wantErr: "first strategy entry",
		},
		{
			name: "stop before lap 2",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[1].Inlap = 1
				p.Cars[77] = car
			},
			wantErr: "earliest possible stop",
		},
		{
			name: "stop beyond race distance",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[1].Inlap = 31
				p.Cars[77] = car
			},
			wantErr: "beyond race distance",
		},
		{
			name: "stops out of order",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy = append(car.Strategy, simpars.StrategyEntry{
					Inlap: 21, Compound: "A5",
				})
				p.Cars[77] = car
			},
			wantErr: "not after the previous entry",
		},
		{
			name: "tire change without cost parameter",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.TPitTireChange = nil
				p.Cars[77] = car
			},
			wantErr: "t_pit_tirechange is not set",
		},
		{
			name: "refueling without cost parameter",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[1].RefuelMass = 10
				p.Cars[77] = car
			},
			wantErr: "t_pit_refuel_per_kg is not set",
		},
		{
			name: "refueling beyond tank capacity",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.TPitRefuelPerKg = lo.ToPtr(0.5)
				car.Strategy[1].RefuelMass = 200
				p.Cars[77] = car
			},
			wantErr: "exceed capacity",
		},
		{
			name: "scheduled compound without degradation parameters",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[1].Compound = "A6"
				p.Cars[77] = car
			},
			wantErr: "no degradation parameters for scheduled compound",
		},
		{
			name: "driver change without cost parameter",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.Strategy[1].DriverInitials = "HAM"
				p.Cars[77] = car
			},
			wantErr: "t_pit_driverchange is not set",
		},
		{
			name: "unknown scheduled driver",
			mutate: func(p *simpars.SimPars) {
				car := p.Cars[77]
				car.TPitDriverChange = lo.ToPtr(8.0)
				car.Strategy[1].DriverInitials = "XYZ"
				p.Cars[77] = car
			},
			wantErr: "unknown driver XYZ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pars := basedata.SamplePars()
			tc.mutate(pars)
			require.ErrorContains(t, pars.Validate(), tc.wantErr)
		})
	}
}
