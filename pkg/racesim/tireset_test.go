package racesim_test

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

func TestTiresetDegradationModels(t *testing.T) {
	tests := []struct {
		name string
		pars simpars.DegrPars
		age  int
		want float64
	}{
		{
			name: "linear",
			pars: simpars.DegrPars{Model: simpars.DegrModelLin, K0: 0.5,
				K1Lin: lo.ToPtr(0.05)},
			age:  4,
			want: 0.7,
		},
		{
			name: "quadratic",
			pars: simpars.DegrPars{Model: simpars.DegrModelQuad, K0: 0.2,
				K1Quad: lo.ToPtr(0.03), K2Quad: lo.ToPtr(0.002)},
			age:  5,
			want: 0.4,
		},
		{
			name: "cubic",
			pars: simpars.DegrPars{Model: simpars.DegrModelCub, K0: 0.1,
				K1Cub: lo.ToPtr(0.02), K2Cub: lo.ToPtr(0.003), K3Cub: lo.ToPtr(0.0004)},
			age:  2,
			want: 0.1552,
		},
		{
			name: "logarithmic",
			pars: simpars.DegrPars{Model: simpars.DegrModelLn, K0: 0.3,
				K1Ln: lo.ToPtr(0.2), K2Ln: lo.ToPtr(0.5)},
			age:  4,
			want: 0.3 + 0.2*math.Log(3.0),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tires := racesim.NewTireset("A4", tc.age, 1)
			tires.AgeCurStint = 1 // no cold-tire penalty
			assert.InDelta(t, tc.want, tires.TimeLoss(&tc.pars), 1e-9)
		})
	}
}

func TestTiresetColdTirePenalty(t *testing.T) {
	pars := simpars.DegrPars{Model: simpars.DegrModelLin, TAddColdTires: 1.0,
		K0: 0.5, K1Lin: lo.ToPtr(0.05)}

	// a set with start age still counts as cold until it completes a lap in
	// this stint
	tires := racesim.NewTireset("A4", 6, 1)
	assert.InDelta(t, 0.5+0.3+1.0, tires.TimeLoss(&pars), 1e-9)

	tires.DriveLap(1)
	assert.InDelta(t, 0.5+0.35, tires.TimeLoss(&pars), 1e-9)
}

func TestTiresetMountLap(t *testing.T) {
	// mounted at a stop near the end of lap 20, counting from lap 21
	tires := racesim.NewTireset("A4", 0, 21)

	tires.DriveLap(20) // only the pit exit was driven on this set
	assert.Equal(t, 0, tires.AgeTotal)
	assert.Equal(t, 0, tires.AgeCurStint)

	tires.DriveLap(21)
	assert.Equal(t, 1, tires.AgeTotal)
	assert.Equal(t, 1, tires.AgeCurStint)
}

func TestTiresetUnknownModel(t *testing.T) {
	tires := racesim.NewTireset("A4", 0, 1)
	require.Panics(t, func() {
		tires.TimeLoss(&simpars.DegrPars{Model: "exp"})
	})
}
