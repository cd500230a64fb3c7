package racesim

import (
	"fmt"
	"math"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// Tireset is the degradation state of the currently mounted set of tires.
// A compound change creates a fresh Tireset with the scheduled start age;
// the stint age starts at zero in that case, which triggers the cold-tire
// penalty for the outlap.
type Tireset struct {
	Compound    string
	AgeTotal    int
	AgeCurStint int

	mountLap int // racing lap the set counts from
}

func NewTireset(compound string, startAge, mountLap int) *Tireset {
	return &Tireset{Compound: compound, AgeTotal: startAge, mountLap: mountLap}
}

// DriveLap ages the tires when completing the given lap. A set mounted at a
// stop near the end of the preceding lap does not age at the very next lap
// boundary; it only drove the pit exit.
func (t *Tireset) DriveLap(completedLap int) {
	if completedLap < t.mountLap {
		return
	}
	t.AgeCurStint++
	t.AgeTotal++
}

// TimeLoss returns the lap time loss caused by tire degradation under the
// given parameters, including the cold-tire penalty while the set has not
// completed a lap in this stint.
func (t *Tireset) TimeLoss(pars *simpars.DegrPars) float64 {
	loss := t.degradation(pars)
	if t.AgeCurStint == 0 {
		loss += pars.TAddColdTires
	}
	return loss
}

// degradation evaluates the configured degradation model at the current
// total age:
//
//	lin:  k_0 + k_1_lin*age
//	quad: k_0 + k_1_quad*age + k_2_quad*age^2
//	cub:  k_0 + k_1_cub*age + k_2_cub*age^2 + k_3_cub*age^3
//	ln:   k_0 + k_1_ln*ln(k_2_ln*age + 1)
func (t *Tireset) degradation(pars *simpars.DegrPars) float64 {
	age := float64(t.AgeTotal)

	switch pars.Model {
	case simpars.DegrModelLin:
		return pars.K0 + *pars.K1Lin*age
	case simpars.DegrModelQuad:
		return pars.K0 + *pars.K1Quad*age + *pars.K2Quad*age*age
	case simpars.DegrModelCub:
		return pars.K0 + *pars.K1Cub*age + *pars.K2Cub*age*age + *pars.K3Cub*age*age*age
	case simpars.DegrModelLn:
		return pars.K0 + *pars.K1Ln*math.Log(*pars.K2Ln*age+1)
	default:
		// parameters are validated at load time
		panic(fmt.Sprintf("unknown degradation model %q", pars.Model))
	}
}
