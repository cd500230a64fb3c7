package racesim

import (
	"fmt"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// Driver holds the driver-specific time offsets and the per-compound
// degradation parameters. Drivers are shared between cars and may be swapped
// onto a car during a pit stop; the parameter table itself is immutable.
type Driver struct {
	Initials   string
	Name       string
	TDriver    float64
	TTeamOrder float64
	VelMax     float64
	degrPars   map[string]simpars.DegrPars
}

func NewDriver(pars *simpars.DriverPars) *Driver {
	degr := make(map[string]simpars.DegrPars, len(pars.DegrPars))
	for compound, dp := range pars.DegrPars {
		degr[compound] = dp
	}
	return &Driver{
		Initials:   pars.Initials,
		Name:       pars.Name,
		TDriver:    pars.TDriver,
		TTeamOrder: pars.TTeamOrder,
		VelMax:     pars.VelMax,
		degrPars:   degr,
	}
}

// DegrPars returns the degradation parameters of this driver for the given
// compound. Compound coverage is validated at load time, a miss here is a
// programming fault.
func (d *Driver) DegrPars(compound string) *simpars.DegrPars {
	pars, ok := d.degrPars[compound]
	if !ok {
		panic(fmt.Sprintf("driver %s has no degradation parameters for compound %q",
			d.Initials, compound))
	}
	return &pars
}
