package racesim

import (
	"fmt"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// Car aggregates one driver, the mounted tireset, the behavioral state
// machine, the fuel state and the strategy schedule of a single entry.
type Car struct {
	CarNo        int
	Team         string
	Manufacturer string
	Color        string
	TCar         float64
	MFuel        float64
	BFuelPerLap  float64
	PitLocation  float64
	PGrid        int

	Driver *Driver
	Tires  *Tireset
	SH     *StateHandler

	tPitRefuelPerKg  *float64
	tPitTireChange   *float64
	tPitDriverChange *float64

	strategy []simpars.StrategyEntry
	pending  int // next strategy entry to consume; entries apply in order

	standstillTarget float64 // (s) standstill duration of the entry applied last
}

// NewCar builds a car from validated parameters. The strategy entry at inlap
// 0 carries the race start configuration and is applied immediately, before
// any time step runs.
func NewCar(pars *simpars.CarPars, driver *Driver, sh *StateHandler) *Car {
	start := pars.Strategy[0]
	return &Car{
		CarNo:            pars.CarNo,
		Team:             pars.Team,
		Manufacturer:     pars.Manufacturer,
		Color:            pars.Color,
		TCar:             pars.TCar,
		MFuel:            pars.MFuel,
		BFuelPerLap:      pars.BFuelPerLap,
		PitLocation:      pars.PitLocation,
		PGrid:            pars.PGrid,
		Driver:           driver,
		Tires:            NewTireset(start.Compound, start.TireStartAge, 1),
		SH:               sh,
		tPitRefuelPerKg:  pars.TPitRefuelPerKg,
		tPitTireChange:   pars.TPitTireChange,
		tPitDriverChange: pars.TPitDriverChange,
		strategy:         pars.Strategy,
		pending:          1,
	}
}

// BasicTimeLoss returns the lap time loss against the reference lap caused by
// car and driver abilities, team orders, tire degradation and fuel mass.
func (c *Car) BasicTimeLoss(sMass float64) float64 {
	degr := c.Driver.DegrPars(c.Tires.Compound)
	return c.TCar +
		c.Driver.TDriver +
		c.Driver.TTeamOrder +
		c.Tires.TimeLoss(degr) +
		c.MFuel*sMass
}

// DriveLap accounts for one completed lap: the fuel for the lap is burned and
// the tires age, unless the set was mounted within that lap.
func (c *Car) DriveLap(completedLap int) {
	c.MFuel -= c.BFuelPerLap
	c.Tires.DriveLap(completedLap)
}

// NextEntry returns the next unconsumed strategy entry, nil once the
// schedule is exhausted.
func (c *Car) NextEntry() *simpars.StrategyEntry {
	if c.pending >= len(c.strategy) {
		return nil
	}
	return &c.strategy[c.pending]
}

// PitThisLap reports whether the car has to head for the pit lane during the
// given racing lap: the next scheduled stop sits at the boundary into the
// following lap.
func (c *Car) PitThisLap(racingLap int) bool {
	entry := c.NextEntry()
	return entry != nil && entry.Inlap == racingLap+1
}

// ApplyNextStrategy executes the next strategy entry: tire change with age
// reset, refueling, and an optional driver change. The resulting standstill
// duration is the sum of the applicable time costs and is kept for the
// standstill countdown of this stop.
func (c *Car) ApplyNextStrategy(drivers map[string]*Driver) {
	entry := c.NextEntry()
	if entry == nil {
		panic(fmt.Sprintf("car %d: pit stop without a remaining strategy entry", c.CarNo))
	}
	c.pending++

	var standstill float64

	if entry.Compound != "" {
		c.Tires = NewTireset(entry.Compound, entry.TireStartAge, entry.Inlap)
		standstill += c.pitCost(c.tPitTireChange, "t_pit_tirechange")
	}

	if entry.RefuelMass > 0 {
		c.MFuel += entry.RefuelMass
		standstill += entry.RefuelMass * c.pitCost(c.tPitRefuelPerKg, "t_pit_refuel_per_kg")
	}

	if entry.DriverInitials != "" {
		driver, ok := drivers[entry.DriverInitials]
		if !ok {
			panic(fmt.Sprintf("car %d: strategy references unknown driver %s",
				c.CarNo, entry.DriverInitials))
		}
		if driver != c.Driver {
			c.Driver = driver
			standstill += c.pitCost(c.tPitDriverChange, "t_pit_driverchange")
		}
	}

	c.standstillTarget = standstill
}

// StandstillTarget returns the standstill duration of the entry applied
// last.
func (c *Car) StandstillTarget() float64 { return c.standstillTarget }

func (c *Car) pitCost(cost *float64, name string) float64 {
	// presence is validated at load time for every scheduled action
	if cost == nil {
		panic(fmt.Sprintf("car %d: pit cost parameter %s not set", c.CarNo, name))
	}
	return *cost
}
