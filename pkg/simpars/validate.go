package simpars

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Validate checks the parameter set for consistency. All configuration
// errors are caught here, before any simulation is constructed; the
// simulation core relies on these guarantees and treats violations as
// programming faults.
//
//nolint:gocognit,cyclop // checks are sequential by design
func (p *SimPars) Validate() error {
	if err := p.Track.validate(); err != nil {
		return err
	}

	if p.Race.TotalLaps < 1 {
		return fmt.Errorf("tot_no_laps must be at least 1, got %d", p.Race.TotalLaps)
	}
	if p.Race.MinTimeDist <= 0 {
		return fmt.Errorf("min_t_dist must be positive, got %.3f", p.Race.MinTimeDist)
	}
	if p.Race.DRSWindow < 0 {
		return fmt.Errorf("drs_window must not be negative, got %.3f", p.Race.DRSWindow)
	}
	if len(p.Race.Participants) == 0 {
		return fmt.Errorf("participant list is empty")
	}

	for initials, driver := range p.Drivers {
		for compound, degr := range driver.DegrPars {
			if err := degr.validate(); err != nil {
				return fmt.Errorf("driver %s, compound %s: %w", initials, compound, err)
			}
		}
	}

	grids := map[int]int{}
	for _, carNo := range p.Race.Participants {
		car, ok := p.Cars[carNo]
		if !ok {
			return fmt.Errorf("participant %d has no car parameters", carNo)
		}
		if prev, dup := grids[car.PGrid]; dup {
			return fmt.Errorf("cars %d and %d share grid position %d", prev, carNo, car.PGrid)
		}
		grids[car.PGrid] = carNo
		if err := p.validateCar(&car); err != nil {
			return fmt.Errorf("car %d: %w", carNo, err)
		}
	}
	return nil
}

func (t *TrackPars) validate() error {
	if t.Length <= 0 {
		return fmt.Errorf("track length must be positive, got %.1f", t.Length)
	}
	if t.S12 <= 0 || t.S12 >= t.Length || t.S23 <= 0 || t.S23 >= t.Length {
		return fmt.Errorf("sector boundaries must be within (0, track length)")
	}
	if t.Turn1 <= 0 || t.Turn1 >= t.Length {
		return fmt.Errorf("turn_1 must be within (0, track length), got %.1f", t.Turn1)
	}
	if t.PitSpeedLimit <= 0 {
		return fmt.Errorf("pit_speedlimit must be positive, got %.1f", t.PitSpeedLimit)
	}
	for _, s := range t.DRSMeasurementPoints {
		if s < 0 || s >= t.Length {
			return fmt.Errorf("DRS measurement point %.1f outside [0, track length)", s)
		}
	}
	for _, s := range t.PitZone {
		if s < 0 || s >= t.Length {
			return fmt.Errorf("pit zone bound %.1f outside [0, track length)", s)
		}
	}
	if len(t.OvertakingZones) == 0 {
		return fmt.Errorf("at least one overtaking zone is required")
	}
	if len(t.DRSMeasurementPoints) != len(t.OvertakingZones) {
		return fmt.Errorf("need one DRS measurement point per overtaking zone, got %d for %d zones",
			len(t.DRSMeasurementPoints), len(t.OvertakingZones))
	}
	for i, zone := range t.OvertakingZones {
		if zone[0] == zone[1] {
			return fmt.Errorf("overtaking zone %d has zero length", i+1)
		}
		for _, s := range zone {
			if s < 0 || s >= t.Length {
				return fmt.Errorf("overtaking zone bound %.1f outside [0, track length)", s)
			}
		}
	}
	for i := range t.OvertakingZones {
		for j := i + 1; j < len(t.OvertakingZones); j++ {
			if t.zonesOverlap(t.OvertakingZones[i], t.OvertakingZones[j]) {
				return fmt.Errorf("overtaking zones %d and %d overlap", i+1, j+1)
			}
		}
	}
	return nil
}

// zonesOverlap reports whether two zones given in track coordinates overlap.
// Zones may wrap around the finish line.
func (t *TrackPars) zonesOverlap(a, b [2]float64) bool {
	return t.inZone(b[0], a) || t.inZone(a[0], b)
}

// inZone reports whether s lies within the half-open interval [zone start,
// zone end), taking a wrap-around at the finish line into account.
func (t *TrackPars) inZone(s float64, zone [2]float64) bool {
	if zone[0] < zone[1] {
		return zone[0] <= s && s < zone[1]
	}
	return s >= zone[0] || s < zone[1]
}

func (d *DegrPars) validate() error {
	missing := func(name string) error {
		return fmt.Errorf("degradation model %q requires parameter %s", d.Model, name)
	}
	switch d.Model {
	case DegrModelLin:
		if d.K1Lin == nil {
			return missing("k_1_lin")
		}
	case DegrModelQuad:
		if d.K1Quad == nil {
			return missing("k_1_quad")
		}
		if d.K2Quad == nil {
			return missing("k_2_quad")
		}
	case DegrModelCub:
		if d.K1Cub == nil {
			return missing("k_1_cub")
		}
		if d.K2Cub == nil {
			return missing("k_2_cub")
		}
		if d.K3Cub == nil {
			return missing("k_3_cub")
		}
	case DegrModelLn:
		if d.K1Ln == nil {
			return missing("k_1_ln")
		}
		if d.K2Ln == nil {
			return missing("k_2_ln")
		}
	default:
		return fmt.Errorf("unknown degradation model %q", d.Model)
	}
	return nil
}

//nolint:gocognit,cyclop // checks are sequential by design
func (p *SimPars) validateCar(car *CarPars) error {
	if car.PGrid < 1 {
		return fmt.Errorf("grid position must be at least 1, got %d", car.PGrid)
	}
	if car.MFuel < 0 {
		return fmt.Errorf("initial fuel mass must not be negative, got %.1f", car.MFuel)
	}
	if car.BFuelPerLap < 0 {
		return fmt.Errorf("fuel consumption must not be negative, got %.2f", car.BFuelPerLap)
	}
	if car.MFuelMax != nil && car.MFuel > *car.MFuelMax {
		return fmt.Errorf("initial fuel mass %.1f exceeds capacity %.1f", car.MFuel, *car.MFuelMax)
	}
	if !p.Track.inZone(car.PitLocation, p.Track.PitZone) {
		return fmt.Errorf("pit location %.1f is not within the pit zone", car.PitLocation)
	}

	if len(car.Strategy) == 0 {
		return fmt.Errorf("strategy must contain at least the start configuration")
	}
	first := car.Strategy[0]
	if first.Inlap != 0 || first.Compound == "" || first.DriverInitials == "" ||
		first.RefuelMass != 0 {
		return fmt.Errorf("first strategy entry must be inlap 0 with start compound and " +
			"driver and zero refuel mass")
	}

	// compounds and drivers referenced by the schedule
	compounds := []string{}
	drivers := []string{}
	fuel := car.MFuel
	for i, entry := range car.Strategy {
		if entry.Compound != "" {
			compounds = append(compounds, entry.Compound)
		}
		if entry.DriverInitials != "" {
			drivers = append(drivers, entry.DriverInitials)
		}
		if entry.TireStartAge < 0 {
			return fmt.Errorf("strategy entry %d: tire start age must not be negative", i+1)
		}
		if entry.RefuelMass < 0 {
			return fmt.Errorf("strategy entry %d: refuel mass must not be negative", i+1)
		}
		if i == 0 {
			continue
		}
		if entry.Inlap < 2 {
			return fmt.Errorf("strategy entry %d targets lap %d; the earliest possible stop "+
				"is at the boundary into lap 2", i+1, entry.Inlap)
		}
		if entry.Inlap <= car.Strategy[i-1].Inlap {
			return fmt.Errorf("strategy entry %d targets lap %d, which is not after the "+
				"previous entry (lap %d)", i+1, entry.Inlap, car.Strategy[i-1].Inlap)
		}
		if entry.Inlap > p.Race.TotalLaps {
			return fmt.Errorf("strategy entry %d targets lap %d beyond race distance of %d laps",
				i+1, entry.Inlap, p.Race.TotalLaps)
		}
		if entry.Compound != "" && car.TPitTireChange == nil {
			return fmt.Errorf("strategy entry %d schedules a tire change but "+
				"t_pit_tirechange is not set", i+1)
		}
		if entry.DriverInitials != "" && car.TPitDriverChange == nil {
			return fmt.Errorf("strategy entry %d schedules a driver change but "+
				"t_pit_driverchange is not set", i+1)
		}
		if entry.RefuelMass > 0 {
			if car.TPitRefuelPerKg == nil {
				return fmt.Errorf("strategy entry %d schedules refueling but "+
					"t_pit_refuel_per_kg is not set", i+1)
			}
			if car.MFuelMax == nil {
				return fmt.Errorf("strategy entry %d schedules refueling but "+
					"m_fuel_max is not set", i+1)
			}
			burned := float64(entry.Inlap-1) * car.BFuelPerLap
			if fuel-burned+entry.RefuelMass > *car.MFuelMax {
				return fmt.Errorf("strategy entry %d: refueling %.1f kg at lap %d would "+
					"exceed capacity %.1f kg", i+1, entry.RefuelMass, entry.Inlap, *car.MFuelMax)
			}
			fuel += entry.RefuelMass
		}
	}

	// every driver scheduled for this car must provide degradation parameters
	// for every compound scheduled for this car
	compounds = lo.Uniq(compounds)
	sort.Strings(compounds)
	for _, initials := range lo.Uniq(drivers) {
		driver, ok := p.Drivers[initials]
		if !ok {
			return fmt.Errorf("strategy references unknown driver %s", initials)
		}
		for _, compound := range compounds {
			if _, ok := driver.DegrPars[compound]; !ok {
				return fmt.Errorf("driver %s has no degradation parameters for scheduled "+
					"compound %s", initials, compound)
			}
		}
	}
	return nil
}
