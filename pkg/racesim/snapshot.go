package racesim

import (
	"math"
)

// CarSnapshot is the observable state of one car at a point in time.
type CarSnapshot struct {
	CarNo          int     `json:"carNo"`
	DriverInitials string  `json:"driverInitials"`
	Rank           int     `json:"rank"`
	Lap            int     `json:"lap"` // current racing lap
	RaceProg       float64 `json:"raceProg"`
	RaceTime       float64 `json:"raceTime"` // (s) at the last completed lap
	State          string  `json:"state"`
	DRSActive      bool    `json:"drsActive"`
	GapLeader      float64 `json:"gapLeader"` // (s)
	GapAhead       float64 `json:"gapAhead"`  // (s)
	FuelMass       float64 `json:"fuelMass"`  // (kg)
	TireCompound   string  `json:"tireCompound"`
	TireAge        int     `json:"tireAge"` // (laps) total age of the mounted set
	Finished       bool    `json:"finished"`
}

// RaceSnapshot is the observable state of the whole race at a point in time,
// with the cars ordered by rank.
type RaceSnapshot struct {
	RaceTime  float64       `json:"raceTime"` // (s)
	LeaderLap int           `json:"leaderLap"`
	TotalLaps int           `json:"totalLaps"`
	Flag      Flag          `json:"flag"`
	Cars      []CarSnapshot `json:"cars"`
}

// Snapshot captures the current race state. The per-car gaps are temporal
// distances derived from the race progress and the lap time of the trailing
// car; they are approximations while a car stands in the pits.
func (r *Race) Snapshot() *RaceSnapshot {
	snap := &RaceSnapshot{
		RaceTime:  r.curRaceTime,
		LeaderLap: r.curLapLeader,
		TotalLaps: r.totalLaps,
		Flag:      r.flag,
		Cars:      make([]CarSnapshot, 0, len(r.cars)),
	}

	leaderProg := math.Inf(-1)
	prevProg := math.Inf(-1)
	for rank, idx := range r.ranking {
		car := r.cars[idx]
		sh := car.SH

		// use the theoretical lap time for gap conversion; the current lap
		// time is infinite while a car stands still
		lt := r.curLaptimes[idx]
		if math.IsInf(lt, 1) {
			lt = r.curThLaptimes[idx]
		}

		cs := CarSnapshot{
			CarNo:          car.CarNo,
			DriverInitials: car.Driver.Initials,
			Rank:           rank + 1,
			Lap:            sh.ComplLap() + 1,
			RaceProg:       sh.RaceProg(),
			RaceTime:       r.racetimes[idx][sh.ComplLap()],
			State:          sh.State().String(),
			DRSActive:      sh.DRSAct,
			FuelMass:       car.MFuel,
			TireCompound:   car.Tires.Compound,
			TireAge:        car.Tires.AgeTotal,
			Finished:       r.raceFinished[idx],
		}
		if rank == 0 {
			leaderProg = cs.RaceProg
			prevProg = cs.RaceProg
		} else {
			cs.GapLeader = (leaderProg - cs.RaceProg) * lt
			cs.GapAhead = (prevProg - cs.RaceProg) * lt
			prevProg = cs.RaceProg
		}
		snap.Cars = append(snap.Cars, cs)
	}
	return snap
}

// CarResult is the final classification of one car.
type CarResult struct {
	Rank           int       `json:"rank"`
	CarNo          int       `json:"carNo"`
	Team           string    `json:"team"`
	DriverInitials string    `json:"driverInitials"`
	PGrid          int       `json:"pGrid"`
	Laps           int       `json:"laps"`
	RaceTime       float64   `json:"raceTime"` // (s) at the last completed lap
	Laptimes       []float64 `json:"laptimes"` // index 0 unused
	Racetimes      []float64 `json:"racetimes"`
	BestLaptime    float64   `json:"bestLaptime"`
	BestLap        int       `json:"bestLap"`
}

// Result is the outcome of one simulated race.
type Result struct {
	Season    int         `json:"season"`
	TrackName string      `json:"trackName"`
	TotalLaps int         `json:"totalLaps"`
	Cars      []CarResult `json:"cars"`
}

// Result builds the final classification. It is meaningful once Finished
// reports true, but may be called on a running race for intermediate
// standings.
func (r *Race) Result() *Result {
	res := &Result{
		Season:    r.season,
		TrackName: r.track.Name,
		TotalLaps: r.totalLaps,
		Cars:      make([]CarResult, 0, len(r.cars)),
	}

	for rank, idx := range r.ranking {
		car := r.cars[idx]
		compl := r.finalLap(idx)

		cr := CarResult{
			Rank:           rank + 1,
			CarNo:          car.CarNo,
			Team:           car.Team,
			DriverInitials: car.Driver.Initials,
			PGrid:          car.PGrid,
			Laps:           compl,
			Laptimes:       append([]float64{}, r.laptimes[idx][:compl+1]...),
			Racetimes:      append([]float64{}, r.racetimes[idx][:compl+1]...),
			BestLaptime:    math.Inf(1),
		}
		if compl >= 1 {
			cr.RaceTime = r.racetimes[idx][compl]
		}
		for lap := 1; lap <= compl; lap++ {
			if r.laptimes[idx][lap] < cr.BestLaptime {
				cr.BestLaptime = r.laptimes[idx][lap]
				cr.BestLap = lap
			}
		}
		res.Cars = append(res.Cars, cr)
	}
	return res
}
