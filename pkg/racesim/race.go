package racesim

import (
	"fmt"
	"math"
	"sort"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// Flag is the global race flag state. Yellow phases and safety cars are not
// modeled.
type Flag string

const (
	FlagGreen     Flag = "GREEN"
	FlagChequered Flag = "CHEQUERED"
)

// Race owns the track, the participating cars and the global clock, and
// advances the whole simulation tick by tick. A Race instance is not safe
// for concurrent use; SimulateTimestep must be called sequentially.
type Race struct {
	timestepSize  float64
	curRaceTime   float64
	season        int
	totalLaps     int
	drsAllowedLap int
	curLapLeader  int
	minTimeDist   float64
	tDuel         float64
	tPassBonus    float64
	drsWindow     float64
	useDRS        bool
	flag          Flag

	track   *Track
	cars    []*Car
	drivers map[string]*Driver

	raceFinished  []bool
	laptimes      [][]float64 // per car, per lap; index 0 unused
	racetimes     [][]float64
	curLaptimes   []float64
	curThLaptimes []float64
	ranking       []int // car indices ordered by rank, recomputed every tick
}

// NewRace validates the parameters and the timestep size and builds a ready
// to run race. All configuration errors surface here; once constructed, a
// tick never fails on any reachable state.
func NewRace(pars *simpars.SimPars, timestepSize float64) (*Race, error) {
	if timestepSize < 0.001 || timestepSize > 1.0 {
		return nil, fmt.Errorf("timestep size %.4fs outside the reasonable range "+
			"[0.001, 1.0]s", timestepSize)
	}
	if err := pars.Validate(); err != nil {
		return nil, err
	}

	track := NewTrack(&pars.Track)

	drivers := make(map[string]*Driver, len(pars.Drivers))
	for initials := range pars.Drivers {
		dp := pars.Drivers[initials]
		drivers[initials] = NewDriver(&dp)
	}

	r := &Race{
		timestepSize:  timestepSize,
		season:        pars.Race.Season,
		totalLaps:     pars.Race.TotalLaps,
		drsAllowedLap: pars.Race.DRSAllowedLap,
		curLapLeader:  1,
		minTimeDist:   pars.Race.MinTimeDist,
		tDuel:         pars.Race.TDuel,
		tPassBonus:    pars.Race.TPassBonus,
		drsWindow:     pars.Race.DRSWindow,
		useDRS:        pars.Race.UseDRS,
		flag:          FlagGreen,
		track:         track,
		drivers:       drivers,
	}

	for _, carNo := range pars.Race.Participants {
		cp := pars.Cars[carNo]
		driver, ok := drivers[cp.Strategy[0].DriverInitials]
		if !ok {
			return nil, fmt.Errorf("car %d: start driver %s not found", carNo,
				cp.Strategy[0].DriverInitials)
		}
		sh := NewStateHandler(track, r.useDRS, r.drsWindow, r.minTimeDist,
			r.drsAllowedLap, track.GridSlot(cp.PGrid))
		r.cars = append(r.cars, NewCar(&cp, driver, sh))
	}
	sort.Slice(r.cars, func(i, j int) bool { return r.cars[i].CarNo < r.cars[j].CarNo })

	n := len(r.cars)
	r.raceFinished = make([]bool, n)
	r.curLaptimes = make([]float64, n)
	r.curThLaptimes = make([]float64, n)
	r.laptimes = make([][]float64, n)
	r.racetimes = make([][]float64, n)
	for i := range r.cars {
		r.laptimes[i] = make([]float64, r.totalLaps+1)
		r.racetimes[i] = make([]float64, r.totalLaps+1)
		r.calcThLaptime(i)
	}
	r.updateRanking()

	return r, nil
}

func (r *Race) TimestepSize() float64 { return r.timestepSize }
func (r *Race) RaceTime() float64     { return r.curRaceTime }
func (r *Race) LeaderLap() int        { return r.curLapLeader }
func (r *Race) TotalLaps() int        { return r.totalLaps }
func (r *Race) Season() int           { return r.season }
func (r *Race) Track() *Track         { return r.track }
func (r *Race) FlagState() Flag       { return r.flag }

// Finished reports whether all cars have finished the race.
func (r *Race) Finished() bool {
	for _, done := range r.raceFinished {
		if !done {
			return false
		}
	}
	return true
}

// SimulateTimestep advances the simulation by exactly one time step:
//
//  1. advance the clock
//  2. compute the current lap time of every car
//  3. advance every car's race progress
//  4. handle pit standstill entry/exit (pits before the finish line)
//  5. handle lap transitions, strategy application and race completion
//  6. handle pit standstill entry/exit (pits after the finish line)
//  7. evaluate the state transitions for the next step
//
// The order is a correctness requirement and must not be changed.
func (r *Race) SimulateTimestep() {
	r.curRaceTime += r.timestepSize

	r.calcCurLaptimes()

	for i, car := range r.cars {
		car.SH.UpdateRaceProg(r.curLaptimes[i], r.timestepSize)
	}

	if !r.track.PitsAfterFinishLine {
		r.handlePitStandstill()
	}

	r.handleLapTransitions()

	if r.track.PitsAfterFinishLine {
		r.handlePitStandstill()
	}

	r.handleStateTransitions()

	r.updateRanking()
}

// calcThLaptime computes the lap time a car-driver combo can drive on a free
// track, before any per-tick effect is applied.
func (r *Race) calcThLaptime(idx int) {
	r.curThLaptimes[idx] = r.track.TQ + r.track.TGapRacePace +
		r.cars[idx].BasicTimeLoss(r.track.SMass)
}

// calcCurLaptimes derives the lap time of every car for the current tick
// from the theoretical lap time: race start, duels, DRS and pit effects are
// applied, then the lap time of any car that would get too close to the car
// in front is raised. That clamping is the non-overtaking traffic model:
// either a car keeps the minimum distance or it is in an overtaking state.
//
//nolint:gocognit,cyclop // effect composition by design
func (r *Race) calcCurLaptimes() {
	for i, car := range r.cars {
		if r.raceFinished[i] {
			// terminal cars hold their position but keep their ranking slot
			r.curLaptimes[i] = math.Inf(1)
			continue
		}
		lt := r.curThLaptimes[i]
		sh := car.SH

		// standing start: loss applied across the run to turn 1
		if sh.StartAct {
			lt += r.track.TLossFirstLap / r.track.Turn1LapFrac
		}

		// pass attempt: the trailing car gains the bonus across the
		// overtaking zone
		if sh.DuelAct {
			lt -= r.tPassBonus / r.track.OvertakingZonesLapFrac
		}

		// failed pass attempt: the full duel cost is charged once
		if sh.DuelLoserAct {
			lt += r.tDuel
			sh.DuelLoserAct = false
		}

		// DRS gain across the overtaking zone (TDRSEffect is negative)
		if sh.DRSAct {
			lt += r.track.TDRSEffect / r.track.OvertakingZonesLapFrac
		}

		if sh.PitAct {
			switch {
			case !sh.PitStandstillAct:
				// driving through the pit lane at the speed limit; the lap
				// time is virtually increased so that the real pit lane
				// length is covered on the shorter track projection
				lt = r.track.Length / r.track.PitSpeedLimit *
					r.track.RealLengthPitZone / r.track.TrackLengthPitZone
			default:
				if tDriving, leaves := sh.LeavesStandstill(r.timestepSize); leaves {
					// the car returns to driving within this step
					lt = r.track.Length / r.track.PitSpeedLimit *
						r.track.RealLengthPitZone / r.track.TrackLengthPitZone *
						r.timestepSize / tDriving
				} else {
					// stationary for the entire step
					lt = math.Inf(1)
				}
			}
		}

		r.curLaptimes[i] = lt
	}

	// clamp lap times of cars that would undercut the minimum distance to
	// the car in front; starting at the car with the biggest gap ahead, its
	// own lap time needs no adjustment
	active := r.activeCars()
	if len(active) < 2 {
		return
	}
	order := r.orderByBiggestGap(active)
	for _, pair := range r.carPairs(order, true) {
		front, rear := pair[0], pair[1]

		deltaTProj := r.projectedDeltaT(front, rear, r.timestepSize)
		if r.cars[rear].SH.OvertakingAct || r.cars[front].SH.PitAct ||
			deltaTProj >= r.minTimeDist {
			continue
		}

		// raise the rear car's lap time so that the gap recovers to the
		// minimum distance within 3 seconds; this also catches an accidental
		// pass due to a suddenly reduced lap time in front
		deltaTCur := r.projectedDeltaT(front, rear, 0)
		tGapAdd := (r.minTimeDist - deltaTCur) / 3.0 * r.curLaptimes[rear]
		if r.curLaptimes[rear] < r.curLaptimes[front]+tGapAdd {
			r.curLaptimes[rear] = r.curLaptimes[front] + tGapAdd
		}
	}
}

// handlePitStandstill activates the standstill when a car reaches its pit
// location within the current step, runs the countdown, and releases the car
// when the countdown is exhausted. The due strategy entry is executed at
// standstill entry unless the lap transition already executed it.
func (r *Race) handlePitStandstill() {
	for i, car := range r.cars {
		sh := car.SH
		switch {
		case sh.PitAct && !sh.PitStandstillAct:
			if !sh.PassedThisStep(car.PitLocation) {
				continue
			}
			sPrev, sCur := sh.STracks()

			// time driven within this step before reaching the pit location
			var tPartDrive float64
			if !r.track.PitsAfterFinishLine {
				tPartDrive = (car.PitLocation - sPrev) / r.track.Length * r.curLaptimes[i]
			} else {
				// the lap transition may sit in between; the standstill part
				// is known without wrap issues
				tPartDrive = r.timestepSize -
					(sCur-car.PitLocation)/r.track.Length*r.curLaptimes[i]
			}

			due := sh.ComplLap() + 1
			if !r.track.PitsAfterFinishLine {
				due = sh.ComplLap() + 2
			}
			if e := car.NextEntry(); e != nil && e.Inlap == due {
				car.ApplyNextStrategy(r.drivers)
			}

			sh.ActivatePitStandstill(r.timestepSize-tPartDrive, car.StandstillTarget())
			sh.SetSTrack(car.PitLocation)

		case sh.PitStandstillAct:
			if _, leaves := sh.LeavesStandstill(r.timestepSize); !leaves {
				sh.TickStandstill(r.timestepSize)
			} else {
				sh.DeactivatePitStandstill()
			}
		}
	}
}

// handleLapTransitions processes all cars that crossed the finish line within
// the current step: lap and race time tables, fuel and tire accounting,
// strategy application and race completion.
func (r *Race) handleLapTransitions() {
	// the leader lap drives the chequered flag; lapped cars finish early
	for i, car := range r.cars {
		if r.raceFinished[i] {
			continue
		}
		if car.SH.ComplLap() >= r.curLapLeader {
			r.curLapLeader = car.SH.ComplLap() + 1
		}
	}
	if r.curLapLeader > r.totalLaps && r.flag != FlagChequered {
		r.flag = FlagChequered
	}

	for i, car := range r.cars {
		sh := car.SH
		if r.raceFinished[i] || !sh.NewLap() {
			continue
		}

		// time driven within this step before crossing the line
		lapFracPrev, _ := sh.LapFracs()
		tPartOld := (1.0 - lapFracPrev) * r.curLaptimes[i]

		compl := sh.ComplLap()
		if compl <= r.totalLaps {
			r.laptimes[i][compl] = r.curRaceTime - r.timestepSize + tPartOld -
				r.racetimes[i][compl-1]
			r.racetimes[i][compl] = r.racetimes[i][compl-1] + r.laptimes[i][compl]
		}

		car.DriveLap(compl)
		if car.MFuel < 0 {
			panic(fmt.Sprintf("t=%.3fs car %d: fuel mass is negative (%.3f kg)",
				r.curRaceTime, car.CarNo, car.MFuel))
		}

		// execute the strategy entry targeting the newly started lap (a stop
		// before the finish line has executed it at standstill entry already)
		if sh.PitAct {
			if e := car.NextEntry(); e != nil && e.Inlap == compl+1 {
				car.ApplyNextStrategy(r.drivers)
			}
		}

		if r.flag == FlagChequered {
			r.raceFinished[i] = true
		}

		r.calcThLaptime(i)
	}
}

// handleStateTransitions prepares the neighbor context for every car and
// evaluates its state machine for the next step. Cars in the pit lane or in
// standstill are not duel eligible; their followers see an infinite gap.
func (r *Race) handleStateTransitions() {
	active := r.activeCars()
	if len(active) == 0 {
		return
	}

	if len(active) == 1 {
		car := r.cars[active[0]]
		car.SH.CheckStateTransition(&TransitionInput{
			DeltaTFront: math.Inf(1),
			PitThisLap:  car.PitThisLap(car.SH.ComplLap() + 1),
			LeaderLap:   r.curLapLeader,
		})
		return
	}

	order := r.carOrderOnTrack(active)
	pairs := r.carPairs(order, false)

	deltaTs := make([]float64, len(pairs))
	lapping := make([]bool, len(pairs))
	for k, pair := range pairs {
		deltaTs[k] = r.projectedDeltaT(pair[0], pair[1], 0)
		// the race start is handled correctly since the race progress can be
		// negative
		lapping[k] = r.cars[pair[0]].SH.RaceProg() < r.cars[pair[1]].SH.RaceProg()
	}

	for k, pair := range pairs {
		front, rear := pair[0], pair[1]
		car := r.cars[rear]

		in := &TransitionInput{
			DeltaTFront:  deltaTs[k],
			LappingFront: lapping[k],
			PitThisLap:   car.PitThisLap(car.SH.ComplLap() + 1),
			LeaderLap:    r.curLapLeader,
		}
		if r.cars[front].SH.PitAct {
			in.DeltaTFront = math.Inf(1)
		}
		car.SH.CheckStateTransition(in)
	}
}

// updateRanking recomputes the ranking. Running cars order by race progress;
// finished cars order by completed laps and race time, since their progress
// freezes at an arbitrary point just past the line. Exact ties break by the
// lower starting grid position, which makes the order total and
// deterministic.
func (r *Race) updateRanking() {
	r.ranking = make([]int, len(r.cars))
	for i := range r.ranking {
		r.ranking[i] = i
	}
	sort.SliceStable(r.ranking, func(a, b int) bool {
		ia, ib := r.ranking[a], r.ranking[b]
		if r.raceFinished[ia] && r.raceFinished[ib] {
			la, lb := r.finalLap(ia), r.finalLap(ib)
			if la != lb {
				return la > lb
			}
			if ta, tb := r.racetimes[ia][la], r.racetimes[ib][lb]; ta != tb {
				return ta < tb
			}
			return r.cars[ia].PGrid < r.cars[ib].PGrid
		}
		pa := r.cars[ia].SH.RaceProg()
		pb := r.cars[ib].SH.RaceProg()
		if pa != pb {
			return pa > pb
		}
		return r.cars[ia].PGrid < r.cars[ib].PGrid
	})
}

// finalLap returns the lap a car is classified on, capped at the race
// distance.
func (r *Race) finalLap(idx int) int {
	compl := r.cars[idx].SH.ComplLap()
	if compl > r.totalLaps {
		compl = r.totalLaps
	}
	return compl
}

// activeCars returns the indices of all cars still racing.
func (r *Race) activeCars() []int {
	active := make([]int, 0, len(r.cars))
	for i := range r.cars {
		if !r.raceFinished[i] {
			active = append(active, i)
		}
	}
	return active
}

// carOrderOnTrack returns the given car indices sorted by descending s
// coordinate, i.e. in the order the cars run on track.
func (r *Race) carOrderOnTrack(idxs []int) []int {
	order := append([]int{}, idxs...)
	sort.SliceStable(order, func(a, b int) bool {
		_, sa := r.cars[order[a]].SH.STracks()
		_, sb := r.cars[order[b]].SH.STracks()
		if sa != sb {
			return sa > sb
		}
		return r.cars[order[a]].PGrid < r.cars[order[b]].PGrid
	})
	return order
}

// orderByBiggestGap rotates the on-track order so that the car with the
// biggest spatial gap in front of it comes first.
func (r *Race) orderByBiggestGap(idxs []int) []int {
	order := r.carOrderOnTrack(idxs)
	pairs := r.carPairs(order, false)

	biggest := 0
	var biggestGap float64 = -1
	for k, pair := range pairs {
		gap := r.projectedDeltaLapFrac(pair[0], pair[1], 0)
		if gap > biggestGap {
			biggestGap = gap
			biggest = k
		}
	}

	start := (biggest + 1) % len(order)
	rotated := make([]int, 0, len(order))
	rotated = append(rotated, order[start:]...)
	rotated = append(rotated, order[:start]...)
	return rotated
}

// carPairs builds (front, rear) index pairs along the given on-track order.
// With dropLast, the wrap-around pair (last car back to the first) is
// omitted.
func (r *Race) carPairs(order []int, dropLast bool) [][2]int {
	pairs := make([][2]int, 0, len(order))
	for i := range order {
		pairs = append(pairs, [2]int{order[i], order[(i+1)%len(order)]})
	}
	if dropLast && len(pairs) > 0 {
		pairs = pairs[:len(pairs)-1]
	}
	return pairs
}

// projectedDeltaT returns the temporal distance between two cars: the time
// the rear car needs to reach the front car's current position, based on the
// rear car's lap time. With a positive timestep both cars are projected into
// the future first.
func (r *Race) projectedDeltaT(front, rear int, timestepSize float64) float64 {
	return r.projectedDeltaLapFrac(front, rear, timestepSize) * r.curLaptimes[rear]
}

// projectedDeltaLapFrac returns the spatial distance between two cars as a
// lap fraction, ignoring complete laps.
func (r *Race) projectedDeltaLapFrac(front, rear int, timestepSize float64) float64 {
	_, fracFront := r.cars[front].SH.LapFracs()
	_, fracRear := r.cars[rear].SH.LapFracs()

	fracFront += timestepSize / r.curLaptimes[front]
	fracRear += timestepSize / r.curLaptimes[rear]

	if fracFront >= 1.0 {
		fracFront -= 1.0
	}
	if fracRear >= 1.0 {
		fracRear -= 1.0
	}

	if fracFront >= fracRear {
		return fracFront - fracRear
	}
	return fracFront + 1.0 - fracRear
}
