package racesim

import (
	"fmt"
)

// State is the discrete behavioral state of one car.
type State int

const (
	// StateRaceStart is active only once, from the grid slot until turn 1.
	// Overtaking is allowed and minimum distances are not enforced.
	StateRaceStart State = iota
	// StateNormal is the section between two overtaking zones.
	StateNormal
	// StateOvertakingZone permits overtaking, DRS and duels.
	StateOvertakingZone
	// StatePitLane is the speed-limited drive through the pit zone.
	StatePitLane
	// StatePitStandstill is the stationary part of a pit stop. It is entered
	// and left by explicit calls from the race, not by position.
	StatePitStandstill
)

func (s State) String() string {
	switch s {
	case StateRaceStart:
		return "RACE_START"
	case StateNormal:
		return "NORMAL"
	case StateOvertakingZone:
		return "OVERTAKING_ZONE"
	case StatePitLane:
		return "PIT_LANE"
	case StatePitStandstill:
		return "PIT_STANDSTILL"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TransitionInput carries the per-tick context needed to evaluate position
// triggered state transitions: the temporal gap to the car in front, whether
// that pairing is a lapping situation, the pit intent for the current lap,
// and the leader's lap for the DRS activation rule.
type TransitionInput struct {
	DeltaTFront  float64
	PitThisLap   bool
	LappingFront bool
	LeaderLap    int
}

// StateHandler tracks the race progress of one car and the state machine
// gating its behavior (overtaking, DRS, pit lane, standstill).
//
// Race progress is kept as an s coordinate in [0, track length) plus a
// completed-lap counter. The s coordinate is negative between the grid slot
// and the finish line before the race start.
type StateHandler struct {
	useDRS        bool
	drsWindow     float64
	minTimeDist   float64
	drsAllowedLap int
	turn1         float64
	drsPoints     []float64
	zones         [][2]float64
	pitZone       [2]float64
	trackLength   float64

	sPrev        float64
	sCur         float64
	complLapPrev int
	complLapCur  int

	state       State
	actZoneIdx  int // overtaking zone that is active (or next, in StateNormal)
	firstZone   [2]int
	inDRSWindow bool

	standstillLeft float64 // (s) remaining standstill time during a pit stop

	StartAct         bool
	DRSAct           bool
	OvertakingAct    bool
	PitAct           bool
	PitStandstillAct bool
	DuelAct          bool
	DuelLoserAct     bool

	// tick frame for in-order boundary processing; positions from sPrev to
	// endU, where endU extends past the track length if the tick crosses the
	// finish line
	markU float64
	endU  float64
}

// NewStateHandler creates the state handler of one car starting at the given
// grid coordinate (negative, behind the finish line).
func NewStateHandler(
	track *Track,
	useDRS bool,
	drsWindow, minTimeDist float64,
	drsAllowedLap int,
	sStart float64,
) *StateHandler {
	sh := &StateHandler{
		useDRS:        useDRS,
		drsWindow:     drsWindow,
		minTimeDist:   minTimeDist,
		drsAllowedLap: drsAllowedLap,
		turn1:         track.Turn1,
		drsPoints:     track.DRSMeasurementPoints,
		zones:         track.OvertakingZones,
		pitZone:       track.PitZone,
		trackLength:   track.Length,
		sPrev:         sStart,
		sCur:          sStart,
		state:         StateRaceStart,
		StartAct:      true,
		OvertakingAct: true, // overtaking is allowed at the race start
	}

	// determine the first zone boundary after the finish line (zone index and
	// side, 0 = start, 1 = end)
	sMin := track.Length
	for i, zone := range sh.zones {
		for j, s := range zone {
			if s < sMin {
				sMin = s
				sh.firstZone = [2]int{i, j}
			}
		}
	}
	return sh
}

func (sh *StateHandler) State() State { return sh.state }

// UpdateRaceProg advances the race progress for one time step based on the
// current lap time. An infinite lap time (standstill) yields a zero delta.
func (sh *StateHandler) UpdateRaceProg(curLaptime, timestepSize float64) {
	sh.complLapPrev = sh.complLapCur
	sh.sPrev = sh.sCur

	sh.sCur += timestepSize / curLaptime * sh.trackLength

	// a negative s at the race start does not lead to a new lap
	if sh.sCur >= sh.trackLength {
		sh.complLapCur++
		sh.sCur -= sh.trackLength
	}
}

// PassedThisStep reports whether the car passed the given s coordinate
// within the current time step.
func (sh *StateHandler) PassedThisStep(s float64) bool {
	if sh.NewLap() {
		return sh.sPrev < s || s <= sh.sCur
	}
	return sh.sPrev < s && s <= sh.sCur
}

// ComplLap returns the number of completed race laps.
func (sh *StateHandler) ComplLap() int { return sh.complLapCur }

// NewLap reports whether the car crossed the finish line within the current
// time step.
func (sh *StateHandler) NewLap() bool { return sh.complLapCur > sh.complLapPrev }

// RaceProg returns the race progress in laps; negative before the start.
func (sh *StateHandler) RaceProg() float64 {
	return float64(sh.complLapCur) + sh.sCur/sh.trackLength
}

// LapFracs returns the lap fractions of the previous and the current time
// step, both normalized to [0, 1).
func (sh *StateHandler) LapFracs() (prev, cur float64) {
	prev = sh.sPrev
	if prev < 0 {
		prev += sh.trackLength
	}
	cur = sh.sCur
	if cur < 0 {
		cur += sh.trackLength
	}
	return prev / sh.trackLength, cur / sh.trackLength
}

// STracks returns the s coordinates of the previous and the current time
// step, both normalized to [0, track length).
func (sh *StateHandler) STracks() (prev, cur float64) {
	prev = sh.sPrev
	if prev < 0 {
		prev += sh.trackLength
	}
	cur = sh.sCur
	if cur < 0 {
		cur += sh.trackLength
	}
	return prev, cur
}

// SetSTrack places the car at a specific s coordinate, e.g. exactly at the
// pit location when entering the standstill.
func (sh *StateHandler) SetSTrack(s float64) {
	if s < 0 || s >= sh.trackLength {
		panic(fmt.Sprintf("s coordinate %.3f outside [0, %.3f)", s, sh.trackLength))
	}
	sh.sCur = s
}

// CheckStateTransition evaluates all position triggered transitions for the
// current time step. A tick whose distance delta spans several boundaries
// processes each boundary in position order instead of collapsing them to a
// net state.
func (sh *StateHandler) CheckStateTransition(in *TransitionInput) {
	sh.markU = sh.sPrev
	sh.endU = sh.sCur
	if sh.NewLap() {
		sh.endU += sh.trackLength
	}

	limit := 2*len(sh.zones) + 8
	for i := 0; ; i++ {
		if i > limit {
			panic(fmt.Sprintf("state machine did not settle within %d boundary events "+
				"(state %s, s %.3f..%.3f)", limit, sh.state, sh.sPrev, sh.sCur))
		}
		boundary, ok := sh.stepBoundary(in)
		if !ok {
			return
		}
		sh.markU = boundary
	}
}

// crossed returns the tick-frame coordinate of the boundary s if it was
// passed after the current mark, and whether it was passed at all.
func (sh *StateHandler) crossed(s float64) (float64, bool) {
	cand := s
	if cand <= sh.markU {
		cand += sh.trackLength
	}
	if cand <= sh.markU || cand > sh.endU {
		return 0, false
	}
	return cand, true
}

type boundaryEvent struct {
	at  float64
	run func()
}

// stepBoundary processes the next boundary event ahead of the mark, if any.
//
//nolint:gocognit,cyclop // event dispatch by state
func (sh *StateHandler) stepBoundary(in *TransitionInput) (float64, bool) {
	var events []boundaryEvent

	switch sh.state {
	case StateRaceStart:
		if at, ok := sh.crossed(sh.turn1); ok {
			events = append(events, boundaryEvent{at, func() {
				sh.state, sh.actZoneIdx = sh.actStateAndZone()
				sh.StartAct = false
				sh.OvertakingAct = false
			}})
		}

	case StateNormal:
		if at, ok := sh.crossed(sh.drsPoints[sh.actZoneIdx]); ok {
			events = append(events, boundaryEvent{at, func() {
				if in.DeltaTFront <= sh.drsWindow {
					sh.inDRSWindow = true
				}
			}})
		}
		if in.PitThisLap {
			if at, ok := sh.crossed(sh.pitZone[0]); ok {
				events = append(events, boundaryEvent{at, sh.enterPitLane})
			}
		}
		if at, ok := sh.crossed(sh.zones[sh.actZoneIdx][0]); ok {
			events = append(events, boundaryEvent{at, func() { sh.enterOvertakingZone(in) }})
		}

	case StateOvertakingZone:
		if in.PitThisLap {
			if at, ok := sh.crossed(sh.pitZone[0]); ok {
				events = append(events, boundaryEvent{at, sh.enterPitLane})
			}
		}
		if at, ok := sh.crossed(sh.zones[sh.actZoneIdx][1]); ok {
			events = append(events, boundaryEvent{at, func() { sh.exitOvertakingZone(in) }})
		}

	case StatePitLane:
		if at, ok := sh.crossed(sh.pitZone[1]); ok {
			events = append(events, boundaryEvent{at, func() {
				sh.state, sh.actZoneIdx = sh.actStateAndZone()
				sh.PitAct = false
			}})
		}

	case StatePitStandstill:
		// entered and left by explicit calls from the race
	}

	if len(events) == 0 {
		return 0, false
	}
	next := events[0]
	for _, ev := range events[1:] {
		if ev.at < next.at {
			next = ev
		}
	}
	next.run()
	return next.at, true
}

func (sh *StateHandler) enterPitLane() {
	sh.state = StatePitLane
	sh.PitAct = true
	sh.inDRSWindow = false
	sh.DRSAct = false
	sh.OvertakingAct = false
	sh.DuelAct = false
}

func (sh *StateHandler) enterOvertakingZone(in *TransitionInput) {
	sh.state = StateOvertakingZone
	sh.OvertakingAct = true

	if sh.useDRS && in.LeaderLap >= sh.drsAllowedLap && sh.inDRSWindow {
		sh.DRSAct = true
	}

	// a duel starts when following the car in front below the minimum
	// distance (not while lapping)
	if in.DeltaTFront <= sh.minTimeDist && !in.LappingFront {
		sh.DuelAct = true
	}
	sh.inDRSWindow = false
}

func (sh *StateHandler) exitOvertakingZone(in *TransitionInput) {
	sh.state = StateNormal
	sh.actZoneIdx = (sh.actZoneIdx + 1) % len(sh.zones)

	// a pass attempt that did not clear the minimum distance by the zone end
	// has failed; the full duel cost is charged on the next tick
	if sh.DuelAct && in.DeltaTFront <= sh.minTimeDist && !in.LappingFront {
		sh.DuelLoserAct = true
	}
	sh.DRSAct = false
	sh.OvertakingAct = false
	sh.DuelAct = false
}

// actStateAndZone determines the correct state and active zone for the
// current position, used whenever the subsequent state is not known from the
// state machine itself (after the race start and after the pit exit).
func (sh *StateHandler) actStateAndZone() (State, int) {
	_, sCur := sh.STracks()

	zoneIdx := sh.firstZone[0]
	sideIdx := sh.firstZone[1]
	for {
		// the car is in front of this boundary: done
		if sCur < sh.zones[zoneIdx][sideIdx] {
			break
		}
		sideIdx = (sideIdx + 1) % 2
		if sideIdx == 0 {
			zoneIdx = (zoneIdx + 1) % len(sh.zones)
		}
		// wrapped around: the car is behind the last boundary before the
		// finish line, the indices are correct again
		if zoneIdx == sh.firstZone[0] && sideIdx == sh.firstZone[1] {
			break
		}
	}

	// in front of a zone start: normal section; in front of a zone end: the
	// car is inside that zone
	if sideIdx == 0 {
		return StateNormal, zoneIdx
	}
	return StateOvertakingZone, zoneIdx
}

// ActivatePitStandstill switches to the standstill state. tElapsed is the
// standstill time already spent within the activating time step, target the
// total standstill duration.
func (sh *StateHandler) ActivatePitStandstill(tElapsed, target float64) {
	if sh.state != StatePitLane {
		panic("pit standstill entered without being in the pit lane")
	}
	sh.state = StatePitStandstill
	sh.PitStandstillAct = true
	sh.standstillLeft = target - tElapsed
	if sh.standstillLeft < 0 {
		sh.standstillLeft = 0
	}
}

// DeactivatePitStandstill returns to the pit lane after the standstill
// countdown is exhausted.
func (sh *StateHandler) DeactivatePitStandstill() {
	if sh.state != StatePitStandstill {
		panic("pit standstill left without being in the standstill state")
	}
	sh.state = StatePitLane
	sh.PitStandstillAct = false
	sh.standstillLeft = 0
}

// TickStandstill counts the standstill down by one time step.
func (sh *StateHandler) TickStandstill(timestepSize float64) {
	if sh.state != StatePitStandstill {
		panic("standstill countdown ticked without being in the standstill state")
	}
	sh.standstillLeft -= timestepSize
}

// LeavesStandstill reports whether the car returns to driving within the
// current time step and, if so, how long it drives within that step.
func (sh *StateHandler) LeavesStandstill(timestepSize float64) (float64, bool) {
	if sh.state != StatePitStandstill {
		panic("standstill check without being in the standstill state")
	}
	if sh.standstillLeft >= timestepSize {
		return 0, false
	}
	return timestepSize - sh.standstillLeft, true
}

// StandstillLeft returns the remaining standstill countdown.
func (sh *StateHandler) StandstillLeft() float64 { return sh.standstillLeft }
