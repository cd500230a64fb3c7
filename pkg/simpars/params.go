package simpars

// SimPars bundles all parameters required to set up a race simulation.
// The structure mirrors the layout of the parameter files.
type SimPars struct {
	Race    RacePars              `json:"race_pars"       yaml:"race_pars"`
	Track   TrackPars             `json:"track_pars"      yaml:"track_pars"`
	Drivers map[string]DriverPars `json:"driver_pars_all" yaml:"driver_pars_all"`
	Cars    map[int]CarPars       `json:"car_pars_all"    yaml:"car_pars_all"`
}

type RacePars struct {
	Season        int     `json:"season"          yaml:"season"`
	TotalLaps     int     `json:"tot_no_laps"     yaml:"tot_no_laps"`
	DRSAllowedLap int     `json:"drs_allowed_lap" yaml:"drs_allowed_lap"`
	MinTimeDist   float64 `json:"min_t_dist"      yaml:"min_t_dist"`   // (s) minimal temporal distance to the car in front
	TDuel         float64 `json:"t_duel"          yaml:"t_duel"`       // (s) time cost for a failed overtaking attempt
	TPassBonus    float64 `json:"t_pass_bonus"    yaml:"t_pass_bonus"` // (s) time gain while attempting to pass
	DRSWindow     float64 `json:"drs_window"      yaml:"drs_window"`   // (s) proximity window for DRS activation
	UseDRS        bool    `json:"use_drs"         yaml:"use_drs"`
	Participants  []int   `json:"participants"    yaml:"participants"` // car numbers taking part in the race
}

type TrackPars struct {
	Name                 string       `json:"name"                   yaml:"name"`
	TQ                   float64      `json:"t_q"                    yaml:"t_q"`                  // (s) best qualifying lap time
	TGapRacePace         float64      `json:"t_gap_racepace"         yaml:"t_gap_racepace"`       // (s) gap between t_q and best race lap time
	SMass                float64      `json:"s_mass"                 yaml:"s_mass"`               // (s/kg) lap time mass sensitivity
	TDRSEffect           float64      `json:"t_drseffect"            yaml:"t_drseffect"`          // (s) lap time reduction with DRS (negative)
	PitSpeedLimit        float64      `json:"pit_speedlimit"         yaml:"pit_speedlimit"`       // (m/s)
	TLossFirstLap        float64      `json:"t_loss_firstlap"        yaml:"t_loss_firstlap"`      // (s) loss due to the standing start
	DPerGridPos          float64      `json:"d_per_gridpos"          yaml:"d_per_gridpos"`        // (m) distance between two grid slots (negative)
	DFirstGridPos        float64      `json:"d_first_gridpos"        yaml:"d_first_gridpos"`      // (m) distance of slot 1 to the finish line
	Length               float64      `json:"length"                 yaml:"length"`               // (m)
	RealLengthPitZone    float64      `json:"real_length_pit_zone"   yaml:"real_length_pit_zone"` // (m) real pit lane length
	S12                  float64      `json:"s12"                    yaml:"s12"`                  // (m) boundary between sectors 1 and 2
	S23                  float64      `json:"s23"                    yaml:"s23"`                  // (m) boundary between sectors 2 and 3
	DRSMeasurementPoints []float64    `json:"drs_measurement_points" yaml:"drs_measurement_points"`
	Turn1                float64      `json:"turn_1"                 yaml:"turn_1"` // (m) distance of the first corner to the finish line
	PitZone              [2]float64   `json:"pit_zone"               yaml:"pit_zone"`
	PitsAfterFinishLine  bool         `json:"pits_aft_finishline"    yaml:"pits_aft_finishline"`
	OvertakingZones      [][2]float64 `json:"overtaking_zones"       yaml:"overtaking_zones"`
}

type DriverPars struct {
	Initials   string              `json:"initials"      yaml:"initials"`
	Name       string              `json:"name"          yaml:"name"`
	TDriver    float64             `json:"t_driver"      yaml:"t_driver"`    // (s) time loss per lap due to driver abilities
	TTeamOrder float64             `json:"t_teamorder"   yaml:"t_teamorder"` // (s) team order time delta
	VelMax     float64             `json:"vel_max"       yaml:"vel_max"`     // (km/h)
	DegrPars   map[string]DegrPars `json:"degr_pars_all" yaml:"degr_pars_all"`
}

// Degradation model kinds. Lin is the primary model; the others follow the
// same closed set of variants.
const (
	DegrModelLin  = "lin"
	DegrModelQuad = "quad"
	DegrModelCub  = "cub"
	DegrModelLn   = "ln"
)

// DegrPars holds the tire degradation parameters for one compound. Only the
// coefficients of the selected model must be present.
type DegrPars struct {
	Model         string   `json:"degr_model"      yaml:"degr_model"`
	TAddColdTires float64  `json:"t_add_coldtires" yaml:"t_add_coldtires"` // (s) loss while the tires are not warmed up
	K0            float64  `json:"k_0"             yaml:"k_0"`
	K1Lin         *float64 `json:"k_1_lin"         yaml:"k_1_lin"`
	K1Quad        *float64 `json:"k_1_quad"        yaml:"k_1_quad"`
	K2Quad        *float64 `json:"k_2_quad"        yaml:"k_2_quad"`
	K1Cub         *float64 `json:"k_1_cub"         yaml:"k_1_cub"`
	K2Cub         *float64 `json:"k_2_cub"         yaml:"k_2_cub"`
	K3Cub         *float64 `json:"k_3_cub"         yaml:"k_3_cub"`
	K1Ln          *float64 `json:"k_1_ln"          yaml:"k_1_ln"`
	K2Ln          *float64 `json:"k_2_ln"          yaml:"k_2_ln"`
}

// CarPars describes one car including its race strategy. The pit cost
// parameters are optional; an absent value means the corresponding pit
// action is not available for this car.
type CarPars struct {
	CarNo            int             `json:"car_no"              yaml:"car_no"`
	Team             string          `json:"team"                yaml:"team"`
	Manufacturer     string          `json:"manufacturer"        yaml:"manufacturer"`
	Color            string          `json:"color"               yaml:"color"`
	TCar             float64         `json:"t_car"               yaml:"t_car"`               // (s) time loss per lap due to car abilities
	MFuel            float64         `json:"m_fuel"              yaml:"m_fuel"`              // (kg) fuel mass at the race start
	MFuelMax         *float64        `json:"m_fuel_max"          yaml:"m_fuel_max"`          // (kg) tank capacity, required when refueling
	BFuelPerLap      float64         `json:"b_fuel_per_lap"      yaml:"b_fuel_per_lap"`      // (kg/lap)
	TPitRefuelPerKg  *float64        `json:"t_pit_refuel_per_kg" yaml:"t_pit_refuel_per_kg"` // (s/kg)
	TPitTireChange   *float64        `json:"t_pit_tirechange"    yaml:"t_pit_tirechange"`    // (s)
	TPitDriverChange *float64        `json:"t_pit_driverchange"  yaml:"t_pit_driverchange"`  // (s)
	PitLocation      float64         `json:"pit_location"        yaml:"pit_location"`        // (m) must be within the pit zone
	Strategy         []StrategyEntry `json:"strategy"            yaml:"strategy"`
	PGrid            int             `json:"p_grid"              yaml:"p_grid"`
}

// StrategyEntry is a scheduled pit action keyed to a target lap. The entry is
// applied such that the target lap is driven with the new configuration: the
// car stops at the lap boundary into Inlap and the fresh tires age from that
// lap onward. Inlap 0 holds the race start configuration and is applied
// before the first simulated time step.
type StrategyEntry struct {
	Inlap          int     `json:"inlap"           yaml:"inlap"`
	TireStartAge   int     `json:"tire_start_age"  yaml:"tire_start_age"`
	Compound       string  `json:"compound"        yaml:"compound"`        // empty: no tire change
	RefuelMass     float64 `json:"refuel_mass"     yaml:"refuel_mass"`     // (kg) zero: no refueling
	DriverInitials string  `json:"driver_initials" yaml:"driver_initials"` // empty: no driver change
}
