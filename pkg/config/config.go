package config

// this holds the resolved configuration values from CLI
var (
	ParFile        string  // path to the simulation parameter file
	LogLevel       string  // sets the log level (zap log level values)
	LogFormat      string  // text vs json
	TimestepSize   float64 // simulation time step size (s)
	NumRuns        int     // number of races to simulate
	MaxConcurrency int     // upper bound for parallel race workers
	RealtimeFactor float64 // pace the simulation against the wall clock
	LiveRanking    bool    // print the live ranking while pacing
	OutputDir      string  // directory for result files, empty disables saving
	ProfilingPort  int     // port for profiling
)
