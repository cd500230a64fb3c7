// Package results renders and persists the outcome of simulated races.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
)

// WriteClassification writes the final classification as a table: rank, car,
// driver, grid, laps, race time and the gap to the winner.
func WriteClassification(w io.Writer, res *racesim.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s, season %d, %d laps\n\n", res.TrackName, res.Season, res.TotalLaps)
	fmt.Fprintln(tw, "RANK\tNO\tDRIVER\tTEAM\tGRID\tLAPS\tTIME\tGAP\tBEST")

	var winner racesim.CarResult
	if len(res.Cars) > 0 {
		winner = res.Cars[0]
	}
	for _, car := range res.Cars {
		gap := "-"
		switch {
		case car.Rank == 1:
		case car.Laps < winner.Laps:
			gap = fmt.Sprintf("+%d laps", winner.Laps-car.Laps)
		default:
			gap = fmt.Sprintf("+%s", FormatLaptime(car.RaceTime-winner.RaceTime))
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			car.Rank, car.CarNo, car.DriverInitials, car.Team, car.PGrid, car.Laps,
			FormatRacetime(car.RaceTime), gap, FormatLaptime(car.BestLaptime))
	}
	return tw.Flush()
}

// WriteLaptimes writes one row per lap with the lap times of all cars, in
// classification order.
func WriteLaptimes(w io.Writer, res *racesim.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "LAP"
	for _, car := range res.Cars {
		header += fmt.Sprintf("\t#%d", car.CarNo)
	}
	fmt.Fprintln(tw, header)

	maxLaps := lo.Max(lo.Map(res.Cars, func(c racesim.CarResult, _ int) int {
		return c.Laps
	}))
	for lap := 1; lap <= maxLaps; lap++ {
		row := fmt.Sprintf("%d", lap)
		for _, car := range res.Cars {
			if lap > car.Laps {
				row += "\t-"
				continue
			}
			row += "\t" + FormatLaptime(car.Laptimes[lap])
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}

// SaveJSON writes the result below dir using the given run identifier and
// returns the file path.
func SaveJSON(dir, runID string, res *racesim.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating result directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("result_%s.json", runID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result file %s: %w", path, err)
	}
	return path, nil
}

// FormatLaptime formats a duration in seconds as m:ss.fff.
func FormatLaptime(seconds float64) string {
	if math.IsInf(seconds, 1) || math.IsNaN(seconds) {
		return "-"
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds-float64(minutes)*60)
}

// FormatRacetime formats a duration in seconds as h:mm:ss.fff.
func FormatRacetime(seconds float64) string {
	if math.IsInf(seconds, 1) || math.IsNaN(seconds) {
		return "-"
	}
	hours := int(seconds) / 3600
	rest := seconds - float64(hours)*3600
	minutes := int(rest) / 60
	return fmt.Sprintf("%d:%02d:%06.3f", hours, minutes, rest-float64(minutes)*60)
}
