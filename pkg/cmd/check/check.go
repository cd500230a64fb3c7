package check

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check parfile",
		Short: "validates a parameter file and prints a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkParFile(args[0])
		},
	}
	return cmd
}

func checkParFile(path string) error {
	pars, err := simpars.LoadFile(path)
	if err != nil {
		return err
	}
	track := racesim.NewTrack(&pars.Track)

	fmt.Printf("%s: ok\n\n", path)
	fmt.Printf("track:   %s (%.0f m, %d overtaking zones)\n",
		track.Name, track.Length, len(track.OvertakingZones))
	fmt.Printf("race:    season %d, %d laps, %d cars\n",
		pars.Race.Season, pars.Race.TotalLaps, len(pars.Race.Participants))
	fmt.Printf("pit:     drive-through loss %.1f s\n\n", track.PitDriveTimeLoss())

	carNos := append([]int{}, pars.Race.Participants...)
	sort.Ints(carNos)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NO\tTEAM\tGRID\tDRIVER\tSTOPS\tFUEL")
	for _, carNo := range carNos {
		car := pars.Cars[carNo]
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%.1f kg\n",
			carNo, car.Team, car.PGrid, car.Strategy[0].DriverInitials,
			len(car.Strategy)-1, car.MFuel)
	}
	return tw.Flush()
}
