package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/syaroho/internal/app"
)

// NewRunCommand creates the run command.
func NewRunCommand(root *RootOptions) *cobra.Command {
	var exag float64

	cmd := &cobra.Command{
		Use:   "run [DATE]",
		Short: "Rate one day",
		Long: `Rate one day from the archived fetches and the previous day's snapshot.

DATE defaults to today in the configured timezone. Without any earlier
snapshot the day starts from an empty store; a missing previous day with an
older snapshot present is an error.

Example:
  syaroho run
  syaroho run 2024-01-02 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.openRuntime()
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck // read path already finished

			day, err := rt.dayArg(args)
			if err != nil {
				return err
			}
			sum, err := rt.svc.RunDay(cmd.Context(), day, exag)
			if err != nil {
				return WrapExitError(ExitFailure, "rating "+day.Format(time.DateOnly)+" failed", err)
			}
			return root.printer(cmd).print(sum, func(w io.Writer) error {
				return writeRun(w, sum)
			})
		},
	}

	cmd.Flags().Float64Var(&exag, "exag", 1.0, "stretch performances around 1600 by this factor")

	return cmd
}

func writeRun(w io.Writer, sum service.RunSummary) error {
	note := ""
	if sum.Bootstrap {
		note = ", bootstrap"
	}
	if _, err := fmt.Fprintf(w, "%s: %d participants (%d late) from %d posts, %d players%s\n",
		sum.Day.Format(time.DateOnly), sum.Admitted, sum.Late, sum.Observed, sum.Players, note); err != nil {
		return err
	}
	if len(sum.Results) == 0 {
		return nil
	}
	t := newTable("Rank", "User", "Time", "Perf", "Rating", "Change").alignRight(0, 3, 4, 5)
	for _, r := range sum.Results {
		t.add(strconv.Itoa(r.RankNormal), r.Handle, r.Time, strconv.Itoa(r.Perf), r.Rating, r.Change)
	}
	return t.render(w)
}
