package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/syaroho/internal/app"
)

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(root *RootOptions) *cobra.Command {
	var egStart bool

	cmd := &cobra.Command{
		Use:   "backfill START END",
		Short: "Rate a range of archived days in order",
		Long: `Rate every day from START to END inclusive, one after another.

With --eg-start the first day is rated with the configured bootstrap
exaggeration, which spreads the initial ratings of a fresh history.
Rating stops at the first failing day.

Example:
  syaroho backfill 2024-01-01 2024-01-31 --eg-start`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.openRuntime()
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck // read path already finished

			start, err := parseDay(args[0], rt.loc)
			if err != nil {
				return err
			}
			end, err := parseDay(args[1], rt.loc)
			if err != nil {
				return err
			}

			sums, runErr := rt.svc.Backfill(cmd.Context(), start, end, egStart)
			if err := root.printer(cmd).print(sums, func(w io.Writer) error {
				return writeBackfill(w, sums)
			}); err != nil {
				return err
			}
			if runErr != nil {
				return WrapExitError(ExitFailure, "backfill stopped", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&egStart, "eg-start", false, "apply the bootstrap exaggeration to the first day")

	return cmd
}

func writeBackfill(w io.Writer, sums []service.RunSummary) error {
	t := newTable("Day", "Exag", "Posts", "Participants", "Late", "Players").alignRight(1, 2, 3, 4, 5)
	for _, s := range sums {
		t.add(
			s.Day.Format(time.DateOnly),
			strconv.FormatFloat(s.Exag, 'f', -1, 64),
			strconv.Itoa(s.Observed),
			strconv.Itoa(s.Admitted),
			strconv.Itoa(s.Late),
			strconv.Itoa(s.Players),
		)
	}
	return t.render(w)
}
