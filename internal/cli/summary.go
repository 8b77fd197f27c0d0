package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/syaroho/internal/domain/standings"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(root *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the overall leaderboard",
		Long: `Print every player of the latest snapshot ordered by rating.

Equal ratings share the best rank of their block.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := root.openRuntime()
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck // read only

			board, err := rt.svc.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitFailure, "summary failed", err)
			}
			return root.printer(cmd).print(board, func(w io.Writer) error {
				return writeSummary(w, board)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of rows, 0 for all")

	return cmd
}

func writeSummary(w io.Writer, board standings.Board) error {
	if _, err := fmt.Fprintf(w, "%s: %d players\n", board.Day, board.Total); err != nil {
		return err
	}
	t := newTable("Rank", "User", "Rating", "Highest", "Class", "Match", "Win", "Best").alignRight(0, 2, 3, 5, 6)
	for _, r := range board.Rows {
		t.add(
			strconv.Itoa(r.Rank), r.User, strconv.Itoa(r.Rating), strconv.Itoa(r.Highest),
			r.Class, strconv.Itoa(r.Match), strconv.Itoa(r.Win), r.Best,
		)
	}
	return t.render(w)
}
