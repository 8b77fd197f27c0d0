package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/syaroho/internal/domain/model"
)

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(root *RootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "preview [DATE]",
		Short: "Show the provisional top of a day",
		Long: `Rank the late-catch fetch of a day by score without rating it.

Posts need the marker text and a client outside the denylist. The
late-catch window is applied by the final run only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.openRuntime()
			if err != nil {
				return err
			}
			defer rt.close() //nolint:errcheck // read only

			day, err := rt.dayArg(args)
			if err != nil {
				return err
			}
			entries, err := rt.svc.Preview(cmd.Context(), day, top)
			if err != nil {
				return WrapExitError(ExitFailure, "preview of "+day.Format(time.DateOnly)+" failed", err)
			}
			return root.printer(cmd).print(entries, func(w io.Writer) error {
				return writePreview(w, entries)
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "number of entries (default preview_size)")

	return cmd
}

func writePreview(w io.Writer, entries []model.PreviewEntry) error {
	t := newTable("#", "User", "Time", "Score").alignRight(0, 3)
	for i, e := range entries {
		t.add(strconv.Itoa(i+1), e.Handle, e.Time, strconv.FormatFloat(e.Score, 'f', -1, 64))
	}
	return t.render(w)
}
