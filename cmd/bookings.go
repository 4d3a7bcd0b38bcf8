package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/holidaze/internal/domain/booking"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/spf13/cobra"
)

func newBookingsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings, upcoming first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := session(ctx, a)
			if err != nil {
				return err
			}
			view, err := a.Bookings.Execute(ctx, sess)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printBookings(out, "upcoming", view.Upcoming)
			printBookings(out, "past", view.Past)
			return nil
		},
	}
}

func printBookings(w io.Writer, label string, bs []venue.Booking) {
	fmt.Fprintf(w, "%s (%d)\n", label, len(bs))
	if len(bs) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tVENUE\tFROM\tTO\tGUESTS")
	for _, b := range bs {
		name := "-"
		if b.Venue != nil {
			name = b.Venue.Name
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\n", b.ID, name,
			b.DateFrom.Format(booking.DateLayout), b.DateTo.Format(booking.DateLayout), b.Guests)
	}
	_ = tw.Flush()
}
