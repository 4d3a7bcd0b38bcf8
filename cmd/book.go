package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/example/holidaze/internal/application/usecases"
	"github.com/example/holidaze/internal/domain/booking"
	"github.com/spf13/cobra"
)

type stayFlags struct {
	from     string
	to       string
	adults   int
	children int
}

func (s *stayFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&s.from, "from", "", "arrival date YYYY-MM-DD")
	c.Flags().StringVar(&s.to, "to", "", "departure date YYYY-MM-DD")
	c.Flags().IntVar(&s.adults, "adults", 1, "number of adults")
	c.Flags().IntVar(&s.children, "children", 0, "number of children")
}

func (s *stayFlags) stay() (booking.Stay, error) {
	from, err := booking.ParseDate("from", s.from)
	if err != nil {
		return booking.Stay{}, err
	}
	to, err := booking.ParseDate("to", s.to)
	if err != nil {
		return booking.Stay{}, err
	}
	return booking.Stay{From: from, To: to, Adults: s.adults, Children: s.children}, nil
}

func printQuote(w io.Writer, q booking.Quote) {
	fmt.Fprintf(w, "nights=%d adults=%d x %.2f children=%d x %.2f total=%.2f\n",
		q.Nights, q.Adults, q.AdultRate, q.Children, q.ChildRate, q.Total)
}

func newBookCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Price and book stays",
	}
	cmd.AddCommand(newBookQuoteCmd(f))
	cmd.AddCommand(newBookCreateCmd(f))
	return cmd
}

func newBookQuoteCmd(f *rootFlags) *cobra.Command {
	s := &stayFlags{}
	c := &cobra.Command{
		Use:   "quote VENUE_ID",
		Short: "Show the price of a stay without booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stay, err := s.stay()
			if err != nil {
				return err
			}
			v, err := a.Venues.Venue(ctx, args[0])
			if err != nil {
				return err
			}
			q, err := usecases.QuoteStay(time.Now(), v, stay)
			if err != nil {
				return err
			}
			printQuote(cmd.OutOrStdout(), q)
			return nil
		},
	}
	s.bind(c)
	return c
}

func newBookCreateCmd(f *rootFlags) *cobra.Command {
	s := &stayFlags{}
	c := &cobra.Command{
		Use:   "create VENUE_ID",
		Short: "Book a stay",
		Args:  cobra.ExactArgs(1),
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
			stay, err := s.stay()
			if err != nil {
				return err
			}
			v, err := a.Venues.Venue(ctx, args[0])
			if err != nil {
				return err
			}
			conf, err := a.Book.Execute(ctx, sess, usecases.BookingRequest{Venue: v, Stay: stay})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "booked id=%s venue=%q %s..%s guests=%d\n",
				conf.Booking.ID, v.Name, stay.From.Format(booking.DateLayout), stay.To.Format(booking.DateLayout), stay.Guests())
			printQuote(out, conf.Quote)
			return nil
		},
	}
	s.bind(c)
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
