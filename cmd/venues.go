package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/example/holidaze/internal/application/usecases"
	"github.com/example/holidaze/internal/domain/booking"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/spf13/cobra"
)

func newVenuesCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Browse and manage venues",
	}
	cmd.AddCommand(newVenuesListCmd(f))
	cmd.AddCommand(newVenuesBrowseCmd(f))
	cmd.AddCommand(newVenuesShowCmd(f))
	cmd.AddCommand(newVenuesCreateCmd(f))
	cmd.AddCommand(newVenuesUpdateCmd(f))
	cmd.AddCommand(newVenuesDeleteCmd(f))
	return cmd
}

// browseFlags are the listing and filter options shared by list and browse.
type browseFlags struct {
	page      int
	sort      string
	order     string
	search    string
	country   string
	guests    int
	rating    string
	minPrice  string
	maxPrice  string
	name      string
	amenities []string
}

func (b *browseFlags) bind(c *cobra.Command) {
	c.Flags().IntVar(&b.page, "page", 1, "page to fetch")
	c.Flags().StringVar(&b.sort, "sort", "created", "created, name, price, rating or maxGuests")
	c.Flags().StringVar(&b.order, "order", "desc", "asc or desc")
	c.Flags().StringVar(&b.search, "search", "", "service-side text search")
	c.Flags().StringVar(&b.country, "country", "", "exact country")
	c.Flags().IntVar(&b.guests, "guests", 0, "venues taking exactly this many guests")
	c.Flags().StringVar(&b.rating, "rating", "", "rating bucket 0-5 (r <= rating < r+1)")
	c.Flags().StringVar(&b.minPrice, "min-price", "", "minimum nightly price")
	c.Flags().StringVar(&b.maxPrice, "max-price", "", "maximum nightly price")
	c.Flags().StringVar(&b.name, "name", "", "name contains (case-insensitive)")
	c.Flags().StringSliceVar(&b.amenities, "amenity", nil, "wifi, parking, breakfast or pets (repeatable)")
}

func (b *browseFlags) request() usecases.BrowseRequest {
	q := url.Values{}
	q.Set("country", b.country)
	q.Set("q", b.name)
	q.Set("rating", b.rating)
	q.Set("min_price", b.minPrice)
	q.Set("max_price", b.maxPrice)
	if b.guests > 0 {
		q.Set("guests", strconv.Itoa(b.guests))
	}
	for _, a := range b.amenities {
		q.Set(strings.ToLower(strings.TrimSpace(a)), "1")
	}
	return usecases.BrowseRequest{
		Page:     b.page,
		Sort:     b.sort,
		Order:    b.order,
		Search:   b.search,
		Criteria: venue.CriteriaFromValues(q),
	}
}

func printListing(w io.Writer, l usecases.Listing) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tPRICE\tGUESTS\tRATING")
	for _, v := range l.Venues {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%.1f\n", v.ID, v.Name, v.Location.Country, v.Price, v.MaxGuests, v.Rating)
	}
	_ = tw.Flush()
	if l.FellBack {
		fmt.Fprintln(w, "(no venue on this page has photos; showing all)")
	}
	fmt.Fprintf(w, "page %d/%d, %d of %d shown\n", l.Page.Current, l.Page.Total, len(l.Venues), l.RawCount)
}

func newVenuesListCmd(f *rootFlags) *cobra.Command {
	b := &browseFlags{}
	c := &cobra.Command{
		Use:   "list",
		Short: "List one page of venues after filtering",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			l, err := a.Discover.Execute(ctx, b.request())
			if err != nil {
				return err
			}
			printListing(cmd.OutOrStdout(), l)
			return nil
		},
	}
	b.bind(c)
	return c
}

func newVenuesBrowseCmd(f *rootFlags) *cobra.Command {
	b := &browseFlags{}
	c := &cobra.Command{
		Use:   "browse",
		Short: "Page through venues interactively (n: next, p: previous, q: quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			req := b.request()
			crit := req.Criteria
			pager := a.Discover.Pager(req, func() venue.Criteria { return crit }, func(l usecases.Listing) {
				printListing(out, l)
			})
			pager.OnReset = func() { fmt.Fprint(out, "\033[H\033[2J") }
			if err := pager.Load(ctx, req.Page); err != nil {
				return err
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !in.Scan() {
					return in.Err()
				}
				var moved bool
				switch strings.TrimSpace(in.Text()) {
				case "n", "next":
					moved, err = pager.NextPage(ctx)
				case "p", "prev":
					moved, err = pager.PreviousPage(ctx)
				case "q", "quit":
					return nil
				default:
					fmt.Fprintln(out, "n: next page, p: previous page, q: quit")
					continue
				}
				if err != nil {
					fmt.Fprintln(out, "error:", err)
					continue
				}
				if !moved {
					fmt.Fprintln(out, "no more pages in that direction")
				}
			}
		},
	}
	b.bind(c)
	return c
}

func newVenuesShowCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show VENUE_ID",
		Short: "Show a venue with its unavailable dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := f.openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Venues.Venue(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n%s\n", v.Name, v.ID, v.Description)
			fmt.Fprintf(out, "price=%.2f max_guests=%d rating=%.1f\n", v.Price, v.MaxGuests, v.Rating)
			fmt.Fprintf(out, "wifi=%t parking=%t breakfast=%t pets=%t\n", v.Meta.WiFi, v.Meta.Parking, v.Meta.Breakfast, v.Meta.Pets)
			if loc := v.Location; loc.City != "" || loc.Country != "" {
				fmt.Fprintf(out, "location=%s, %s\n", loc.City, loc.Country)
			}
			if booked := booking.BookedDates(v.Bookings); len(booked) > 0 {
				fmt.Fprintf(out, "unavailable=%s\n", strings.Join(booked, ","))
			}
			return nil
		},
	}
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newVenuesCreateCmd(f *rootFlags) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a venue from a JSON payload (venue managers)",
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
			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			v, err := a.Admin.Create(ctx, sess, raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created venue id=%s name=%q\n", v.ID, v.Name)
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "-", "JSON payload path, - for stdin")
	return c
}

func newVenuesUpdateCmd(f *rootFlags) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "update VENUE_ID",
		Short: "Replace a venue's details from a JSON payload (venue managers)",
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
			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			v, err := a.Admin.Update(ctx, sess, args[0], raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated venue id=%s name=%q\n", v.ID, v.Name)
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "-", "JSON payload path, - for stdin")
	return c
}

func newVenuesDeleteCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete VENUE_ID",
		Short: "Delete a venue (venue managers)",
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
			if err := a.Admin.Delete(ctx, sess, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted venue id=%s\n", args[0])
			return nil
		},
	}
}
