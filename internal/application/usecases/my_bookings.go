package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/state"
)

// MyBookings lists the signed-in profile's bookings, upcoming first.
type MyBookings struct {
	API BookingAPI
	Now func() time.Time
}

type BookingsView struct {
	Upcoming []venue.Booking
	Past     []venue.Booking
}

func (u MyBookings) Execute(ctx context.Context, sess state.Session) (BookingsView, error) {
	if err := RequireLogin(sess); err != nil {
		return BookingsView{}, err
	}
	bs, err := u.API.ProfileBookings(ctx, sess.Token, sess.Profile.Name)
	if err != nil {
		return BookingsView{}, err
	}
	now := time.Now()
	if u.Now != nil {
		now = u.Now()
	}
	var view BookingsView
	for _, b := range bs {
		if b.DateTo.Before(now) {
			view.Past = append(view.Past, b)
		} else {
			view.Upcoming = append(view.Upcoming, b)
		}
	}
	sort.SliceStable(view.Upcoming, func(i, j int) bool { return view.Upcoming[i].DateFrom.Before(view.Upcoming[j].DateFrom) })
	sort.SliceStable(view.Past, func(i, j int) bool { return view.Past[i].DateFrom.After(view.Past[j].DateFrom) })
	return view, nil
}
