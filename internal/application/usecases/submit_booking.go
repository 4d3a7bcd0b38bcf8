package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/holidaze/internal/domain/booking"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/example/holidaze/internal/notify"
	"github.com/example/holidaze/internal/state"
)

type BookingRequest struct {
	Venue venue.Venue
	Stay  booking.Stay
}

type Confirmation struct {
	Booking venue.Booking
	Quote   booking.Quote
}

// SubmitBooking validates a stay, submits it and tells observers about it.
type SubmitBooking struct {
	API       BookingAPI
	Publisher Publisher
	Now       func() time.Time
}

func (u SubmitBooking) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// Execute returns a *internaltypes.ValidationError without calling the
// service when the stay is invalid, *internaltypes.AlreadyBookedError on
// 409 and *internaltypes.RequestFailedError for other failures.
func (u SubmitBooking) Execute(ctx context.Context, sess state.Session, req BookingRequest) (Confirmation, error) {
	if u.API == nil {
		return Confirmation{}, fmt.Errorf("booking api is nil")
	}
	if !sess.LoggedIn() {
		return Confirmation{}, internaltypes.ErrUnauthorized
	}
	if req.Venue.ID == "" {
		return Confirmation{}, internaltypes.Invalid("venueId", "no venue selected")
	}
	if err := req.Stay.Validate(u.now(), req.Venue); err != nil {
		return Confirmation{}, err
	}

	b, err := u.API.CreateBooking(ctx, sess.Token, holidaze.BookingInput{
		DateFrom: req.Stay.From,
		DateTo:   req.Stay.To,
		Guests:   req.Stay.Guests(),
		VenueID:  req.Venue.ID,
	})
	if err != nil {
		return Confirmation{}, err
	}

	q := booking.NewQuote(req.Venue.Price, req.Stay)
	if u.Publisher != nil {
		u.Publisher.Publish(ctx, notify.BookingCreated{
			Booking:  b,
			VenueID:  req.Venue.ID,
			Customer: sess.Profile.Name,
			Total:    q.Total,
			At:       u.now().UTC(),
		})
	}
	return Confirmation{Booking: b, Quote: q}, nil
}

// QuoteStay prices a stay for display. Dates are only checked once both are set.
func QuoteStay(now time.Time, v venue.Venue, s booking.Stay) (booking.Quote, error) {
	if err := booking.ValidateGuests(s.Adults, s.Children, v.MaxGuests); err != nil {
		return booking.Quote{}, err
	}
	if !s.From.IsZero() && !s.To.IsZero() {
		if err := booking.ValidateDates(now, s.From, s.To); err != nil {
			return booking.Quote{}, err
		}
	}
	return booking.NewQuote(v.Price, s), nil
}
