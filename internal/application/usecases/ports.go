package usecases

import (
	"context"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/notify"
)

// The venue service as seen by each use case. *holidaze.Client satisfies all of them.
type (
	BookingAPI interface {
		CreateBooking(ctx context.Context, token string, in holidaze.BookingInput) (venue.Booking, error)
		ProfileBookings(ctx context.Context, token, name string) ([]venue.Booking, error)
	}

	AuthAPI interface {
		Login(ctx context.Context, email, password string) (holidaze.Login, error)
		Register(ctx context.Context, in holidaze.RegisterInput) (venue.Profile, error)
	}

	VenueAPI interface {
		CreateVenue(ctx context.Context, token string, in holidaze.VenueInput) (venue.Venue, error)
		UpdateVenue(ctx context.Context, token, id string, in holidaze.VenueInput) (venue.Venue, error)
		DeleteVenue(ctx context.Context, token, id string) error
	}

	// Publisher receives successful bookings; *notify.Hub implements it.
	Publisher interface {
		Publish(ctx context.Context, ev notify.BookingCreated)
	}

	// Invalidator drops cached venue data after a change.
	Invalidator interface {
		Invalidate(ctx context.Context) error
	}
)
