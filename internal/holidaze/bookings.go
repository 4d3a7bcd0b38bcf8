package holidaze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/internaltypes"
)

type BookingInput struct {
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	VenueID  string    `json:"venueId"`
}

// CreateBooking submits a booking. A 409 from the service is returned as
// *internaltypes.AlreadyBookedError; every other failure is a
// *internaltypes.RequestFailedError.
func (c *Client) CreateBooking(ctx context.Context, token string, in BookingInput) (venue.Booking, error) {
	r := request{op: "create booking", method: http.MethodPost, path: "/holidaze/bookings", token: token, body: in}
	status, body, err := c.do(ctx, r)
	if err != nil {
		return venue.Booking{}, err
	}
	if status == http.StatusConflict {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return venue.Booking{}, &internaltypes.AlreadyBookedError{VenueID: in.VenueID, Messages: eb.messages()}
	}
	if status < 200 || status >= 300 {
		return venue.Booking{}, failure(r.op, status, body)
	}
	var env envelope[venue.Booking]
	if err := json.Unmarshal(body, &env); err != nil {
		return venue.Booking{}, &internaltypes.RequestFailedError{Op: r.op, Status: status, Err: err}
	}
	return env.Data, nil
}

// ProfileBookings lists the bookings made by the named profile, venues expanded.
func (c *Client) ProfileBookings(ctx context.Context, token, name string) ([]venue.Booking, error) {
	var bs []venue.Booking
	_, err := call(ctx, c, request{
		op:     "profile bookings",
		method: http.MethodGet,
		path:   "/holidaze/profiles/" + url.PathEscape(name) + "/bookings",
		token:  token,
		query:  url.Values{"_venue": {"true"}},
	}, &bs)
	return bs, err
}
