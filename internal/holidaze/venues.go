package holidaze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/internaltypes"
)

// VenueInput is the create/update payload for a venue.
type VenueInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Media       []venue.Media   `json:"media,omitempty"`
	Price       float64         `json:"price"`
	MaxGuests   int             `json:"maxGuests"`
	Rating      *float64        `json:"rating,omitempty"`
	Meta        *venue.Meta     `json:"meta,omitempty"`
	Location    *venue.Location `json:"location,omitempty"`
}

func listValues(q venue.ListQuery) url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", itoa(q.Page))
	v.Set("limit", itoa(q.Limit))
	v.Set("sort", q.Sort)
	v.Set("sortOrder", q.SortOrder)
	if q.WithBookings {
		v.Set("_bookings", "true")
	}
	return v
}

func decodeMeta(op string, raw json.RawMessage, q venue.ListQuery) (venue.PageMeta, error) {
	var m venue.PageMeta
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return m, &internaltypes.RequestFailedError{Op: op, Err: err}
		}
	}
	if m.CurrentPage == 0 {
		m.CurrentPage = q.Normalize().Page
	}
	return m, nil
}

// ListVenues fetches one page of venues.
func (c *Client) ListVenues(ctx context.Context, q venue.ListQuery) (venue.Page, error) {
	var vs []venue.Venue
	r := request{op: "list venues", method: http.MethodGet, path: "/holidaze/venues", query: listValues(q)}
	raw, err := call(ctx, c, r, &vs)
	if err != nil {
		return venue.Page{}, err
	}
	meta, err := decodeMeta(r.op, raw, q)
	if err != nil {
		return venue.Page{}, err
	}
	return venue.Page{Venues: vs, Meta: meta}, nil
}

// SearchVenues runs the service-side text search over name and description.
func (c *Client) SearchVenues(ctx context.Context, text string, q venue.ListQuery) (venue.Page, error) {
	var vs []venue.Venue
	v := listValues(q)
	v.Set("q", text)
	r := request{op: "search venues", method: http.MethodGet, path: "/holidaze/venues/search", query: v}
	raw, err := call(ctx, c, r, &vs)
	if err != nil {
		return venue.Page{}, err
	}
	meta, err := decodeMeta(r.op, raw, q)
	if err != nil {
		return venue.Page{}, err
	}
	return venue.Page{Venues: vs, Meta: meta}, nil
}

// GetVenue fetches a venue with its bookings and owner expanded.
func (c *Client) GetVenue(ctx context.Context, id string) (venue.Venue, error) {
	var v venue.Venue
	_, err := call(ctx, c, request{
		op:     "get venue",
		method: http.MethodGet,
		path:   "/holidaze/venues/" + url.PathEscape(id),
		query:  url.Values{"_bookings": {"true"}, "_owner": {"true"}},
	}, &v)
	return v, err
}

func (c *Client) CreateVenue(ctx context.Context, token string, in VenueInput) (venue.Venue, error) {
	var v venue.Venue
	_, err := call(ctx, c, request{op: "create venue", method: http.MethodPost, path: "/holidaze/venues", token: token, body: in}, &v)
	return v, err
}

func (c *Client) UpdateVenue(ctx context.Context, token, id string, in VenueInput) (venue.Venue, error) {
	var v venue.Venue
	_, err := call(ctx, c, request{
		op:     "update venue",
		method: http.MethodPut,
		path:   "/holidaze/venues/" + url.PathEscape(id),
		token:  token,
		body:   in,
	}, &v)
	return v, err
}

func (c *Client) DeleteVenue(ctx context.Context, token, id string) error {
	_, err := call[struct{}](ctx, c, request{
		op:     "delete venue",
		method: http.MethodDelete,
		path:   "/holidaze/venues/" + url.PathEscape(id),
		token:  token,
	}, nil)
	return err
}
