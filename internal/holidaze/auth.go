package holidaze

import (
	"context"
	"net/http"

	"github.com/example/holidaze/internal/domain/venue"
)

// Login is the profile returned by /auth/login together with its access token.
type Login struct {
	venue.Profile
	AccessToken string `json:"accessToken"`
}

type RegisterInput struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	Bio          string       `json:"bio,omitempty"`
	Avatar       *venue.Media `json:"avatar,omitempty"`
	VenueManager bool         `json:"venueManager"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Login, error) {
	var l Login
	_, err := call(ctx, c, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &l)
	return l, err
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (venue.Profile, error) {
	var p venue.Profile
	_, err := call(ctx, c, request{op: "register", method: http.MethodPost, path: "/auth/register", body: in}, &p)
	return p, err
}
