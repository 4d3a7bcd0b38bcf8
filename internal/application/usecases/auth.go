package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/example/holidaze/internal/state"
	"github.com/golang-jwt/jwt/v5"
)

// Auth signs users in against the venue service and keeps their token
// and profile in the state store.
type Auth struct {
	API   AuthAPI
	Store state.Store
	Now   func() time.Time
}

func (a Auth) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a Auth) Login(ctx context.Context, sid, email, password string) (state.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return state.Session{}, internaltypes.Invalid("email", "email is required")
	}
	if password == "" {
		return state.Session{}, internaltypes.Invalid("password", "password is required")
	}
	l, err := a.API.Login(ctx, email, password)
	if err != nil {
		return state.Session{}, err
	}
	sess := state.Session{ID: sid, Token: l.AccessToken, Profile: l.Profile}
	if err := state.Save(ctx, a.Store, sess); err != nil {
		return state.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Register creates the account and signs it in.
func (a Auth) Register(ctx context.Context, sid string, in holidaze.RegisterInput) (state.Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Name == "":
		return state.Session{}, internaltypes.Invalid("name", "name is required")
	case strings.ContainsAny(in.Name, " .-@"):
		return state.Session{}, internaltypes.Invalid("name", "name may only use letters, numbers and underscores")
	case !strings.HasSuffix(strings.ToLower(in.Email), "@stud.noroff.no"):
		return state.Session{}, internaltypes.Invalid("email", "a stud.noroff.no email is required")
	case len(in.Password) < 8:
		return state.Session{}, internaltypes.Invalid("password", "password must be at least 8 characters")
	}
	if _, err := a.API.Register(ctx, in); err != nil {
		return state.Session{}, err
	}
	return a.Login(ctx, sid, in.Email, in.Password)
}

func (a Auth) Logout(ctx context.Context, sid string) error {
	return a.Store.Clear(ctx, sid)
}

// Current restores a session. An expired token is cleared and reported as
// logged out.
func (a Auth) Current(ctx context.Context, sid string) (state.Session, error) {
	sess, err := state.Load(ctx, a.Store, sid)
	if err != nil {
		return state.Session{ID: sid}, err
	}
	if sess.LoggedIn() && TokenExpired(sess.Token, a.now()) {
		if err := a.Store.Clear(ctx, sid); err != nil {
			return state.Session{ID: sid}, err
		}
		return state.Session{ID: sid}, nil
	}
	return sess, nil
}

// TokenExpired reads the exp claim without verifying the signature; the
// venue service owns verification. Tokens that are not JWTs or carry no
// exp never expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// RequireLogin returns ErrUnauthorized for an anonymous session.
func RequireLogin(sess state.Session) error {
	if !sess.LoggedIn() {
		return internaltypes.ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether the service rejected the token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, internaltypes.ErrUnauthorized)
}
