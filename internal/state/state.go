// Package state persists the signed-in client's access token and profile.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/internaltypes"
)

// Fixed keys under which a session is persisted.
const (
	KeyAccessToken = "accessToken"
	KeyProfile     = "profile"
)

// Store is a namespaced key/value store. Get returns
// internaltypes.ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, sid, key string) (string, error)
	Set(ctx context.Context, sid, key, value string) error
	Clear(ctx context.Context, sid string) error
}

// Session is the persisted client state of one browser or CLI user.
type Session struct {
	ID      string
	Token   string
	Profile venue.Profile
}

func (s Session) LoggedIn() bool { return s.Token != "" }

// Load reads a session. A session with nothing stored is returned empty.
func Load(ctx context.Context, st Store, sid string) (Session, error) {
	sess := Session{ID: sid}
	tok, err := st.Get(ctx, sid, KeyAccessToken)
	switch {
	case errors.Is(err, internaltypes.ErrNotFound):
		return sess, nil
	case err != nil:
		return sess, fmt.Errorf("load token: %w", err)
	}
	sess.Token = tok

	raw, err := st.Get(ctx, sid, KeyProfile)
	switch {
	case errors.Is(err, internaltypes.ErrNotFound):
		return sess, nil
	case err != nil:
		return sess, fmt.Errorf("load profile: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &sess.Profile); err != nil {
		return sess, fmt.Errorf("decode profile: %w", err)
	}
	return sess, nil
}

// Save writes token and profile under the fixed keys.
func Save(ctx context.Context, st Store, s Session) error {
	b, err := json.Marshal(s.Profile)
	if err != nil {
		return err
	}
	if err := st.Set(ctx, s.ID, KeyAccessToken, s.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := st.Set(ctx, s.ID, KeyProfile, string(b)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Sealer encrypts values at rest.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Sealed wraps a Store so the access token never reaches it in clear text.
type Sealed struct {
	Store  Store
	Sealer Sealer
}

func (s Sealed) Get(ctx context.Context, sid, key string) (string, error) {
	v, err := s.Store.Get(ctx, sid, key)
	if err != nil || key != KeyAccessToken || v == "" {
		return v, err
	}
	return s.Sealer.Open(v)
}

func (s Sealed) Set(ctx context.Context, sid, key, value string) error {
	if key == KeyAccessToken && value != "" {
		sealed, err := s.Sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return s.Store.Set(ctx, sid, key, value)
}

func (s Sealed) Clear(ctx context.Context, sid string) error {
	return s.Store.Clear(ctx, sid)
}
