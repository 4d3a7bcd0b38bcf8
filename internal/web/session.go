package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	sessionCookie = "holidaze_session"
	flashCookie   = "holidaze_flash"
)

// SessionManager keeps only an opaque session id in the browser. Tokens and
// profiles live in the state store under that id.
type SessionManager struct {
	sc *securecookie.SecureCookie
}

func NewSessionManager(hashKey, blockKey []byte) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int((30 * 24 * time.Hour).Seconds()))
	return &SessionManager{sc: sc}
}

// ID returns the request's session id, issuing a new one when the cookie
// is missing or does not verify.
func (s *SessionManager) ID(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		value := map[string]string{}
		if err := s.sc.Decode(sessionCookie, c.Value, &value); err == nil && value["sid"] != "" {
			return value["sid"], nil
		}
	}
	sid := uuid.NewString()
	encoded, err := s.sc.Encode(sessionCookie, map[string]string{"sid": sid})
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return sid, nil
}

// Flash is a transient message shown once on the next rendered page.
type Flash struct {
	Kind string // success, error or info
	Text string
}

func (s *SessionManager) SetFlash(w http.ResponseWriter, f Flash) {
	encoded, err := s.sc.Encode(flashCookie, f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending flash, if any.
func (s *SessionManager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	var f Flash
	if err := s.sc.Decode(flashCookie, c.Value, &f); err != nil || f.Text == "" {
		return nil
	}
	return &f
}
