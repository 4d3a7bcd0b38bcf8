package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	iofs "io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/holidaze/internal/application/usecases"
	"github.com/example/holidaze/internal/discovery"
	"github.com/example/holidaze/internal/domain/booking"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/state"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html static/*
var fs embed.FS

type Server struct {
	Auth     usecases.Auth
	Discover usecases.Discover
	Book     usecases.SubmitBooking
	Bookings usecases.MyBookings
	Venues   *discovery.Repository

	Sessions *SessionManager
	Registry *prometheus.Registry
	Log      *slog.Logger
	BaseURL  string
	Now      func() time.Time

	pages map[string]*template.Template
}

type tmplData struct {
	Title string
	User  *venue.Profile
	Flash *Flash

	Listing  usecases.Listing
	PrevURL  string
	NextURL  string
	Sorts    []string
	Venue    venue.Venue
	Booked   []string
	Stay     stayForm
	Quote    *booking.Quote
	Bookings usecases.BookingsView
	Form     map[string]string
	Next     string
}

type ctxKey int

const sessionKey ctxKey = iota

func sessionFrom(ctx context.Context) state.Session {
	sess, _ := ctx.Value(sessionKey).(state.Session)
	return sess
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Routes() (http.Handler, error) {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	s.Log = s.Log.With("component", "web")
	parsed, err := parsePages()
	if err != nil {
		return nil, err
	}
	s.pages = parsed
	m, err := newMetrics(s.Registry)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(m.monitor(s.Log))

	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(fs)))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	if s.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	pages := r.PathPrefix("/").Subrouter()
	pages.Use(s.withSession)
	pages.Handle("/", http.RedirectHandler("/venues", http.StatusFound)).Methods(http.MethodGet)
	pages.HandleFunc("/venues", s.handleVenues).Methods(http.MethodGet)
	pages.HandleFunc("/venues/{id}", s.handleVenue).Methods(http.MethodGet)
	pages.HandleFunc("/venues/{id}/quote", s.handleQuote).Methods(http.MethodPost)
	pages.HandleFunc("/venues/{id}/book", s.requireAuth(s.handleBook)).Methods(http.MethodPost)
	pages.HandleFunc("/login", s.handleLogin).Methods(http.MethodGet, http.MethodPost)
	pages.HandleFunc("/register", s.handleRegister).Methods(http.MethodGet, http.MethodPost)
	pages.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	pages.HandleFunc("/profile", s.requireAuth(s.handleProfile)).Methods(http.MethodGet)

	h := handlers.CompressHandler(r)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return h, nil
}

// withSession resolves the cookie's session id and restores its state.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.Sessions.ID(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sess, err := s.Auth.Current(r.Context(), sid)
		if err != nil {
			s.Log.Warn("restore session", "error", err)
			sess = state.Session{ID: sid}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).LoggedIn() {
			s.Sessions.SetFlash(w, Flash{Kind: "info", Text: "Please log in to continue."})
			target := r.URL.Path
			if r.Method != http.MethodGet {
				target = r.Referer()
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(localPath(target)), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// localPath strips scheme and host so redirects never leave the site.
func localPath(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/venues"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// parsePages pairs every page template with base.html, keyed by path.
func parsePages() (map[string]*template.Template, error) {
	names, err := iofs.Glob(fs, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == "templates/base.html" {
			continue
		}
		t, err := template.New("").Funcs(funcs).ParseFS(fs, "templates/base.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data tmplData) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "template not found: "+name, http.StatusInternalServerError)
		return
	}
	if sess := sessionFrom(r.Context()); sess.LoggedIn() {
		p := sess.Profile
		data.User = &p
	}
	if data.Flash == nil {
		data.Flash = s.Sessions.PopFlash(w, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Log.Error("render", "template", name, "error", err)
	}
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(booking.DateLayout)
	},
	"money":   money,
	"ratings": func() []string { return []string{"0", "1", "2", "3", "4", "5"} },
	"cover": func(v venue.Venue) venue.Media {
		m, _ := v.Cover()
		return m
	},
}

func Start(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
