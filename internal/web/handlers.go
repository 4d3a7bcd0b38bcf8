package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/holidaze/internal/application/usecases"
	"github.com/example/holidaze/internal/domain/booking"
	"github.com/example/holidaze/internal/domain/paging"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/holidaze"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/gorilla/mux"
)

var sortOptions = []string{"created", "name", "price", "rating", "maxGuests"}

func money(f float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.2f", f), ".00")
}

func statusFor(err error) int {
	switch internaltypes.Classify(err) {
	case internaltypes.KindValidation:
		return http.StatusUnprocessableEntity
	case internaltypes.KindConflict:
		return http.StatusConflict
	case internaltypes.KindUnauthorized:
		return http.StatusUnauthorized
	case internaltypes.KindNotFound:
		return http.StatusNotFound
	case internaltypes.KindNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorFlash(err error) *Flash {
	return &Flash{Kind: "error", Text: internaltypes.UserMessage(err)}
}

func atoi(s string, d int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return d
	}
	return n
}

func firstValues(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k := range q {
		out[k] = q.Get(k)
	}
	return out
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode() + "#top"
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := usecases.BrowseRequest{
		Page:     atoi(q.Get("page"), 1),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Search:   q.Get("search"),
		Criteria: venue.CriteriaFromValues(q),
	}
	data := tmplData{Title: "Venues", Sorts: sortOptions, Form: firstValues(q)}

	l, err := s.Discover.Execute(r.Context(), req)
	status := http.StatusOK
	if err != nil {
		s.Log.Warn("list venues", "error", err)
		data.Flash = errorFlash(err)
		status = statusFor(err)
		l = usecases.Listing{Page: paging.State{Current: 1}, Search: req.Search, Criteria: req.Criteria}
	}
	data.Listing = l
	if l.Page.HasPrev() {
		data.PrevURL = pageURL(r.URL, l.Page.Current-1)
	}
	if l.Page.HasNext() {
		data.NextURL = pageURL(r.URL, l.Page.Current+1)
	}
	s.render(w, r, status, "templates/venues.html", data)
}

// stayForm holds the booking form as typed, re-renderable values.
type stayForm struct {
	From     string
	To       string
	Adults   int
	Children int
}

func readStayForm(r *http.Request) (stayForm, booking.Stay, error) {
	if err := r.ParseForm(); err != nil {
		return stayForm{Adults: 1}, booking.Stay{}, internaltypes.Invalid("", "could not read the form")
	}
	f := stayForm{
		From:     strings.TrimSpace(r.PostFormValue("date_from")),
		To:       strings.TrimSpace(r.PostFormValue("date_to")),
		Adults:   atoi(r.PostFormValue("adults"), 1),
		Children: atoi(r.PostFormValue("children"), 0),
	}
	from, err := booking.ParseDate("dateFrom", f.From)
	if err != nil {
		return f, booking.Stay{}, err
	}
	to, err := booking.ParseDate("dateTo", f.To)
	if err != nil {
		return f, booking.Stay{}, err
	}
	return f, booking.Stay{From: from, To: to, Adults: f.Adults, Children: f.Children}, nil
}

func (s *Server) loadVenue(w http.ResponseWriter, r *http.Request) (venue.Venue, bool) {
	v, err := s.Venues.Venue(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.render(w, r, statusFor(err), "templates/venue.html", tmplData{Title: "Venue", Flash: errorFlash(err)})
		return venue.Venue{}, false
	}
	return v, true
}

func (s *Server) venuePage(v venue.Venue, f stayForm) tmplData {
	return tmplData{
		Title:  v.Name,
		Venue:  v,
		Booked: booking.BookedDates(v.Bookings),
		Stay:   f,
	}
}

func (s *Server) handleVenue(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadVenue(w, r)
	if !ok {
		return
	}
	data := s.venuePage(v, stayForm{Adults: 1})
	if q, err := usecases.QuoteStay(s.now(), v, booking.Stay{Adults: 1}); err == nil {
		data.Quote = &q
	}
	s.render(w, r, http.StatusOK, "templates/venue.html", data)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadVenue(w, r)
	if !ok {
		return
	}
	f, stay, err := readStayForm(r)
	data := s.venuePage(v, f)
	if err == nil {
		var q booking.Quote
		if q, err = usecases.QuoteStay(s.now(), v, stay); err == nil {
			data.Quote = &q
		}
	}
	if err != nil {
		data.Flash = errorFlash(err)
		s.render(w, r, statusFor(err), "templates/venue.html", data)
		return
	}
	s.render(w, r, http.StatusOK, "templates/venue.html", data)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadVenue(w, r)
	if !ok {
		return
	}
	sess := sessionFrom(r.Context())
	f, stay, err := readStayForm(r)
	var conf usecases.Confirmation
	if err == nil {
		conf, err = s.Book.Execute(r.Context(), sess, usecases.BookingRequest{Venue: v, Stay: stay})
	}
	if err != nil {
		if usecases.IsUnauthorized(err) {
			_ = s.Auth.Logout(r.Context(), sess.ID)
			s.Sessions.SetFlash(w, Flash{Kind: "info", Text: "Your session has expired. Please log in again."})
			http.Redirect(w, r, "/login?next="+url.QueryEscape("/venues/"+v.ID), http.StatusSeeOther)
			return
		}
		s.Log.Info("booking rejected", "venue", v.ID, "kind", internaltypes.Classify(err).String(), "error", err)
		data := s.venuePage(v, f)
		data.Flash = errorFlash(err)
		s.render(w, r, statusFor(err), "templates/venue.html", data)
		return
	}

	s.Log.Info("booking created", "venue", v.ID, "booking", conf.Booking.ID, "nights", conf.Quote.Nights)
	s.Sessions.SetFlash(w, Flash{Kind: "success", Text: fmt.Sprintf(
		"Booked %s for %d night(s). Total %s NOK.", v.Name, conf.Quote.Nights, money(conf.Quote.Total))})
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := localPath(r.URL.Query().Get("next"))
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "templates/login.html", tmplData{Title: "Log in", Next: next})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if n := r.PostFormValue("next"); n != "" {
		next = localPath(n)
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	sess, err := s.Auth.Login(r.Context(), sessionFrom(r.Context()).ID, email, r.PostFormValue("password"))
	if err != nil {
		s.render(w, r, statusFor(err), "templates/login.html", tmplData{
			Title: "Log in",
			Flash: errorFlash(err),
			Form:  map[string]string{"email": email},
			Next:  next,
		})
		return
	}
	s.Sessions.SetFlash(w, Flash{Kind: "success", Text: "Welcome back, " + sess.Profile.Name + "!"})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "templates/register.html", tmplData{Title: "Register"})
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := holidaze.RegisterInput{
		Name:         r.PostFormValue("name"),
		Email:        r.PostFormValue("email"),
		Password:     r.PostFormValue("password"),
		VenueManager: r.PostFormValue("venue_manager") != "",
	}
	sess, err := s.Auth.Register(r.Context(), sessionFrom(r.Context()).ID, in)
	if err != nil {
		s.render(w, r, statusFor(err), "templates/register.html", tmplData{
			Title: "Register",
			Flash: errorFlash(err),
			Form:  map[string]string{"name": in.Name, "email": in.Email},
		})
		return
	}
	s.Sessions.SetFlash(w, Flash{Kind: "success", Text: "Welcome to Holidaze, " + sess.Profile.Name + "!"})
	http.Redirect(w, r, "/venues", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context(), sessionFrom(r.Context()).ID); err != nil {
		s.Log.Warn("logout", "error", err)
	}
	s.Sessions.SetFlash(w, Flash{Kind: "info", Text: "You are logged out."})
	http.Redirect(w, r, "/venues", http.StatusSeeOther)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	data := tmplData{Title: "My bookings"}
	view, err := s.Bookings.Execute(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.Log.Warn("profile bookings", "error", err)
		data.Flash = errorFlash(err)
	}
	data.Bookings = view
	s.render(w, r, http.StatusOK, "templates/profile.html", data)
}
