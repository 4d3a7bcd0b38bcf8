package booking

import (
	"time"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/internaltypes"
)

// DateLayout is the form/CLI date format.
const DateLayout = "2006-01-02"

// Stay is the guest's selection on the booking form.
type Stay struct {
	From     time.Time
	To       time.Time
	Adults   int
	Children int
}

func (s Stay) Guests() int { return s.Adults + s.Children }

// ValidateGuests enforces at least one adult and a party within the venue's capacity.
func ValidateGuests(adults, children, maxGuests int) error {
	if adults < 1 {
		return internaltypes.Invalid("adults", "at least one adult is required")
	}
	if children < 0 {
		return internaltypes.Invalid("children", "children cannot be negative")
	}
	total := adults + children
	if total < 1 {
		return internaltypes.Invalid("guests", "at least one guest is required")
	}
	if total > maxGuests {
		return internaltypes.Invalid("guests", "this venue allows at most %d guests", maxGuests)
	}
	return nil
}

// ValidateDates requires both dates to be set, no earlier than today, and
// departure not before arrival. Comparison is at calendar-day granularity.
func ValidateDates(today, from, to time.Time) error {
	if from.IsZero() {
		return internaltypes.Invalid("dateFrom", "choose an arrival date")
	}
	if to.IsZero() {
		return internaltypes.Invalid("dateTo", "choose a departure date")
	}
	t := startOfDay(today)
	if startOfDay(from).Before(t) {
		return internaltypes.Invalid("dateFrom", "arrival cannot be in the past")
	}
	if startOfDay(to).Before(t) {
		return internaltypes.Invalid("dateTo", "departure cannot be in the past")
	}
	if to.Before(from) {
		return internaltypes.Invalid("dateTo", "departure cannot be before arrival")
	}
	return nil
}

// Validate checks a stay against a venue: guests, dates and existing bookings.
func (s Stay) Validate(today time.Time, v venue.Venue) error {
	if err := ValidateGuests(s.Adults, s.Children, v.MaxGuests); err != nil {
		return err
	}
	if err := ValidateDates(today, s.From, s.To); err != nil {
		return err
	}
	if b, ok := Overlaps(v.Bookings, s.From, s.To); ok {
		return internaltypes.Invalid("dateFrom", "the venue is booked from %s to %s",
			b.DateFrom.Format(DateLayout), b.DateTo.Format(DateLayout))
	}
	return nil
}

// Overlaps returns the first existing booking whose days intersect [from, to].
func Overlaps(existing []venue.Booking, from, to time.Time) (venue.Booking, bool) {
	f, t := startOfDay(from), startOfDay(to)
	for _, b := range existing {
		bf, bt := startOfDay(b.DateFrom), startOfDay(b.DateTo)
		if !f.After(bt) && !bf.After(t) {
			return b, true
		}
	}
	return venue.Booking{}, false
}

// BookedDates expands existing bookings into the set of unavailable days.
func BookedDates(existing []venue.Booking) []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range existing {
		for d := startOfDay(b.DateFrom); !d.After(startOfDay(b.DateTo)); d = d.AddDate(0, 0, 1) {
			k := d.Format(DateLayout)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// ParseDate accepts DateLayout; an empty string is the unset (zero) date.
func ParseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, internaltypes.Invalid(field, "use the format YYYY-MM-DD")
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
