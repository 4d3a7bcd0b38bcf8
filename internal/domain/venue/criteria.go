package venue

import (
	"net/url"
	"strconv"
	"strings"
)

// Criteria is the set of user-chosen filters applied to a fetched page.
// Use zero-values to omit a filter.
type Criteria struct {
	Country string // exact match
	// Guests matches venues whose MaxGuests is EXACTLY this value, not "at least".
	Guests   int
	Rating   *int     // bucket floor: matches Rating in [r, r+1)
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
	Name     string   // case-insensitive substring

	WiFi      bool
	Parking   bool
	Breakfast bool
	Pets      bool
}

// Active reports whether any predicate is switched on.
func (c Criteria) Active() bool {
	return c.Country != "" || c.Guests > 0 || c.Rating != nil ||
		c.MinPrice != nil || c.MaxPrice != nil || strings.TrimSpace(c.Name) != "" ||
		c.WiFi || c.Parking || c.Breakfast || c.Pets
}

// Values encodes the criteria as query arguments.
func (c Criteria) Values() url.Values {
	q := url.Values{}
	if c.Country != "" {
		q.Set("country", c.Country)
	}
	if c.Guests > 0 {
		q.Set("guests", strconv.Itoa(c.Guests))
	}
	if c.Rating != nil {
		q.Set("rating", strconv.Itoa(*c.Rating))
	}
	if c.MinPrice != nil {
		q.Set("min_price", ftoa(*c.MinPrice))
	}
	if c.MaxPrice != nil {
		q.Set("max_price", ftoa(*c.MaxPrice))
	}
	if c.Name != "" {
		q.Set("q", c.Name)
	}
	for name, on := range map[string]bool{"wifi": c.WiFi, "parking": c.Parking, "breakfast": c.Breakfast, "pets": c.Pets} {
		if on {
			q.Set(name, "1")
		}
	}
	return q
}

// CriteriaFromValues parses query arguments produced by Values or a search form.
// Malformed numbers are treated as an unset filter.
func CriteriaFromValues(q url.Values) Criteria {
	c := Criteria{
		Country:   strings.TrimSpace(q.Get("country")),
		Name:      strings.TrimSpace(q.Get("q")),
		WiFi:      flag(q.Get("wifi")),
		Parking:   flag(q.Get("parking")),
		Breakfast: flag(q.Get("breakfast")),
		Pets:      flag(q.Get("pets")),
	}
	if n, err := strconv.Atoi(q.Get("guests")); err == nil && n > 0 {
		c.Guests = n
	}
	if n, err := strconv.Atoi(q.Get("rating")); err == nil && n >= 0 && n <= 5 {
		c.Rating = &n
	}
	if f, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil && f >= 0 {
		c.MinPrice = &f
	}
	if f, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil && f >= 0 {
		c.MaxPrice = &f
	}
	return c
}

func flag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
