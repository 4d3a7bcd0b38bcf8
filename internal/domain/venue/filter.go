package venue

import "strings"

// Result is the outcome of running the filter pipeline over a page.
type Result struct {
	Venues []Venue
	// FellBack is set when no venue had displayable media; Venues is
	// then the raw page with no criteria applied.
	FellBack bool
}

// Filter returns the venues that pass the media gate and every active
// criterion. When none passes the gate the raw page is returned unfiltered. The input slice is never modified and the relative order
// of the survivors is preserved.
func Filter(venues []Venue, c Criteria) []Venue {
	return Apply(venues, c).Venues
}

// Apply is Filter that also reports whether the media-gate fallback fired.
func Apply(venues []Venue, c Criteria) Result {
	base := make([]Venue, 0, len(venues))
	for _, v := range venues {
		if _, ok := v.Cover(); ok {
			base = append(base, v)
		}
	}
	if len(base) == 0 && len(venues) > 0 {
		return Result{Venues: append([]Venue(nil), venues...), FellBack: true}
	}

	var res Result
	preds := c.predicates()
	out := make([]Venue, 0, len(base))
	for _, v := range base {
		if matchAll(v, preds) {
			out = append(out, v)
		}
	}
	res.Venues = out
	return res
}

type predicate func(Venue) bool

// predicates builds the active checks in evaluation order.
func (c Criteria) predicates() []predicate {
	var ps []predicate
	if c.Country != "" {
		country := c.Country
		ps = append(ps, func(v Venue) bool { return v.Location.Country == country })
	}
	if c.Guests > 0 {
		guests := c.Guests
		ps = append(ps, func(v Venue) bool { return v.MaxGuests == guests })
	}
	if c.Rating != nil {
		lo := float64(*c.Rating)
		ps = append(ps, func(v Venue) bool { return v.Rating >= lo && v.Rating < lo+1 })
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		lo, hi := c.MinPrice, c.MaxPrice
		ps = append(ps, func(v Venue) bool {
			if lo != nil && v.Price < *lo {
				return false
			}
			if hi != nil && v.Price > *hi {
				return false
			}
			return true
		})
	}
	if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
		ps = append(ps, func(v Venue) bool { return strings.Contains(strings.ToLower(v.Name), name) })
	}
	if c.WiFi {
		ps = append(ps, func(v Venue) bool { return v.Meta.WiFi })
	}
	if c.Parking {
		ps = append(ps, func(v Venue) bool { return v.Meta.Parking })
	}
	if c.Breakfast {
		ps = append(ps, func(v Venue) bool { return v.Meta.Breakfast })
	}
	if c.Pets {
		ps = append(ps, func(v Venue) bool { return v.Meta.Pets })
	}
	return ps
}

func matchAll(v Venue, ps []predicate) bool {
	for _, p := range ps {
		if !p(v) {
			return false
		}
	}
	return true
}

// Countries lists the distinct countries in a page, in first-seen order.
func Countries(venues []Venue) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range venues {
		c := v.Location.Country
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
