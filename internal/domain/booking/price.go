package booking

import (
	"math"
	"time"
)

// ChildDiscount is the fraction taken off the nightly rate for each child.
const ChildDiscount = 0.3

const day = 24 * time.Hour

// Nights returns the stay length in whole nights, rounding partial days up.
// It is zero when either date is unset.
func Nights(arrival, departure time.Time) int {
	if arrival.IsZero() || departure.IsZero() {
		return 0
	}
	return int(math.Ceil(float64(departure.Sub(arrival)) / float64(day)))
}

// ComputeTotal prices a stay. Adults pay nightlyRate, children pay
// nightlyRate*(1-ChildDiscount). With either date unset the total is a
// single nightlyRate. Dates are assumed ordered; validate them first.
func ComputeTotal(nightlyRate float64, arrival, departure time.Time, adults, children int) float64 {
	if arrival.IsZero() || departure.IsZero() {
		return nightlyRate
	}
	child := nightlyRate * (1 - ChildDiscount)
	perNight := float64(adults)*nightlyRate + float64(children)*child
	return float64(Nights(arrival, departure)) * perNight
}

// Quote is a priced stay ready for display.
type Quote struct {
	Nights    int
	AdultRate float64
	ChildRate float64
	Adults    int
	Children  int
	Total     float64
}

func NewQuote(nightlyRate float64, s Stay) Quote {
	return Quote{
		Nights:    Nights(s.From, s.To),
		AdultRate: nightlyRate,
		ChildRate: nightlyRate * (1 - ChildDiscount),
		Adults:    s.Adults,
		Children:  s.Children,
		Total:     ComputeTotal(nightlyRate, s.From, s.To, s.Adults, s.Children),
	}
}
