package booking

import (
	"testing"
	"time"

	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d0 = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name             string
		rate             float64
		from, to         time.Time
		adults, children int
		want             float64
	}{
		{"two nights two adults one child", 100, d0, d0.AddDate(0, 0, 2), 2, 1, 540},
		{"unset dates", 100, time.Time{}, time.Time{}, 1, 0, 100},
		{"departure unset", 100, d0, time.Time{}, 3, 2, 100},
		{"partial day rounds up", 100, d0, d0.Add(25 * time.Hour), 1, 0, 200},
		{"children only priced at discount", 50, d0, d0.AddDate(0, 0, 1), 0, 2, 70},
		{"same day is zero nights", 100, d0, d0, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.rate, tt.from, tt.to, tt.adults, tt.children)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNewQuote(t *testing.T) {
	q := NewQuote(100, Stay{From: d0, To: d0.AddDate(0, 0, 3), Adults: 1, Children: 1})
	assert.Equal(t, 3, q.Nights)
	assert.InDelta(t, 70, q.ChildRate, 1e-9)
	assert.InDelta(t, 510, q.Total, 1e-9)
}

func TestValidateGuests(t *testing.T) {
	assert.NoError(t, ValidateGuests(1, 0, 1))
	assert.NoError(t, ValidateGuests(2, 2, 4))

	for _, tc := range []struct{ a, c, limit int }{{0, 2, 4}, {2, 3, 4}, {1, -1, 4}, {5, 0, 4}} {
		err := ValidateGuests(tc.a, tc.c, tc.limit)
		require.Error(t, err, "%+v", tc)
		assert.Equal(t, internaltypes.KindValidation, internaltypes.Classify(err))
	}
}

func TestValidateDates(t *testing.T) {
	today := d0.Add(15 * time.Hour)

	assert.NoError(t, ValidateDates(today, d0, d0), "today to today")
	assert.NoError(t, ValidateDates(today, d0.AddDate(0, 0, 1), d0.AddDate(0, 0, 4)))

	assert.Error(t, ValidateDates(today, time.Time{}, d0))
	assert.Error(t, ValidateDates(today, d0, time.Time{}))
	assert.Error(t, ValidateDates(today, d0.AddDate(0, 0, -1), d0), "arrival in the past")
	assert.Error(t, ValidateDates(today, d0.AddDate(0, 0, 3), d0.AddDate(0, 0, 2)), "departure before arrival")
}

func TestOverlaps(t *testing.T) {
	existing := []venue.Booking{
		{ID: "b1", DateFrom: d0.AddDate(0, 0, 5), DateTo: d0.AddDate(0, 0, 7)},
	}
	_, ok := Overlaps(existing, d0, d0.AddDate(0, 0, 4))
	assert.False(t, ok)

	b, ok := Overlaps(existing, d0.AddDate(0, 0, 6), d0.AddDate(0, 0, 9))
	assert.True(t, ok)
	assert.Equal(t, "b1", b.ID)

	_, ok = Overlaps(existing, d0.AddDate(0, 0, 7), d0.AddDate(0, 0, 7))
	assert.True(t, ok, "touching the last booked day")
}

func TestBookedDates(t *testing.T) {
	existing := []venue.Booking{
		{DateFrom: d0, DateTo: d0.AddDate(0, 0, 1)},
		{DateFrom: d0.AddDate(0, 0, 1), DateTo: d0.AddDate(0, 0, 2)},
	}
	assert.Equal(t, []string{"2030-06-01", "2030-06-02", "2030-06-03"}, BookedDates(existing))
}

func TestStayValidate(t *testing.T) {
	v := venue.Venue{ID: "v1", MaxGuests: 3, Bookings: []venue.Booking{
		{DateFrom: d0.AddDate(0, 0, 10), DateTo: d0.AddDate(0, 0, 12)},
	}}
	ok := Stay{From: d0.AddDate(0, 0, 1), To: d0.AddDate(0, 0, 3), Adults: 2, Children: 1}
	assert.NoError(t, ok.Validate(d0, v))

	tooMany := ok
	tooMany.Children = 2
	assert.Error(t, tooMany.Validate(d0, v))

	clash := ok
	clash.From, clash.To = d0.AddDate(0, 0, 11), d0.AddDate(0, 0, 13)
	err := clash.Validate(d0, v)
	var ve *internaltypes.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dateFrom", ve.Field)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("dateFrom", "")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseDate("dateFrom", "2030-06-01")
	require.NoError(t, err)
	assert.Equal(t, d0, got)

	_, err = ParseDate("dateFrom", "01/06/2030")
	assert.Error(t, err)
}
