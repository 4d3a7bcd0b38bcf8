package venue

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pic() []Media { return []Media{{URL: "https://img.example/a.jpg", Alt: "front"}} }

func intp(i int) *int           { return &i }
func floatp(f float64) *float64 { return &f }

func ids(vs []Venue) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func sample() []Venue {
	return []Venue{
		{ID: "a", Name: "Fjord Cabin", Media: pic(), Price: 120, MaxGuests: 4, Rating: 4.5,
			Location: Location{Country: "Norway"}, Meta: Meta{WiFi: true, Parking: true}},
		{ID: "b", Name: "City Loft", Media: pic(), Price: 80, MaxGuests: 2, Rating: 3,
			Location: Location{Country: "Sweden"}, Meta: Meta{WiFi: true}},
		{ID: "c", Name: "No Pictures", Price: 50, MaxGuests: 4, Rating: 4,
			Location: Location{Country: "Norway"}},
		{ID: "d", Name: "Alt-less", Media: []Media{{URL: "https://img.example/d.jpg"}}, Price: 60, MaxGuests: 4,
			Location: Location{Country: "Norway"}},
		{ID: "e", Name: "fjord house", Media: pic(), Price: 200, MaxGuests: 6, Rating: 4,
			Location: Location{Country: "Norway"}, Meta: Meta{Breakfast: true, Pets: true}},
	}
}

func TestFilter_EmptyCriteriaKeepsOnlyDescribedMedia(t *testing.T) {
	got := Filter(sample(), Criteria{})
	assert.Equal(t, []string{"a", "b", "e"}, ids(got))
}

func TestFilter_SingleVenue(t *testing.T) {
	withMedia := Venue{ID: "x", Media: pic()}
	assert.Equal(t, []string{"x"}, ids(Filter([]Venue{withMedia}, Criteria{})))

	bare := Venue{ID: "y"}
	res := Apply([]Venue{bare}, Criteria{})
	assert.True(t, res.FellBack)
	assert.Equal(t, []string{"y"}, ids(res.Venues))
}

func TestFilter_FallbackReturnsRawPage(t *testing.T) {
	raw := []Venue{
		{ID: "1", Location: Location{Country: "Norway"}},
		{ID: "2", Location: Location{Country: "Spain"}},
	}
	res := Apply(raw, Criteria{Country: "Norway"})
	assert.True(t, res.FellBack)
	assert.Equal(t, []string{"1", "2"}, ids(res.Venues))

	res.Venues[0].ID = "changed"
	assert.Equal(t, "1", raw[0].ID, "result must not alias the input")
}

func TestFilter_EmptyInput(t *testing.T) {
	res := Apply(nil, Criteria{Country: "Norway"})
	assert.False(t, res.FellBack)
	assert.Empty(t, res.Venues)
}

func TestFilter_Predicates(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"country", Criteria{Country: "Norway"}, []string{"a", "e"}},
		{"guests is exact", Criteria{Guests: 4}, []string{"a"}},
		{"guests larger than any", Criteria{Guests: 3}, []string{}},
		{"rating bucket 4", Criteria{Rating: intp(4)}, []string{"a", "e"}},
		{"rating bucket 3", Criteria{Rating: intp(3)}, []string{"b"}},
		{"price range inclusive", Criteria{MinPrice: floatp(80), MaxPrice: floatp(120)}, []string{"a", "b"}},
		{"min price only", Criteria{MinPrice: floatp(150)}, []string{"e"}},
		{"max price only", Criteria{MaxPrice: floatp(80)}, []string{"b"}},
		{"name case-insensitive", Criteria{Name: "FJORD"}, []string{"a", "e"}},
		{"wifi", Criteria{WiFi: true}, []string{"a", "b"}},
		{"breakfast and pets", Criteria{Breakfast: true, Pets: true}, []string{"e"}},
		{"conjunction", Criteria{Country: "Norway", WiFi: true, Name: "cabin"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.c)))
		})
	}
}

func TestFilter_SubsetStableAndNonMutating(t *testing.T) {
	in := sample()
	before := ids(in)
	got := Filter(in, Criteria{Country: "Norway"})

	assert.Equal(t, before, ids(in), "input reordered or changed")
	pos := map[string]int{}
	for i, id := range before {
		pos[id] = i
	}
	last := -1
	for _, v := range got {
		p, ok := pos[v.ID]
		require.True(t, ok, "result %s not in input", v.ID)
		assert.Greater(t, p, last)
		last = p
	}

	if len(got) > 0 {
		got[0].Name = "changed"
		assert.Equal(t, "Fjord Cabin", in[0].Name)
	}
}

func TestCriteria_ValuesRoundTrip(t *testing.T) {
	c := Criteria{Country: "Norway", Guests: 2, Rating: intp(4), MinPrice: floatp(10.5), MaxPrice: floatp(99),
		Name: "loft", WiFi: true, Pets: true}
	got := CriteriaFromValues(c.Values())
	assert.Equal(t, c, got)
	assert.True(t, got.Active())
	assert.False(t, Criteria{}.Active())
}

func TestCriteriaFromValues_IgnoresMalformed(t *testing.T) {
	q := url.Values{"guests": {"many"}, "rating": {"9"}, "min_price": {"-1"}, "wifi": {"on"}}
	c := CriteriaFromValues(q)
	assert.Zero(t, c.Guests)
	assert.Nil(t, c.Rating)
	assert.Nil(t, c.MinPrice)
	assert.True(t, c.WiFi)
}

func TestCountries(t *testing.T) {
	assert.Equal(t, []string{"Norway", "Sweden"}, Countries(sample()))
}

func TestListQuery_Normalize(t *testing.T) {
	q := ListQuery{Page: 0, Limit: 500, Sort: "bogus", SortOrder: "up"}.Normalize()
	assert.Equal(t, ListQuery{Page: 1, Limit: 100, Sort: "created", SortOrder: "desc"}, q)
}
