package venue

import "time"

type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Described reports whether the item can be shown: it needs both a URL and alt text.
func (m Media) Described() bool {
	return m.URL != "" && m.Alt != ""
}

type Location struct {
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Country   string  `json:"country,omitempty"`
	Continent string  `json:"continent,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

// Meta holds the amenity flags of a venue.
type Meta struct {
	WiFi      bool `json:"wifi"`
	Parking   bool `json:"parking"`
	Breakfast bool `json:"breakfast"`
	Pets      bool `json:"pets"`
}

type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Bio          string `json:"bio,omitempty"`
	Avatar       *Media `json:"avatar,omitempty"`
	Banner       *Media `json:"banner,omitempty"`
	VenueManager bool   `json:"venueManager,omitempty"`
}

type Booking struct {
	ID       string    `json:"id"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Customer *Profile  `json:"customer,omitempty"`
	Venue    *Venue    `json:"venue,omitempty"`
}

type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Media       []Media   `json:"media"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Rating      float64   `json:"rating"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	Meta        Meta      `json:"meta"`
	Location    Location  `json:"location"`
	Owner       *Profile  `json:"owner,omitempty"`
	Bookings    []Booking `json:"bookings,omitempty"`
}

// Cover returns the first displayable media item.
func (v Venue) Cover() (Media, bool) {
	for _, m := range v.Media {
		if m.Described() {
			return m, true
		}
	}
	return Media{}, false
}

// PageMeta mirrors the paging block the venue service returns next to each page.
type PageMeta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}

type Page struct {
	Venues []Venue  `json:"venues"`
	Meta   PageMeta `json:"meta"`
}

// ListQuery selects a page of venues from the remote service.
type ListQuery struct {
	Page         int
	Limit        int
	Sort         string
	SortOrder    string
	WithBookings bool
}

var sortFields = map[string]bool{"created": true, "name": true, "price": true, "rating": true, "maxGuests": true}

// Normalize clamps the query into values the service accepts.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 100
	}
	if !sortFields[q.Sort] {
		q.Sort = "created"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	return q
}
