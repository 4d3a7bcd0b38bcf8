package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/holidaze/internal/discovery"
	"github.com/example/holidaze/internal/domain/paging"
	"github.com/example/holidaze/internal/domain/venue"
)

type BrowseRequest struct {
	Page     int
	Sort     string
	Order    string
	Search   string
	Criteria venue.Criteria
}

// Listing is one page of venues after the filter pipeline.
type Listing struct {
	Venues    []venue.Venue
	RawCount  int
	FellBack  bool
	Page      paging.State
	Query     venue.ListQuery
	Search    string
	Criteria  venue.Criteria
	Countries []string
}

// Discover fetches a page and runs it through the filter pipeline.
type Discover struct {
	Repo     *discovery.Repository
	PageSize int
}

func (u Discover) query(req BrowseRequest) venue.ListQuery {
	return venue.ListQuery{
		Page:         req.Page,
		Limit:        u.PageSize,
		Sort:         req.Sort,
		SortOrder:    req.Order,
		WithBookings: true,
	}.Normalize()
}

func (u Discover) Execute(ctx context.Context, req BrowseRequest) (Listing, error) {
	if u.Repo == nil {
		return Listing{}, fmt.Errorf("venue repository is nil")
	}
	q := u.query(req)
	search := strings.TrimSpace(req.Search)

	var (
		p   venue.Page
		err error
	)
	if search != "" {
		p, err = u.Repo.Search(ctx, search, q)
	} else {
		p, err = u.Repo.Fetch(ctx, q)
	}
	if err != nil {
		return Listing{}, err
	}
	return Present(p, q, search, req.Criteria), nil
}

// Present applies the filter pipeline to a fetched page.
func Present(p venue.Page, q venue.ListQuery, search string, c venue.Criteria) Listing {
	res := venue.Apply(p.Venues, c)
	current := p.Meta.CurrentPage
	if current == 0 {
		current = q.Page
	}
	return Listing{
		Venues:    res.Venues,
		RawCount:  len(p.Venues),
		FellBack:  res.FellBack,
		Page:      paging.State{Current: current, Total: p.Meta.PageCount}.Clamp(),
		Query:     q,
		Search:    search,
		Criteria:  c,
		Countries: venue.Countries(p.Venues),
	}
}

// Pager wires a paging.Controller to the repository for interactive
// browsing. Each applied page is filtered with the criteria current at
// apply time and handed to show.
func (u Discover) Pager(req BrowseRequest, criteria func() venue.Criteria, show func(Listing)) *paging.Controller[venue.Page] {
	base := u.query(req)
	search := strings.TrimSpace(req.Search)
	fetch := func(ctx context.Context, page int) (venue.Page, int, error) {
		q := base
		q.Page = page
		var (
			p   venue.Page
			err error
		)
		if search != "" {
			p, err = u.Repo.Search(ctx, search, q)
		} else {
			p, err = u.Repo.Fetch(ctx, q)
		}
		if err != nil {
			return venue.Page{}, 0, err
		}
		if p.Meta.CurrentPage == 0 {
			p.Meta.CurrentPage = page
		}
		return p, p.Meta.PageCount, nil
	}
	return paging.NewController(fetch, func(p venue.Page) {
		q := base
		q.Page = p.Meta.CurrentPage
		show(Present(p, q, search, criteria()))
	})
}
