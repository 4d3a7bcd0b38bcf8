package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/holidaze/internal/cache"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSource struct {
	lists, searches, gets int
	err                   error
}

func (f *fakeSource) ListVenues(_ context.Context, q venue.ListQuery) (venue.Page, error) {
	f.lists++
	if f.err != nil {
		return venue.Page{}, f.err
	}
	return venue.Page{
		Venues: []venue.Venue{{ID: "v" + string(rune('0'+q.Page)), Name: "page"}},
		Meta:   venue.PageMeta{CurrentPage: q.Page, PageCount: 3},
	}, nil
}

func (f *fakeSource) SearchVenues(_ context.Context, text string, _ venue.ListQuery) (venue.Page, error) {
	f.searches++
	return venue.Page{Venues: []venue.Venue{{ID: "s", Name: text}}, Meta: venue.PageMeta{CurrentPage: 1, PageCount: 1}}, nil
}

func (f *fakeSource) GetVenue(_ context.Context, id string) (venue.Venue, error) {
	f.gets++
	return venue.Venue{ID: id, MaxGuests: 2}, nil
}

func TestRepository_FetchCachesAndTracksRaw(t *testing.T) {
	src := &fakeSource{}
	r := NewRepository(src, cache.NewMemory(), time.Minute, quiet)
	ctx := context.Background()

	p, err := r.Fetch(ctx, venue.ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, "v2", p.Venues[0].ID)

	_, err = r.Fetch(ctx, venue.ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, src.lists, "second fetch served from cache")

	_, err = r.Fetch(ctx, venue.ListQuery{Page: 1})
	require.NoError(t, err)
	raw, meta := r.Raw()
	assert.Equal(t, "v1", raw[0].ID)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 2, src.lists)
}

func TestRepository_RawIsACopy(t *testing.T) {
	r := NewRepository(&fakeSource{}, nil, 0, quiet)
	_, err := r.Fetch(context.Background(), venue.ListQuery{Page: 1})
	require.NoError(t, err)
	raw, _ := r.Raw()
	raw[0].Name = "changed"
	again, _ := r.Raw()
	assert.Equal(t, "page", again[0].Name)
}

func TestRepository_NoTTLNeverCaches(t *testing.T) {
	src := &fakeSource{}
	r := NewRepository(src, cache.NewMemory(), 0, quiet)
	for i := 0; i < 2; i++ {
		_, err := r.Fetch(context.Background(), venue.ListQuery{Page: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.lists)
}

func TestRepository_ErrorKeepsPreviousRaw(t *testing.T) {
	src := &fakeSource{}
	r := NewRepository(src, nil, 0, quiet)
	_, err := r.Fetch(context.Background(), venue.ListQuery{Page: 1})
	require.NoError(t, err)

	src.err = errors.New("down")
	_, err = r.Fetch(context.Background(), venue.ListQuery{Page: 2})
	require.Error(t, err)
	raw, _ := r.Raw()
	assert.Equal(t, "v1", raw[0].ID)
}

func TestRepository_BookingInvalidatesCache(t *testing.T) {
	src := &fakeSource{}
	r := NewRepository(src, cache.NewMemory(), time.Minute, quiet)
	hub := notify.NewHub(quiet)
	hub.Subscribe(r)
	ctx := context.Background()

	_, _ = r.Venue(ctx, "v9")
	_, _ = r.Venue(ctx, "v9")
	assert.Equal(t, 1, src.gets)

	_, _ = r.Search(ctx, "beach", venue.ListQuery{})
	_, _ = r.Search(ctx, "beach", venue.ListQuery{})
	assert.Equal(t, 1, src.searches)

	hub.Publish(ctx, notify.BookingCreated{VenueID: "v9"})

	_, _ = r.Venue(ctx, "v9")
	_, _ = r.Search(ctx, "beach", venue.ListQuery{})
	assert.Equal(t, 2, src.gets)
	assert.Equal(t, 2, src.searches)
}
