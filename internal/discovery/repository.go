// Package discovery fetches venue pages from the venue service and keeps
// the last fetched page in memory for the filter pipeline.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/example/holidaze/internal/cache"
	"github.com/example/holidaze/internal/domain/venue"
	"github.com/example/holidaze/internal/notify"
)

// KeyPrefix namespaces every cache entry written by the repository.
const KeyPrefix = "holidaze:venues:"

type Source interface {
	ListVenues(ctx context.Context, q venue.ListQuery) (venue.Page, error)
	SearchVenues(ctx context.Context, text string, q venue.ListQuery) (venue.Page, error)
	GetVenue(ctx context.Context, id string) (venue.Venue, error)
}

type Repository struct {
	src   Source
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger

	mu   sync.RWMutex
	raw  []venue.Venue
	meta venue.PageMeta
}

func NewRepository(src Source, c cache.Cache, ttl time.Duration, log *slog.Logger) *Repository {
	if c == nil {
		c = cache.Nop{}
	}
	return &Repository{src: src, cache: c, ttl: ttl, log: log.With("component", "discovery")}
}

func pageKey(kind string, text string, q venue.ListQuery) string {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", fmt.Sprint(q.Page))
	v.Set("limit", fmt.Sprint(q.Limit))
	v.Set("sort", q.Sort)
	v.Set("order", q.SortOrder)
	v.Set("bookings", fmt.Sprint(q.WithBookings))
	if text != "" {
		v.Set("q", text)
	}
	return KeyPrefix + kind + ":" + v.Encode()
}

// Fetch loads one page and makes it the current raw collection.
func (r *Repository) Fetch(ctx context.Context, q venue.ListQuery) (venue.Page, error) {
	return r.page(ctx, pageKey("list", "", q), func() (venue.Page, error) {
		return r.src.ListVenues(ctx, q)
	})
}

// Search is Fetch through the service-side text search.
func (r *Repository) Search(ctx context.Context, text string, q venue.ListQuery) (venue.Page, error) {
	return r.page(ctx, pageKey("search", text, q), func() (venue.Page, error) {
		return r.src.SearchVenues(ctx, text, q)
	})
}

func (r *Repository) page(ctx context.Context, key string, load func() (venue.Page, error)) (venue.Page, error) {
	var p venue.Page
	if ok := r.cached(ctx, key, &p); !ok {
		var err error
		p, err = load()
		if err != nil {
			return venue.Page{}, err
		}
		r.store(ctx, key, p)
	}

	r.mu.Lock()
	r.raw = p.Venues
	r.meta = p.Meta
	r.mu.Unlock()
	return p, nil
}

// Venue loads a single venue with its bookings.
func (r *Repository) Venue(ctx context.Context, id string) (venue.Venue, error) {
	key := KeyPrefix + "venue:" + id
	var v venue.Venue
	if r.cached(ctx, key, &v) {
		return v, nil
	}
	v, err := r.src.GetVenue(ctx, id)
	if err != nil {
		return venue.Venue{}, err
	}
	r.store(ctx, key, v)
	return v, nil
}

// Raw returns a copy of the last fetched page.
func (r *Repository) Raw() ([]venue.Venue, venue.PageMeta) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]venue.Venue(nil), r.raw...), r.meta
}

// Invalidate drops every cached page and venue.
func (r *Repository) Invalidate(ctx context.Context) error {
	return r.cache.DeletePrefix(ctx, KeyPrefix)
}

// BookingCreated makes the repository an observer: new bookings change
// venue availability, so cached copies are dropped.
func (r *Repository) BookingCreated(ctx context.Context, ev notify.BookingCreated) error {
	r.log.Debug("invalidating venue cache", "venue", ev.VenueID)
	return r.Invalidate(ctx)
}

// cache failures degrade to a miss; the venue service stays the source of truth
func (r *Repository) cached(ctx context.Context, key string, out any) bool {
	b, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		r.log.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (r *Repository) store(ctx context.Context, key string, v any) {
	if r.ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
		r.log.Warn("cache set failed", "key", key, "error", err)
	}
}
