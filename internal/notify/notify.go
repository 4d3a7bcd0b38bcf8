// Package notify fans booking events out to interested observers.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/holidaze/internal/domain/venue"
)

// BookingCreated is published after the venue service accepted a booking.
type BookingCreated struct {
	Booking  venue.Booking `json:"booking"`
	VenueID  string        `json:"venueId"`
	Customer string        `json:"customer"`
	Total    float64       `json:"total"`
	At       time.Time     `json:"at"`
}

type Observer interface {
	BookingCreated(ctx context.Context, ev BookingCreated) error
}

type ObserverFunc func(ctx context.Context, ev BookingCreated) error

func (f ObserverFunc) BookingCreated(ctx context.Context, ev BookingCreated) error { return f(ctx, ev) }

type subscription struct {
	id  uint64
	obs Observer
}

// Hub delivers events synchronously, in subscription order. Observer
// errors are logged and never reach the publisher.
type Hub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs []subscription
	next uint64
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log.With("component", "notify")}
}

// Subscribe registers o and returns a func that removes it again.
func (h *Hub) Subscribe(o Observer) (unsubscribe func()) {
	h.mu.Lock()
	h.next++
	id := h.next
	h.subs = append(h.subs, subscription{id: id, obs: o})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (h *Hub) Publish(ctx context.Context, ev BookingCreated) {
	h.mu.RLock()
	subs := append([]subscription(nil), h.subs...)
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.obs.BookingCreated(ctx, ev); err != nil {
			h.log.Warn("observer failed", "booking", ev.Booking.ID, "venue", ev.VenueID, "error", err)
		}
	}
}
