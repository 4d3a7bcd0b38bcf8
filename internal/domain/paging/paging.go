package paging

import (
	"context"
	"sync"
)

// State is a 1-indexed page position against the server-reported page count.
type State struct {
	Current int
	Total   int
}

func (s State) HasNext() bool { return s.Current < s.Total }
func (s State) HasPrev() bool { return s.Current > 1 }

// Next returns the following state, or s unchanged and false at the last page.
func (s State) Next() (State, bool) {
	if !s.HasNext() {
		return s, false
	}
	s.Current++
	return s, true
}

// Prev returns the preceding state, or s unchanged and false at the first page.
func (s State) Prev() (State, bool) {
	if !s.HasPrev() {
		return s, false
	}
	s.Current--
	return s, true
}

// Clamp keeps Current inside [1, Total]; an unknown Total only bounds below.
func (s State) Clamp() State {
	if s.Total > 0 && s.Current > s.Total {
		s.Current = s.Total
	}
	if s.Current < 1 {
		s.Current = 1
	}
	return s
}

// FetchFunc loads one page and reports the total page count.
type FetchFunc[T any] func(ctx context.Context, page int) (T, int, error)

// Controller drives page transitions over a FetchFunc. Every transition
// bumps a generation and cancels the fetch it supersedes; a result is only
// applied while its generation is still current, so the last requested
// page wins regardless of response order.
type Controller[T any] struct {
	fetch FetchFunc[T]
	apply func(T)

	// OnReset runs on every accepted transition, before the fetch starts.
	OnReset func()

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// NewController returns a controller on page 1. apply runs under the
// controller's lock and must not call back into it.
func NewController[T any](fetch FetchFunc[T], apply func(T)) *Controller[T] {
	return &Controller[T]{fetch: fetch, apply: apply, state: State{Current: 1}}
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the given page unconditionally. It is used for the first
// page and for jumps; Next/Previous are the guarded transitions.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	c.mu.Lock()
	prev := c.state
	c.state.Current = page
	c.state = c.state.Clamp()
	c.mu.Unlock()
	return c.run(ctx, prev)
}

// NextPage advances one page. Past the last page it is a no-op returning false.
func (c *Controller[T]) NextPage(ctx context.Context) (bool, error) {
	return c.step(ctx, State.Next)
}

// PreviousPage goes back one page. On the first page it is a no-op returning false.
func (c *Controller[T]) PreviousPage(ctx context.Context) (bool, error) {
	return c.step(ctx, State.Prev)
}

func (c *Controller[T]) step(ctx context.Context, move func(State) (State, bool)) (bool, error) {
	c.mu.Lock()
	next, ok := move(c.state)
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	prev := c.state
	c.state = next
	c.mu.Unlock()
	return true, c.run(ctx, prev)
}

// run fetches the current page. A failed fetch restores prev so the
// state keeps describing the page on screen.
func (c *Controller[T]) run(ctx context.Context, prev State) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	page := c.state.Current
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	if c.OnReset != nil {
		c.OnReset()
	}

	res, total, err := c.fetch(fctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// superseded; its result and any cancellation error are dropped
		cancel()
		return nil
	}
	cancel()
	c.cancel = nil
	if err != nil {
		c.state = prev
		return err
	}
	c.state.Total = total
	c.state = c.state.Clamp()
	if c.apply != nil {
		c.apply(res)
	}
	return nil
}
