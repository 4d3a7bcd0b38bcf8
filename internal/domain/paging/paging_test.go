package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Guards(t *testing.T) {
	last := State{Current: 3, Total: 3}
	got, ok := last.Next()
	assert.False(t, ok)
	assert.Equal(t, last, got)

	first := State{Current: 1, Total: 3}
	got, ok = first.Prev()
	assert.False(t, ok)
	assert.Equal(t, first, got)

	got, ok = first.Next()
	assert.True(t, ok)
	assert.Equal(t, 2, got.Current)

	assert.Equal(t, State{Current: 3, Total: 3}, State{Current: 9, Total: 3}.Clamp())
	assert.Equal(t, State{Current: 1, Total: 0}, State{Current: -2}.Clamp())
}

type recorder struct {
	mu      sync.Mutex
	fetched []int
	applied []string
}

func (r *recorder) fetch(total int) FetchFunc[string] {
	return func(ctx context.Context, page int) (string, int, error) {
		r.mu.Lock()
		r.fetched = append(r.fetched, page)
		r.mu.Unlock()
		return fmt.Sprintf("p%d", page), total, nil
	}
}

func (r *recorder) apply(s string) { r.applied = append(r.applied, s) }

func TestController_NextAndPrevious(t *testing.T) {
	r := &recorder{}
	c := NewController(r.fetch(3), r.apply)
	resets := 0
	c.OnReset = func() { resets++ }
	ctx := context.Background()

	require.NoError(t, c.Load(ctx, 1))
	assert.Equal(t, State{Current: 1, Total: 3}, c.State())

	moved, err := c.PreviousPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved, "previous on first page is a no-op")

	for i := 0; i < 2; i++ {
		moved, err = c.NextPage(ctx)
		require.NoError(t, err)
		assert.True(t, moved)
	}
	assert.Equal(t, 3, c.State().Current)

	moved, err = c.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved, "next on last page is a no-op")

	assert.Equal(t, []int{1, 2, 3}, r.fetched)
	assert.Equal(t, []string{"p1", "p2", "p3"}, r.applied)
	assert.Equal(t, 3, resets)
}

func TestController_NextBeforeLoadIsNoop(t *testing.T) {
	r := &recorder{}
	c := NewController(r.fetch(4), r.apply)
	moved, err := c.NextPage(context.Background())
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Empty(t, r.fetched)
}

func TestController_StaleResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu      sync.Mutex
		applied []string
	)

	fetch := func(ctx context.Context, page int) (string, int, error) {
		if page == 2 {
			close(started)
			<-release
			return "p2", 5, nil
		}
		return fmt.Sprintf("p%d", page), 5, nil
	}
	c := NewController(fetch, func(s string) {
		mu.Lock()
		applied = append(applied, s)
		mu.Unlock()
	})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, 1))

	done := make(chan error, 1)
	go func() {
		_, err := c.NextPage(ctx)
		done <- err
	}()
	<-started

	moved, err := c.PreviousPage(ctx)
	require.NoError(t, err)
	assert.True(t, moved)

	close(release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"p1", "p1"}, applied, "late page 2 must not overwrite page 1")
	assert.Equal(t, 1, c.State().Current)
}

func TestController_SupersededFetchIsCancelled(t *testing.T) {
	started := make(chan struct{})
	fetch := func(ctx context.Context, page int) (int, int, error) {
		if page == 2 {
			close(started)
			<-ctx.Done()
			return 0, 0, ctx.Err()
		}
		return page, 5, nil
	}
	c := NewController[int](fetch, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, 1))

	done := make(chan error, 1)
	go func() {
		_, err := c.NextPage(ctx)
		done <- err
	}()
	<-started
	require.NoError(t, c.Load(ctx, 4))

	assert.NoError(t, <-done, "cancelled superseded fetch is not an error")
	assert.Equal(t, 4, c.State().Current)
}

func TestController_FetchErrorKeepsPage(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	fetch := func(ctx context.Context, page int) (int, int, error) {
		if fail {
			return 0, 0, boom
		}
		return page, 3, nil
	}
	var shown []int
	c := NewController[int](fetch, func(p int) { shown = append(shown, p) })
	require.NoError(t, c.Load(context.Background(), 1))

	fail = true
	moved, err := c.NextPage(context.Background())
	assert.True(t, moved)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, State{Current: 1, Total: 3}, c.State())

	fail = false
	moved, err = c.NextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []int{1, 2}, shown, "retry must not skip a page")
	assert.Equal(t, State{Current: 2, Total: 3}, c.State())
}

func TestController_LoadErrorKeepsPage(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	fetch := func(ctx context.Context, page int) (int, int, error) {
		if fail {
			return 0, 0, boom
		}
		return page, 5, nil
	}
	c := NewController[int](fetch, nil)
	require.NoError(t, c.Load(context.Background(), 3))

	fail = true
	assert.ErrorIs(t, c.Load(context.Background(), 5), boom)
	assert.Equal(t, State{Current: 3, Total: 5}, c.State())
}
