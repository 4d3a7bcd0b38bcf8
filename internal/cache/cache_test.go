package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, c Cache, prefix string) {
	ctx := context.Background()

	_, ok, err := c.Get(ctx, prefix+"missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, prefix+"venues:1", []byte("one"), time.Minute))
	require.NoError(t, c.Set(ctx, prefix+"venues:2", []byte("two"), time.Minute))
	require.NoError(t, c.Set(ctx, prefix+"profile:ola", []byte("p"), time.Minute))

	v, ok, err := c.Get(ctx, prefix+"venues:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", string(v))

	require.NoError(t, c.DeletePrefix(ctx, prefix+"venues:"))
	_, ok, _ = c.Get(ctx, prefix+"venues:2")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, prefix+"profile:ola")
	assert.True(t, ok, "other prefixes survive")

	require.NoError(t, c.DeletePrefix(ctx, prefix))
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory(), "t:")
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(context.Background(), RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer r.Close()
	exercise(t, r, "test:"+uuid.NewString()+":")
}
