package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/example/holidaze/internal/db"
	"github.com/example/holidaze/internal/internaltypes"
	"github.com/example/holidaze/internal/migrate"
	"github.com/example/holidaze/internal/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	require.NoError(t, d.Ping(ctx))
	require.NoError(t, migrate.Up(ctx, d, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return d
}

func TestStateStore_RoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	st := NewStateStore(d)
	sid := uuid.NewString()
	t.Cleanup(func() { _ = st.Clear(ctx, sid) })

	_, err := st.Get(ctx, sid, state.KeyAccessToken)
	assert.ErrorIs(t, err, internaltypes.ErrNotFound)

	require.NoError(t, st.Set(ctx, sid, state.KeyAccessToken, "one"))
	require.NoError(t, st.Set(ctx, sid, state.KeyAccessToken, "two"))
	v, err := st.Get(ctx, sid, state.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, st.Clear(ctx, sid))
	_, err = st.Get(ctx, sid, state.KeyAccessToken)
	assert.ErrorIs(t, err, internaltypes.ErrNotFound)
}

func TestStateStore_Expire(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	st := NewStateStore(d)
	sid := uuid.NewString()
	require.NoError(t, st.Set(ctx, sid, state.KeyProfile, "{}"))

	n, err := st.Expire(ctx, time.Hour)
	require.NoError(t, err)
	_, err = st.Get(ctx, sid, state.KeyProfile)
	assert.NoError(t, err, "fresh session survives")
	assert.GreaterOrEqual(t, n, int64(0))

	require.NoError(t, st.Clear(ctx, sid))
}
