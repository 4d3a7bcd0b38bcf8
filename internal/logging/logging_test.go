package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	tag  string
	data map[string]any
}

type recorder struct{ posts []post }

func (r *recorder) Post(tag string, message interface{}) error {
	r.posts = append(r.posts, post{tag: tag, data: message.(map[string]any)})
	return nil
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFluentHandler(t *testing.T) {
	rec := &recorder{}
	log := slog.New(NewFluentHandler(rec, slog.LevelInfo)).With("svc", "holidaze")

	log.Debug("dropped")
	log.WithGroup("req").Warn("slow", "path", "/venues", "err", errors.New("boom"))

	require.Len(t, rec.posts, 1)
	p := rec.posts[0]
	assert.Equal(t, "warn", p.tag)
	assert.Equal(t, "slow", p.data["message"])
	assert.Equal(t, "warn", p.data["level"])
	assert.Equal(t, "holidaze", p.data["svc"])
	assert.Equal(t, "/venues", p.data["req.path"])
	assert.Equal(t, "boom", p.data["req.err"])
	assert.NotEmpty(t, p.data["timestamp"])
}

func TestMulti(t *testing.T) {
	rec := &recorder{}
	var buf bytes.Buffer
	h := Multi(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewFluentHandler(rec, slog.LevelError),
	)
	log := slog.New(h)

	log.Debug("only console")
	log.Error("both", "n", 1)

	assert.Contains(t, buf.String(), "only console")
	assert.Contains(t, buf.String(), "both")
	require.Len(t, rec.posts, 1)
	assert.Equal(t, "both", rec.posts[0].data["message"])
}

func TestNewConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Options{Writer: &buf, Format: "json", Level: slog.LevelInfo})
	require.NoError(t, err)
	log.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.NoError(t, closeFn())
}
