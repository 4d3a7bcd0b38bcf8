package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

type Options struct {
	Writer io.Writer
	Level  slog.Leveler
	// Format is "text" (colour, via tint), "json" or "plain".
	Format string

	// FluentHost enables forwarding to a fluentd/fluent-bit collector.
	FluentHost string
	FluentPort int
	TagPrefix  string
}

// ParseLevel maps debug, info, warn and error; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger. The returned close func flushes the
// fluent client when one was configured.
func New(opts Options) (*slog.Logger, func() error, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	handlers := []slog.Handler{consoleHandler(opts)}
	closeFn := func() error { return nil }

	if opts.FluentHost != "" {
		client, err := fluent.New(fluent.Config{
			FluentHost:   opts.FluentHost,
			FluentPort:   opts.FluentPort,
			TagPrefix:    opts.TagPrefix,
			Async:        true,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("fluent client: %w", err)
		}
		handlers = append(handlers, NewFluentHandler(client, opts.Level))
		closeFn = client.Close
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closeFn, nil
	}
	return slog.New(Multi(handlers...)), closeFn, nil
}

func consoleHandler(opts Options) slog.Handler {
	switch strings.ToLower(opts.Format) {
	case "json":
		return slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	case "plain":
		return slog.NewTextHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	default:
		return tint.NewHandler(opts.Writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}
}

// Poster is the part of *fluent.Fluent the handler needs.
type Poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler forwards records to fluentd, tagged with their level.
type FluentHandler struct {
	client Poster
	level  slog.Leveler
	attrs  map[string]any
	group  string
}

func NewFluentHandler(client Poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, attrs: map[string]any{}}
}

func (h *FluentHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for k, v := range h.attrs {
		data[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(data, h.group, a)
		return true
	})
	level := strings.ToLower(r.Level.String())
	data["level"] = level
	data["message"] = r.Message
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	data["timestamp"] = t.UTC().Format(time.RFC3339Nano)
	return h.client.Post(level, data)
}

func (h *FluentHandler) put(data map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			h.put(data, key, ga)
		}
		return
	}
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = v.Any()
	case slog.KindTime:
		data[key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		data[key] = v.Duration().String()
	default:
		data[key] = v.Any()
	}
}

func (h *FluentHandler) WithAttrs(as []slog.Attr) slog.Handler {
	attrs := make(map[string]any, len(h.attrs)+len(as))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	for _, a := range as {
		h.put(attrs, h.group, a)
	}
	return &FluentHandler{client: h.client, level: h.level, attrs: attrs, group: h.group}
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	g := name
	if h.group != "" {
		g = h.group + "." + name
	}
	return &FluentHandler{client: h.client, level: h.level, attrs: h.attrs, group: g}
}

type multiHandler []slog.Handler

// Multi fans every record out to all handlers that accept its level.
func Multi(hs ...slog.Handler) slog.Handler {
	return multiHandler(hs)
}

func (m multiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
