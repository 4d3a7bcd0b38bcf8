package holidaze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/holidaze/internal/internaltypes"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://v2.api.noroff.dev"

// Client talks to the Holidaze venue service. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RatePerSecond paces outbound calls; zero disables pacing.
	RatePerSecond float64
	Burst         int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		hc:      hc,
		limiter: lim,
		log:     log.With("component", "holidaze"),
	}
}

type envelope[T any] struct {
	Data T               `json:"data"`
	Meta json.RawMessage `json:"meta,omitempty"`
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	StatusCode int `json:"statusCode"`
}

func (e errorBody) messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, m := range e.Errors {
		if m.Message != "" {
			out = append(out, m.Message)
		}
	}
	return out
}

// request describes one call; token is empty for anonymous endpoints.
type request struct {
	op     string
	method string
	path   string
	token  string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, r request) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, &internaltypes.RequestFailedError{Op: r.op, Err: err}
	}

	var rdr io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode body: %w", r.op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", r.op, err)
	}
	if r.query != nil {
		req.URL.RawQuery = r.query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Noroff-API-Key", c.apiKey)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		observe(r.op, 0, time.Since(start))
		c.log.Warn("request failed", "op", r.op, "error", err)
		return 0, nil, &internaltypes.RequestFailedError{Op: r.op, Err: err}
	}
	defer res.Body.Close()
	observe(r.op, res.StatusCode, time.Since(start))

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, &internaltypes.RequestFailedError{Op: r.op, Status: res.StatusCode, Err: err}
	}
	c.log.Debug("request", "op", r.op, "method", r.method, "path", r.path, "status", res.StatusCode)
	return res.StatusCode, b, nil
}

// failure builds the error for a non-2xx answer.
func failure(op string, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	rf := &internaltypes.RequestFailedError{Op: op, Status: status, Messages: eb.messages()}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		rf.Err = internaltypes.ErrUnauthorized
	case http.StatusNotFound:
		rf.Err = internaltypes.ErrNotFound
	}
	return rf
}

// call runs r and decodes the data envelope into out when out is non-nil.
// The raw meta block is returned for paged endpoints.
func call[T any](ctx context.Context, c *Client, r request, out *T) (json.RawMessage, error) {
	status, body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, failure(r.op, status, body)
	}
	if out == nil || status == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &internaltypes.RequestFailedError{Op: r.op, Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	*out = env.Data
	return env.Meta, nil
}

func itoa(i int) string { return strconv.Itoa(i) }
