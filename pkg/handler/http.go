package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"net/http"
	"slices"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// DefaultMaxBodySize is the body limit used when MaxBodySize is not given.
const DefaultMaxBodySize = 1 << 20

// ErrBodyTooLarge is returned when a request body exceeds the limit.
var ErrBodyTooLarge = errors.New("handler: request body too large")

type adapter struct {
	h           Handler
	maxBodySize int64
	log         *slog.Logger
}

// Option configures HTTP.
type Option func(*adapter)

// MaxBodySize limits how much of a request body is read. Larger bodies
// are answered with 413 and never reach the handler. A negative n removes
// the limit.
func MaxBodySize(n int64) Option {
	return func(a *adapter) {
		a.maxBodySize = n
	}
}

// WithLogger sets the logger handed to each Context.
func WithLogger(l *slog.Logger) Option {
	return func(a *adapter) {
		a.log = l
	}
}

// HTTP adapts h to net/http.
func HTTP(h Handler, opts ...Option) http.Handler {
	a := &adapter{
		h:           h,
		maxBodySize: DefaultMaxBodySize,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, err := NewContext(r, a.maxBodySize)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.log.Warn("rejecting request", "path", r.URL.EscapedPath(), "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	ctx.Logger = a.log

	a.log.Debug("request parsed",
		"method", ctx.Method,
		"path", &ctx.Path,
		"segments", len(ctx.Segments),
		"headers", ctx.Headers.Len(),
		"body_bytes", ctx.Body.Len(),
		"body_kind", ctx.Body.Kind().String())

	resp := NewResponse()
	a.h.HandleRequest(ctx, resp)
	if err := resp.writeTo(w); err != nil {
		a.log.Warn("unable to write response", "error", err)
	}
}

// NewContext builds a Context from r, reading at most maxBody bytes of
// body. A negative maxBody, or math.MaxInt64, reads the whole body. Every
// part is classified as it is copied out of r.
func NewContext(r *http.Request, maxBody int64) (*Context, error) {
	escaped := r.URL.EscapedPath()
	ctx := &Context{
		Method:   r.Method,
		Path:     maybeutf8.FromString(escaped),
		Segments: splitPath(escaped),
		Query:    parseQuery(r.URL.RawQuery),
		Request:  r,
		Logger:   slog.Default(),
	}

	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		for _, v := range r.Header[name] {
			ctx.Headers.AddString(name, v)
		}
	}
	if r.Host != "" {
		ctx.Headers.AddString("Host", r.Host)
	}

	if r.Body != nil {
		if err := readBody(&ctx.Body, r.Body, maxBody); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

func readBody(dst *maybeutf8.Buffer, body io.Reader, limit int64) error {
	if limit < 0 || limit == math.MaxInt64 {
		if _, err := dst.ReadFrom(body); err != nil {
			return fmt.Errorf("unable to read body: %w", err)
		}
		return nil
	}

	// one byte past the limit tells an exact fit from an overflow
	n, err := dst.ReadFrom(io.LimitReader(body, limit+1))
	if err != nil {
		return fmt.Errorf("unable to read body: %w", err)
	}
	if n > limit {
		return ErrBodyTooLarge
	}
	return nil
}
