package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Pair is one decoded query parameter.
type Pair struct {
	Name  maybeutf8.Buffer
	Value maybeutf8.Buffer
}

// Context carries the parsed parts of a request.
type Context struct {
	Method string

	// Path is the path exactly as it appeared on the request line,
	// still percent-encoded.
	Path maybeutf8.Buffer

	// Segments are the percent-decoded path segments. Decoding can
	// produce octets that are not UTF-8, so each one is classified on
	// its own.
	Segments []maybeutf8.Buffer

	Headers Headers
	Query   []Pair
	Body    maybeutf8.Buffer

	Request *http.Request
	Logger  *slog.Logger
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	if c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

// Segment returns the i'th path segment, or an empty view.
func (c *Context) Segment(i int) (maybeutf8.View, bool) {
	if i < 0 || i >= len(c.Segments) {
		return maybeutf8.View{}, false
	}
	return c.Segments[i].View(), true
}

// QueryValue returns the first value whose name equals name.
func (c *Context) QueryValue(name string) (maybeutf8.View, bool) {
	key := maybeutf8.ViewString(name)
	for i := range c.Query {
		if c.Query[i].Name.Equal(key) {
			return c.Query[i].Value.View(), true
		}
	}
	return maybeutf8.View{}, false
}

// splitPath percent-decodes each segment of an escaped path. A segment
// with a malformed escape is kept as written.
func splitPath(escaped string) []maybeutf8.Buffer {
	escaped = strings.TrimPrefix(escaped, "/")
	if escaped == "" {
		return nil
	}
	parts := strings.Split(escaped, "/")
	segments := make([]maybeutf8.Buffer, 0, len(parts))
	for _, p := range parts {
		if dec, err := url.PathUnescape(p); err == nil {
			p = dec
		}
		segments = append(segments, maybeutf8.FromString(p))
	}
	return segments
}

// parseQuery decodes a raw query string in order. Parameters with a
// malformed escape are kept as written.
func parseQuery(raw string) []Pair {
	var pairs []Pair
	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, Pair{
			Name:  maybeutf8.FromString(unescapeQuery(name)),
			Value: maybeutf8.FromString(unescapeQuery(value)),
		})
	}
	return pairs
}

func unescapeQuery(s string) string {
	if dec, err := url.QueryUnescape(s); err == nil {
		return dec
	}
	return s
}
