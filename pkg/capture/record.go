// Package capture records requests without losing octets that are not
// UTF-8, stores them as keyed netstrings and renders summaries of how
// each part classified.
package capture

import (
	"time"

	"github.com/epithet-ssh/maybeutf8/pkg/handler"
	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Record is one captured request.
type Record struct {
	Time     time.Time
	Method   string
	Path     maybeutf8.Buffer
	Segments []maybeutf8.Buffer
	Headers  []handler.Field
	Query    []handler.Pair
	Body     maybeutf8.Buffer
}

// FromContext copies the parts of ctx into a new Record.
func FromContext(ctx *handler.Context, now time.Time) *Record {
	rec := &Record{
		Time:   now,
		Method: ctx.Method,
		Path:   ctx.Path.Clone(),
		Body:   ctx.Body.Clone(),
	}
	for i := range ctx.Segments {
		rec.Segments = append(rec.Segments, ctx.Segments[i].Clone())
	}
	for _, f := range ctx.Headers.Fields() {
		rec.Headers = append(rec.Headers, handler.Field{Name: f.Name, Value: f.Value.Clone()})
	}
	for _, p := range ctx.Query {
		rec.Query = append(rec.Query, handler.Pair{Name: p.Name.Clone(), Value: p.Value.Clone()})
	}
	return rec
}

// counts returns the number of parts and how many of them are not text.
func (r *Record) counts() (total, raw int) {
	count := func(b *maybeutf8.Buffer) {
		total++
		if !b.IsUTF8() {
			raw++
		}
	}
	count(&r.Path)
	for i := range r.Segments {
		count(&r.Segments[i])
	}
	for i := range r.Headers {
		count(&r.Headers[i].Value)
	}
	for i := range r.Query {
		count(&r.Query[i].Name)
		count(&r.Query[i].Value)
	}
	count(&r.Body)
	return total, raw
}
