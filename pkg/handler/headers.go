package handler

import (
	"iter"
	"net/http"
	"strings"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Field is one header line.
type Field struct {
	Name  string
	Value maybeutf8.Buffer
}

// Headers is an ordered list of header fields. Names compare without
// regard to case; values keep the octets they arrived with.
type Headers struct {
	fields []Field
}

// Add appends a field.
func (h *Headers) Add(name string, value maybeutf8.Buffer) {
	h.fields = append(h.fields, Field{Name: http.CanonicalHeaderKey(name), Value: value})
}

// AddString appends a field whose value is s, classified as usual.
func (h *Headers) AddString(name, s string) {
	h.Add(name, maybeutf8.FromString(s))
}

// Set replaces every field named name with a single one.
func (h *Headers) Set(name string, value maybeutf8.Buffer) {
	h.Del(name)
	h.Add(name, value)
}

// Del removes every field named name.
func (h *Headers) Del(name string) {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	clear(h.fields[len(kept):])
	h.fields = kept
}

// Get returns the first value named name.
func (h *Headers) Get(name string) (maybeutf8.View, bool) {
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Name, name) {
			return h.fields[i].Value.View(), true
		}
	}
	return maybeutf8.View{}, false
}

// Values returns every value named name, in order.
func (h *Headers) Values(name string) []maybeutf8.View {
	var out []maybeutf8.View
	for i := range h.fields {
		if strings.EqualFold(h.fields[i].Name, name) {
			out = append(out, h.fields[i].Value.View())
		}
	}
	return out
}

// Len returns the number of fields.
func (h *Headers) Len() int {
	return len(h.fields)
}

// All iterates over the fields in order.
func (h *Headers) All() iter.Seq2[string, maybeutf8.View] {
	return func(yield func(string, maybeutf8.View) bool) {
		for i := range h.fields {
			if !yield(h.fields[i].Name, h.fields[i].Value.View()) {
				return
			}
		}
	}
}

// Fields returns the fields in order. The slice is shared with h.
func (h *Headers) Fields() []Field {
	return h.fields
}

// writeTo copies h into an http.Header. Values that are not text are
// written as their raw octets.
func (h *Headers) writeTo(dst http.Header) {
	for i := range h.fields {
		f := &h.fields[i]
		dst[f.Name] = append(dst[f.Name], string(f.Value.Bytes()))
	}
}
