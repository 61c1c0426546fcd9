package capture

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// DefaultTemplate renders one line per part followed by a totals line.
const DefaultTemplate = `{{Method}} {{{Path}}} at {{Time}}
{{#Parts}}  {{Name}}: {{Kind}} {{Len}}B {{{Text}}}{{#Raw}} [{{Hex}}]{{/Raw}}
{{/Parts}}{{TextParts}} text, {{RawParts}} bytes
`

// Part describes how one piece of a record classified.
type Part struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Len  int    `json:"len"`
	Text string `json:"text"` // lossy text
	Raw  bool   `json:"raw"`
	Hex  string `json:"hex,omitempty"` // set only when Raw
}

// Summary is the data handed to a template.
type Summary struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Time      string `json:"time"`
	Parts     []Part `json:"parts"`
	TextParts int    `json:"text_parts"`
	RawParts  int    `json:"raw_parts"`
}

// Summarize describes every part of rec.
func Summarize(rec *Record) Summary {
	s := Summary{
		Method: rec.Method,
		Path:   rec.Path.Lossy(),
		Time:   rec.Time.UTC().Format(time.RFC3339),
	}
	add := func(name string, b *maybeutf8.Buffer) {
		p := Part{
			Name: name,
			Kind: b.Kind().String(),
			Len:  b.Len(),
			Text: b.Lossy(),
			Raw:  !b.IsUTF8(),
		}
		if p.Raw {
			p.Hex = hex.EncodeToString(b.Bytes())
			s.RawParts++
		} else {
			s.TextParts++
		}
		s.Parts = append(s.Parts, p)
	}

	add("path", &rec.Path)
	for i := range rec.Segments {
		add(fmt.Sprintf("segment[%d]", i), &rec.Segments[i])
	}
	for i := range rec.Headers {
		add("header "+rec.Headers[i].Name, &rec.Headers[i].Value)
	}
	for i := range rec.Query {
		add("query name "+rec.Query[i].Name.Lossy(), &rec.Query[i].Name)
		add("query value "+rec.Query[i].Name.Lossy(), &rec.Query[i].Value)
	}
	add("body", &rec.Body)
	return s
}

// Template is a parsed summary template.
type Template struct {
	t *mustache.Template
}

// ParseTemplate parses a mustache template. An empty string selects
// DefaultTemplate.
func ParseTemplate(src string) (*Template, error) {
	if src == "" {
		src = DefaultTemplate
	}
	t, err := mustache.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{t: t}, nil
}

// Render writes the summary of rec to w.
func (t *Template) Render(w io.Writer, rec *Record) error {
	return t.t.FRender(w, Summarize(rec))
}
