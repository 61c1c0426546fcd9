// Package inspect answers HTTP requests with a summary of how each part
// of the request classified as text or raw octets.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/epithet-ssh/maybeutf8/pkg/capture"
	"github.com/epithet-ssh/maybeutf8/pkg/handler"
)

// Server is a handler.Handler that describes every request it receives.
type Server struct {
	tmpl     *capture.Template
	recorder capture.Recorder
	log      *slog.Logger
	now      func() time.Time
}

// New creates an inspect server. A nil tmpl uses capture.DefaultTemplate
// and a nil recorder discards records.
func New(log *slog.Logger, tmpl *capture.Template, recorder capture.Recorder) *Server {
	s := &Server{
		tmpl:     tmpl,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}

	if s.log == nil {
		s.log = slog.Default()
	}

	if s.tmpl == nil {
		t, err := capture.ParseTemplate(capture.DefaultTemplate)
		if err != nil {
			panic(err)
		}
		s.tmpl = t
	}

	if s.recorder == nil {
		s.recorder = capture.NoopRecorder{}
	}

	return s
}

// HandleRequest records the request and writes its summary. The summary
// is JSON when the client accepts application/json and rendered text
// otherwise.
func (s *Server) HandleRequest(ctx *handler.Context, resp *handler.Response) {
	rec := capture.FromContext(ctx, s.now())

	if err := s.recorder.Record(ctx.Context(), rec); err != nil {
		s.log.Warn("unable to record request",
			"method", rec.Method,
			"path", &rec.Path,
			"error", err)
	}

	sum := capture.Summarize(rec)
	resp.Headers().AddString("X-Text-Parts", strconv.Itoa(sum.TextParts))
	resp.Headers().AddString("X-Raw-Parts", strconv.Itoa(sum.RawParts))

	if wantsJSON(ctx) {
		resp.Headers().AddString("Content-Type", "application/json")
		if err := json.NewEncoder(resp).Encode(sum); err != nil {
			s.fail(resp, err)
		}
		return
	}

	resp.Headers().AddString("Content-Type", "text/plain; charset=utf-8")
	if err := s.tmpl.Render(resp, rec); err != nil {
		s.fail(resp, err)
	}
}

func (s *Server) fail(resp *handler.Response, err error) {
	s.log.Error("unable to render summary", "error", err)
	resp.Body().Reset()
	resp.Headers().Del("Content-Type")
	resp.Headers().AddString("Content-Type", "text/plain; charset=utf-8")
	resp.SetStatus(http.StatusInternalServerError)
	resp.WriteString("unable to render summary\n")
}

func wantsJSON(ctx *handler.Context) bool {
	for _, v := range ctx.Headers.Values("Accept") {
		if strings.Contains(v.Lossy(), "application/json") {
			return true
		}
	}
	return false
}
