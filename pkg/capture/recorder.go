package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Recorder receives captured requests. Implementations are best-effort:
// a failing recorder never fails the request it describes.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
}

// SlogRecorder logs a record as one structured log line. Text parts log
// as strings; raw parts log as lossy text plus hex.
type SlogRecorder struct {
	logger *slog.Logger
}

// NewSlogRecorder creates a recorder that logs through logger.
func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	return &SlogRecorder{logger: logger}
}

// Record logs rec at info level.
func (l *SlogRecorder) Record(ctx context.Context, rec *Record) error {
	total, raw := rec.counts()
	attrs := []slog.Attr{
		slog.String("method", rec.Method),
		slog.Any("path", &rec.Path),
		slog.Int("parts", total),
		slog.Int("raw_parts", raw),
		slog.Int("body_bytes", rec.Body.Len()),
	}
	for i := range rec.Headers {
		if !rec.Headers[i].Value.IsUTF8() {
			attrs = append(attrs, slog.Any("header."+rec.Headers[i].Name, &rec.Headers[i].Value))
		}
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "request captured", attrs...)
	return nil
}

// MultiRecorder calls several recorders in turn. Every recorder is called
// even if an earlier one fails; the errors are joined.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a recorder fanning out to recorders.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record calls every recorder.
func (m *MultiRecorder) Record(ctx context.Context, rec *Record) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopRecorder discards records.
type NoopRecorder struct{}

// Record does nothing.
func (NoopRecorder) Record(context.Context, *Record) error {
	return nil
}

// FileRecorder appends records to a writer in the Write format.
type FileRecorder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewFileRecorder creates a recorder writing to w. Writes are serialized.
func NewFileRecorder(w io.Writer) *FileRecorder {
	return &FileRecorder{w: w}
}

// Record writes rec.
func (f *FileRecorder) Record(_ context.Context, rec *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Write(f.w, rec)
}
