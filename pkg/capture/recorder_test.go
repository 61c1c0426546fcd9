package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	records []*Record
	err     error
}

func (m *mockRecorder) Record(_ context.Context, rec *Record) error {
	m.records = append(m.records, rec)
	return m.err
}

func TestSlogRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rec := testRecord(t)
	require.NoError(t, NewSlogRecorder(logger).Record(context.Background(), rec))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "request captured", entry["msg"])
	require.Equal(t, "POST", entry["method"])
	require.Equal(t, "/a/%FF/b", entry["path"])
	require.Equal(t, float64(8), entry["body_bytes"])
	require.Equal(t, map[string]any{"lossy": "��", "hex": "c0c1"}, entry["header.X-Raw"])
	require.NotContains(t, entry, "header.Accept")

	// path, 3 segments, 4 headers (Accept x2, X-Raw, Host), 2 query pairs, body
	require.Equal(t, float64(1+3+4+4+1), entry["parts"])
	// segment %FF, X-Raw, query x value, body
	require.Equal(t, float64(4), entry["raw_parts"])
}

func TestMultiRecorder(t *testing.T) {
	first := &mockRecorder{err: errors.New("first failed")}
	second := &mockRecorder{}
	third := &mockRecorder{err: errors.New("third failed")}

	rec := testRecord(t)
	err := NewMultiRecorder(first, second, third).Record(context.Background(), rec)
	require.Error(t, err)
	require.Contains(t, err.Error(), "first failed")
	require.Contains(t, err.Error(), "third failed")

	require.Len(t, first.records, 1)
	require.Len(t, second.records, 1)
	require.Len(t, third.records, 1)
}

func TestNoopRecorder(t *testing.T) {
	require.NoError(t, NoopRecorder{}.Record(context.Background(), testRecord(t)))
}

func TestFileRecorder_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	fr := NewFileRecorder(&buf)
	rec := testRecord(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, fr.Record(context.Background(), rec))
		}()
	}
	wg.Wait()

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i := 0; i < 8; i++ {
		got, err := r.Next()
		require.NoError(t, err)
		require.True(t, got.Body.Equal(&rec.Body))
	}
}
