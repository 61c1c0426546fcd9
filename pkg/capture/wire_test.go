package capture

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epithet-ssh/maybeutf8/pkg/handler"
	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
	"github.com/epithet-ssh/maybeutf8/pkg/netstr"
)

var testTime = time.Date(2025, 1, 15, 12, 0, 0, 123, time.UTC)

func testRecord(t *testing.T) *Record {
	t.Helper()
	req := httptest.NewRequest("POST", "/a/%FF/b?x=%C3&y=1", strings.NewReader("payload\xfe"))
	req.Header["X-Raw"] = []string{"\xc0\xc1"}
	req.Header["Accept"] = []string{"*/*", "text/plain"}

	ctx, err := handler.NewContext(req, handler.DefaultMaxBodySize)
	require.NoError(t, err)
	return FromContext(ctx, testTime)
}

func TestFromContext_Clones(t *testing.T) {
	req := httptest.NewRequest("PUT", "/x", strings.NewReader("abc"))
	ctx, err := handler.NewContext(req, handler.DefaultMaxBodySize)
	require.NoError(t, err)

	rec := FromContext(ctx, testTime)
	ctx.Body.PushBytes([]byte{0xFF})

	require.Equal(t, "abc", rec.Body.String())
	require.Equal(t, maybeutf8.Text, rec.Body.Kind())
}

func TestWriteRead_RoundTrip(t *testing.T) {
	rec := testRecord(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))
	require.NoError(t, Write(&buf, rec))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i := 0; i < 2; i++ {
		got, err := r.Next()
		require.NoError(t, err)

		require.True(t, got.Time.Equal(testTime))
		require.Equal(t, "POST", got.Method)
		require.True(t, got.Path.Equal(&rec.Path))

		require.Len(t, got.Segments, 3)
		require.Equal(t, maybeutf8.Bytes, got.Segments[1].Kind())
		require.Equal(t, []byte{0xFF}, got.Segments[1].Bytes())

		require.Len(t, got.Headers, len(rec.Headers))
		for j := range rec.Headers {
			require.Equal(t, rec.Headers[j].Name, got.Headers[j].Name)
			require.True(t, got.Headers[j].Value.Equal(&rec.Headers[j].Value))
			require.Equal(t, rec.Headers[j].Value.Kind(), got.Headers[j].Value.Kind())
		}

		require.Len(t, got.Query, 2)
		require.Equal(t, maybeutf8.Bytes, got.Query[0].Value.Kind())
		require.Equal(t, "1", got.Query[1].Value.String())

		require.Equal(t, []byte("payload\xfe"), got.Body.Bytes())
		require.Equal(t, maybeutf8.Bytes, got.Body.Kind())
	}

	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestWriteRead_RawNamesKeptVerbatim(t *testing.T) {
	rec := &Record{
		Time:   testTime,
		Method: "G\xffT",
		Headers: []handler.Field{
			{Name: "X-\xc0\xafName", Value: maybeutf8.FromString("v")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))

	got, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	require.NoError(t, err)
	require.Equal(t, "G\xffT", got.Method)
	require.Len(t, got.Headers, 1)
	require.Equal(t, "X-\xc0\xafName", got.Headers[0].Name)
	require.Equal(t, "v", got.Headers[0].Value.String())
}

func frames(t *testing.T, kv ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := netstr.NewEncoder(&buf)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, enc.EncodeKeyedString(kv[i][0], kv[i+1]))
	}
	return buf.Bytes()
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"orphan header value", frames(t, "v", "x", ".", ""), ErrOrphanValue},
		{"orphan query value", frames(t, "q", "x", ".", ""), ErrOrphanValue},
		{"unknown key", frames(t, "z", "x"), ErrUnknownKey},
		{"truncated record", frames(t, "m", "GET"), io.ErrUnexpectedEOF},
		{"bad framing", []byte("3:m"), netstr.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.input)).Next()
			require.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestReader_BadTime(t *testing.T) {
	_, err := NewReader(bytes.NewReader(frames(t, "t", "yesterday", ".", ""))).Next()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad time")
}

func TestReader_Lenient(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testRecord(t)))
	buf.WriteString("\n")
	require.NoError(t, Write(&buf, testRecord(t)))
	buf.WriteString("\n")

	r := NewReader(bytes.NewReader(buf.Bytes()), netstr.Lenient())
	for i := 0; i < 2; i++ {
		_, err := r.Next()
		require.NoError(t, err)
	}
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}
