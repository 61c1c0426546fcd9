package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	inputs  []*s3.PutObjectInput
	err     error

	// when set, each PutObject signals entered then waits on proceed
	entered chan struct{}
	proceed chan struct{}
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}}
}

func (m *memBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.proceed
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	m.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func closeArchiver(t *testing.T, a *S3Archiver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
}

func TestPartitionKey(t *testing.T) {
	ts := time.Date(2025, 3, 7, 23, 59, 0, 5, time.FixedZone("x", -2*3600))

	tests := []struct {
		prefix string
		seq    uint64
		want   string
	}{
		{"captures", 12, "captures/dt=2025-03-08/1741399140000000005-12.ns"},
		{"", 1, "dt=2025-03-08/1741399140000000005-1.ns"},
		{"a/b", 3, "a/b/dt=2025-03-08/1741399140000000005-3.ns"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, PartitionKey(tt.prefix, ts, tt.seq))
	}
}

func TestS3Archiver_UploadsQueuedOnClose(t *testing.T) {
	bucket := newMemBucket()
	a := NewS3Archiver(S3ArchiverConfig{
		Client:    bucket,
		Bucket:    "bucket",
		KeyPrefix: "pfx",
		Logger:    quietLogger(),
	})

	rec := testRecord(t)
	for range 5 {
		require.NoError(t, a.Record(context.Background(), rec))
	}
	closeArchiver(t, a)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.Len(t, bucket.objects, 5)
	for _, in := range bucket.inputs {
		require.Equal(t, "bucket", aws.ToString(in.Bucket))
		require.Equal(t, ContentType, aws.ToString(in.ContentType))
		require.Equal(t, "bytes", in.Metadata["body-kind"])
		require.Contains(t, aws.ToString(in.Key), "pfx/dt=2025-01-15/")
	}

	for key, body := range bucket.objects {
		got, err := NewReader(bytes.NewReader(body)).Next()
		require.NoError(t, err, key)
		require.Equal(t, maybeutf8.Bytes, got.Body.Kind())
		require.True(t, got.Body.Equal(&rec.Body))
	}
}

func TestS3Archiver_RecordAfterClose(t *testing.T) {
	bucket := newMemBucket()
	a := NewS3Archiver(S3ArchiverConfig{Client: bucket, Bucket: "bucket", Logger: quietLogger()})

	require.NoError(t, a.Record(context.Background(), testRecord(t)))
	closeArchiver(t, a)

	err := a.Record(context.Background(), testRecord(t))
	require.ErrorIs(t, err, ErrArchiveClosed)

	// a second Close is harmless
	closeArchiver(t, a)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.Len(t, bucket.objects, 1)
}

func TestS3Archiver_QueueFull(t *testing.T) {
	bucket := newMemBucket()
	bucket.entered = make(chan struct{})
	bucket.proceed = make(chan struct{})

	a := NewS3Archiver(S3ArchiverConfig{
		Client:    bucket,
		Bucket:    "bucket",
		Logger:    quietLogger(),
		QueueSize: 1,
	})

	rec := testRecord(t)
	require.NoError(t, a.Record(context.Background(), rec))
	<-bucket.entered // uploader is now inside PutObject

	require.NoError(t, a.Record(context.Background(), rec))
	require.ErrorIs(t, a.Record(context.Background(), rec), ErrArchiveBusy)

	go func() {
		for range bucket.entered {
		}
	}()
	close(bucket.proceed)
	closeArchiver(t, a)
	close(bucket.entered)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.Len(t, bucket.objects, 2)
}

func TestS3Archiver_CloseHonoursContext(t *testing.T) {
	bucket := newMemBucket()
	bucket.entered = make(chan struct{})
	bucket.proceed = make(chan struct{})

	a := NewS3Archiver(S3ArchiverConfig{Client: bucket, Bucket: "bucket", Logger: quietLogger()})
	require.NoError(t, a.Record(context.Background(), testRecord(t)))
	<-bucket.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Close(ctx), context.Canceled)

	close(bucket.proceed)
	closeArchiver(t, a)
}

func TestS3Archiver_PutErrorIsLogged(t *testing.T) {
	bucket := newMemBucket()
	bucket.err = errors.New("access denied")

	var logs bytes.Buffer
	a := NewS3Archiver(S3ArchiverConfig{
		Client: bucket,
		Bucket: "bucket",
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, a.Record(context.Background(), testRecord(t)))
	closeArchiver(t, a)

	require.Contains(t, logs.String(), "unable to archive capture")
	require.Contains(t, logs.String(), "access denied")
}
