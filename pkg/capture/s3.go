package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	// ErrArchiveClosed is returned by Record once Close has been called.
	ErrArchiveClosed = errors.New("capture: archive closed")
	// ErrArchiveBusy is returned by Record when the upload queue is full.
	ErrArchiveBusy = errors.New("capture: archive queue full")
)

// PutObjectAPI is the part of *s3.Client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ArchiverConfig configures an S3Archiver. Zero values pick defaults.
type S3ArchiverConfig struct {
	Client    PutObjectAPI
	Bucket    string
	KeyPrefix string
	Logger    *slog.Logger

	QueueSize     int           // 100
	UploadTimeout time.Duration // 10s per object
}

// S3Archiver stores each record as its own object, one record in the
// Write format per object. Uploads run on one background goroutine.
type S3Archiver struct {
	cfg S3ArchiverConfig
	seq atomic.Uint64

	mu     sync.RWMutex // guards closed and sends on queue
	closed bool
	queue  chan *Record
	idle   chan struct{} // closed when the uploader exits
}

// NewS3Archiver starts an archiver. Close it to flush queued records.
func NewS3Archiver(cfg S3ArchiverConfig) *S3Archiver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &S3Archiver{
		cfg:   cfg,
		queue: make(chan *Record, cfg.QueueSize),
		idle:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Record queues rec without blocking. It fails with ErrArchiveBusy when
// the queue is full and with ErrArchiveClosed after Close.
func (a *S3Archiver) Record(_ context.Context, rec *Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrArchiveClosed
	}
	select {
	case a.queue <- rec:
		return nil
	default:
		a.cfg.Logger.Warn("capture archive queue full",
			"method", rec.Method,
			"path", &rec.Path)
		return ErrArchiveBusy
	}
}

// Close stops accepting records and waits for the queued ones to be
// uploaded, or for ctx to end. Calling Close again only waits.
func (a *S3Archiver) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("capture: %d records not archived: %w", len(a.queue), ctx.Err())
	}
}

func (a *S3Archiver) run() {
	defer close(a.idle)
	for rec := range a.queue {
		key := PartitionKey(a.cfg.KeyPrefix, rec.Time, a.seq.Add(1))
		if err := a.store(key, rec); err != nil {
			a.cfg.Logger.Error("unable to archive capture",
				"bucket", a.cfg.Bucket,
				"key", key,
				"error", err)
			continue
		}
		a.cfg.Logger.Debug("archived capture", "bucket", a.cfg.Bucket, "key", key)
	}
}

func (a *S3Archiver) store(key string, rec *Record) error {
	var obj bytes.Buffer
	if err := NewFileRecorder(&obj).Record(context.Background(), rec); err != nil {
		return fmt.Errorf("unable to encode record: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.UploadTimeout)
	defer cancel()

	_, err := a.cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Bytes()),
		ContentLength: aws.Int64(int64(obj.Len())),
		ContentType:   aws.String(ContentType),
		Metadata:      map[string]string{"body-kind": rec.Body.Kind().String()},
	})
	return err
}

// ContentType labels a stream in the Write format.
const ContentType = "application/x-netstring"

// PartitionKey names the object for a record captured at t:
//
//	[prefix/]dt=YYYY-MM-DD/<unix nanos>-<seq>.ns
//
// The date is in UTC.
func PartitionKey(prefix string, t time.Time, seq uint64) string {
	t = t.UTC()
	name := fmt.Sprintf("dt=%s/%d-%d.ns", t.Format(time.DateOnly), t.UnixNano(), seq)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
