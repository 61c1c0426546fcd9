package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/epithet-ssh/maybeutf8/pkg/handler"
	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
	"github.com/epithet-ssh/maybeutf8/pkg/netstr"
)

// Keys of the keyed netstrings that make up a record.
const (
	keyTime       = 't'
	keyMethod     = 'm'
	keyPath       = 'p'
	keySegment    = 's'
	keyHeaderName = 'n'
	keyHeaderVal  = 'v'
	keyQueryName  = 'k'
	keyQueryVal   = 'q'
	keyBody       = 'b'
	keyEnd        = '.'
)

var (
	// ErrUnknownKey is returned for a frame key the reader does not know.
	ErrUnknownKey = errors.New("capture: unknown key")

	// ErrOrphanValue is returned for a header or query value with no
	// name before it.
	ErrOrphanValue = errors.New("capture: value without a name")
)

// Write encodes rec to w as keyed netstrings ending with an end marker.
func Write(w io.Writer, rec *Record) error {
	enc := netstr.NewEncoder(w)
	var err error
	put := func(key byte, o maybeutf8.Octets) {
		if err == nil {
			err = enc.EncodeKeyed(key, o)
		}
	}

	put(keyTime, maybeutf8.ViewString(rec.Time.UTC().Format(time.RFC3339Nano)))
	put(keyMethod, maybeutf8.ViewString(rec.Method))
	put(keyPath, &rec.Path)
	for i := range rec.Segments {
		put(keySegment, &rec.Segments[i])
	}
	for i := range rec.Headers {
		put(keyHeaderName, maybeutf8.ViewString(rec.Headers[i].Name))
		put(keyHeaderVal, &rec.Headers[i].Value)
	}
	for i := range rec.Query {
		put(keyQueryName, &rec.Query[i].Name)
		put(keyQueryVal, &rec.Query[i].Value)
	}
	put(keyBody, &rec.Body)
	put(keyEnd, maybeutf8.View{})
	return err
}

// Reader reads records written by Write.
type Reader struct {
	dec *netstr.Decoder
}

// NewReader returns a Reader over r.
func NewReader(r netstr.Reader, opts ...netstr.Option) *Reader {
	return &Reader{dec: netstr.NewDecoder(r, opts...)}
}

// Next returns the next record, or io.EOF when the stream ends between
// records. A stream that ends inside a record yields io.ErrUnexpectedEOF.
func (r *Reader) Next() (*Record, error) {
	rec := &Record{}
	started := false

	var headerName string
	haveHeaderName := false
	var queryName maybeutf8.Buffer
	haveQueryName := false

	for {
		key, val, err := r.dec.DecodeKeyed()
		if err == io.EOF {
			if started {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		started = true

		switch key {
		case keyTime:
			t, err := time.Parse(time.RFC3339Nano, val.String())
			if err != nil {
				return nil, fmt.Errorf("capture: bad time %q: %w", val.String(), err)
			}
			rec.Time = t
		case keyMethod:
			rec.Method = string(val.Bytes())
		case keyPath:
			rec.Path = val
		case keySegment:
			rec.Segments = append(rec.Segments, val)
		case keyHeaderName:
			headerName, haveHeaderName = string(val.Bytes()), true
		case keyHeaderVal:
			if !haveHeaderName {
				return nil, fmt.Errorf("%w: header at offset %d", ErrOrphanValue, r.dec.Offset())
			}
			rec.Headers = append(rec.Headers, handler.Field{Name: headerName, Value: val})
			haveHeaderName = false
		case keyQueryName:
			queryName, haveQueryName = val, true
		case keyQueryVal:
			if !haveQueryName {
				return nil, fmt.Errorf("%w: query at offset %d", ErrOrphanValue, r.dec.Offset())
			}
			rec.Query = append(rec.Query, handler.Pair{Name: queryName, Value: val})
			queryName, haveQueryName = maybeutf8.Buffer{}, false
		case keyBody:
			rec.Body = val
		case keyEnd:
			return rec, nil
		default:
			return nil, fmt.Errorf("%w: %q at offset %d", ErrUnknownKey, key, r.dec.Offset())
		}
	}
}
