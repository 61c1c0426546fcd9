package netstr

import "io"

// Reader is what a Decoder reads from. *bufio.Reader, *bytes.Reader and
// *strings.Reader implement it.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Decoder reads netstrings into maybeutf8 buffers.
type Decoder struct {
	r         Reader
	lenient   bool
	maxLength int
	offset    int // bytes consumed, for error reporting
}

// NewDecoder creates a decoder reading from r.
//
//	dec := netstr.NewDecoder(bufio.NewReader(conn), netstr.Lenient())
func NewDecoder(r Reader, opts ...Option) *Decoder {
	cfg := config{maxLength: defaultMaxLength}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Decoder{
		r:         r,
		lenient:   cfg.lenient,
		maxLength: cfg.maxLength,
	}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.offset
}

// Encoder writes netstrings to an io.Writer. Each frame is a single Write.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}
