package netstr

import (
	"strconv"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Encode writes o as a netstring. Text and Bytes values are framed the
// same way; only the octets are written.
func (e *Encoder) Encode(o maybeutf8.Octets) error {
	p := o.Bytes()
	e.buf = strconv.AppendInt(e.buf[:0], int64(len(p)), 10)
	e.buf = append(e.buf, ':')
	e.buf = append(e.buf, p...)
	e.buf = append(e.buf, ',')
	return e.flush()
}

// EncodeKeyed writes o as a keyed netstring: key, then the octets of o.
func (e *Encoder) EncodeKeyed(key byte, o maybeutf8.Octets) error {
	p := o.Bytes()
	e.buf = strconv.AppendInt(e.buf[:0], int64(len(p)+1), 10)
	e.buf = append(e.buf, ':', key)
	e.buf = append(e.buf, p...)
	e.buf = append(e.buf, ',')
	return e.flush()
}

// EncodeString is a shorthand for Encode(maybeutf8.ViewString(s)).
func (e *Encoder) EncodeString(s string) error {
	return e.Encode(maybeutf8.ViewString(s))
}

// EncodeKeyedString is a shorthand for EncodeKeyed(key, maybeutf8.ViewString(s)).
func (e *Encoder) EncodeKeyedString(key byte, s string) error {
	return e.EncodeKeyed(key, maybeutf8.ViewString(s))
}

func (e *Encoder) flush() error {
	_, err := e.w.Write(e.buf)
	// Scratch space above 64KiB is not kept between frames.
	if cap(e.buf) > 64<<10 {
		e.buf = nil
	}
	return err
}
