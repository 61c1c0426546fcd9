package netstr

import (
	"errors"
	"fmt"
	"io"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Decode reads the next netstring and returns its payload, classified as
// Text or Bytes. It returns io.EOF when the stream ends cleanly between
// frames.
func (d *Decoder) Decode() (maybeutf8.Buffer, error) {
	length, err := d.readLength()
	if err != nil {
		return maybeutf8.Buffer{}, err
	}

	payload, err := d.readPayload(length)
	if err != nil {
		return maybeutf8.Buffer{}, err
	}

	if err := d.expectComma(); err != nil {
		return maybeutf8.Buffer{}, err
	}
	return maybeutf8.FromBytes(payload), nil
}

// DecodeKeyed reads the next keyed netstring. The key is the first payload
// byte; the rest is returned as the value.
func (d *Decoder) DecodeKeyed() (byte, maybeutf8.Buffer, error) {
	length, err := d.readLength()
	if err != nil {
		return 0, maybeutf8.Buffer{}, err
	}
	if length < 1 {
		return 0, maybeutf8.Buffer{}, d.formatError("keyed netstring must have length >= 1")
	}

	key, err := d.readByte()
	if err != nil {
		return 0, maybeutf8.Buffer{}, d.unexpectedEOF(err, "key")
	}

	payload, err := d.readPayload(length - 1)
	if err != nil {
		return 0, maybeutf8.Buffer{}, err
	}

	if err := d.expectComma(); err != nil {
		return 0, maybeutf8.Buffer{}, err
	}
	return key, maybeutf8.FromBytes(payload), nil
}

// readLength parses [whitespace] <digits> ':'.
func (d *Decoder) readLength() (int, error) {
	length := 0
	digits := 0

	for {
		b, err := d.readByte()
		if err != nil {
			if digits == 0 && err == io.EOF {
				return 0, io.EOF
			}
			return 0, d.unexpectedEOF(err, "length")
		}

		if d.lenient && digits == 0 && isWhitespace(b) {
			continue
		}

		if b == ':' {
			if digits == 0 {
				return 0, d.formatError("length field is empty")
			}
			return length, nil
		}

		if b < '0' || b > '9' {
			if isWhitespace(b) {
				return 0, d.formatError("unexpected whitespace in length field (use netstr.Lenient() for whitespace tolerance)")
			}
			return 0, d.formatError(fmt.Sprintf("expected digit or ':', got %q", rune(b)))
		}

		if digits == 1 && length == 0 {
			return 0, d.formatError("length field has leading zero")
		}

		length = length*10 + int(b-'0')
		digits++
		if length > d.maxLength {
			return 0, ErrTooLarge
		}
	}
}

func (d *Decoder) readPayload(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	payload := make([]byte, n)
	got, err := io.ReadFull(d.r, payload)
	d.offset += got
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, d.formatError(fmt.Sprintf("unexpected EOF: expected %d bytes, got %d", n, got))
		}
		return nil, err
	}
	return payload, nil
}

func (d *Decoder) expectComma() error {
	b, err := d.readByte()
	if err != nil {
		return d.unexpectedEOF(err, "','")
	}
	if b != ',' {
		return d.formatError(fmt.Sprintf("expected ',', got %q", rune(b)))
	}
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == nil {
		d.offset++
	}
	return b, err
}

// unexpectedEOF turns an io.EOF in the middle of a frame into a
// FormatError and passes other errors through.
func (d *Decoder) unexpectedEOF(err error, want string) error {
	if err == io.EOF {
		return d.formatError("unexpected EOF: expected " + want)
	}
	return err
}

func (d *Decoder) formatError(reason string) error {
	return &FormatError{Offset: d.offset, Reason: reason}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
