package maybeutf8

import (
	"bytes"
	"io"
	"slices"
	"unicode/utf8"
)

// minRead is the smallest free space ReadFrom asks a reader to fill.
const minRead = 512

// Buffer is an owned, growable value holding either UTF-8 text or raw
// octets. The zero value is an empty Text buffer ready to use.
//
// A Buffer must not be copied after it has been appended to or grown;
// appending through such a copy panics. Use Clone for an independent copy.
type Buffer struct {
	addr *Buffer // of the receiver, to detect copies by value
	buf  []byte
	raw  bool // content is not valid UTF-8; never reset except by Reset
}

// FromString returns a Buffer holding a copy of s.
//
// The result is Text whenever s is valid UTF-8. Go strings may hold
// arbitrary bytes, so s is validated once here; an invalid s yields Bytes.
func FromString(s string) Buffer {
	b := []byte(s)
	return Buffer{
		buf: b[:len(b):len(b)],
		raw: !utf8.ValidString(s),
	}
}

// FromBytes returns a Buffer that takes ownership of b. The caller must
// not modify b afterwards.
//
// b is validated once: valid UTF-8 yields Text, anything else yields
// Bytes holding b unchanged. Nothing is copied either way. b's spare
// capacity is not used; the first append reallocates.
func FromBytes(b []byte) Buffer {
	return Buffer{
		buf: b[:len(b):len(b)],
		raw: !utf8.Valid(b),
	}
}

func (b *Buffer) copyCheck() {
	if b.addr == nil {
		b.addr = b
	} else if b.addr != b {
		panic("maybeutf8: illegal use of non-zero Buffer copied by value")
	}
}

// Kind reports whether b holds Text or Bytes.
func (b *Buffer) Kind() Kind {
	if b.raw {
		return Bytes
	}
	return Text
}

// IsUTF8 reports whether b holds Text.
func (b *Buffer) IsUTF8() bool {
	return !b.raw
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the underlying storage.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Bytes returns the content without copying. The slice is read-only and
// only valid until the next call to IntoBytes; appending to it never
// writes into b.
func (b *Buffer) Bytes() []byte {
	return b.buf[:len(b.buf):len(b.buf)]
}

// UTF8 returns the content as a string and true if b holds Text. For
// Bytes it returns "", false. It never copies or converts.
func (b *Buffer) UTF8() (string, bool) {
	if b.raw {
		return "", false
	}
	return unsafeString(b.buf), true
}

// Lossy returns the content as text. Text is returned as is. Bytes are
// decoded with every maximal invalid subsequence replaced by U+FFFD; a new
// string is allocated only if a replacement was needed.
func (b *Buffer) Lossy() string {
	if !b.raw {
		return unsafeString(b.buf)
	}
	return lossy(b.buf)
}

// String returns b.Lossy().
func (b *Buffer) String() string {
	return b.Lossy()
}

// View returns a borrowed view of the current content, with the same Kind.
// The view stays valid after later appends but does not see them.
func (b *Buffer) View() View {
	if b.raw {
		return View{b: b.Bytes(), raw: true}
	}
	return View{s: unsafeString(b.buf)}
}

// Clone returns an independent copy of b with the same Kind.
func (b *Buffer) Clone() Buffer {
	c := bytes.Clone(b.buf)
	return Buffer{buf: c[:len(c):len(c)], raw: b.raw}
}

// Equal reports whether b and o hold the same bytes, whatever their kinds.
func (b *Buffer) Equal(o Octets) bool {
	return Equal(b, o)
}

// PushBytes appends p.
//
// If b is Text and p is valid UTF-8 by itself, b stays Text. Otherwise b
// becomes, or stays, Bytes. This is the only way a Buffer stops being
// Text. p is validated on its own, so a character split across two calls
// makes b Bytes.
func (b *Buffer) PushBytes(p []byte) {
	b.copyCheck()
	if !b.raw && !utf8.Valid(p) {
		b.raw = true
	}
	b.buf = append(b.buf, p...)
}

// PushString appends s.
//
// A Bytes buffer appends s without looking at it. A Text buffer checks s
// first, since a Go string can hold invalid UTF-8, and becomes Bytes if it
// is invalid.
func (b *Buffer) PushString(s string) {
	b.copyCheck()
	if !b.raw && !utf8.ValidString(s) {
		b.raw = true
	}
	b.buf = append(b.buf, s...)
}

// PushRune appends the UTF-8 encoding of r. Invalid runes are encoded as
// U+FFFD. The encoding is always valid, so this never changes b's Kind.
func (b *Buffer) PushRune(r rune) {
	b.copyCheck()
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	b.buf = append(b.buf, enc[:n]...)
}

// Write appends p and never fails. It implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.PushBytes(p)
	return len(p), nil
}

// WriteString appends s and never fails. It implements io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	b.PushString(s)
	return len(s), nil
}

// WriteRune appends r and never fails.
func (b *Buffer) WriteRune(r rune) (int, error) {
	n := len(b.buf)
	b.PushRune(r)
	return len(b.buf) - n, nil
}

// WriteByte appends c and never fails. A byte of 0x80 or above is never
// valid UTF-8 alone, so it makes b Bytes.
func (b *Buffer) WriteByte(c byte) error {
	b.copyCheck()
	if c >= utf8.RuneSelf {
		b.raw = true
	}
	b.buf = append(b.buf, c)
	return nil
}

// ReadFrom appends everything read from r until io.EOF. The data read is
// classified once at the end, so read boundaries that split characters do
// not matter. It implements io.ReaderFrom.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	b.copyCheck()
	start := len(b.buf)
	defer b.classifyFrom(start)

	for {
		if cap(b.buf)-len(b.buf) < minRead {
			b.buf = slices.Grow(b.buf, minRead)
		}
		n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		if n < 0 {
			panic("maybeutf8: reader returned negative count from Read")
		}
		b.buf = b.buf[:len(b.buf)+n]
		if err == io.EOF {
			return int64(len(b.buf) - start), nil
		}
		if err != nil {
			return int64(len(b.buf) - start), err
		}
	}
}

func (b *Buffer) classifyFrom(start int) {
	if !b.raw && !utf8.Valid(b.buf[start:]) {
		b.raw = true
	}
}

// WriteTo writes the content to w. It implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	if err == nil && n != len(b.buf) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Grow makes room for at least n more bytes without another allocation.
func (b *Buffer) Grow(n int) {
	if n < 0 {
		panic("maybeutf8: negative Grow count")
	}
	b.copyCheck()
	b.buf = slices.Grow(b.buf, n)
}

// Reset empties b and makes it Text. The old storage is released rather
// than reused, so strings and views taken earlier remain valid.
func (b *Buffer) Reset() {
	b.addr = nil
	b.buf = nil
	b.raw = false
}

// IntoString returns the content as text, as Lossy does, and resets b.
// No copy is made when the content is already valid UTF-8.
func (b *Buffer) IntoString() string {
	s := b.Lossy()
	b.Reset()
	return s
}

// IntoBytes returns the content and resets b. The caller owns the slice.
// Strings previously returned by UTF8, Lossy or IntoString, and views from
// View, share its memory; do not modify it while those are in use.
func (b *Buffer) IntoBytes() []byte {
	p := b.buf
	b.Reset()
	return p
}
