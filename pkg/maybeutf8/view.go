package maybeutf8

import (
	"bytes"
	"unicode/utf8"
)

// View is a borrowed, read-only value holding either UTF-8 text or raw
// octets. It never owns its data and must not outlive the string, slice or
// Buffer it was made from.
//
// The zero value is an empty Text view.
type View struct {
	s   string // Text content
	b   []byte // Bytes content
	raw bool
}

// ViewString returns a view of s. It is Text whenever s is valid UTF-8,
// which is checked once here; otherwise it is Bytes over s's memory.
func ViewString(s string) View {
	if utf8.ValidString(s) {
		return View{s: s}
	}
	return View{b: unsafeBytes(s), raw: true}
}

// ViewBytes returns a view of b, classified once. b must not be modified
// while the view, or any string obtained from it, is in use.
func ViewBytes(b []byte) View {
	if utf8.Valid(b) {
		return View{s: unsafeString(b)}
	}
	return View{b: b[:len(b):len(b)], raw: true}
}

// Kind reports whether v holds Text or Bytes.
func (v View) Kind() Kind {
	if v.raw {
		return Bytes
	}
	return Text
}

// IsUTF8 reports whether v holds Text.
func (v View) IsUTF8() bool {
	return !v.raw
}

// Len returns the content length in bytes.
func (v View) Len() int {
	if v.raw {
		return len(v.b)
	}
	return len(v.s)
}

// Bytes returns the content without copying. The slice is read-only.
func (v View) Bytes() []byte {
	if v.raw {
		return v.b
	}
	return unsafeBytes(v.s)
}

// UTF8 returns the content and true if v holds Text, or "", false.
func (v View) UTF8() (string, bool) {
	if v.raw {
		return "", false
	}
	return v.s, true
}

// Lossy returns the content as text, replacing every maximal invalid
// subsequence with U+FFFD. Text is returned without copying.
func (v View) Lossy() string {
	if !v.raw {
		return v.s
	}
	return lossy(v.b)
}

// String returns v.Lossy().
func (v View) String() string {
	return v.Lossy()
}

// Owned copies v into a new Buffer with the same Kind.
func (v View) Owned() Buffer {
	c := bytes.Clone(v.Bytes())
	return Buffer{buf: c[:len(c):len(c)], raw: v.raw}
}

// Equal reports whether v and o hold the same bytes, whatever their kinds.
func (v View) Equal(o Octets) bool {
	return Equal(v, o)
}
