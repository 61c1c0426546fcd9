package maybeutf8

import (
	"bytes"
	"hash/maphash"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

// Property: FromBytes(x).Bytes() == x, whichever kind x classifies as
func TestProperty_RoundTrip(t *testing.T) {
	property := func(data []byte) bool {
		b := FromBytes(bytes.Clone(data))
		return bytes.Equal(b.Bytes(), data)
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: valid input is Text and reads back exactly; invalid input is
// Bytes and has no exact text
func TestProperty_Classification(t *testing.T) {
	property := func(data []byte) bool {
		b := FromBytes(bytes.Clone(data))
		s, ok := b.UTF8()
		if utf8.Valid(data) {
			return b.Kind() == Text && ok && s == string(data)
		}
		return b.Kind() == Bytes && !ok && s == ""
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: strings generated by quick are valid UTF-8 and always Text
func TestProperty_StringsAreText(t *testing.T) {
	property := func(s string) bool {
		b := FromString(s)
		got, ok := b.UTF8()
		return ok && got == s && b.Lossy() == s && ViewString(s).IsUTF8()
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: lossy decoding always yields valid UTF-8 and is exact for
// valid input
func TestProperty_LossyIsValid(t *testing.T) {
	property := func(data []byte) bool {
		out := ViewBytes(data).Lossy()
		if !utf8.ValidString(out) {
			return false
		}
		if utf8.Valid(data) {
			return out == string(data)
		}
		return bytes.Contains([]byte(out), []byte(replacement))
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: Buffer, View and string-built values with the same bytes are
// equal and hash the same
func TestProperty_EqualityIgnoresRepresentation(t *testing.T) {
	seed := maphash.MakeSeed()
	property := func(data []byte) bool {
		owned := FromBytes(bytes.Clone(data))
		fromString := FromString(string(data))
		view := ViewBytes(data)

		return Equal(&owned, view) &&
			Equal(&fromString, &owned) &&
			Compare(view, &fromString) == 0 &&
			Hash(seed, &owned) == Hash(seed, view) &&
			Hash(seed, &fromString) == Hash(seed, view)
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: PushBytes concatenates, and the result is Text only if both
// parts were valid on their own
func TestProperty_PushBytes(t *testing.T) {
	property := func(a, b []byte) bool {
		buf := FromBytes(bytes.Clone(a))
		buf.PushBytes(b)

		want := append(bytes.Clone(a), b...)
		if !bytes.Equal(buf.Bytes(), want) {
			return false
		}
		return buf.IsUTF8() == (utf8.Valid(a) && utf8.Valid(b))
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// Property: once Bytes, a buffer stays Bytes whatever is appended
func TestProperty_NoUpgrade(t *testing.T) {
	property := func(chunks [][]byte, s string, r rune) bool {
		buf := FromBytes([]byte{0xFF})
		for _, c := range chunks {
			buf.PushBytes(c)
		}
		buf.PushString(s)
		buf.PushRune(r)
		return buf.Kind() == Bytes
	}

	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
