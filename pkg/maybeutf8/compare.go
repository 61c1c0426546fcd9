package maybeutf8

import (
	"bytes"
	"hash/maphash"
)

// Equal reports whether a and b hold the same bytes. Kind and the
// owned/borrowed form play no part: a Text value and a Bytes value with
// the same octets are equal.
func Equal(a, b Octets) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// Compare orders a and b by their bytes, like bytes.Compare.
func Compare(a, b Octets) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Hash hashes the bytes of o with seed. Values that are Equal hash the
// same under the same seed.
func Hash(seed maphash.Seed, o Octets) uint64 {
	return maphash.Bytes(seed, o.Bytes())
}
