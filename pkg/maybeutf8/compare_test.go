package maybeutf8

import (
	"hash/maphash"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual_AcrossRepresentations(t *testing.T) {
	fromString := FromString("abc")
	fromBytes := FromBytes([]byte{0x61, 0x62, 0x63})

	require.True(t, Equal(&fromString, &fromBytes))
	require.True(t, Equal(&fromString, ViewString("abc")))
	require.True(t, Equal(ViewBytes([]byte("abc")), &fromBytes))
	require.False(t, Equal(&fromString, ViewString("abd")))
	require.False(t, Equal(&fromString, ViewString("ab")))
}

func TestEqual_TextAndBytesSameOctets(t *testing.T) {
	// Built in two invalid halves, so Bytes, with the same octets as "é".
	var split Buffer
	split.PushBytes([]byte{0xC3})
	split.PushBytes([]byte{0xA9})
	require.Equal(t, Bytes, split.Kind())

	text := FromString("é")
	require.Equal(t, Text, text.Kind())

	require.True(t, split.Equal(&text))
	require.True(t, text.Equal(&split))
	require.Equal(t, 0, Compare(&split, &text))

	seed := maphash.MakeSeed()
	require.Equal(t, Hash(seed, &split), Hash(seed, &text))
	require.Equal(t, Hash(seed, &text), Hash(seed, text.View()))
}

func TestCompare(t *testing.T) {
	a := FromString("a")
	b := FromString("b")
	raw := FromBytes([]byte{0xFF})

	require.Equal(t, -1, Compare(&a, &b))
	require.Equal(t, 1, Compare(&b, &a))
	require.Equal(t, 1, Compare(&raw, ViewString("z")))
	require.Equal(t, -1, Compare(ViewString(""), &a))
}

func TestHash_Different(t *testing.T) {
	seed := maphash.MakeSeed()
	a := FromString("header-a")
	b := FromString("header-b")
	require.NotEqual(t, Hash(seed, &a), Hash(seed, &b))
}
