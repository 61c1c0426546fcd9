// Package maybeutf8 implements values that are either valid UTF-8 text or
// raw octets known not to be valid UTF-8.
//
// Protocol data such as header values and path segments is usually text,
// but must never be rejected or mangled when it is not. A value is
// classified once, when it is built, and the result is kept as its Kind:
//
//	b := maybeutf8.FromBytes([]byte("hi\xffj"))
//	b.Kind()  // maybeutf8.Bytes
//	b.UTF8()  // "", false
//	b.Lossy() // "hi�j"
//	b.Bytes() // []byte("hi\xffj"), unchanged
//
// # Owned and borrowed forms
//
// Buffer owns its storage and can be appended to. View borrows a string
// or byte slice owned elsewhere and is never modified. Both implement
// Octets, and Equal, Compare and Hash work across them using only the
// byte content:
//
//	maybeutf8.Equal(maybeutf8.ViewString("abc"), &b) // true when b holds "abc"
//
// # Appending
//
// PushBytes is the general append: if the buffer is Text and the new
// bytes are valid UTF-8 on their own, it stays Text; otherwise it becomes
// Bytes. A Bytes buffer never becomes Text again, even if later appends
// happen to make the whole content valid.
//
// Each call is validated on its own. A multi-byte character split across
// two PushBytes calls makes the buffer Bytes. Callers that stream data in
// chunks should not split characters, or should use ReadFrom, which
// classifies the whole read at once.
//
// # Memory
//
// Buffer storage is append-only: bytes already written are never changed
// in place. Strings returned by UTF8, Lossy and IntoString, and views
// returned by View, share that storage and stay valid after later
// appends. Slices returned by Bytes are read-only.
//
// Neither form does any locking. A Buffer may be read from several
// goroutines at once as long as nothing appends to it concurrently.
package maybeutf8
