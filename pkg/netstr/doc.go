// Package netstr frames maybeutf8 values as netstrings.
//
// A netstring is <length>:<payload>, where <length> is the decimal byte
// count of the payload:
//
//	"5:hello,"   // the text "hello"
//	"0:,"        // an empty payload
//	"2:\xff\xfe," // two raw octets
//
// A keyed netstring spends the first payload byte on a key:
//
//	"6:ttoken,"  // key 't', value "token"
//
// # Usage
//
//	enc := netstr.NewEncoder(w)
//	enc.Encode(maybeutf8.ViewString("hello"))
//	enc.EncodeKeyed('v', &headerValue)
//
//	dec := netstr.NewDecoder(bufio.NewReader(r))
//	payload, err := dec.Decode() // maybeutf8.Buffer
//
// Payloads are read whole before they are classified, so a frame holding
// valid UTF-8 always decodes as Text regardless of how the underlying
// reader splits it. Octets that are not UTF-8 come back as Bytes,
// unchanged.
//
// The decoder does no buffering of its own; wrap network streams in a
// bufio.Reader. MaxLength (default 1MB) bounds the allocation a single
// length field can cause.
package netstr
