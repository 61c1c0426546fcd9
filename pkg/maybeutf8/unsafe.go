package maybeutf8

import "unsafe"

// unsafeString returns a string sharing b's memory.
// b must never be written to again.
func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// unsafeBytes returns a slice sharing s's memory. The result is
// capacity-limited and must not be written to.
func unsafeBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
