package maybeutf8

import "unicode/utf8"

const replacement = "\uFFFD"

// lossy decodes p, replacing each maximal invalid subsequence with a
// single U+FFFD. Valid input is returned without copying.
func lossy(p []byte) string {
	if utf8.Valid(p) {
		return unsafeString(p)
	}

	out := make([]byte, 0, len(p)+len(replacement))
	for len(p) > 0 {
		// Copy the longest valid run in one go.
		i := 0
		for i < len(p) {
			if p[i] < utf8.RuneSelf {
				i++
				continue
			}
			r, size := utf8.DecodeRune(p[i:])
			if r == utf8.RuneError && size == 1 {
				break
			}
			i += size
		}
		out = append(out, p[:i]...)
		p = p[i:]
		if len(p) == 0 {
			break
		}

		out = append(out, replacement...)
		p = p[maximalSubpart(p):]
	}
	// out is private to this call and never written again.
	return unsafeString(out)
}

// maximalSubpart returns the length of the invalid sequence starting at
// p[0]: the lead byte plus any continuation bytes that could still have
// formed a valid character. It is always at least 1.
func maximalSubpart(p []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch c := p[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c >= 0xE1 && c <= 0xEC, c == 0xEE, c == 0xEF:
		need = 2
	case c == 0xED:
		need, hi = 2, 0x9F
	case c == 0xF0:
		need, lo = 3, 0x90
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	case c == 0xF4:
		need, hi = 3, 0x8F
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(p) {
		if c := p[n]; c < lo || c > hi {
			break
		}
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
