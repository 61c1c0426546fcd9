package netstr

// 1MB
const defaultMaxLength = 1 << 20

type config struct {
	lenient   bool
	maxLength int
}

// Option configures a Decoder.
type Option func(*config)

// Lenient skips ASCII whitespace (space, tab, \n, \r) before each length
// field. Whitespace inside payloads is always kept.
//
// Default: off, any whitespace between frames is an error.
func Lenient() Option {
	return func(c *config) {
		c.lenient = true
	}
}

// MaxLength sets the largest payload the decoder accepts. Longer length
// fields fail with ErrTooLarge before anything is allocated.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}
