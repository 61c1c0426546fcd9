package maybeutf8

// Kind reports which representation a value holds.
type Kind uint8

const (
	// Text means the content is valid UTF-8.
	Text Kind = iota
	// Bytes means the content is not valid UTF-8.
	Bytes
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Octets is implemented by *Buffer and View.
type Octets interface {
	// Kind reports whether the content is Text or Bytes.
	Kind() Kind
	// Bytes returns the content as a read-only byte slice.
	Bytes() []byte
	// UTF8 returns the content and true if it is Text.
	UTF8() (string, bool)
	// Len returns the content length in bytes.
	Len() int
}

var (
	_ Octets = (*Buffer)(nil)
	_ Octets = View{}
)
