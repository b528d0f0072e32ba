package vm

// Cursor holds the remaining input bytes and the recognizer
// operations every META II recognizer opcode drives it with. It is
// head-indexed rather than repeatedly re-sliced, so consuming a
// prefix is O(1) instead of the reference implementation's O(n)
// vector-drain.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor wraps a full input buffer for recognizer use.
func NewCursor(input []byte) *Cursor {
	return &Cursor{buf: input}
}

func isInputSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// SkipSpace drops leading whitespace bytes. A depleted input is not
// an error at this step.
func (c *Cursor) SkipSpace() {
	for c.off < len(c.buf) && isInputSpace(c.buf[c.off]) {
		c.off++
	}
}

func (c *Cursor) remaining() []byte {
	return c.buf[c.off:]
}

// Match skips whitespace, then consumes exactly len(s) bytes if the
// remaining input starts with s byte-for-byte. An empty s always
// matches, consuming nothing.
func (c *Cursor) Match(s string) bool {
	c.SkipSpace()
	rem := c.remaining()
	if len(rem) < len(s) {
		return false
	}
	if string(rem[:len(s)]) != s {
		return false
	}
	c.off += len(s)
	return true
}

// Identifier skips whitespace, then consumes a maximal run of ASCII
// alphanumerics if the next byte is an ASCII letter.
func (c *Cursor) Identifier() (string, bool) {
	c.SkipSpace()
	rem := c.remaining()
	if len(rem) == 0 || !isASCIILetter(rem[0]) {
		return "", false
	}

	n := 1
	for n < len(rem) && isASCIIAlnum(rem[n]) {
		n++
	}
	c.off += n
	return string(rem[:n]), true
}

// QuotedString skips whitespace, then, if the next byte is a single
// quote, consumes up to and including the matching closing quote. The
// returned token includes both quote characters.
func (c *Cursor) QuotedString() (string, bool) {
	c.SkipSpace()
	rem := c.remaining()
	if len(rem) == 0 || rem[0] != '\'' {
		return "", false
	}

	end := 1
	for end < len(rem) && rem[end] != '\'' {
		end++
	}
	if end >= len(rem) {
		// No closing quote in the remaining input: soft failure,
		// cursor position is unchanged past the whitespace skip.
		return "", false
	}

	token := string(rem[:end+1])
	c.off += end + 1
	return token, true
}

// Number skips whitespace, then, if the next byte is a digit,
// consumes a maximal run of digits with at most one embedded decimal
// point. This is the conforming behavior gated behind
// WithNumericRecognizer; the default NUM opcode handler never calls
// this.
func (c *Cursor) Number() (string, bool) {
	c.SkipSpace()
	rem := c.remaining()
	if len(rem) == 0 || !isASCIIDigit(rem[0]) {
		return "", false
	}

	n := 1
	sawPoint := false
	for n < len(rem) {
		if isASCIIDigit(rem[n]) {
			n++
			continue
		}
		if rem[n] == '.' && !sawPoint {
			sawPoint = true
			n++
			continue
		}
		break
	}
	c.off += n
	return string(rem[:n]), true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isASCIIAlnum(b byte) bool {
	return isASCIILetter(b) || isASCIIDigit(b)
}
